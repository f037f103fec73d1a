package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"estatepro/models"
	"estatepro/utils"

	"go.uber.org/zap"
)

// Endpoint paths relative to the gateway base URL.
const (
	EndpointFindPro               = "find-pro"
	EndpointSchedulePro           = "schedule-pro"
	EndpointReadPendingMeetings   = "video/read-pending-meetings"
	EndpointHandleMeetingRequest  = "video/handle-meeting-request"
	EndpointRespondToRequest      = "respond-to-request"
	EndpointReadScheduledMeetings = "read-scheduled-meetings"
	EndpointProRequests           = "pro-requests"
)

// maxResponseBytes bounds how much of a reply is read into memory.
const maxResponseBytes = 8 << 20

// Client talks to the Scheduling Gateway. It never retries; every failure
// comes back as *Error.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a client. A nil httpClient falls back to one with a 30s
// timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// FindPro submits a request to the matcher. With an image the call is sent
// as multipart form fields plus an "image" part.
func (c *Client) FindPro(ctx context.Context, userID string, req models.ServiceRequest, image *models.Image) (*models.MatchResult, error) {
	body := findProBody{
		ServiceType: req.ServiceType,
		Description: req.Description,
		City:        req.City,
		State:       req.State,
	}

	var resp findProResponse
	var err error
	if image == nil {
		err = c.postJSON(ctx, EndpointFindPro, userID, body, &resp)
	} else {
		fields := map[string]string{
			"service_type": body.ServiceType,
			"description":  body.Description,
			"city":         body.City,
			"state":        body.State,
		}
		err = c.postMultipart(ctx, EndpointFindPro, userID, fields, image, &resp)
	}
	if err != nil {
		return nil, err
	}
	result, convErr := resp.toModel()
	if convErr != nil {
		return nil, c.fail(EndpointFindPro, malformedError(EndpointFindPro, http.StatusOK, convErr))
	}
	c.succeed(EndpointFindPro)
	return result, nil
}

// SchedulePro submits the request details. sel is nil for a direct request,
// in which case selected_professionals is omitted.
func (c *Client) SchedulePro(ctx context.Context, userID string, req models.ServiceRequest, sel *models.RankedSelection, image *models.Image) (*models.Ack, error) {
	data, err := json.Marshal(newScheduleProBody(req, sel))
	if err != nil {
		return nil, fmt.Errorf("gateway.SchedulePro: failed to encode request: %w", err)
	}
	var resp ackResponse
	if err := c.postMultipart(ctx, EndpointSchedulePro, userID, map[string]string{"data": string(data)}, image, &resp); err != nil {
		return nil, err
	}
	c.succeed(EndpointSchedulePro)
	return &models.Ack{Status: resp.Status, Message: resp.message()}, nil
}

// ReadPendingMeetings lists the meetings waiting on the professional userID.
func (c *Client) ReadPendingMeetings(ctx context.Context, userID string) (*models.MeetingSnapshot, error) {
	var resp meetingsResponse
	if err := c.postJSON(ctx, EndpointReadPendingMeetings, userID, pendingMeetingsBody{RequestType: "pendingMeetings"}, &resp); err != nil {
		return nil, err
	}
	return c.meetings(EndpointReadPendingMeetings, &resp)
}

// ReadScheduledMeetings lists the meetings the requester userID created.
func (c *Client) ReadScheduledMeetings(ctx context.Context, userID string) (*models.MeetingSnapshot, error) {
	var resp meetingsResponse
	if err := c.postJSON(ctx, EndpointReadScheduledMeetings, userID, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return c.meetings(EndpointReadScheduledMeetings, &resp)
}

func (c *Client) meetings(endpoint string, resp *meetingsResponse) (*models.MeetingSnapshot, error) {
	snap, err := resp.toModel()
	if err != nil {
		return nil, c.fail(endpoint, malformedError(endpoint, http.StatusOK, err))
	}
	c.succeed(endpoint)
	return snap, nil
}

// HandleMeetingRequest sends a professional's approve or reject. slot is
// only sent for approve.
func (c *Client) HandleMeetingRequest(ctx context.Context, userID, meetingID string, action models.DecisionAction, slot *models.Slot) (*models.Ack, error) {
	body := handleMeetingBody{
		RequestID: meetingID,
		Action:    string(action),
	}
	if action == models.ActionApprove {
		body.SelectedTimeSlot = encodeSlot(slot)
	}
	var resp ackResponse
	if err := c.postJSON(ctx, EndpointHandleMeetingRequest, userID, body, &resp); err != nil {
		return nil, err
	}
	c.succeed(EndpointHandleMeetingRequest)
	return &models.Ack{Status: resp.Status, Message: resp.message()}, nil
}

// RespondToRequest answers a direct request from the professional inbox.
func (c *Client) RespondToRequest(ctx context.Context, userID, requestID string, action models.DirectAction) (*models.Ack, error) {
	body := respondBody{
		RequestID:      requestID,
		ProfessionalID: userID,
		Action:         string(action),
	}
	var resp ackResponse
	if err := c.postJSON(ctx, EndpointRespondToRequest, userID, body, &resp); err != nil {
		return nil, err
	}
	c.succeed(EndpointRespondToRequest)
	return &models.Ack{Status: resp.Status, Message: resp.message()}, nil
}

// ProRequests lists the direct requests addressed to the professional userID.
func (c *Client) ProRequests(ctx context.Context, userID string) (*models.InboxSnapshot, error) {
	var resp proRequestsResponse
	if err := c.postJSON(ctx, EndpointProRequests, userID, proRequestsBody{ProfessionalID: userID}, &resp); err != nil {
		return nil, err
	}
	snap, err := resp.toModel()
	if err != nil {
		return nil, c.fail(EndpointProRequests, malformedError(EndpointProRequests, http.StatusOK, err))
	}
	c.succeed(EndpointProRequests)
	return snap, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint, userID string, payload any, out enveloped) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gateway: failed to encode %s body: %w", endpoint, err)
	}
	return c.do(ctx, endpoint, userID, "application/json", bytes.NewReader(data), out)
}

func (c *Client) postMultipart(ctx context.Context, endpoint, userID string, fields map[string]string, image *models.Image, out enveloped) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("gateway: failed to write %s field %s: %w", endpoint, name, err)
		}
	}
	if image != nil {
		filename := image.Filename
		if filename == "" {
			filename = "image.jpg"
		}
		part, err := w.CreateFormFile("image", filename)
		if err != nil {
			return fmt.Errorf("gateway: failed to create %s image part: %w", endpoint, err)
		}
		if _, err := part.Write(image.Data); err != nil {
			return fmt.Errorf("gateway: failed to write %s image part: %w", endpoint, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gateway: failed to close %s multipart body: %w", endpoint, err)
	}
	return c.do(ctx, endpoint, userID, w.FormDataContentType(), &buf, out)
}

// do performs the call and decodes the reply into out. Classification:
// transport errors are network, non-2xx and status "error" are rejections,
// an undecodable 2xx body is malformed. Success is counted by the caller
// once the reply has been converted.
func (c *Client) do(ctx context.Context, endpoint, userID, contentType string, body io.Reader, out enveloped) error {
	start := time.Now()
	defer func() {
		utils.GatewayLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, body)
	if err != nil {
		return fmt.Errorf("gateway: failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(endpoint, networkError(endpoint, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.fail(endpoint, networkError(endpoint, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return c.fail(endpoint, rejectedError(endpoint, resp.StatusCode, env.message()))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return c.fail(endpoint, malformedError(endpoint, resp.StatusCode, err))
	}
	if env := out.env(); env.rejected() {
		return c.fail(endpoint, rejectedError(endpoint, resp.StatusCode, env.message()))
	}

	c.logger.Debug("gateway call returned",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))
	return nil
}

func (c *Client) succeed(endpoint string) {
	utils.GatewayRequests.WithLabelValues(endpoint, "ok").Inc()
}

func (c *Client) fail(endpoint string, gerr *Error) error {
	utils.GatewayRequests.WithLabelValues(endpoint, string(gerr.Kind)).Inc()
	fields := []zap.Field{
		zap.String("endpoint", endpoint),
		zap.String("kind", string(gerr.Kind)),
		zap.Int("status", gerr.StatusCode),
	}
	if gerr.Message != "" {
		fields = append(fields, zap.String("message", gerr.Message))
	}
	if gerr.Err != nil && !errors.Is(gerr.Err, context.Canceled) {
		fields = append(fields, zap.Error(gerr.Err))
	}
	c.logger.Warn("gateway call failed", fields...)
	return gerr
}
