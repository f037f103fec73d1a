package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"estatepro/middleware"
	"estatepro/models"
	"estatepro/services/gateway"
	"estatepro/services/negotiation"
	"estatepro/services/payment"
	"estatepro/services/storage"
	"estatepro/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()
}

// stubService overrides only what a test needs; anything else panics.
type stubService struct {
	negotiation.Service

	decide  func(userID, meetingID string, d models.Decision) (*models.DecisionResult, error)
	list    func(userID string, role models.Role) (*models.MeetingList, error)
	slots   func(meetingID string, index int) ([]models.Slot, error)
	submit  func(req models.ServiceRequest, image *models.Image) (*models.MatchResult, error)
	toggle  func(sessionID, id string, priority int) (*models.RankingSession, error)
	direct  func(req models.ServiceRequest) (*models.Ack, error)
	respond func(requestID string, action models.DirectAction) (*models.DirectResponse, error)
}

func (s *stubService) Decide(ctx context.Context, userID, meetingID string, d models.Decision) (*models.DecisionResult, error) {
	return s.decide(userID, meetingID, d)
}

func (s *stubService) ListMeetings(ctx context.Context, userID string, role models.Role) (*models.MeetingList, error) {
	return s.list(userID, role)
}

func (s *stubService) SlotsFor(ctx context.Context, userID, meetingID string, index int) ([]models.Slot, error) {
	return s.slots(meetingID, index)
}

func (s *stubService) SubmitRequest(ctx context.Context, userID string, req models.ServiceRequest, image *models.Image) (*models.MatchResult, error) {
	return s.submit(req, image)
}

func (s *stubService) ToggleCandidate(ctx context.Context, userID, sessionID, id string, priority int) (*models.RankingSession, error) {
	return s.toggle(sessionID, id, priority)
}

func (s *stubService) SubmitDirectRequest(ctx context.Context, userID string, req models.ServiceRequest, image *models.Image) (*models.Ack, error) {
	return s.direct(req)
}

func (s *stubService) RespondToDirectRequest(ctx context.Context, userID, requestID string, action models.DirectAction) (*models.DirectResponse, error) {
	return s.respond(requestID, action)
}

func router(svc negotiation.Service) *gin.Engine {
	hb := NewHandlerBundle(NewMeetingHandler(svc), NewRequestHandler(svc), HealthHandler)
	r := gin.New()
	api := r.Group("/api", middleware.JWTAuthMiddleware())
	api.GET("/meetings", hb.ListMeetingsHandler)
	api.GET("/meetings/:requestID/windows/:index/slots", hb.GetSlotsHandler)
	api.POST("/meetings/:requestID/decision", hb.DecideHandler)
	api.POST("/inbox/:requestID/respond", hb.RespondToRequestHandler)
	api.POST("/requests/match", hb.MatchHandler)
	api.PUT("/requests/sessions/:sessionID/rank", hb.RankHandler)
	api.POST("/requests/direct", hb.DirectRequestHandler)
	return r
}

func call(t *testing.T, r *gin.Engine, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	token, err := utils.GenerateToken("user-1", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestDecide_BindsDecision(t *testing.T) {
	var got models.Decision
	svc := &stubService{decide: func(userID, meetingID string, d models.Decision) (*models.DecisionResult, error) {
		assert.Equal(t, "user-1", userID)
		assert.Equal(t, "m-1", meetingID)
		got = d
		return &models.DecisionResult{Ack: models.Ack{Status: "success"}}, nil
	}}

	body := `{"action":"approve","window_index":1,"slot":{"startTime":"2024-06-10T09:15:00Z","endTime":"2024-06-10T09:30:00Z"}}`
	w := call(t, router(svc), http.MethodPost, "/api/meetings/m-1/decision", "application/json", []byte(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, models.ActionApprove, got.Action)
	require.NotNil(t, got.WindowIndex)
	assert.Equal(t, 1, *got.WindowIndex)
	require.NotNil(t, got.Slot)
	assert.Equal(t, 9, got.Slot.Start.Hour())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{negotiation.NewValidationError("bad slot"), http.StatusBadRequest, "validation"},
		{negotiation.NewPreconditionError("not waiting"), http.StatusConflict, "precondition"},
		{negotiation.NewInFlightError("m-1"), http.StatusConflict, "in_flight"},
		{negotiation.NewNotFoundError("gone"), http.StatusNotFound, "not_found"},
		{&gateway.Error{Kind: gateway.KindNetwork, Endpoint: "video/handle-meeting-request"}, http.StatusBadGateway, "gateway_network"},
		{&gateway.Error{Kind: gateway.KindServerRejected, Message: "Meeting already handled"}, http.StatusUnprocessableEntity, "gateway_server_rejected"},
		{&gateway.Error{Kind: gateway.KindMalformed}, http.StatusBadGateway, "gateway_malformed"},
		{&payment.Error{Kind: payment.KindInvalid, Message: "card expired"}, http.StatusBadRequest, payment.KindInvalid},
		{&payment.Error{Kind: payment.KindUnavailable}, http.StatusBadGateway, payment.KindUnavailable},
		{assert.AnError, http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		svc := &stubService{decide: func(string, string, models.Decision) (*models.DecisionResult, error) {
			return nil, tt.err
		}}
		w := call(t, router(svc), http.MethodPost, "/api/meetings/m-1/decision", "application/json", []byte(`{"action":"reject"}`))
		assert.Equal(t, tt.status, w.Code, tt.err.Error())
		assert.Equal(t, tt.code, errorCode(t, w))
	}
}

func TestServerRejectionMessageIsSurfaced(t *testing.T) {
	svc := &stubService{decide: func(string, string, models.Decision) (*models.DecisionResult, error) {
		return nil, &gateway.Error{Kind: gateway.KindServerRejected, Message: "Meeting already handled"}
	}}
	w := call(t, router(svc), http.MethodPost, "/api/meetings/m-1/decision", "application/json", []byte(`{"action":"reject"}`))
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Meeting already handled", body.Message)
}

func TestListMeetings_RoleQuery(t *testing.T) {
	var role models.Role
	svc := &stubService{list: func(userID string, r models.Role) (*models.MeetingList, error) {
		role = r
		return &models.MeetingList{Role: r}, nil
	}}
	r := router(svc)

	w := call(t, r, http.MethodGet, "/api/meetings", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleProfessional, role)

	call(t, r, http.MethodGet, "/api/meetings?as=requester", "", nil)
	assert.Equal(t, models.RoleRequester, role)
}

func TestGetSlots(t *testing.T) {
	svc := &stubService{slots: func(meetingID string, index int) ([]models.Slot, error) {
		assert.Equal(t, 2, index)
		return []models.Slot{}, nil
	}}
	r := router(svc)
	assert.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/api/meetings/m-1/windows/2/slots", "", nil).Code)

	w := call(t, r, http.MethodGet, "/api/meetings/m-1/windows/two/slots", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatch_Multipart(t *testing.T) {
	var gotReq models.ServiceRequest
	var gotImage *models.Image
	svc := &stubService{submit: func(req models.ServiceRequest, image *models.Image) (*models.MatchResult, error) {
		gotReq, gotImage = req, image
		return &models.MatchResult{SessionID: "s-1"}, nil
	}}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("data", `{"service_type":"plumbing","city":"Austin","state":"TX","description":"Leak","availability_slots":[]}`))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="sink.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte{0xff, 0xd8})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := call(t, router(svc), http.MethodPost, "/api/requests/match", mw.FormDataContentType(), buf.Bytes())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "plumbing", gotReq.ServiceType)
	require.NotNil(t, gotImage)
	assert.Equal(t, "sink.jpg", gotImage.Filename)
	assert.Equal(t, "image/jpeg", gotImage.ContentType)
	assert.Equal(t, []byte{0xff, 0xd8}, gotImage.Data)
}

func TestMatch_JSONWithoutImage(t *testing.T) {
	svc := &stubService{submit: func(req models.ServiceRequest, image *models.Image) (*models.MatchResult, error) {
		assert.Nil(t, image)
		return &models.MatchResult{SessionID: "s-1"}, nil
	}}
	w := call(t, router(svc), http.MethodPost, "/api/requests/match", "application/json", []byte(`{"service_type":"roofing"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(t, router(svc), http.MethodPost, "/api/requests/match", "application/json", []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatch_ImageErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{&storage.Error{Kind: storage.KindInvalid, Message: `unsupported content type "application/pdf"`}, http.StatusBadRequest, storage.KindInvalid},
		{&storage.Error{Kind: storage.KindInvalid, Message: "empty upload", Err: storage.ErrEmptyImage}, http.StatusBadRequest, storage.KindInvalid},
		{&storage.Error{Kind: storage.KindUnavailable, Message: "failed to upload image", Err: assert.AnError}, http.StatusBadGateway, storage.KindUnavailable},
	}
	for _, tt := range tests {
		svc := &stubService{submit: func(models.ServiceRequest, *models.Image) (*models.MatchResult, error) {
			return nil, fmt.Errorf("failed to upload request image: %w", tt.err)
		}}
		w := call(t, router(svc), http.MethodPost, "/api/requests/match", "application/json", []byte(`{"service_type":"roofing"}`))
		assert.Equal(t, tt.status, w.Code, tt.err.Error())
		assert.Equal(t, tt.code, errorCode(t, w))
	}
}

func TestRankCandidate(t *testing.T) {
	svc := &stubService{toggle: func(sessionID, id string, priority int) (*models.RankingSession, error) {
		assert.Equal(t, "s-1", sessionID)
		return &models.RankingSession{
			SessionID: sessionID,
			Selection: models.NewRankedSelection(map[string]int{id: priority}),
		}, nil
	}}
	w := call(t, router(svc), http.MethodPut, "/api/requests/sessions/s-1/rank", "application/json", []byte(`{"professional_id":"pro-1","priority":2}`))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Selection map[string]int          `json:"selection"`
		Ordered   []models.RankedCandidate `json:"ordered"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]int{"pro-1": 2}, resp.Selection)
	assert.Equal(t, []models.RankedCandidate{{ProfessionalID: "pro-1", Priority: 2}}, resp.Ordered)
}

func TestRespondToRequest(t *testing.T) {
	svc := &stubService{respond: func(requestID string, action models.DirectAction) (*models.DirectResponse, error) {
		return &models.DirectResponse{RequestID: requestID, InboxStatus: models.InboxAccepted}, nil
	}}
	r := router(svc)
	w := call(t, r, http.MethodPost, "/api/inbox/r-1/respond", "application/json", []byte(`{"action":"accept"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(t, r, http.MethodPost, "/api/inbox/r-1/respond", "application/json", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDirectRequest_PaymentFailure(t *testing.T) {
	svc := &stubService{direct: func(req models.ServiceRequest) (*models.Ack, error) {
		assert.Equal(t, "pm_1", req.PaymentMethodID)
		return nil, &payment.Error{Kind: payment.KindInvalid, Message: "No such PaymentMethod"}
	}}
	w := call(t, router(svc), http.MethodPost, "/api/requests/direct", "application/json", []byte(`{"payment_method_id":"pm_1"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, payment.KindInvalid, errorCode(t, w))
}

func TestUnauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/meetings", nil)
	w := httptest.NewRecorder()
	router(&stubService{}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
