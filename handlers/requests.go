package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"estatepro/middleware"
	"estatepro/models"
	"estatepro/services/negotiation"
	"estatepro/services/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestHandler serves the requester side: matching, ranking and
// scheduling, plus direct requests.
type RequestHandler struct {
	Svc negotiation.Service
}

func NewRequestHandler(svc negotiation.Service) *RequestHandler {
	return &RequestHandler{Svc: svc}
}

// bindRequest reads a ServiceRequest either as a JSON body or as a
// multipart form with the request JSON in "data" and an optional "image".
func bindRequest(c *gin.Context) (models.ServiceRequest, *models.Image, error) {
	var req models.ServiceRequest
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, nil, err
		}
		return req, nil, nil
	}

	data := c.PostForm("data")
	if data == "" {
		return req, nil, fmt.Errorf("multipart field \"data\" is required")
	}
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return req, nil, fmt.Errorf("invalid request data: %w", err)
	}

	fh, err := c.FormFile("image")
	if err == http.ErrMissingFile {
		return req, nil, nil
	}
	if err != nil {
		return req, nil, err
	}
	if fh.Size > storage.MaxImageBytes {
		return req, nil, fmt.Errorf("image exceeds %d bytes", storage.MaxImageBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return req, nil, err
	}
	defer f.Close()
	body, err := io.ReadAll(io.LimitReader(f, storage.MaxImageBytes+1))
	if err != nil {
		return req, nil, err
	}
	return req, &models.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        body,
	}, nil
}

// MatchProfessionals submits a request and opens a ranking session.
func (h *RequestHandler) MatchProfessionals(c *gin.Context) {
	req, image, err := bindRequest(c)
	if err != nil {
		badRequest(c, "invalid service request", err)
		return
	}
	result, err := h.Svc.SubmitRequest(c.Request.Context(), middleware.UserID(c), req, image)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("professionals matched",
		zap.String("sessionID", result.SessionID),
		zap.Int("candidates", len(result.Candidates)))
	c.JSON(http.StatusOK, result)
}

func rankingResponse(s *models.RankingSession) models.RankingResponse {
	return models.RankingResponse{
		SessionID:  s.SessionID,
		Candidates: s.Candidates,
		Selection:  s.Selection,
		Ordered:    s.Selection.Ordered(),
	}
}

// GetSession returns a ranking session with its current selection.
func (h *RequestHandler) GetSession(c *gin.Context) {
	session, err := h.Svc.GetSession(c.Request.Context(), middleware.UserID(c), c.Param("sessionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rankingResponse(session))
}

// RankCandidate toggles one professional's priority in the session.
func (h *RequestHandler) RankCandidate(c *gin.Context) {
	var input models.RankedCandidate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid ranking body", err)
		return
	}
	session, err := h.Svc.ToggleCandidate(c.Request.Context(), middleware.UserID(c), c.Param("sessionID"), input.ProfessionalID, input.Priority)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rankingResponse(session))
}

// ScheduleSession submits the session's ranked professionals.
func (h *RequestHandler) ScheduleSession(c *gin.Context) {
	ack, err := h.Svc.ScheduleFromSession(c.Request.Context(), middleware.UserID(c), c.Param("sessionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

// DirectRequest sends a request to a single backend-assigned professional.
func (h *RequestHandler) DirectRequest(c *gin.Context) {
	req, image, err := bindRequest(c)
	if err != nil {
		badRequest(c, "invalid service request", err)
		return
	}
	ack, err := h.Svc.SubmitDirectRequest(c.Request.Context(), middleware.UserID(c), req, image)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}
