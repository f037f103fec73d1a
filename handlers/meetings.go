package handlers

import (
	"net/http"
	"strconv"

	"estatepro/middleware"
	"estatepro/models"
	"estatepro/services/negotiation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MeetingHandler serves the professional side: negotiated meetings and the
// direct-request inbox.
type MeetingHandler struct {
	Svc negotiation.Service
}

func NewMeetingHandler(svc negotiation.Service) *MeetingHandler {
	return &MeetingHandler{Svc: svc}
}

// ListMeetings returns the caller's meetings grouped by status.
// ?as=requester lists the caller's own scheduled requests instead.
func (h *MeetingHandler) ListMeetings(c *gin.Context) {
	role := models.Role(c.DefaultQuery("as", string(models.RoleProfessional)))
	list, err := h.Svc.ListMeetings(c.Request.Context(), middleware.UserID(c), role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetSlots returns the 15-minute slots of one window of a waiting meeting.
func (h *MeetingHandler) GetSlots(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "window index must be a number", err)
		return
	}
	meetingID := c.Param("requestID")
	slots, err := h.Svc.SlotsFor(c.Request.Context(), middleware.UserID(c), meetingID, index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requestId": meetingID, "windowIndex": index, "slots": slots})
}

// Decide approves a waiting meeting with a slot or rejects it.
func (h *MeetingHandler) Decide(c *gin.Context) {
	var d models.Decision
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "invalid decision body", err)
		return
	}
	meetingID := c.Param("requestID")
	res, err := h.Svc.Decide(c.Request.Context(), middleware.UserID(c), meetingID, d)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("meeting decided",
		zap.String("meetingID", meetingID),
		zap.String("action", string(d.Action)),
		zap.Bool("discarded", res.Discarded))
	c.JSON(http.StatusOK, res)
}

// ListInbox returns the caller's direct requests grouped by inbox status.
func (h *MeetingHandler) ListInbox(c *gin.Context) {
	inbox, err := h.Svc.ListInbox(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inbox)
}

// RespondToRequest accepts or declines a direct request.
func (h *MeetingHandler) RespondToRequest(c *gin.Context) {
	var input struct {
		Action models.DirectAction `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "action is required", err)
		return
	}
	resp, err := h.Svc.RespondToDirectRequest(c.Request.Context(), middleware.UserID(c), c.Param("requestID"), input.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
