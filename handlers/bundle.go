package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Meeting endpoints
	ListMeetingsHandler gin.HandlerFunc
	GetSlotsHandler     gin.HandlerFunc
	DecideHandler       gin.HandlerFunc

	// Inbox endpoints
	ListInboxHandler        gin.HandlerFunc
	RespondToRequestHandler gin.HandlerFunc

	// Request endpoints
	MatchHandler         gin.HandlerFunc
	GetSessionHandler    gin.HandlerFunc
	RankHandler          gin.HandlerFunc
	ScheduleHandler      gin.HandlerFunc
	DirectRequestHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires both handler groups onto the bundle.
func NewHandlerBundle(meetings *MeetingHandler, requests *RequestHandler, health gin.HandlerFunc) *HandlerBundle {
	return &HandlerBundle{
		ListMeetingsHandler: meetings.ListMeetings,
		GetSlotsHandler:     meetings.GetSlots,
		DecideHandler:       meetings.Decide,

		ListInboxHandler:        meetings.ListInbox,
		RespondToRequestHandler: meetings.RespondToRequest,

		MatchHandler:         requests.MatchProfessionals,
		GetSessionHandler:    requests.GetSession,
		RankHandler:          requests.RankCandidate,
		ScheduleHandler:      requests.ScheduleSession,
		DirectRequestHandler: requests.DirectRequest,

		HealthHandler: health,
	}
}
