package negotiation

import (
	"context"

	"estatepro/models"
)

// Gateway is the Scheduling Gateway as the orchestrator needs it.
// *gateway.Client satisfies it.
type Gateway interface {
	FindPro(ctx context.Context, userID string, req models.ServiceRequest, image *models.Image) (*models.MatchResult, error)
	SchedulePro(ctx context.Context, userID string, req models.ServiceRequest, sel *models.RankedSelection, image *models.Image) (*models.Ack, error)
	ReadPendingMeetings(ctx context.Context, userID string) (*models.MeetingSnapshot, error)
	ReadScheduledMeetings(ctx context.Context, userID string) (*models.MeetingSnapshot, error)
	HandleMeetingRequest(ctx context.Context, userID, meetingID string, action models.DecisionAction, slot *models.Slot) (*models.Ack, error)
	RespondToRequest(ctx context.Context, userID, requestID string, action models.DirectAction) (*models.Ack, error)
	ProRequests(ctx context.Context, userID string) (*models.InboxSnapshot, error)
}

// PaymentVerifier checks that a payment method can be charged before a
// direct request is sent.
type PaymentVerifier interface {
	VerifyPaymentMethod(ctx context.Context, paymentMethodID string) error
}

// ImageUploader stores a request photo and returns an opaque reference.
type ImageUploader interface {
	UploadRequestImage(ctx context.Context, image models.Image) (string, error)
}

// Service is what the HTTP and CLI layers drive.
type Service interface {
	ListMeetings(ctx context.Context, userID string, role models.Role) (*models.MeetingList, error)
	SlotsFor(ctx context.Context, userID, meetingID string, windowIndex int) ([]models.Slot, error)
	Decide(ctx context.Context, userID, meetingID string, d models.Decision) (*models.DecisionResult, error)

	ListInbox(ctx context.Context, userID string) (*models.InboxList, error)
	RespondToDirectRequest(ctx context.Context, userID, requestID string, action models.DirectAction) (*models.DirectResponse, error)

	SubmitRequest(ctx context.Context, userID string, req models.ServiceRequest, image *models.Image) (*models.MatchResult, error)
	GetSession(ctx context.Context, userID, sessionID string) (*models.RankingSession, error)
	ToggleCandidate(ctx context.Context, userID, sessionID, candidateID string, priority int) (*models.RankingSession, error)
	ScheduleFromSession(ctx context.Context, userID, sessionID string) (*models.Ack, error)
	ScheduleSelection(ctx context.Context, userID string, req models.ServiceRequest, sel models.RankedSelection, image *models.Image) (*models.Ack, error)
	SubmitDirectRequest(ctx context.Context, userID string, req models.ServiceRequest, image *models.Image) (*models.Ack, error)
}
