package negotiation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"estatepro/database/kv"
	"estatepro/models"
	"estatepro/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options tunes an Orchestrator.
type Options struct {
	// EnforceRankingCap rejects selections with more than five entries or
	// shared priorities at schedule time.
	EnforceRankingCap bool
}

// Orchestrator implements Service on top of the Scheduling Gateway.
type Orchestrator struct {
	gateway  Gateway
	state    *StateStore
	payments PaymentVerifier
	images   ImageUploader
	logger   *zap.Logger
	opts     Options
	now      func() time.Time
	newID    func() string
}

// NewOrchestrator wires the orchestrator. payments and images may be nil,
// in which case verification and upload are skipped.
func NewOrchestrator(gw Gateway, state *StateStore, payments PaymentVerifier, images ImageUploader, logger *zap.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		gateway:  gw,
		state:    state,
		payments: payments,
		images:   images,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

var _ Service = (*Orchestrator)(nil)

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return NewValidationError("user id is required")
	}
	return nil
}

// ListMeetings fetches the full listing for role, classifies it, stores it
// as the new snapshot and reports which meetings have a decision in flight.
func (o *Orchestrator) ListMeetings(ctx context.Context, userID string, role models.Role) (*models.MeetingList, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, NewValidationError("role must be %q or %q", models.RoleProfessional, models.RoleRequester)
	}

	var snap *models.MeetingSnapshot
	var err error
	if role == models.RoleProfessional {
		snap, err = o.gateway.ReadPendingMeetings(ctx, userID)
	} else {
		snap, err = o.gateway.ReadScheduledMeetings(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	meetings := ClassifyMeetings(snap.Meetings)
	local := BucketMeetings(meetings)
	buckets := local
	if snap.Groups != nil {
		buckets = BucketGroups(snap.Groups)
		if !bucketsAgree(buckets, local) {
			o.logger.Warn("gateway buckets disagree with local classification",
				zap.String("userID", userID),
				zap.String("role", string(role)))
		}
	}

	if err := o.state.ReplaceSnapshot(ctx, userID, role, meetings, o.now()); err != nil {
		return nil, fmt.Errorf("failed to store meeting snapshot: %w", err)
	}

	ids := make([]string, len(meetings))
	for i, m := range meetings {
		ids[i] = m.RequestID
	}
	inFlight, err := o.state.InFlight(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to read in-flight markers: %w", err)
	}

	return &models.MeetingList{
		Role:     role,
		Meetings: meetings,
		Buckets:  buckets,
		InFlight: inFlight,
	}, nil
}

// bucketsAgree compares bucket membership by request id.
func bucketsAgree(a, b map[models.CanonicalStatus][]models.Meeting) bool {
	for _, bucket := range models.LifecycleBuckets {
		if !sameIDs(a[bucket], b[bucket]) {
			return false
		}
	}
	return true
}

func sameIDs(a, b []models.Meeting) bool {
	if len(a) != len(b) {
		return false
	}
	ids := func(ms []models.Meeting) []string {
		out := make([]string, len(ms))
		for i, m := range ms {
			out[i] = m.RequestID
		}
		sort.Strings(out)
		return out
	}
	x, y := ids(a), ids(b)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// lookupMeeting finds a meeting in the held snapshot. When no snapshot is
// held, or the held one predates the meeting, it lists once and retries.
func (o *Orchestrator) lookupMeeting(ctx context.Context, userID string, role models.Role, meetingID string) (models.Meeting, error) {
	m, err := o.state.FindMeeting(ctx, userID, role, meetingID)
	if !errors.Is(err, kv.ErrNotFound) && !errors.Is(err, ErrNotFound) {
		return m, err
	}
	if _, err := o.ListMeetings(ctx, userID, role); err != nil {
		return models.Meeting{}, err
	}
	m, err = o.state.FindMeeting(ctx, userID, role, meetingID)
	if errors.Is(err, kv.ErrNotFound) {
		return models.Meeting{}, NewNotFoundError("meeting %s is not among your meetings", meetingID)
	}
	return m, err
}

// SlotsFor subdivides one window of a waiting meeting for the slot picker.
func (o *Orchestrator) SlotsFor(ctx context.Context, userID, meetingID string, windowIndex int) ([]models.Slot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	m, err := o.lookupMeeting(ctx, userID, models.RoleProfessional, meetingID)
	if err != nil {
		return nil, err
	}
	if err := requireWaiting(m); err != nil {
		return nil, err
	}
	if windowIndex < 0 || windowIndex >= len(m.Windows) {
		return nil, NewValidationError("meeting %s has no window %d", meetingID, windowIndex)
	}
	return Subdivide(m.Windows[windowIndex]), nil
}

// Decide approves or rejects a waiting meeting. Preconditions are checked
// before the gateway is called and a second decision on the same meeting is
// refused while the first is outstanding. On failure nothing is stored.
func (o *Orchestrator) Decide(ctx context.Context, userID, meetingID string, d models.Decision) (*models.DecisionResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	m, err := o.lookupMeeting(ctx, userID, models.RoleProfessional, meetingID)
	if err != nil {
		return nil, err
	}
	if d.Action == models.ActionApprove && d.Window == nil && d.WindowIndex != nil {
		i := *d.WindowIndex
		if i < 0 || i >= len(m.Windows) {
			return nil, NewValidationError("meeting %s has no window %d", meetingID, i)
		}
		w := m.Windows[i]
		d.Window = &w
	}
	next, err := ApplyDecision(m, d, o.now())
	if err != nil {
		utils.Decisions.WithLabelValues(string(d.Action), "invalid").Inc()
		return nil, err
	}

	acquired, err := o.state.AcquireInFlight(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark meeting in flight: %w", err)
	}
	if !acquired {
		utils.Decisions.WithLabelValues(string(d.Action), "in_flight").Inc()
		return nil, NewInFlightError(meetingID)
	}
	utils.DecisionsInFlight.Inc()
	defer func() {
		utils.DecisionsInFlight.Dec()
		if err := o.state.ReleaseInFlight(context.WithoutCancel(ctx), meetingID); err != nil {
			o.logger.Error("failed to release in-flight marker", zap.String("meetingID", meetingID), zap.Error(err))
		}
	}()

	var slot *models.Slot
	if d.Action == models.ActionApprove {
		slot = d.Slot
	}
	ack, err := o.gateway.HandleMeetingRequest(ctx, userID, meetingID, d.Action, slot)
	if err != nil {
		utils.Decisions.WithLabelValues(string(d.Action), "failed").Inc()
		return nil, err
	}

	discarded, err := o.state.ApplyDecision(context.WithoutCancel(ctx), userID, models.RoleProfessional, next)
	if err != nil {
		// The gateway already accepted the decision; the next listing will
		// carry the new status.
		o.logger.Error("failed to store decided meeting", zap.String("meetingID", meetingID), zap.Error(err))
	}
	result := "applied"
	if discarded {
		result = "discarded"
		o.logger.Info("decision response discarded for newer snapshot",
			zap.String("meetingID", meetingID),
			zap.String("action", string(d.Action)))
	}
	utils.Decisions.WithLabelValues(string(d.Action), result).Inc()

	return &models.DecisionResult{
		Ack:       *ack,
		Meeting:   next,
		Discarded: discarded,
	}, nil
}

// ListInbox fetches and buckets the professional's direct requests.
func (o *Orchestrator) ListInbox(ctx context.Context, userID string) (*models.InboxList, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	snap, err := o.gateway.ProRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	buckets := BucketInbox(snap.Requests)
	requests := make([]models.InboxRequest, len(snap.Requests))
	for i, r := range snap.Requests {
		r.Status = ClassifyInbox(r.RawStatus)
		requests[i] = r
	}
	return &models.InboxList{
		Total:    snap.Total,
		Requests: requests,
		Buckets:  buckets,
	}, nil
}

// RespondToDirectRequest accepts or declines a direct request without any
// window or slot negotiation. Only requests still in the New bucket of the
// inbox can be answered.
func (o *Orchestrator) RespondToDirectRequest(ctx context.Context, userID, requestID string, action models.DirectAction) (*models.DirectResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(requestID) == "" {
		return nil, NewValidationError("request id is required")
	}
	raw, err := DirectResponseStatus(action)
	if err != nil {
		return nil, err
	}
	snap, err := o.gateway.ProRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	current, ok := findInboxRequest(snap.Requests, requestID)
	if !ok {
		return nil, NewNotFoundError("request %s is not in your inbox", requestID)
	}
	if status := ClassifyInbox(current.RawStatus); !status.Actionable() {
		return nil, NewPreconditionError("request %s is %s, only new requests can be answered", requestID, status)
	}
	ack, err := o.gateway.RespondToRequest(ctx, userID, requestID, action)
	if err != nil {
		return nil, err
	}
	return &models.DirectResponse{
		Ack:             *ack,
		RequestID:       requestID,
		RawStatus:       raw,
		CanonicalStatus: Classify(raw),
		InboxStatus:     ClassifyInbox(raw),
	}, nil
}

func findInboxRequest(rs []models.InboxRequest, requestID string) (models.InboxRequest, bool) {
	for _, r := range rs {
		if r.RequestID == requestID {
			return r, true
		}
	}
	return models.InboxRequest{}, false
}

func (o *Orchestrator) uploadImage(ctx context.Context, req *models.ServiceRequest, image *models.Image) error {
	if image == nil || o.images == nil || req.ImageRef != "" {
		return nil
	}
	ref, err := o.images.UploadRequestImage(ctx, *image)
	if err != nil {
		return fmt.Errorf("failed to upload request image: %w", err)
	}
	req.ImageRef = ref
	return nil
}

// SubmitRequest sends the request to the matcher and opens a ranking
// session over the returned candidates.
func (o *Orchestrator) SubmitRequest(ctx context.Context, userID string, req models.ServiceRequest, image *models.Image) (*models.MatchResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	req.RequesterID = userID
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := o.uploadImage(ctx, &req, image); err != nil {
		return nil, err
	}

	result, err := o.gateway.FindPro(ctx, userID, req, image)
	if err != nil {
		return nil, err
	}

	session := models.RankingSession{
		SessionID:   o.newID(),
		RequesterID: userID,
		Request:     req,
		Candidates:  result.Candidates,
		CreatedAt:   o.now(),
	}
	if err := o.state.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store ranking session: %w", err)
	}
	utils.RankingSessions.WithLabelValues("opened").Inc()
	o.logger.Info("ranking session opened",
		zap.String("sessionID", session.SessionID),
		zap.Int("candidates", len(result.Candidates)))

	result.SessionID = session.SessionID
	return result, nil
}

// GetSession returns a ranking session owned by userID.
func (o *Orchestrator) GetSession(ctx context.Context, userID, sessionID string) (*models.RankingSession, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	session, err := o.state.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.RequesterID != userID {
		return nil, NewNotFoundError("ranking session %s not found or expired", sessionID)
	}
	return session, nil
}

// ToggleCandidate applies Toggle to the session's selection.
func (o *Orchestrator) ToggleCandidate(ctx context.Context, userID, sessionID, candidateID string, priority int) (*models.RankingSession, error) {
	session, err := o.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasCandidate(candidateID) {
		return nil, NewValidationError("professional %s was not offered in this session", candidateID)
	}
	sel, err := Toggle(session.Selection, candidateID, priority)
	if err != nil {
		return nil, err
	}
	session.Selection = sel
	if err := o.state.SaveSession(ctx, *session); err != nil {
		return nil, fmt.Errorf("failed to store ranking session: %w", err)
	}
	return session, nil
}

// ScheduleFromSession submits the session's selection and drops the
// session once the gateway accepted it.
func (o *Orchestrator) ScheduleFromSession(ctx context.Context, userID, sessionID string) (*models.Ack, error) {
	session, err := o.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	ack, err := o.ScheduleSelection(ctx, userID, session.Request, session.Selection, nil)
	if err != nil {
		return nil, err
	}
	if err := o.state.DeleteSession(ctx, sessionID); err != nil {
		o.logger.Warn("failed to delete submitted ranking session", zap.String("sessionID", sessionID), zap.Error(err))
	}
	utils.RankingSessions.WithLabelValues("scheduled").Inc()
	return ack, nil
}

// ScheduleSelection submits a request together with its ranked professionals.
func (o *Orchestrator) ScheduleSelection(ctx context.Context, userID string, req models.ServiceRequest, sel models.RankedSelection, image *models.Image) (*models.Ack, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	req.RequesterID = userID
	if _, err := Submit(req, sel, o.now()); err != nil {
		return nil, err
	}
	if o.opts.EnforceRankingCap {
		if err := EnforceCap(sel); err != nil {
			return nil, err
		}
	}
	if err := o.uploadImage(ctx, &req, image); err != nil {
		return nil, err
	}
	return o.gateway.SchedulePro(ctx, userID, req, &sel, image)
}

// SubmitDirectRequest sends a request without a ranking, carrying a
// payment method that is verified first when a verifier is configured.
func (o *Orchestrator) SubmitDirectRequest(ctx context.Context, userID string, req models.ServiceRequest, image *models.Image) (*models.Ack, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	req.RequesterID = userID
	if _, err := SubmitDirect(req, o.now()); err != nil {
		return nil, err
	}
	if o.payments != nil {
		if err := o.payments.VerifyPaymentMethod(ctx, req.PaymentMethodID); err != nil {
			return nil, err
		}
	}
	if err := o.uploadImage(ctx, &req, image); err != nil {
		return nil, err
	}
	return o.gateway.SchedulePro(ctx, userID, req, nil, image)
}
