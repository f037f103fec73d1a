package negotiation

import (
	"strings"
	"time"

	"estatepro/models"
)

// Raw statuses written locally after a successful transition. Each one
// classifies to the matching canonical status.
const (
	rawWaiting  = "waiting"
	rawApproved = "approved"
	rawRejected = "rejected"

	// Direct-request answers as the backend spells them.
	rawDirectAccepted = "accept"
	rawDirectDeclined = "declined"
)

// ValidateRequest checks a request before it is sent anywhere.
func ValidateRequest(req models.ServiceRequest) error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(req.ServiceType) == "" {
		missing = append(missing, "service_type")
	}
	if strings.TrimSpace(req.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(req.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(req.State) == "" {
		missing = append(missing, "state")
	}
	if len(missing) > 0 {
		return NewValidationError("missing required fields: %s", strings.Join(missing, ", "))
	}
	if len(req.Windows) == 0 {
		return NewValidationError("at least one availability window is required")
	}
	for i, w := range req.Windows {
		if err := w.Validate(); err != nil {
			return NewValidationError("availability window %d: %v", i, err)
		}
	}
	return nil
}

// Submit turns a request and its ranked professionals into a waiting meeting.
func Submit(req models.ServiceRequest, sel models.RankedSelection, at time.Time) (models.Meeting, error) {
	if err := ValidateRequest(req); err != nil {
		return models.Meeting{}, err
	}
	if sel.Len() == 0 {
		return models.Meeting{}, NewValidationError("at least one professional must be ranked")
	}
	for id, p := range sel.Entries() {
		if p < MinPriority || p > MaxPriority {
			return models.Meeting{}, NewValidationError("professional %s has priority %d outside %d..%d", id, p, MinPriority, MaxPriority)
		}
	}
	m := newWaitingMeeting(req, at)
	m.Participants.Selection = sel
	return m, nil
}

// SubmitDirect is the single-professional flow: no ranking, the backend
// assigns one professional, and a payment method must be attached.
func SubmitDirect(req models.ServiceRequest, at time.Time) (models.Meeting, error) {
	if err := ValidateRequest(req); err != nil {
		return models.Meeting{}, err
	}
	if strings.TrimSpace(req.PaymentMethodID) == "" {
		return models.Meeting{}, NewValidationError("payment_method_id is required for a direct request")
	}
	return newWaitingMeeting(req, at), nil
}

func newWaitingMeeting(req models.ServiceRequest, at time.Time) models.Meeting {
	created := req.CreatedAt
	if created.IsZero() {
		created = at
	}
	return models.Meeting{
		RequestID:       req.ID,
		RawStatus:       rawWaiting,
		CanonicalStatus: models.StatusWaiting,
		ServiceType:     req.ServiceType,
		City:            req.City,
		State:           req.State,
		Description:     req.Description,
		RequesterID:     req.RequesterID,
		Windows:         append([]models.TimeWindow(nil), req.Windows...),
		Timestamps:      models.MeetingTimestamps{Created: created},
	}
}

func requireWaiting(m models.Meeting) error {
	if status := Classify(m.RawStatus); status != models.StatusWaiting {
		return NewPreconditionError("meeting %s is %s, only waiting meetings can be decided", m.RequestID, status)
	}
	return nil
}

// ValidateApprove checks that the meeting is waiting, that window is one of
// its windows and that slot is one of window's slots.
func ValidateApprove(m models.Meeting, window models.TimeWindow, slot models.Slot) error {
	if err := requireWaiting(m); err != nil {
		return err
	}
	if !models.ContainsWindow(m.Windows, window) {
		return NewValidationError("window %s %s-%s is not one of meeting %s's windows",
			window.Date, window.Start.Format(time.Kitchen), window.End.Format(time.Kitchen), m.RequestID)
	}
	if !ContainsSlot(window, slot) {
		return NewValidationError("slot starting %s is not a %s slot of the chosen window",
			slot.Start.Format(time.RFC3339), models.SlotLength)
	}
	return nil
}

// Approve returns a copy of m moved to Approved with slot attached.
func Approve(m models.Meeting, window models.TimeWindow, slot models.Slot, at time.Time) (models.Meeting, error) {
	if err := ValidateApprove(m, window, slot); err != nil {
		return models.Meeting{}, err
	}
	out := m.Clone()
	out.RawStatus = rawApproved
	out.CanonicalStatus = models.StatusApproved
	chosen := slot
	out.ChosenSlot = &chosen
	confirmed := at
	out.Timestamps.Confirmed = &confirmed
	return out, nil
}

func ValidateReject(m models.Meeting) error {
	return requireWaiting(m)
}

// Reject returns a copy of m moved to Rejected. No slot is attached.
func Reject(m models.Meeting, at time.Time) (models.Meeting, error) {
	if err := ValidateReject(m); err != nil {
		return models.Meeting{}, err
	}
	out := m.Clone()
	out.RawStatus = rawRejected
	out.CanonicalStatus = models.StatusRejected
	rejected := at
	out.Timestamps.Rejected = &rejected
	return out, nil
}

// ValidateDecision runs the preconditions of d against m.
func ValidateDecision(m models.Meeting, d models.Decision) error {
	switch d.Action {
	case models.ActionApprove:
		if d.Window == nil || d.Slot == nil {
			return NewValidationError("approve requires a window and a slot")
		}
		return ValidateApprove(m, *d.Window, *d.Slot)
	case models.ActionReject:
		return ValidateReject(m)
	default:
		return NewValidationError("unknown action %q", d.Action)
	}
}

// ApplyDecision dispatches to Approve or Reject.
func ApplyDecision(m models.Meeting, d models.Decision, at time.Time) (models.Meeting, error) {
	if err := ValidateDecision(m, d); err != nil {
		return models.Meeting{}, err
	}
	if d.Action == models.ActionApprove {
		return Approve(m, *d.Window, *d.Slot, at)
	}
	return Reject(m, at)
}

// DirectResponseStatus is the raw status a direct request takes after the
// professional answers it.
func DirectResponseStatus(action models.DirectAction) (string, error) {
	switch action {
	case models.DirectAccept:
		return rawDirectAccepted, nil
	case models.DirectDecline:
		return rawDirectDeclined, nil
	}
	return "", NewValidationError("action must be accept or decline, got %q", action)
}
