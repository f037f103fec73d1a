package models

import "time"

// Participants is either the ranked professionals of a negotiated request
// or the single professional of a direct one.
type Participants struct {
	Selection      RankedSelection `json:"selection"`
	ProfessionalID string          `json:"professionalId,omitempty"`
}

type MeetingTimestamps struct {
	Created   time.Time  `json:"created"`
	Confirmed *time.Time `json:"confirmed,omitempty"`
	Rejected  *time.Time `json:"rejected,omitempty"`
}

// Meeting is the server-tracked aggregate a ServiceRequest becomes once
// professionals are attached. CanonicalStatus is derived from RawStatus on
// every fetch and ChosenSlot is only ever set when leaving Waiting for
// Approved.
type Meeting struct {
	RequestID       string            `json:"requestId"`
	RawStatus       string            `json:"rawStatus"`
	CanonicalStatus CanonicalStatus   `json:"status"`
	ServiceType     string            `json:"serviceType,omitempty"`
	City            string            `json:"city,omitempty"`
	State           string            `json:"state,omitempty"`
	Description     string            `json:"description,omitempty"`
	RequesterID     string            `json:"requesterId,omitempty"`
	Priority        int               `json:"priority,omitempty"`
	Windows         []TimeWindow      `json:"windows"`
	ChosenSlot      *Slot             `json:"chosenSlot,omitempty"`
	Participants    Participants      `json:"participants"`
	Timestamps      MeetingTimestamps `json:"timestamps"`
}

// Clone returns a deep copy so callers can derive a new meeting without
// aliasing the original's slices or pointers.
func (m Meeting) Clone() Meeting {
	out := m
	if m.Windows != nil {
		out.Windows = append([]TimeWindow(nil), m.Windows...)
	}
	if m.ChosenSlot != nil {
		slot := *m.ChosenSlot
		out.ChosenSlot = &slot
	}
	if m.Timestamps.Confirmed != nil {
		t := *m.Timestamps.Confirmed
		out.Timestamps.Confirmed = &t
	}
	if m.Timestamps.Rejected != nil {
		t := *m.Timestamps.Rejected
		out.Timestamps.Rejected = &t
	}
	out.Participants.Selection = NewRankedSelection(m.Participants.Selection.Entries())
	return out
}

// MeetingSnapshot is one full listing as returned by the gateway. Groups is
// set only when the gateway pre-bucketed the meetings itself.
type MeetingSnapshot struct {
	Meetings []Meeting           `json:"meetings"`
	Groups   map[string][]Meeting `json:"groups,omitempty"`
}

// Role selects which side of the negotiation a listing is for.
type Role string

const (
	RoleProfessional Role = "professional"
	RoleRequester    Role = "requester"
)

func (r Role) Valid() bool {
	return r == RoleProfessional || r == RoleRequester
}

// MeetingList is a classified listing ready for display.
type MeetingList struct {
	Role     Role                          `json:"role"`
	Meetings []Meeting                     `json:"meetings"`
	Buckets  map[CanonicalStatus][]Meeting `json:"buckets"`
	InFlight []string                      `json:"inFlight"`
}
