package models

// DecisionAction is the professional's verdict on a waiting meeting.
type DecisionAction string

const (
	ActionApprove DecisionAction = "approve"
	ActionReject  DecisionAction = "reject"
)

// Decision carries an approve or reject. Approve needs a slot and a window,
// given either directly or as an index into the meeting's windows. Both are
// ignored for reject.
type Decision struct {
	Action      DecisionAction `json:"action"`
	Window      *TimeWindow    `json:"window,omitempty"`
	WindowIndex *int           `json:"window_index,omitempty"`
	Slot        *Slot          `json:"slot,omitempty"`
}

// DecisionResult is returned once the gateway accepted a decision.
// Discarded is set when a newer snapshot moved the meeting elsewhere while
// the call was outstanding, in which case Meeting was not stored.
type DecisionResult struct {
	Ack       Ack     `json:"ack"`
	Meeting   Meeting `json:"meeting"`
	Discarded bool    `json:"discarded"`
}

// DirectAction answers a direct request from the inbox.
type DirectAction string

const (
	DirectAccept  DirectAction = "accept"
	DirectDecline DirectAction = "decline"
)

// DirectResponse is the outcome of answering a direct request.
type DirectResponse struct {
	Ack             Ack             `json:"ack"`
	RequestID       string          `json:"request_id"`
	RawStatus       string          `json:"raw_status"`
	CanonicalStatus CanonicalStatus `json:"status"`
	InboxStatus     InboxStatus     `json:"inbox_status"`
}
