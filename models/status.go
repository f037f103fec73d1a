package models

// CanonicalStatus is the normalized lifecycle state of a meeting. Raw
// status strings from the gateway are only ever turned into one of these
// by the negotiation classifier.
type CanonicalStatus string

const (
	StatusNew       CanonicalStatus = "new"
	StatusWaiting   CanonicalStatus = "waiting"
	StatusApproved  CanonicalStatus = "approved"
	StatusRejected  CanonicalStatus = "rejected"
	StatusCompleted CanonicalStatus = "completed"
	StatusCancelled CanonicalStatus = "cancelled"
	StatusOther     CanonicalStatus = "other"
)

// LifecycleBuckets lists the groups a meeting list is bucketed into, in
// display order.
var LifecycleBuckets = []CanonicalStatus{
	StatusWaiting,
	StatusApproved,
	StatusRejected,
	StatusCompleted,
	StatusCancelled,
	StatusOther,
}

// Actionable reports whether the professional may still approve or reject.
func (s CanonicalStatus) Actionable() bool {
	return s == StatusWaiting
}

// InboxStatus is the bucket of a direct request in the professional inbox.
// It is a separate universe from CanonicalStatus.
type InboxStatus string

const (
	InboxNew       InboxStatus = "new"
	InboxAccepted  InboxStatus = "accepted"
	InboxDeclined  InboxStatus = "declined"
	InboxCompleted InboxStatus = "completed"
	InboxPending   InboxStatus = "pending"
	InboxExpired   InboxStatus = "expired"
	InboxOther     InboxStatus = "other"
)

var InboxBuckets = []InboxStatus{
	InboxNew,
	InboxAccepted,
	InboxDeclined,
	InboxCompleted,
	InboxPending,
	InboxExpired,
	InboxOther,
}

// Actionable reports whether accept/decline should be offered.
func (s InboxStatus) Actionable() bool {
	return s == InboxNew
}
