package negotiation

import (
	"sort"
	"strings"

	"estatepro/models"
)

// lifecycleTable maps lower-cased raw statuses to meeting buckets. Several
// spellings are in use on the backend for the same state.
var lifecycleTable = map[string]models.CanonicalStatus{
	"waiting":   models.StatusWaiting,
	"approved":  models.StatusApproved,
	"approve":   models.StatusApproved,
	"confirmed": models.StatusApproved,
	"accept":    models.StatusApproved,
	"rejected":  models.StatusRejected,
	"reject":    models.StatusRejected,
	"declined":  models.StatusRejected,
	"deny":      models.StatusRejected,
	"completed": models.StatusCompleted,
	"cancelled": models.StatusCancelled,
}

// inboxTable is used only for direct requests. "new" is a bucket of its own
// here and "pending"/"expired" are recognised, unlike in lifecycleTable.
var inboxTable = map[string]models.InboxStatus{
	"new":       models.InboxNew,
	"accepted":  models.InboxAccepted,
	"accept":    models.InboxAccepted,
	"declined":  models.InboxDeclined,
	"completed": models.InboxCompleted,
	"pending":   models.InboxPending,
	"expired":   models.InboxExpired,
}

// Classify maps a raw meeting status to its canonical bucket. Unknown
// values, including "new", fall into StatusOther.
func Classify(raw string) models.CanonicalStatus {
	if s, ok := lifecycleTable[normalize(raw)]; ok {
		return s
	}
	return models.StatusOther
}

// ClassifyInbox maps a raw direct-request status to its inbox bucket.
func ClassifyInbox(raw string) models.InboxStatus {
	if s, ok := inboxTable[normalize(raw)]; ok {
		return s
	}
	return models.InboxOther
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ClassifyMeetings returns a copy of meetings with CanonicalStatus derived
// from RawStatus. Whatever status the input carried is ignored.
func ClassifyMeetings(meetings []models.Meeting) []models.Meeting {
	out := make([]models.Meeting, len(meetings))
	for i, m := range meetings {
		m.CanonicalStatus = Classify(m.RawStatus)
		out[i] = m
	}
	return out
}

// BucketMeetings groups classified meetings. Every bucket in
// models.LifecycleBuckets is present, possibly empty.
func BucketMeetings(meetings []models.Meeting) map[models.CanonicalStatus][]models.Meeting {
	buckets := make(map[models.CanonicalStatus][]models.Meeting, len(models.LifecycleBuckets))
	for _, b := range models.LifecycleBuckets {
		buckets[b] = []models.Meeting{}
	}
	for _, m := range meetings {
		status := Classify(m.RawStatus)
		m.CanonicalStatus = status
		buckets[status] = append(buckets[status], m)
	}
	return buckets
}

// BucketGroups folds gateway-provided groups into canonical buckets. Group
// names are classified like raw statuses so "confirmed" and "approved"
// groups land together.
func BucketGroups(groups map[string][]models.Meeting) map[models.CanonicalStatus][]models.Meeting {
	buckets := make(map[models.CanonicalStatus][]models.Meeting, len(models.LifecycleBuckets))
	for _, b := range models.LifecycleBuckets {
		buckets[b] = []models.Meeting{}
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		bucket := Classify(name)
		for _, m := range groups[name] {
			m.CanonicalStatus = Classify(m.RawStatus)
			buckets[bucket] = append(buckets[bucket], m)
		}
	}
	return buckets
}

// BucketInbox groups direct requests by inbox status.
func BucketInbox(requests []models.InboxRequest) map[models.InboxStatus][]models.InboxRequest {
	buckets := make(map[models.InboxStatus][]models.InboxRequest, len(models.InboxBuckets))
	for _, b := range models.InboxBuckets {
		buckets[b] = []models.InboxRequest{}
	}
	for _, r := range requests {
		r.Status = ClassifyInbox(r.RawStatus)
		buckets[r.Status] = append(buckets[r.Status], r)
	}
	return buckets
}
