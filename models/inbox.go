package models

import "time"

// InboxRequest is a direct request addressed to a single professional.
type InboxRequest struct {
	RequestID   string       `json:"request_id"`
	Timestamp   time.Time    `json:"timestamp"`
	ServiceType string       `json:"service_type"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Description string       `json:"description"`
	Windows     []TimeWindow `json:"availability_slots"`
	ClientID    string       `json:"client_id"`
	ClientName  string       `json:"client_name,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	RawStatus   string       `json:"raw_status"`
	Status      InboxStatus  `json:"status"`
	Priority    int          `json:"priority,omitempty"`
}

type InboxSnapshot struct {
	Total    int            `json:"total_requests"`
	Requests []InboxRequest `json:"requests"`
}

type InboxList struct {
	Total    int                            `json:"total"`
	Requests []InboxRequest                 `json:"requests"`
	Buckets  map[InboxStatus][]InboxRequest `json:"buckets"`
}
