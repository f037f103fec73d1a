package models

import "time"

// ServiceRequest is the requester's description of the work needed plus
// the windows during which they can take a call.
type ServiceRequest struct {
	ID              string       `json:"id,omitempty"`        // assigned by the gateway
	CreatedAt       time.Time    `json:"createdAt,omitzero"`  // assigned by the gateway
	ServiceType     string       `json:"service_type"`
	City            string       `json:"city"`
	State           string       `json:"state"`
	Description     string       `json:"description"`
	Windows         []TimeWindow `json:"availability_slots"`
	ImageRef        string       `json:"image_url,omitempty"` // opaque reference from the image pipeline
	RequesterID     string       `json:"requesterId,omitempty"`
	PaymentMethodID string       `json:"payment_method_id,omitempty"` // direct flow only
}

// Image is an uploaded request photo travelling alongside a request.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProfessionalCandidate is a professional the matcher found eligible.
type ProfessionalCandidate struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	FirstName       string   `json:"first_name,omitempty"`
	LastName        string   `json:"last_name,omitempty"`
	Rating          float64  `json:"rating"`
	ReviewCount     int      `json:"review_count"`
	SpecialtyTags   []string `json:"specialty_tags"`
	Expertise       string   `json:"expertise,omitempty"`
	ResponseTimeHrs float64  `json:"response_time_hrs"`
	CallsTaken      int      `json:"calls_taken"`
	YearsExperience int      `json:"years_experience"`
	City            string   `json:"city,omitempty"`
	State           string   `json:"state,omitempty"`
}

// MatchResult is the outcome of submitting a request to the matcher.
type MatchResult struct {
	SessionID       string                  `json:"sessionId,omitempty"`
	Candidates      []ProfessionalCandidate `json:"candidates"`
	TotalMatches    int                     `json:"total_matches"`
	RequestReceived bool                    `json:"request_received"`
}

// Ack is the gateway acknowledgement of a write operation.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
