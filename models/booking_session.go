package models

import "time"

// RankingSession holds context between matching and scheduling. It belongs
// to a single requester and is dropped once its selection is submitted.
type RankingSession struct {
	SessionID   string                  `json:"sessionId"`
	RequesterID string                  `json:"requesterId"`
	Request     ServiceRequest          `json:"request"`
	Candidates  []ProfessionalCandidate `json:"candidates"`
	Selection   RankedSelection         `json:"selection"`
	CreatedAt   time.Time               `json:"createdAt"`
}

// HasCandidate reports whether id was returned by the matcher for this session.
func (s RankingSession) HasCandidate(id string) bool {
	for _, c := range s.Candidates {
		if c.ID == id {
			return true
		}
	}
	return false
}

type RankingResponse struct {
	SessionID  string                  `json:"sessionId,omitempty"`
	Candidates []ProfessionalCandidate `json:"candidates,omitempty"`
	Selection  RankedSelection         `json:"selection"`
	Ordered    []RankedCandidate       `json:"ordered,omitempty"`
}
