package models

import (
	"encoding/json"
	"sort"
)

// RankedSelection maps a candidate id to the priority (1..5) the requester
// gave it. The zero value is an empty selection. Values are immutable: every
// change produces a new RankedSelection.
type RankedSelection struct {
	entries map[string]int
}

// NewRankedSelection copies m into a new selection.
func NewRankedSelection(m map[string]int) RankedSelection {
	if len(m) == 0 {
		return RankedSelection{}
	}
	entries := make(map[string]int, len(m))
	for id, p := range m {
		entries[id] = p
	}
	return RankedSelection{entries: entries}
}

func (s RankedSelection) Len() int {
	return len(s.entries)
}

func (s RankedSelection) Priority(id string) (int, bool) {
	p, ok := s.entries[id]
	return p, ok
}

// Entries returns a copy of the underlying mapping.
func (s RankedSelection) Entries() map[string]int {
	out := make(map[string]int, len(s.entries))
	for id, p := range s.entries {
		out[id] = p
	}
	return out
}

// With returns a copy of s with id set to priority.
func (s RankedSelection) With(id string, priority int) RankedSelection {
	out := s.Entries()
	out[id] = priority
	return RankedSelection{entries: out}
}

// Without returns a copy of s with id removed.
func (s RankedSelection) Without(id string) RankedSelection {
	out := s.Entries()
	delete(out, id)
	if len(out) == 0 {
		return RankedSelection{}
	}
	return RankedSelection{entries: out}
}

func (s RankedSelection) Equal(o RankedSelection) bool {
	if len(s.entries) != len(o.entries) {
		return false
	}
	for id, p := range s.entries {
		if q, ok := o.entries[id]; !ok || q != p {
			return false
		}
	}
	return true
}

// RankedCandidate is one entry of a selection in submission order.
type RankedCandidate struct {
	ProfessionalID string `json:"professional_id"`
	Priority       int    `json:"priority"`
}

// Ordered returns the entries sorted by priority, then id.
func (s RankedSelection) Ordered() []RankedCandidate {
	out := make([]RankedCandidate, 0, len(s.entries))
	for id, p := range s.entries {
		out = append(out, RankedCandidate{ProfessionalID: id, Priority: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority == out[j].Priority {
			return out[i].ProfessionalID < out[j].ProfessionalID
		}
		return out[i].Priority < out[j].Priority
	})
	return out
}

func (s RankedSelection) MarshalJSON() ([]byte, error) {
	if s.entries == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.entries)
}

func (s *RankedSelection) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*s = NewRankedSelection(m)
	return nil
}
