package negotiation

import (
	"estatepro/models"
)

const (
	MinPriority = 1
	MaxPriority = 5

	// MaxRankedCandidates is how many professionals the requester is asked
	// to pick. Only enforced when the ranking cap is switched on.
	MaxRankedCandidates = 5
)

// Toggle sets id to priority, or removes id when it already holds that exact
// priority. sel is never modified. Neither the number of entries nor the
// uniqueness of priorities is checked here.
func Toggle(sel models.RankedSelection, id string, priority int) (models.RankedSelection, error) {
	if id == "" {
		return sel, NewValidationError("candidate id is required")
	}
	if priority < MinPriority || priority > MaxPriority {
		return sel, NewValidationError("priority must be between %d and %d, got %d", MinPriority, MaxPriority, priority)
	}
	if current, ok := sel.Priority(id); ok && current == priority {
		return sel.Without(id), nil
	}
	return sel.With(id, priority), nil
}

// EnforceCap checks the stricter rule: at most MaxRankedCandidates entries
// and no two candidates sharing a priority.
func EnforceCap(sel models.RankedSelection) error {
	if sel.Len() > MaxRankedCandidates {
		return NewValidationError("at most %d professionals may be ranked, got %d", MaxRankedCandidates, sel.Len())
	}
	seen := make(map[int]string, sel.Len())
	for _, rc := range sel.Ordered() {
		if other, dup := seen[rc.Priority]; dup {
			return NewValidationError("professionals %s and %s share priority %d", other, rc.ProfessionalID, rc.Priority)
		}
		seen[rc.Priority] = rc.ProfessionalID
	}
	return nil
}
