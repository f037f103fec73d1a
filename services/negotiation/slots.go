package negotiation

import (
	"estatepro/models"
)

// Subdivide cuts a window into contiguous SlotLength slots starting at the
// window start. A trailing remainder shorter than SlotLength is dropped, so
// windows shorter than one slot yield nothing.
func Subdivide(w models.TimeWindow) []models.Slot {
	if !w.End.After(w.Start) {
		return nil
	}
	slots := make([]models.Slot, 0, int(w.Duration()/models.SlotLength))
	for cur := w.Start; !cur.Add(models.SlotLength).After(w.End); cur = cur.Add(models.SlotLength) {
		slots = append(slots, models.Slot{Start: cur, End: cur.Add(models.SlotLength)})
	}
	return slots
}

// ContainsSlot reports whether slot is one of the slots Subdivide yields
// for w.
func ContainsSlot(w models.TimeWindow, slot models.Slot) bool {
	for _, s := range Subdivide(w) {
		if s.Equal(slot) {
			return true
		}
	}
	return false
}

// SlotAt returns the i-th slot of w.
func SlotAt(w models.TimeWindow, i int) (models.Slot, bool) {
	slots := Subdivide(w)
	if i < 0 || i >= len(slots) {
		return models.Slot{}, false
	}
	return slots[i], true
}
