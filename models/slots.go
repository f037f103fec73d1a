package models

import "time"

// SlotLength is the fixed granularity at which an appointment is booked.
const SlotLength = 15 * time.Minute

// Slot is a fixed-length piece of a TimeWindow offered to the professional
// when approving a meeting. Slots are derived on demand and never stored
// on their own.
type Slot struct {
	Start time.Time `json:"startTime"`
	End   time.Time `json:"endTime"`
}

func (s Slot) Equal(o Slot) bool {
	return s.Start.Equal(o.Start) && s.End.Equal(o.End)
}

// Valid reports whether the slot spans exactly SlotLength.
func (s Slot) Valid() bool {
	return s.End.Sub(s.Start) == SlotLength
}
