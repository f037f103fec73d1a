package models

import (
	"errors"
	"time"
)

// DateLayout is the calendar-day format carried in TimeWindow.Date.
const DateLayout = "2006-01-02"

var ErrInvalidWindow = errors.New("window end must be after start")

// TimeWindow is a contiguous interval a requester declared as available.
// Windows are values; lists of them are rebuilt, never edited in place.
type TimeWindow struct {
	Date  string    `json:"date"`      // calendar day of Start, e.g. "2024-06-10"
	Start time.Time `json:"startTime"` // inclusive
	End   time.Time `json:"endTime"`   // exclusive
}

// NewTimeWindow builds a window and derives its date from start.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !end.After(start) {
		return TimeWindow{}, ErrInvalidWindow
	}
	return TimeWindow{
		Date:  start.Format(DateLayout),
		Start: start,
		End:   end,
	}, nil
}

// Validate reports whether the window satisfies end > start and a date
// matching the day of start.
func (w TimeWindow) Validate() error {
	if !w.End.After(w.Start) {
		return ErrInvalidWindow
	}
	if w.Date != "" && w.Date != w.Start.Format(DateLayout) {
		return errors.New("window date does not match start day")
	}
	return nil
}

func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Equal compares instants rather than time.Time representations.
func (w TimeWindow) Equal(o TimeWindow) bool {
	return w.Date == o.Date && w.Start.Equal(o.Start) && w.End.Equal(o.End)
}

// AppendWindow returns a new slice with w appended; ws is left untouched.
func AppendWindow(ws []TimeWindow, w TimeWindow) []TimeWindow {
	out := make([]TimeWindow, 0, len(ws)+1)
	out = append(out, ws...)
	return append(out, w)
}

// RemoveWindow filters out the window at index i.
func RemoveWindow(ws []TimeWindow, i int) []TimeWindow {
	out := make([]TimeWindow, 0, len(ws))
	for j, w := range ws {
		if j != i {
			out = append(out, w)
		}
	}
	return out
}

// ContainsWindow reports whether w is one of ws.
func ContainsWindow(ws []TimeWindow, w TimeWindow) bool {
	for _, candidate := range ws {
		if candidate.Equal(w) {
			return true
		}
	}
	return false
}
