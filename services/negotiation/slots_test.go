package negotiation

import (
	"testing"
	"time"

	"estatepro/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 6, 10, hour, minute, 0, 0, time.UTC)
}

func window(t *testing.T, start, end time.Time) models.TimeWindow {
	t.Helper()
	w, err := models.NewTimeWindow(start, end)
	require.NoError(t, err)
	return w
}

func TestSubdivide_OneHour(t *testing.T) {
	w := window(t, at(9, 0), at(10, 0))
	assert.Equal(t, "2024-06-10", w.Date)

	got := Subdivide(w)
	want := []models.Slot{
		{Start: at(9, 0), End: at(9, 15)},
		{Start: at(9, 15), End: at(9, 30)},
		{Start: at(9, 30), End: at(9, 45)},
		{Start: at(9, 45), End: at(10, 0)},
	}
	assert.Equal(t, want, got)
}

func TestSubdivide_DropsRemainder(t *testing.T) {
	got := Subdivide(window(t, at(9, 0), at(9, 20)))
	assert.Equal(t, []models.Slot{{Start: at(9, 0), End: at(9, 15)}}, got)
}

func TestSubdivide_ShorterThanOneSlot(t *testing.T) {
	assert.Empty(t, Subdivide(window(t, at(9, 0), at(9, 14))))
	assert.Empty(t, Subdivide(models.TimeWindow{Start: at(9, 0), End: at(9, 0)}))
	assert.Empty(t, Subdivide(models.TimeWindow{Start: at(10, 0), End: at(9, 0)}))
}

func TestSubdivide_Properties(t *testing.T) {
	for minutes := 0; minutes <= 8*60; minutes += 7 {
		w := models.TimeWindow{Start: at(8, 0), End: at(8, 0).Add(time.Duration(minutes) * time.Minute)}
		slots := Subdivide(w)

		require.Len(t, slots, minutes/15, "window of %d minutes", minutes)
		for i, s := range slots {
			assert.True(t, s.Valid())
			assert.False(t, s.End.After(w.End))
			if i == 0 {
				assert.True(t, s.Start.Equal(w.Start))
			} else {
				assert.True(t, s.Start.Equal(slots[i-1].End), "slots must be contiguous")
			}
		}
		assert.Equal(t, slots, Subdivide(w), "second call must yield the same sequence")
	}
}

func TestContainsSlotAndSlotAt(t *testing.T) {
	w := window(t, at(9, 0), at(10, 0))

	assert.True(t, ContainsSlot(w, models.Slot{Start: at(9, 30), End: at(9, 45)}))
	assert.False(t, ContainsSlot(w, models.Slot{Start: at(9, 5), End: at(9, 20)}), "misaligned")
	assert.False(t, ContainsSlot(w, models.Slot{Start: at(10, 0), End: at(10, 15)}), "outside")
	assert.False(t, ContainsSlot(w, models.Slot{Start: at(9, 0), End: at(9, 30)}), "too long")

	s, ok := SlotAt(w, 3)
	require.True(t, ok)
	assert.Equal(t, at(9, 45), s.Start)
	_, ok = SlotAt(w, 4)
	assert.False(t, ok)
}
