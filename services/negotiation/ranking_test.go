package negotiation

import (
	"testing"

	"estatepro/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggle_SelectThenDeselect(t *testing.T) {
	empty := models.RankedSelection{}

	sel, err := Toggle(empty, "pro-1", 3)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"pro-1": 3}, sel.Entries())

	sel, err = Toggle(sel, "pro-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, sel.Len())
	assert.True(t, sel.Equal(empty))
}

func TestToggle_Overwrite(t *testing.T) {
	sel := models.NewRankedSelection(map[string]int{"pro-1": 3})
	out, err := Toggle(sel, "pro-1", 1)
	require.NoError(t, err)

	p, _ := out.Priority("pro-1")
	assert.Equal(t, 1, p)
	p, _ = sel.Priority("pro-1")
	assert.Equal(t, 3, p, "original selection must be unchanged")
}

func TestToggle_DoubleToggleIsIdentity(t *testing.T) {
	base := models.NewRankedSelection(map[string]int{"pro-1": 1, "pro-2": 2})

	// id absent from the selection
	once, err := Toggle(base, "pro-3", 4)
	require.NoError(t, err)
	twice, err := Toggle(once, "pro-3", 4)
	require.NoError(t, err)
	assert.True(t, twice.Equal(base))

	// id already holding the same priority
	once, err = Toggle(base, "pro-2", 2)
	require.NoError(t, err)
	twice, err = Toggle(once, "pro-2", 2)
	require.NoError(t, err)
	assert.True(t, twice.Equal(base))
}

func TestToggle_Permissive(t *testing.T) {
	sel := models.RankedSelection{}
	var err error
	for i, id := range []string{"a", "b", "c", "d", "e", "f"} {
		sel, err = Toggle(sel, id, 1+i%2)
		require.NoError(t, err)
	}
	assert.Equal(t, 6, sel.Len(), "no cap on the number of entries")
	assert.Error(t, EnforceCap(sel))
}

func TestToggle_RejectsBadInput(t *testing.T) {
	sel := models.NewRankedSelection(map[string]int{"pro-1": 2})
	for _, p := range []int{0, 6, -1} {
		out, err := Toggle(sel, "pro-1", p)
		assert.ErrorIs(t, err, ErrValidation)
		assert.True(t, out.Equal(sel))
	}
	_, err := Toggle(sel, "", 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEnforceCap(t *testing.T) {
	ok := models.NewRankedSelection(map[string]int{"a": 1, "b": 2, "c": 5})
	assert.NoError(t, EnforceCap(ok))

	shared := models.NewRankedSelection(map[string]int{"a": 1, "b": 1})
	err := EnforceCap(shared)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "share priority 1")
}
