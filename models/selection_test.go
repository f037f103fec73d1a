package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankedSelection_JSON(t *testing.T) {
	sel := NewRankedSelection(map[string]int{"pro-1": 2, "pro-2": 1})
	data, err := json.Marshal(sel)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pro-1":2,"pro-2":1}`, string(data))

	var back RankedSelection
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, sel.Equal(back))

	data, err = json.Marshal(RankedSelection{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data), "the zero value encodes as an empty object")

	for _, raw := range []string{`null`, `{}`} {
		var s RankedSelection
		require.NoError(t, json.Unmarshal([]byte(raw), &s), raw)
		assert.Equal(t, 0, s.Len(), raw)
		assert.True(t, s.Equal(RankedSelection{}), raw)
	}

	var bad RankedSelection
	assert.Error(t, json.Unmarshal([]byte(`{"pro-1":"first"}`), &bad))
}

func TestRankedSelection_Immutable(t *testing.T) {
	src := map[string]int{"pro-1": 1}
	sel := NewRankedSelection(src)
	src["pro-1"] = 5
	p, ok := sel.Priority("pro-1")
	require.True(t, ok)
	assert.Equal(t, 1, p)

	more := sel.With("pro-2", 1)
	assert.Equal(t, 1, sel.Len())
	assert.Equal(t, 2, more.Len())

	fewer := more.Without("pro-1")
	assert.Equal(t, 2, more.Len())
	_, ok = fewer.Priority("pro-1")
	assert.False(t, ok)

	entries := more.Entries()
	entries["pro-3"] = 3
	assert.Equal(t, 2, more.Len())
}

func TestRankedSelection_Ordered(t *testing.T) {
	sel := NewRankedSelection(map[string]int{"pro-b": 1, "pro-c": 3, "pro-a": 1})
	assert.Equal(t, []RankedCandidate{
		{ProfessionalID: "pro-a", Priority: 1},
		{ProfessionalID: "pro-b", Priority: 1},
		{ProfessionalID: "pro-c", Priority: 3},
	}, sel.Ordered())
}
