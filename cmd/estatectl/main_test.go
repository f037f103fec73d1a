package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"estatepro/models"
	"estatepro/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSlotsCommand(t *testing.T) {
	out, err := run(t, "slots", "--start", "2024-06-10T09:00:00Z", "--end", "2024-06-10T09:50:00Z")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, out)
	assert.Contains(t, lines[1], "2024-06-10T09:00:00Z")
	assert.Contains(t, lines[3], "2024-06-10T09:45:00Z")

	_, err = run(t, "slots", "--start", "2024-06-10T10:00:00Z", "--end", "2024-06-10T09:00:00Z")
	assert.Error(t, err)
}

func TestWindowsCommand(t *testing.T) {
	out, err := run(t, "windows",
		"--add", "2024-06-10T09:00:00Z,2024-06-10T10:00:00Z",
		"--add", "2024-06-11T14:00:00Z,2024-06-11T14:30:00Z",
		"--add", "2024-06-12T08:00:00Z,2024-06-12T09:00:00Z",
		"--remove", "1")
	require.NoError(t, err)

	var body map[string][]models.TimeWindow
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	ws := body["availability_slots"]
	require.Len(t, ws, 2)
	assert.Equal(t, "2024-06-10", ws[0].Date)
	assert.Equal(t, "2024-06-12", ws[1].Date)

	_, err = run(t, "windows", "--add", "2024-06-10T10:00:00Z,2024-06-10T09:00:00Z")
	assert.ErrorIs(t, err, models.ErrInvalidWindow)

	_, err = run(t, "windows", "--add", "2024-06-10T09:00:00Z,2024-06-10T10:00:00Z", "--remove", "3")
	assert.ErrorContains(t, err, "out of range")
}

func TestClassifyCommand(t *testing.T) {
	out, err := run(t, "classify", "Waiting", "new", "deny")
	require.NoError(t, err)
	assert.Regexp(t, `Waiting\s+waiting\s+other`, out)
	assert.Regexp(t, `new\s+other\s+new`, out)
	assert.Regexp(t, `deny\s+rejected\s+other`, out)
}

func TestTokenCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := run(t, "token", "pro-7")
	require.NoError(t, err)

	id, err := utils.ExtractIDFromToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "pro-7", id)
}

func TestGatewayCommandsNeedUser(t *testing.T) {
	userID = ""
	_, err := run(t, "meetings")
	assert.ErrorContains(t, err, "--user")
}
