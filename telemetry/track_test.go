package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTracker_AppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	tr := NewFileTracker(path)

	tr.Track(EventArtifactImported, map[string]interface{}{"artifact": "review"})
	tr.Track(EventBundleImported, map[string]interface{}{"count": 3})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}
	require.Len(t, events, 2)
	assert.Equal(t, EventArtifactImported, events[0].Name)
	assert.Equal(t, "review", events[0].Properties["artifact"])
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Time.IsZero())
}

func TestFileTracker_UnwritablePathIsSwallowed(t *testing.T) {
	tr := NewFileTracker(string([]byte{0}))
	// Must not panic or error out.
	tr.Track(EventArtifactSkipped, nil)
}

func TestNop(t *testing.T) {
	Nop().Track(EventImportFailed, map[string]interface{}{"reason": "x"})
}
