package telemetry

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

// Nop returns a tracker that drops every event.
func Nop() Tracker { return nopTracker{} }

type nopTracker struct{}

func (nopTracker) Track(string, map[string]interface{}) {}

// FileTracker appends events as JSON lines to a local file.
type FileTracker struct {
	path string
	mu   sync.Mutex
}

// NewFileTracker creates a tracker writing to the given JSONL file.
func NewFileTracker(path string) *FileTracker {
	return &FileTracker{path: path}
}

// Track appends one event. Any failure is logged at debug level and
// swallowed.
func (t *FileTracker) Track(name string, properties map[string]interface{}) {
	defer recoverTrack(name)

	event := newEvent(name, properties)
	data, err := json.Marshal(event)
	if err != nil {
		log.Debug().Err(err).Str("event", name).Msg("Dropping analytics event")
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		log.Debug().Err(err).Str("event", name).Msg("Dropping analytics event")
		return
	}
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Debug().Err(err).Str("event", name).Msg("Dropping analytics event")
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Debug().Err(err).Str("event", name).Msg("Dropping analytics event")
	}
}

// HTTPTracker posts events to a collection endpoint with retries.
type HTTPTracker struct {
	endpoint string
	client   *retryablehttp.Client
}

// NewHTTPTracker creates a tracker posting to the given endpoint.
func NewHTTPTracker(endpoint string) *HTTPTracker {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &HTTPTracker{endpoint: endpoint, client: client}
}

// Track posts one event. Any failure is logged at debug level and
// swallowed.
func (t *HTTPTracker) Track(name string, properties map[string]interface{}) {
	defer recoverTrack(name)

	event := newEvent(name, properties)
	data, err := json.Marshal(event)
	if err != nil {
		log.Debug().Err(err).Str("event", name).Msg("Dropping analytics event")
		return
	}

	resp, err := t.client.Post(t.endpoint, "application/json", bytes.NewReader(data))
	if err != nil {
		log.Debug().Err(err).Str("event", name).Msg("Dropping analytics event")
		return
	}
	resp.Body.Close()
}

func newEvent(name string, properties map[string]interface{}) Event {
	return Event{
		ID:         uuid.New().String(),
		Name:       name,
		Time:       time.Now().UTC(),
		Properties: properties,
	}
}

// recoverTrack keeps analytics panics from ever reaching import logic.
func recoverTrack(name string) {
	if r := recover(); r != nil {
		log.Debug().Interface("panic", r).Str("event", name).Msg("Analytics sink panicked")
	}
}
