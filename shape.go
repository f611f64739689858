package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// The shaper turns a normalized payload into the outbound text envelope:
// lists are truncated to the caller's bound (default 10), pagination is
// attached when upstream reported a cursor, and when a save directory is
// given the full untruncated payload is persisted as pretty-printed JSON
// with a note naming the path appended to the text. Persistence failures
// are reported in the note, never as call failures.

const defaultMaxItems = 10

type shapeOptions struct {
	operation  string
	maxItems   int // 0 means defaultMaxItems for lists
	saveDir    string
	pagination *Pagination
}

// truncate keeps the first n elements, preserving order.
func truncate[T any](items []T, n int) []T {
	if n >= len(items) {
		return items
	}
	return items[:n]
}

// shapeList builds the text envelope for a list-returning operation.
func shapeList[T any](opts shapeOptions, items []T) (string, error) {
	n := opts.maxItems
	if n <= 0 {
		n = defaultMaxItems
	}
	preview := Envelope{Data: truncate(items, n), Pagination: opts.pagination}
	text, err := encodeEnvelope(preview)
	if err != nil {
		return "", err
	}
	if opts.saveDir != "" {
		full := Envelope{Data: items, Pagination: opts.pagination}
		text += saveNote(opts, full)
	}
	return text, nil
}

// shapeEntity builds the text envelope for a single-entity operation.
// No truncation applies.
func shapeEntity(opts shapeOptions, entity interface{}) (string, error) {
	env := Envelope{Data: entity, Pagination: opts.pagination}
	text, err := encodeEnvelope(env)
	if err != nil {
		return "", err
	}
	if opts.saveDir != "" {
		text += saveNote(opts, env)
	}
	return text, nil
}

// encodeEnvelope serializes the envelope to YAML, a compact but still
// human-inspectable encoding for the calling agent.
func encodeEnvelope(env Envelope) (string, error) {
	data, err := yaml.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode envelope: %w", err)
	}
	return string(data), nil
}

// saveNote persists the full payload and returns the trailing note for the
// response text. Errors are folded into the note.
func saveNote(opts shapeOptions, payload Envelope) string {
	path, err := savePayload(opts.saveDir, opts.operation, payload)
	if err != nil {
		GetLogger().Warn("persistence failed for %s: %v", opts.operation, err)
		return fmt.Sprintf("\nFailed to save full payload: %v\n", err)
	}
	return fmt.Sprintf("\nFull payload saved to: %s\n", path)
}

// savePayload writes the payload as pretty-printed JSON to
// {operation}_{timestamp}.json inside dir, creating the directory as
// needed. A directory-level flock serializes writers so two server
// processes sharing a save directory within the same second don't race
// on the same filename.
func savePayload(dir, operation string, payload Envelope) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create save directory: %w", err)
	}

	fileLock := flock.New(filepath.Join(dir, ".save.lock"))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	locked, err := fileLock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return "", fmt.Errorf("acquire save lock: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("save directory is locked by another process")
	}
	defer fileLock.Unlock()

	name := fmt.Sprintf("%s_%s.json", operation, filenameTimestamp(time.Now()))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write payload: %w", err)
	}
	return path, nil
}

// filenameTimestamp renders an ISO timestamp with the characters that are
// unfriendly to filesystems (colons, dots) replaced.
func filenameTimestamp(t time.Time) string {
	s := t.UTC().Format("2006-01-02T15:04:05.000Z")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, ".", "-")
	return s
}
