// Package voice turns an inbound audio attachment into text before the
// pipeline runs. The bridge is optional: when no transcriber is configured,
// audio events are answered with a hint to use text instead.
package voice

import (
	"context"
	"io"
	"sync"
)

// Transcriber converts the audio behind an opaque media reference into text.
// Implementations must respect ctx cancellation.
type Transcriber interface {
	Transcribe(ctx context.Context, audioRef string) (string, error)
}

// Fetcher retrieves the raw audio bytes behind a media reference. It is
// provided by the transport collaborator, which knows how to dereference its
// own media handles. The returned name carries the filename (with extension)
// expected by speech-to-text APIs.
type Fetcher interface {
	Fetch(ctx context.Context, audioRef string) (data io.ReadCloser, name string, err error)
}

// MockTranscriber maps audio references to canned transcripts, for tests.
type MockTranscriber struct {
	mu          sync.Mutex
	transcripts map[string]string
	// Err, when set, is returned for every call.
	Err error
}

// NewMockTranscriber returns an empty mock.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{transcripts: map[string]string{}}
}

// Script registers a transcript for the given reference.
func (m *MockTranscriber) Script(audioRef, text string) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transcripts[audioRef] = text
	return m
}

// Transcribe implements Transcriber.
func (m *MockTranscriber) Transcribe(_ context.Context, audioRef string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.transcripts[audioRef], nil
}
