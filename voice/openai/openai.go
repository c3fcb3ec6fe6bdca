// Package openai provides a voice.Transcriber implementation using the
// OpenAI audio transcription API.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/entitydesk/voice"
)

// Options configure the transcription adapter.
type Options struct {
	Model string
	// Language hints the spoken language (ISO-639-1), improving accuracy on
	// short voice notes. Empty lets the model detect it.
	Language string
}

// Transcriber fetches audio via the transport's Fetcher and runs it through
// the OpenAI transcription endpoint.
type Transcriber struct {
	client  *openai.Client
	fetcher voice.Fetcher
	opts    Options
}

// New creates a transcriber using the official client (API key taken from
// the environment).
func New(fetcher voice.Fetcher, optFns ...func(o *Options)) *Transcriber {
	client := openai.NewClient()
	return NewFromClient(&client, fetcher, optFns...)
}

// NewFromClient creates a transcriber from an existing client.
func NewFromClient(client *openai.Client, fetcher voice.Fetcher, optFns ...func(o *Options)) *Transcriber {
	opts := Options{Model: openai.AudioModelWhisper1}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Transcriber{client: client, fetcher: fetcher, opts: opts}
}

// Transcribe implements voice.Transcriber.
func (t *Transcriber) Transcribe(ctx context.Context, audioRef string) (string, error) {
	data, name, err := t.fetcher.Fetch(ctx, audioRef)
	if err != nil {
		return "", fmt.Errorf("fetch audio %s: %w", audioRef, err)
	}
	defer data.Close()

	params := openai.AudioTranscriptionNewParams{
		Model: t.opts.Model,
		File:  openai.File(data, name, "application/octet-stream"),
	}
	if t.opts.Language != "" {
		params.Language = openai.String(t.opts.Language)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcription api error: %w", err)
	}
	return resp.Text, nil
}
