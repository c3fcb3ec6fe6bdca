// Package anthropic provides an nlu.Classifier implementation using the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/entitydesk/nlu"
)

// Options configure the Anthropic classifier adapter (model id, max tokens,
// API key). Extend via functional options to preserve stability.
type Options struct {
	Model     anthropic.Model
	MaxTokens int64
	APIKey    string
}

// Classifier wraps the Anthropic Messages API behind nlu.Classifier.
type Classifier struct {
	client *anthropic.Client
	opts   Options
}

// New creates a new Anthropic classifier using the official client.
func New(optFns ...func(o *Options)) *Classifier {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Haiku20241022,
		MaxTokens: 256,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Classifier{client: &client, opts: opts}
}

// NewFromClient creates a new Anthropic classifier from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Classifier {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Haiku20241022,
		MaxTokens: 256,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{client: client, opts: opts}
}

// Classify sends the text plus compact context summary and decodes the JSON
// reply from the first text block.
func (c *Classifier) Classify(ctx context.Context, text string, cctx nlu.Context) (nlu.Result, error) {
	params := anthropic.MessageNewParams{
		Model:     c.opts.Model,
		MaxTokens: c.opts.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: nlu.BuildInstructions(cctx)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nlu.Result{}, fmt.Errorf("anthropic api error: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return nlu.Result{}, fmt.Errorf("no text content returned")
	}
	return nlu.DecodeResult(b.String())
}

// Provider implements nlu.Classifier.
func (c *Classifier) Provider() string { return "anthropic" }
