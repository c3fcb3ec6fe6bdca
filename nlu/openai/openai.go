// Package openai provides an nlu.Classifier implementation using the OpenAI
// Chat Completions API with JSON object output.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/hupe1980/entitydesk/nlu"
)

// Options configure the OpenAI classifier adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal; extend via
// functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Classifier wraps the OpenAI Chat Completions API behind nlu.Classifier.
type Classifier struct {
	client *openai.Client
	opts   Options
}

// New creates a new OpenAI classifier using the official client (API key
// taken from the environment).
func New(optFns ...func(o *Options)) *Classifier {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a new OpenAI classifier from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Classifier {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.0,
		MaxCompletionTokens: 256,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Classifier{client: client, opts: opts}
}

// Classify sends the text plus compact context summary and decodes the JSON
// reply. Classification is a single short non-streaming call; the caller
// bounds it with a timeout context.
func (c *Classifier) Classify(ctx context.Context, text string, cctx nlu.Context) (nlu.Result, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(nlu.BuildInstructions(cctx)),
			openai.UserMessage(text),
		},
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nlu.Result{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nlu.Result{}, fmt.Errorf("no choices returned")
	}
	return nlu.DecodeResult(resp.Choices[0].Message.Content)
}

// Provider implements nlu.Classifier.
func (c *Classifier) Provider() string { return "openai" }
