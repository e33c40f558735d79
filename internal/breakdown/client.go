// Package breakdown turns one task description into a list of smaller tasks
// by asking a text generation service for a JSON array of strings.
package breakdown

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sandeepkv93/focusflow/internal/model"
)

// Generator is the external text generation call. Implementations must ask
// the provider for a JSON array of strings and return the raw response text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

const promptTemplate = `Break the following task down into a list of small, actionable subtasks. Reply ONLY with the JSON. Task: "%s"`

func Prompt(description string) string {
	return fmt.Sprintf(promptTemplate, description)
}

// Client is safe to call from several goroutines as long as its Generator
// is.
type Client struct {
	gen Generator
}

// New returns a client backed by gen. A nil gen yields a disabled client.
func New(gen Generator) *Client {
	return &Client{gen: gen}
}

// NewFromAPIKey builds a Gemini backed client. Without a key, or when the SDK
// client cannot be built, the returned client is disabled.
func NewFromAPIKey(ctx context.Context, apiKey, modelName string) *Client {
	if strings.TrimSpace(apiKey) == "" {
		log.Printf("focusflow: no API key configured, task breakdown disabled")
		return New(nil)
	}
	gen, err := NewGeminiGenerator(ctx, apiKey, modelName)
	if err != nil {
		log.Printf("focusflow: task breakdown disabled: %v", err)
		return New(nil)
	}
	return New(gen)
}

func (c *Client) Enabled() bool {
	return c != nil && c.gen != nil
}

// BreakDown makes exactly one generation request. Every failure past the
// precondition checks is reported as model.ErrBreakdownFailed; the cause is
// logged and kept in the error chain.
func (c *Client) BreakDown(ctx context.Context, description string) ([]string, error) {
	desc, ok := model.NormalizeText(description)
	if !ok {
		return nil, model.ErrEmptyText
	}
	if !c.Enabled() {
		return nil, model.ErrNotConfigured
	}

	raw, err := c.gen.Generate(ctx, Prompt(desc))
	if err != nil {
		return nil, failed(fmt.Errorf("generate: %w", err))
	}
	items, err := Parse(raw)
	if err != nil {
		return nil, failed(err)
	}
	return items, nil
}

func failed(cause error) error {
	log.Printf("focusflow: break down task: %v", cause)
	return model.Wrap(model.ErrBreakdownFailed, cause)
}

var (
	ErrNotJSON    = errors.New("breakdown: response is not JSON")
	ErrNotArray   = errors.New("breakdown: response is not an array")
	ErrNonString  = errors.New("breakdown: array element is not a string")
	ErrNoResponse = errors.New("breakdown: empty response")
)

// Parse validates raw as a JSON array whose elements are all strings.
// Markdown code fences around the JSON are tolerated.
func Parse(raw string) ([]string, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, ErrNoResponse
	}
	var value any
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	arr, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotArray, value)
	}
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: index %d is %T", ErrNonString, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func stripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	if idx := strings.Index(cleaned, "\n"); idx >= 0 {
		cleaned = cleaned[idx+1:]
	} else {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return strings.TrimSpace(cleaned)
}
