// Package claude implements triage.Classifier on the Anthropic API. It is the
// fallback when no trained model service is configured: the model is asked for
// a zero-shot probability distribution over the fixed label sets.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/linnemanlabs/resolve/internal/triage"
)

const responseTokens = 1024

var (
	categoryLabels = []string{"Electrical", "Plumbing", "IT", "General"}
	priorityLabels = []string{"Critical", "High", "Medium", "Low"}
)

// Classifier asks Claude for category and priority distributions.
type Classifier struct {
	client anthropic.Client
	model  string
}

// New creates a Claude-backed classifier with the given API key and model name.
func New(apiKey, model string) *Classifier {
	return &Classifier{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Classify sends the complaint text to Claude and parses the returned JSON
// distributions.
func (c *Classifier) Classify(ctx context.Context, text string) (*triage.Classification, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: responseTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude call: %w", err)
	}

	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out = block.Text
		}
	}

	return parseDistributions(out)
}

// systemPrompt instructs the model to behave like a probabilistic classifier
// over the two closed label sets.
func systemPrompt() string {
	return fmt.Sprintf(`You classify campus maintenance complaints.

Given a complaint, estimate two independent probability distributions:
- "category" over exactly these labels: %s
- "priority" over exactly these labels: %s

Each distribution must sum to 1.0. Respond with a single JSON object of the
form {"category": {...}, "priority": {...}} and nothing else.`,
		strings.Join(categoryLabels, ", "),
		strings.Join(priorityLabels, ", "),
	)
}

// parseDistributions extracts the two distributions from the model's reply,
// tolerating a markdown code fence around the JSON.
func parseDistributions(text string) (*triage.Classification, error) {
	raw := strings.TrimSpace(text)
	if i := strings.Index(raw, "{"); i >= 0 {
		raw = raw[i:]
	}
	if i := strings.LastIndex(raw, "}"); i >= 0 {
		raw = raw[:i+1]
	}

	var out struct {
		Category map[string]float64 `json:"category"`
		Priority map[string]float64 `json:"priority"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse distributions: %w", err)
	}

	if len(out.Category) == 0 || len(out.Priority) == 0 {
		return nil, fmt.Errorf("claude returned empty distribution: %q", text)
	}

	return &triage.Classification{
		Category: out.Category,
		Priority: out.Priority,
	}, nil
}
