package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"planbuddy/internal/timeutil"
)

// Completer is the single operation a text-completion provider exposes.
// Implementations may fail for any reason (network, timeout, quota); the
// strategy converts every failure into "try the next strategy".
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GenerativeStrategy asks an external model to produce the event as strict
// JSON. One call per attempt, no retries.
type GenerativeStrategy struct {
	name      string
	completer Completer
}

// NewGenerativeStrategy wraps a completer as an extraction strategy. The
// name identifies the provider in logs.
func NewGenerativeStrategy(name string, completer Completer) *GenerativeStrategy {
	return &GenerativeStrategy{name: name, completer: completer}
}

func (s *GenerativeStrategy) Name() string { return s.name }

// Attempt runs one completion and parses the response. Errors never escape
// past the strategy boundary; the pipeline treats them as fallthrough.
func (s *GenerativeStrategy) Attempt(ctx context.Context, req Request) (Event, error) {
	raw, err := s.completer.Complete(ctx, buildPrompt(req))
	if err != nil {
		return Event{}, fmt.Errorf("completion failed: %w", err)
	}

	payload := extractJSON(raw)
	if payload == "" {
		return Event{}, fmt.Errorf("no JSON object in response")
	}

	var parsed eventPayload
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return Event{}, fmt.Errorf("failed to parse event JSON: %w", err)
	}

	return parsed.toEvent(req)
}

// eventPayload is the wire shape the model is instructed to emit.
type eventPayload struct {
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (p eventPayload) toEvent(req Request) (Event, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return Event{}, fmt.Errorf("missing title")
	}
	if strings.TrimSpace(p.Start) == "" {
		return Event{}, fmt.Errorf("missing start")
	}
	if strings.TrimSpace(p.End) == "" {
		return Event{}, fmt.Errorf("missing end")
	}

	start, _, err := timeutil.ParseDateTime(p.Start, req.Timezone)
	if err != nil {
		return Event{}, fmt.Errorf("invalid start: %w", err)
	}
	end, _, err := timeutil.ParseDateTime(p.End, req.Timezone)
	if err != nil {
		return Event{}, fmt.Errorf("invalid end: %w", err)
	}
	if !end.After(start) {
		return Event{}, fmt.Errorf("end %s is not after start %s", p.End, p.Start)
	}

	description := strings.TrimSpace(p.Description)
	if description == "" {
		description = strings.TrimSpace(req.Text)
	}

	return Event{
		Title:       title,
		Start:       start.UTC(),
		End:         end.UTC(),
		Location:    strings.TrimSpace(p.Location),
		Description: description,
	}, nil
}
