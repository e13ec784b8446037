package extract

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStrategy records whether it was attempted.
type stubStrategy struct {
	name     string
	event    Event
	err      error
	attempts int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(context.Context, Request) (Event, error) {
	s.attempts++
	return s.event, s.err
}

func pipelineTestEvent(title string) Event {
	start := time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)
	return Event{Title: title, Start: start, End: start.Add(time.Hour)}
}

func TestPipelineFirstSuccessWins(t *testing.T) {
	first := &stubStrategy{name: "first", event: pipelineTestEvent("From First")}
	second := &stubStrategy{name: "second", event: pipelineTestEvent("From Second")}

	p := NewPipeline(zerolog.Nop(), first, second)
	event := p.Run(context.Background(), Request{Text: "meeting tomorrow"})

	assert.Equal(t, "From First", event.Title)
	assert.Equal(t, 1, first.attempts)
	assert.Equal(t, 0, second.attempts, "later strategies must not run after a success")
}

func TestPipelineFallsThroughOnFailure(t *testing.T) {
	first := &stubStrategy{name: "first", err: fmt.Errorf("quota exceeded")}
	second := &stubStrategy{name: "second", event: pipelineTestEvent("From Second")}

	p := NewPipeline(zerolog.Nop(), first, second)
	event := p.Run(context.Background(), Request{Text: "meeting tomorrow"})

	assert.Equal(t, "From Second", event.Title)
	assert.Equal(t, 1, first.attempts)
	assert.Equal(t, 1, second.attempts)
}

func TestPipelineHeuristicIsTerminal(t *testing.T) {
	failing := &stubStrategy{name: "failing", err: fmt.Errorf("boom")}

	p := NewPipeline(zerolog.Nop(), failing)
	event := p.Run(context.Background(), Request{
		Text:      "gym session tomorrow for 2 hours at the arc gym",
		Timezone:  "UTC",
		Reference: time.Date(2026, 3, 11, 10, 30, 0, 0, time.UTC),
	})

	assert.Equal(t, "Gym Session", event.Title)
	assert.Equal(t, "Arc Gym", event.Location)
}

func TestPipelineWithNoGenerativeStrategies(t *testing.T) {
	p := NewPipeline(zerolog.Nop())
	event := p.Run(context.Background(), Request{Text: "meeting at 3pm today", Timezone: "UTC"})

	assert.Equal(t, "Meeting", event.Title)
	assert.True(t, event.Start.Before(event.End))
}

func TestPipelineDefaultsZeroReferenceToNow(t *testing.T) {
	p := NewPipeline(zerolog.Nop())
	before := time.Now()
	event := p.Run(context.Background(), Request{Text: "meeting today at 11pm", Timezone: "UTC"})

	// "today" must resolve relative to now, not the zero time.
	assert.True(t, event.Start.After(before.AddDate(0, 0, -2)))
	assert.True(t, event.Start.Before(before.AddDate(0, 0, 2)))
}

func TestPipelineIsTotal(t *testing.T) {
	p := NewPipeline(zerolog.Nop(), &stubStrategy{name: "failing", err: fmt.Errorf("down")})

	inputs := []string{"", "meeting", "tomorrow", "gibberish 99 $$$", "lunch next week for 2 hours"}
	for _, text := range inputs {
		event := p.Run(context.Background(), Request{Text: text})
		require.True(t, event.Start.Before(event.End), "start must precede end for %q", text)
	}
}
