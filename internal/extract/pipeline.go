package extract

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Strategy is one candidate way of turning text into an event. Attempt
// either succeeds with a structurally valid event or reports failure.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req Request) (Event, error)
}

// Pipeline tries strategies sequentially in priority order and returns the
// first success. The heuristic extractor is appended as the terminal
// strategy at construction time; since it cannot fail, Run is total.
type Pipeline struct {
	strategies []Strategy
	logger     zerolog.Logger
}

// NewPipeline builds a pipeline from the configured generative strategies.
// The strategy list is fixed for the life of the process.
func NewPipeline(logger zerolog.Logger, generative ...Strategy) *Pipeline {
	strategies := make([]Strategy, 0, len(generative)+1)
	strategies = append(strategies, generative...)
	strategies = append(strategies, HeuristicExtractor{})

	return &Pipeline{
		strategies: strategies,
		logger:     logger,
	}
}

// Run extracts an event from the request. Individual strategy failures are
// logged and swallowed; the caller always receives a valid event.
func (p *Pipeline) Run(ctx context.Context, req Request) Event {
	if req.Reference.IsZero() {
		req.Reference = time.Now()
	}

	for _, s := range p.strategies {
		event, err := s.Attempt(ctx, req)
		if err != nil {
			p.logger.Debug().
				Err(err).
				Str("strategy", s.Name()).
				Msg("extraction strategy failed, trying next")
			continue
		}
		p.logger.Debug().
			Str("strategy", s.Name()).
			Str("title", event.Title).
			Msg("extraction succeeded")
		return event
	}

	// Unreachable: the heuristic strategy never fails. Reaching this line
	// would mean a defect in the extractor, not a runtime condition.
	return defaultEvent(req.Text, req.Reference)
}
