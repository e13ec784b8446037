// Package extract turns natural-language utterances into structured calendar
// events. A pipeline of strategies is tried in priority order; the heuristic
// extractor runs last and always succeeds, so extraction as a whole is total.
package extract

import (
	"time"
)

// Request carries a single utterance to turn into an event.
type Request struct {
	// Text is the raw user input. It must be non-empty for meaningful
	// results, but even empty text yields a valid default event.
	Text string

	// Timezone is an IANA identifier such as "America/New_York". Empty
	// means UTC.
	Timezone string

	// Reference anchors relative dates like "tomorrow". The zero value
	// means the current time.
	Reference time.Time
}

// Event is the structured result of extraction. Start and End are UTC
// instants and Start is always strictly before End.
type Event struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}
