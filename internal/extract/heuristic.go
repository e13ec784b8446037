package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"planbuddy/internal/timeutil"
)

// eventNouns mark the kind of activity an utterance describes. A phrase
// immediately before one of these becomes part of the title.
var eventNouns = []string{
	"meeting", "appointment", "session", "call", "conference", "interview",
	"lunch", "dinner", "breakfast", "workout", "gym", "class", "lesson",
	"training", "workshop", "seminar",
}

var (
	// timeMarker matches the first date, clock or duration token in text.
	// Titles and locations are cut off at this point.
	timeMarker = regexp.MustCompile(`(?i)\b(?:today|tomorrow|next week|this week|at\s+\d|\d{1,2}:\d{2}\s*(?:am|pm)?|\d{1,2}\s*(?:am|pm)\b|\d{1,2}\s*o'?clock|for\s+\d+\s*hours?|\d+\s*hours?\b)`)

	// leadFiller strips scheduling verbs and polite openers from the
	// front of an utterance.
	leadFiller = regexp.MustCompile(`(?i)^(?:please\s+)?(?:can\s+(?:you|we)\s+|could\s+(?:you|we)\s+|i\s+(?:need|want)\s+to\s+|i'?d\s+like\s+to\s+|let'?s\s+)?(?:(?:schedule|book|create|add|set\s*up|plan|arrange|organi[sz]e|have|do)\b\s*)?(?:(?:a|an|the)\b\s*)?`)

	nounPhrase  = regexp.MustCompile(`(?i)\b(?:([a-z][a-z'-]*(?:\s+[a-z][a-z'-]*)?)\s+)?(` + strings.Join(eventNouns, "|") + `)\b`)
	durationRe  = regexp.MustCompile(`(?i)\b(?:for\s+)?(\d+)\s*hours?\b`)
	locAtIn     = regexp.MustCompile(`(?i)(?:\b(?:at|in)\s+|@\s*)((?:the\s+)?[a-z][a-z'&-]*(?:\s+[a-z'&-]+)*)`)
	locNounAtIn = regexp.MustCompile(`(?i)\b(?:` + strings.Join(eventNouns, "|") + `)\s+(?:at\s+|in\s+|@\s*)((?:the\s+)?[a-z][a-z'&-]*(?:\s+[a-z'&-]+)*)`)
	locGoTo     = regexp.MustCompile(`(?i)\b(?:go\s+to|visit|see)\s+((?:the\s+)?[a-z][a-z'&-]*(?:\s+[a-z'&-]+)*)`)

	numericToken = regexp.MustCompile(`^\d+[a-z]*$`)
)

// stopWords are dropped when falling back to content-word titles, and
// trimmed off dangling phrase edges.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "i": true, "we": true, "my": true,
	"our": true, "me": true, "to": true, "at": true, "in": true, "on": true,
	"for": true, "with": true, "and": true, "or": true, "of": true,
	"is": true, "are": true, "be": true, "have": true, "need": true,
	"want": true, "schedule": true, "book": true, "set": true, "up": true,
	"plan": true, "lets": true, "let's": true, "please": true,
	"tomorrow": true, "today": true, "next": true, "this": true,
	"week": true, "am": true, "pm": true, "hour": true, "hours": true,
	"minutes": true, "oclock": true, "o'clock": true, "from": true,
	"about": true, "around": true, "go": true, "visit": true, "see": true,
}

const (
	defaultTitle    = "Event"
	defaultLocation = "TBD"
)

// HeuristicExtractor is the terminal extraction strategy. It derives a
// structurally valid event from text alone and cannot fail.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Name() string { return "heuristic" }

func (HeuristicExtractor) Attempt(_ context.Context, req Request) (Event, error) {
	return Extract(req.Text, req.Reference, req.Timezone), nil
}

// Extract derives an event from text relative to ref in the given timezone.
// It is a pure function of its inputs; anything it cannot parse degrades to
// a safe default rather than an error.
func Extract(text string, ref time.Time, timezone string) Event {
	loc, _ := timeutil.ResolveLocation(timezone)

	day := timeutil.ResolveDate(text, ref, loc)
	start := timeutil.OrFallback(timeutil.ResolveClockTime(text, day), ref)
	end := start.Add(parseDuration(text))

	if !timeutil.ValidInstant(start) || !timeutil.ValidInstant(end) || !end.After(start) {
		return defaultEvent(text, ref)
	}

	title := extractTitle(text)
	if title == "" {
		title = defaultTitle
	}

	return Event{
		Title:       title,
		Start:       start.UTC(),
		End:         end.UTC(),
		Location:    extractLocation(text),
		Description: strings.TrimSpace(text),
	}
}

// defaultEvent is the last line of defense: a valid one-hour event anchored
// at the reference instant.
func defaultEvent(text string, ref time.Time) Event {
	start := ref
	if !timeutil.ValidInstant(start) {
		start = time.Now()
	}
	start = start.UTC()
	return Event{
		Title:       defaultTitle,
		Start:       start,
		End:         start.Add(time.Hour),
		Location:    defaultLocation,
		Description: strings.TrimSpace(text),
	}
}

// extractTitle tries three rules in order and returns the first non-empty
// result, title-cased. An empty string means no rule applied.
func extractTitle(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return ""
	}

	if title := titleBeforeMarker(lower); title != "" {
		return capitalizeWords(title)
	}
	if title := titleFromEventNoun(lower); title != "" {
		return capitalizeWords(title)
	}
	if title := titleFromContentWords(lower); title != "" {
		return capitalizeWords(title)
	}
	return ""
}

// titleBeforeMarker captures the phrase between any leading filler and the
// first time or duration marker.
func titleBeforeMarker(lower string) string {
	m := timeMarker.FindStringIndex(lower)
	if m == nil {
		return ""
	}
	phrase := leadFiller.ReplaceAllString(strings.TrimSpace(lower[:m[0]]), "")
	return trimDanglingWords(phrase)
}

// titleFromEventNoun combines the words right before a known event noun with
// the noun itself.
func titleFromEventNoun(lower string) string {
	m := nounPhrase.FindStringSubmatch(lower)
	if m == nil {
		return ""
	}
	phrase := trimDanglingWords(m[1])
	noun := m[2]
	if phrase == "" {
		return noun
	}
	return phrase + " " + noun
}

// titleFromContentWords keeps the first three words that carry meaning.
func titleFromContentWords(lower string) string {
	words := make([]string, 0, 3)
	for _, w := range strings.Fields(lower) {
		w = strings.Trim(w, ".,!?;:")
		if w == "" || stopWords[w] || numericToken.MatchString(w) {
			continue
		}
		words = append(words, w)
		if len(words) == 3 {
			break
		}
	}
	return strings.Join(words, " ")
}

// parseDuration reads "<n> hour(s)" with an optional leading "for".
// Anything else means one hour.
func parseDuration(text string) time.Duration {
	m := durationRe.FindStringSubmatch(text)
	if m == nil {
		return time.Hour
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return time.Hour
	}
	return time.Duration(n) * time.Hour
}

// extractLocation tries the location rules in order; phrases are cut at the
// next time or duration marker and rendered title-cased.
func extractLocation(text string) string {
	lower := strings.ToLower(text)

	for _, re := range []*regexp.Regexp{locAtIn, locNounAtIn, locGoTo} {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if place := cleanLocation(m[1]); place != "" {
			return place
		}
	}
	return defaultLocation
}

func cleanLocation(phrase string) string {
	if idx := timeMarker.FindStringIndex(phrase); idx != nil {
		phrase = phrase[:idx[0]]
	}
	phrase = strings.TrimSpace(phrase)
	phrase = strings.TrimPrefix(phrase, "the ")
	phrase = trimDanglingWords(phrase)
	if phrase == "" {
		return ""
	}
	return capitalizeWords(phrase)
}

// trimDanglingWords drops connector words left hanging at either end of a
// captured phrase.
func trimDanglingWords(phrase string) string {
	words := strings.Fields(strings.TrimSpace(phrase))
	for len(words) > 0 && stopWords[words[0]] {
		words = words[1:]
	}
	for len(words) > 0 && stopWords[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// capitalizeWords upper-cases the first letter of each word. Applying it to
// an already-capitalized string is a no-op.
func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
