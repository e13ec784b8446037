package extract

import (
	"bytes"
	"fmt"
	"time"

	"planbuddy/internal/timeutil"
)

// promptInstructions tells the model exactly what shape to answer in. Any
// deviation is treated as a strategy failure, so the format rules are strict.
const promptInstructions = `You turn a short natural-language request into a single calendar event.

Respond with ONLY a JSON object, no markdown fences and no commentary, with exactly these keys:

{
  "title": "Short, descriptive event title in Title Case",
  "start": "Event start as UTC ISO 8601, e.g. 2026-03-12T14:00:00Z",
  "end": "Event end as UTC ISO 8601; if no duration is given, one hour after start",
  "location": "Location if mentioned, otherwise \"TBD\"",
  "description": "The original request text"
}

Rules:
- title, start and end are required and must be non-empty.
- Resolve relative dates ("tomorrow", "next week") against the current local time provided below, then convert to UTC.
- When no clock time is given, use 14:00 local time.

Example 1
Request: "gym session tomorrow for 2 hours at the arc gym" (timezone UTC, current local time 2026-03-11T10:00:00)
{"title": "Gym Session", "start": "2026-03-12T14:00:00Z", "end": "2026-03-12T16:00:00Z", "location": "Arc Gym", "description": "gym session tomorrow for 2 hours at the arc gym"}

Example 2
Request: "meeting at 3pm today" (timezone UTC, current local time 2026-03-11T10:00:00)
{"title": "Meeting", "start": "2026-03-11T15:00:00Z", "end": "2026-03-11T16:00:00Z", "location": "TBD", "description": "meeting at 3pm today"}`

// buildPrompt embeds the request text, timezone and the current local time
// in that timezone alongside the output-format instructions.
func buildPrompt(req Request) string {
	loc, _ := timeutil.ResolveLocation(req.Timezone)

	ref := req.Reference
	if ref.IsZero() {
		ref = time.Now()
	}

	zone := req.Timezone
	if zone == "" {
		zone = "UTC"
	}

	var prompt bytes.Buffer
	prompt.WriteString(promptInstructions)
	prompt.WriteString("\n\n## Context\n\n")
	prompt.WriteString(fmt.Sprintf("Timezone: %s\n", zone))
	prompt.WriteString(fmt.Sprintf("Current local time: %s (%s)\n", ref.In(loc).Format("2006-01-02T15:04:05"), ref.In(loc).Format("Monday")))
	prompt.WriteString("\n## Request\n\n")
	prompt.WriteString(req.Text)
	return prompt.String()
}
