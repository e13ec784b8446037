package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"planbuddy/internal/availability"
	"planbuddy/internal/extract"
	"planbuddy/internal/gcal"
	"planbuddy/internal/timeutil"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health check

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status": "healthy",
		"gcal":   "disconnected",
	}
	if s.calendar != nil && s.calendar.IsAuthenticated() {
		status["gcal"] = "connected"
	}
	respondJSON(w, http.StatusOK, status)
}

// Scheduling

type planRequest struct {
	Text     string `json:"text"`
	Timezone string `json:"timezone,omitempty"`
	Create   bool   `json:"create,omitempty"`
}

type eventResponse struct {
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type conflictResponse struct {
	Title string `json:"title,omitempty"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type availabilityResponse struct {
	IsAvailable     bool               `json:"isAvailable"`
	Conflicts       []conflictResponse `json:"conflicts"`
	SuggestedStarts []string           `json:"suggestedStarts,omitempty"`
}

type planResponse struct {
	Event        eventResponse        `json:"event"`
	Availability availabilityResponse `json:"availability"`
	Created      bool                 `json:"created,omitempty"`
	EventID      string               `json:"event_id,omitempty"`
}

// handlePlan extracts an event from free text, checks the window against the
// user's calendar and, when asked to and the window is free, creates it.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = s.defaultTimezone
	}
	loc, _ := timeutil.ResolveLocation(timezone)

	event := s.pipeline.Run(r.Context(), extract.Request{Text: req.Text, Timezone: timezone})

	candidate := availability.Interval{Start: event.Start, End: event.End}
	result := s.checkCandidate(candidate, loc)

	resp := planResponse{
		Event:        toEventResponse(event),
		Availability: toAvailabilityResponse(result),
	}

	if req.Create && result.Available && s.calendar != nil && s.calendar.IsAuthenticated() {
		id, err := s.calendar.CreateEvent(s.calendarID, gcal.EventInput{
			Summary:     event.Title,
			Description: event.Description,
			Location:    event.Location,
			StartTime:   event.Start,
			EndTime:     event.End,
		})
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create calendar event")
			respondError(w, http.StatusBadGateway, "failed to create calendar event")
			return
		}
		resp.Created = true
		resp.EventID = id
	}

	respondJSON(w, http.StatusOK, resp)
}

type availabilityRequest struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone,omitempty"`
}

// handleAvailability checks an explicit window without running extraction.
func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = s.defaultTimezone
	}
	loc, _ := timeutil.ResolveLocation(timezone)

	start, _, err := timeutil.ParseDateTime(req.Start, timezone)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid start time")
		return
	}
	end, _, err := timeutil.ParseDateTime(req.End, timezone)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid end time")
		return
	}
	if !end.After(start) {
		respondError(w, http.StatusBadRequest, "end must be after start")
		return
	}

	result := s.checkCandidate(availability.Interval{Start: start.UTC(), End: end.UTC()}, loc)
	respondJSON(w, http.StatusOK, toAvailabilityResponse(result))
}

// checkCandidate fetches the calendar days the candidate touches and runs
// the availability engine. A calendar read failure fails open: the window
// is reported available rather than blocking the user's flow.
func (s *Server) checkCandidate(candidate availability.Interval, loc *time.Location) availability.Result {
	failOpen := availability.Result{
		Available: true,
		Conflicts: []availability.BusyEvent{},
		Suggested: []time.Time{},
	}

	if s.calendar == nil || !s.calendar.IsAuthenticated() {
		return failOpen
	}

	// A candidate may cross local midnight, so the fetch extends through the
	// end of its last local day. The engine only sees what is fetched.
	dayStart := timeutil.StartOfDay(candidate.Start.In(loc))
	dayEnd := dayStart.AddDate(0, 0, 1)
	if candidate.End.After(dayEnd) {
		dayEnd = timeutil.StartOfDay(candidate.End.In(loc)).AddDate(0, 0, 1)
	}

	existing, err := s.calendar.ListEventsInRange(s.calendarID, dayStart, dayEnd, loc)
	if err != nil {
		s.logger.Warn().Err(err).Msg("calendar read failed, reporting available")
		return failOpen
	}

	return availability.Check(candidate, loc, toBusyEvents(existing))
}

func toBusyEvents(items []gcal.EventDetails) []availability.BusyEvent {
	events := make([]availability.BusyEvent, 0, len(items))
	for _, item := range items {
		events = append(events, availability.BusyEvent{
			Title:  item.Summary,
			Start:  item.StartTime,
			End:    item.EndTime,
			AllDay: item.AllDay,
		})
	}
	return events
}

func toEventResponse(event extract.Event) eventResponse {
	return eventResponse{
		Title:       event.Title,
		Start:       event.Start.UTC().Format(time.RFC3339),
		End:         event.End.UTC().Format(time.RFC3339),
		Location:    event.Location,
		Description: event.Description,
	}
}

func toAvailabilityResponse(result availability.Result) availabilityResponse {
	conflicts := make([]conflictResponse, 0, len(result.Conflicts))
	for _, c := range result.Conflicts {
		conflicts = append(conflicts, conflictResponse{
			Title: c.Title,
			Start: c.Start.UTC().Format(time.RFC3339),
			End:   c.End.UTC().Format(time.RFC3339),
		})
	}

	starts := make([]string, 0, len(result.Suggested))
	for _, t := range result.Suggested {
		starts = append(starts, t.UTC().Format(time.RFC3339))
	}

	return availabilityResponse{
		IsAvailable:     result.Available,
		Conflicts:       conflicts,
		SuggestedStarts: starts,
	}
}

// Google Calendar auth

func (s *Server) handleAuthURL(w http.ResponseWriter, r *http.Request) {
	if s.calendar == nil {
		respondError(w, http.StatusServiceUnavailable, "calendar not configured")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"auth_url": s.calendar.GetAuthURL()})
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if s.calendar == nil {
		respondError(w, http.StatusServiceUnavailable, "calendar not configured")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	if err := s.calendar.ExchangeCode(r.Context(), code); err != nil {
		s.logger.Error().Err(err).Msg("oauth code exchange failed")
		respondError(w, http.StatusBadGateway, "failed to exchange authorization code")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "authenticated"})
}

func (s *Server) handleListCalendars(w http.ResponseWriter, r *http.Request) {
	if s.calendar == nil || !s.calendar.IsAuthenticated() {
		respondError(w, http.StatusServiceUnavailable, "calendar not authenticated")
		return
	}

	calendars, err := s.calendar.ListCalendars()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list calendars")
		respondError(w, http.StatusBadGateway, "failed to list calendars")
		return
	}
	respondJSON(w, http.StatusOK, calendars)
}
