package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planbuddy/internal/extract"
	"planbuddy/internal/gcal"
)

// stubCalendar implements CalendarService for handler tests.
type stubCalendar struct {
	authenticated bool
	events        []gcal.EventDetails
	listErr       error
	createdID     string
	createErr     error
	createdInput  *gcal.EventInput
	exchangeErr   error
}

func (s *stubCalendar) IsAuthenticated() bool { return s.authenticated }
func (s *stubCalendar) GetAuthURL() string    { return "https://accounts.example.com/auth" }

func (s *stubCalendar) ExchangeCode(_ context.Context, code string) error {
	return s.exchangeErr
}

func (s *stubCalendar) ListEventsInRange(_ string, timeMin, timeMax time.Time, _ *time.Location) ([]gcal.EventDetails, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var inRange []gcal.EventDetails
	for _, ev := range s.events {
		if ev.StartTime.Before(timeMax) && ev.EndTime.After(timeMin) {
			inRange = append(inRange, ev)
		}
	}
	return inRange, nil
}

func (s *stubCalendar) CreateEvent(_ string, input gcal.EventInput) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.createdInput = &input
	return s.createdID, nil
}

func (s *stubCalendar) ListCalendars() ([]gcal.CalendarInfo, error) {
	return []gcal.CalendarInfo{{ID: "primary", Primary: true}}, nil
}

func newTestServer(t *testing.T, calendar CalendarService) *Server {
	t.Helper()
	return New(Config{
		Pipeline:        extract.NewPipeline(zerolog.Nop()),
		Calendar:        calendar,
		CalendarID:      "primary",
		DefaultTimezone: "UTC",
		Port:            0,
		Logger:          zerolog.Nop(),
	})
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}

	req := httptest.NewRequest(method, path, &reqBody)
	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, req)
	return rec
}

// todayAt returns today's date (UTC) at the given hour, matching what the
// heuristic extractor resolves for "today".
func todayAt(hour int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
}

func TestHandlePlanNoConflicts(t *testing.T) {
	calendar := &stubCalendar{authenticated: true}
	s := newTestServer(t, calendar)

	rec := doRequest(t, s, http.MethodPost, "/api/plan", planRequest{Text: "meeting at 3pm today"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Meeting", resp.Event.Title)
	assert.Equal(t, todayAt(15).Format(time.RFC3339), resp.Event.Start)
	assert.Equal(t, todayAt(16).Format(time.RFC3339), resp.Event.End)
	assert.True(t, resp.Availability.IsAvailable)
	assert.Empty(t, resp.Availability.Conflicts)
	assert.Empty(t, resp.Availability.SuggestedStarts)
	assert.False(t, resp.Created)
}

func TestHandlePlanWithConflict(t *testing.T) {
	calendar := &stubCalendar{
		authenticated: true,
		events: []gcal.EventDetails{
			{Summary: "Standup", StartTime: todayAt(15), EndTime: todayAt(16)},
		},
	}
	s := newTestServer(t, calendar)

	rec := doRequest(t, s, http.MethodPost, "/api/plan", planRequest{Text: "meeting at 3pm today"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.False(t, resp.Availability.IsAvailable)
	require.Len(t, resp.Availability.Conflicts, 1)
	assert.Equal(t, "Standup", resp.Availability.Conflicts[0].Title)
	assert.NotEmpty(t, resp.Availability.SuggestedStarts)
}

func TestHandlePlanFailsOpenOnCalendarError(t *testing.T) {
	calendar := &stubCalendar{authenticated: true, listErr: fmt.Errorf("backend down")}
	s := newTestServer(t, calendar)

	rec := doRequest(t, s, http.MethodPost, "/api/plan", planRequest{Text: "meeting at 3pm today"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Availability.IsAvailable)
	assert.Empty(t, resp.Availability.Conflicts)
}

func TestHandlePlanWithoutCalendarFailsOpen(t *testing.T) {
	s := newTestServer(t, &stubCalendar{authenticated: false})

	rec := doRequest(t, s, http.MethodPost, "/api/plan", planRequest{Text: "lunch tomorrow"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Availability.IsAvailable)
}

func TestHandlePlanCreatesWhenRequested(t *testing.T) {
	calendar := &stubCalendar{authenticated: true, createdID: "evt-123"}
	s := newTestServer(t, calendar)

	rec := doRequest(t, s, http.MethodPost, "/api/plan", planRequest{Text: "meeting at 3pm today", Create: true})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Created)
	assert.Equal(t, "evt-123", resp.EventID)

	require.NotNil(t, calendar.createdInput)
	assert.Equal(t, "Meeting", calendar.createdInput.Summary)
	assert.Equal(t, todayAt(15), calendar.createdInput.StartTime.UTC())
}

func TestHandlePlanDoesNotCreateWhenBusy(t *testing.T) {
	calendar := &stubCalendar{
		authenticated: true,
		events: []gcal.EventDetails{
			{Summary: "Standup", StartTime: todayAt(15), EndTime: todayAt(16)},
		},
	}
	s := newTestServer(t, calendar)

	rec := doRequest(t, s, http.MethodPost, "/api/plan", planRequest{Text: "meeting at 3pm today", Create: true})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Created)
	assert.Nil(t, calendar.createdInput)
}

func TestHandlePlanCreateFailure(t *testing.T) {
	calendar := &stubCalendar{authenticated: true, createErr: fmt.Errorf("quota")}
	s := newTestServer(t, calendar)

	rec := doRequest(t, s, http.MethodPost, "/api/plan", planRequest{Text: "meeting at 3pm today", Create: true})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandlePlanBadRequests(t *testing.T) {
	s := newTestServer(t, &stubCalendar{})

	t.Run("empty text", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/plan", planRequest{Text: "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/plan", bytes.NewBufferString("not json"))
		rec := httptest.NewRecorder()
		s.httpSrv.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleAvailability(t *testing.T) {
	busyStart := todayAt(10)
	calendar := &stubCalendar{
		authenticated: true,
		events: []gcal.EventDetails{
			{Summary: "Review", StartTime: busyStart, EndTime: busyStart.Add(time.Hour)},
		},
	}
	s := newTestServer(t, calendar)

	t.Run("conflicting window", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/availability", availabilityRequest{
			Start: busyStart.Add(30 * time.Minute).Format(time.RFC3339),
			End:   busyStart.Add(90 * time.Minute).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp availabilityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.IsAvailable)
		require.Len(t, resp.Conflicts, 1)
		assert.Equal(t, "Review", resp.Conflicts[0].Title)
	})

	t.Run("free window", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/availability", availabilityRequest{
			Start: busyStart.Add(2 * time.Hour).Format(time.RFC3339),
			End:   busyStart.Add(3 * time.Hour).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp availabilityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.IsAvailable)
	})

	t.Run("midnight-crossing window sees next-day conflicts", func(t *testing.T) {
		nextDay := todayAt(0).AddDate(0, 0, 1)
		lateCalendar := &stubCalendar{
			authenticated: true,
			events: []gcal.EventDetails{
				{Summary: "Red-eye sync", StartTime: nextDay, EndTime: nextDay.Add(30 * time.Minute)},
			},
		}
		lateSrv := newTestServer(t, lateCalendar)

		rec := doRequest(t, lateSrv, http.MethodPost, "/api/availability", availabilityRequest{
			Start: nextDay.Add(-30 * time.Minute).Format(time.RFC3339),
			End:   nextDay.Add(30 * time.Minute).Format(time.RFC3339),
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp availabilityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.IsAvailable)
		require.Len(t, resp.Conflicts, 1)
		assert.Equal(t, "Red-eye sync", resp.Conflicts[0].Title)
	})

	t.Run("invalid start", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/availability", availabilityRequest{
			Start: "whenever", End: busyStart.Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("end before start", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodPost, "/api/availability", availabilityRequest{
			Start: busyStart.Format(time.RFC3339),
			End:   busyStart.Add(-time.Hour).Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleHealthCheck(t *testing.T) {
	t.Run("calendar connected", func(t *testing.T) {
		s := newTestServer(t, &stubCalendar{authenticated: true})
		rec := doRequest(t, s, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"connected"`)
	})

	t.Run("calendar disconnected", func(t *testing.T) {
		s := newTestServer(t, &stubCalendar{})
		rec := doRequest(t, s, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"disconnected"`)
	})
}

func TestHandleAuthEndpoints(t *testing.T) {
	t.Run("auth url", func(t *testing.T) {
		s := newTestServer(t, &stubCalendar{})
		rec := doRequest(t, s, http.MethodGet, "/api/gcal/auth-url", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "accounts.example.com")
	})

	t.Run("callback without code", func(t *testing.T) {
		s := newTestServer(t, &stubCalendar{})
		rec := doRequest(t, s, http.MethodGet, "/api/gcal/oauth-callback", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("callback exchanges code", func(t *testing.T) {
		s := newTestServer(t, &stubCalendar{})
		rec := doRequest(t, s, http.MethodGet, "/api/gcal/oauth-callback?code=abc", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("callback exchange failure", func(t *testing.T) {
		s := newTestServer(t, &stubCalendar{exchangeErr: fmt.Errorf("denied")})
		rec := doRequest(t, s, http.MethodGet, "/api/gcal/oauth-callback?code=abc", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
