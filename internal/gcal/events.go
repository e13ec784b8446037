package gcal

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// ErrNotAuthenticated is returned by read/write operations before the OAuth
// flow has completed. Callers check it with errors.Is.
var ErrNotAuthenticated = errors.New("google calendar: not authenticated")

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
}

// EventDetails represents a single Google Calendar event.
type EventDetails struct {
	ID          string
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	CalendarID  string
}

func parseGoogleEventTimes(item *calendar.Event, loc *time.Location) (time.Time, time.Time, bool, error) {
	if item == nil || item.Start == nil || item.End == nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event is missing start or end")
	}

	// All-day events use Date instead of DateTime.
	if item.Start.Date != "" {
		startDate, err := time.ParseInLocation("2006-01-02", item.Start.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day start date: %w", err)
		}
		endDate, err := time.ParseInLocation("2006-01-02", item.End.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse all-day end date: %w", err)
		}
		return startDate, endDate, true, nil
	}

	if item.Start.DateTime == "" || item.End.DateTime == "" {
		return time.Time{}, time.Time{}, false, fmt.Errorf("event datetime is missing")
	}

	startTime, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse start datetime: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("failed to parse end datetime: %w", err)
	}

	return startTime, endTime, false, nil
}

// CreateEvent creates a new event in Google Calendar and returns the event ID
func (c *Client) CreateEvent(calendarID string, input EventInput) (string, error) {
	if c.service == nil {
		return "", ErrNotAuthenticated
	}

	if calendarID == "" {
		calendarID = "primary"
	}

	// RFC3339 format includes timezone offset, so Google Calendar can infer the timezone
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.StartTime.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: input.EndTime.Format(time.RFC3339),
		},
	}

	created, err := c.service.Events.Insert(calendarID, event).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}

	return created.Id, nil
}

// ListEventsInRange returns events in a time window from Google Calendar.
// All-day entries are parsed in loc, the timezone of the requesting user.
func (c *Client) ListEventsInRange(calendarID string, timeMin, timeMax time.Time, loc *time.Location) ([]EventDetails, error) {
	if c.service == nil {
		return nil, ErrNotAuthenticated
	}
	if timeMax.Before(timeMin) {
		return nil, fmt.Errorf("invalid range: time_max is before time_min")
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	if loc == nil {
		loc = time.UTC
	}

	var result []EventDetails
	pageToken := ""

	for {
		call := c.service.Events.List(calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			ShowDeleted(false).
			OrderBy("startTime")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events in range: %w", err)
		}

		for _, item := range events.Items {
			if item == nil || item.Status == "cancelled" {
				continue
			}

			startTime, endTime, allDay, parseErr := parseGoogleEventTimes(item, loc)
			if parseErr != nil {
				// Skip malformed events rather than failing the whole request.
				continue
			}

			result = append(result, EventDetails{
				ID:          item.Id,
				Summary:     item.Summary,
				Description: item.Description,
				Location:    item.Location,
				StartTime:   startTime,
				EndTime:     endTime,
				AllDay:      allDay,
				CalendarID:  calendarID,
			})
		}

		if events.NextPageToken == "" {
			break
		}
		pageToken = events.NextPageToken
	}

	return result, nil
}
