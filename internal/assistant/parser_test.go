package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/lbarone/chronos/internal/models"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestParseMapsReplyToEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req parseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "session with Alice tuesday at 10", req.Text)

		json.NewEncoder(w).Encode(parseResponse{
			Title:      "Session with Alice",
			Start:      "2025-01-14T10:00:00Z",
			End:        "2025-01-14T11:00:00Z",
			Recurrence: "weekly",
			Color:      "green",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", discardLogger())
	result, err := client.Parse(context.Background(), "session with Alice tuesday at 10",
		time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	require.False(t, result.Conflict)
	require.Equal(t, "Session with Alice", result.Event.Title)
	require.Equal(t, models.RecurrenceWeekly, result.Event.Recurrence)
	require.Equal(t, models.ColorGreen, result.Event.Color)
	require.Equal(t, time.Hour, result.Event.Duration())
}

func TestParseSanitizesUnknownEnums(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(parseResponse{
			Title:      "Session",
			Start:      "2025-01-14T10:00:00Z",
			Recurrence: "fortnightly",
			Color:      "chartreuse",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", discardLogger())
	result, err := client.Parse(context.Background(), "session", time.Now(), nil)
	require.NoError(t, err)

	require.Equal(t, models.RecurrenceNone, result.Event.Recurrence)
	require.Equal(t, models.ColorBlue, result.Event.Color)
	// Missing end falls back to the default session length.
	require.Equal(t, models.DefaultSessionDuration, result.Event.Duration())
}

func TestParseTrimsContextToNearbyEvents(t *testing.T) {
	var got parseRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(parseResponse{
			Title: "Session",
			Start: "2025-01-14T10:00:00Z",
		})
	}))
	defer srv.Close()

	ref := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	nearby := []models.Event{
		{Title: "past", Start: ref.AddDate(0, 0, -1), End: ref.AddDate(0, 0, -1).Add(time.Hour)},
		{Title: "soon", Start: ref.AddDate(0, 0, 2), End: ref.AddDate(0, 0, 2).Add(time.Hour)},
		{Title: "far", Start: ref.AddDate(0, 0, 45), End: ref.AddDate(0, 0, 45).Add(time.Hour)},
	}

	client := NewClient(srv.URL, "", discardLogger())
	_, err := client.Parse(context.Background(), "session", ref, nearby)
	require.NoError(t, err)

	require.Len(t, got.Events, 1)
	require.Equal(t, "soon", got.Events[0].Title)
}

func TestParseRejectsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", discardLogger())
	_, err := client.Parse(context.Background(), "session", time.Now(), nil)
	require.Error(t, err)
}

func TestParseRejectsReplyWithoutTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(parseResponse{Start: "2025-01-14T10:00:00Z"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", discardLogger())
	_, err := client.Parse(context.Background(), "session", time.Now(), nil)
	require.Error(t, err)
}
