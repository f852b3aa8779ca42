// Package assistant is the boundary to the natural-language event parser.
// The parser itself is an external text-to-structured-data service; events
// it produces flow through the same expansion/layout pipeline as any other.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lbarone/chronos/internal/models"
)

// nearbyHorizon trims the context sent to the parser: only events starting
// within this span of the reference date are included.
const nearbyHorizon = 30 * 24 * time.Hour

// Result is the parser's answer: a proposed event definition plus conflict
// information against the supplied context events.
type Result struct {
	Event           *models.Event `json:"event"`
	Conflict        bool          `json:"conflict"`
	ConflictMessage string        `json:"conflictMessage,omitempty"`
}

// Parser extracts an event definition from free-form text.
type Parser interface {
	Parse(ctx context.Context, text string, referenceDate time.Time, nearby []models.Event) (*Result, error)
}

// Client talks to a hosted LLM extraction endpoint over HTTP.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	logger     *logrus.Logger
}

// NewClient creates a parser client for the given endpoint.
func NewClient(url, apiKey string, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
		apiKey:     apiKey,
		logger:     logger,
	}
}

type parseRequest struct {
	Text          string         `json:"text"`
	ReferenceDate string         `json:"referenceDate"`
	Events        []contextEvent `json:"events"`
}

type contextEvent struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type parseResponse struct {
	Title           string `json:"title"`
	Start           string `json:"start"`
	End             string `json:"end"`
	Recurrence      string `json:"recurrence"`
	Color           string `json:"color"`
	Conflict        bool   `json:"conflict"`
	ConflictMessage string `json:"conflictMessage"`
}

// Parse sends the text plus a trimmed window of upcoming events to the
// extraction endpoint and maps the reply onto an event definition. A reply
// that cannot be mapped to a valid event is an error; the caller decides
// what to show the user.
func (c *Client) Parse(ctx context.Context, text string, referenceDate time.Time, nearby []models.Event) (*Result, error) {
	req := parseRequest{
		Text:          text,
		ReferenceDate: referenceDate.Format(time.RFC3339),
	}
	limit := referenceDate.Add(nearbyHorizon)
	for _, e := range nearby {
		if e.Start.Before(referenceDate) || e.Start.After(limit) {
			continue
		}
		req.Events = append(req.Events, contextEvent{
			Title: e.Title,
			Start: e.Start.Format(time.RFC3339),
			End:   e.End.Format(time.RFC3339),
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode parse request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build parse request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("parser request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("parser returned status %d", resp.StatusCode)
	}

	var raw parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode parser response: %w", err)
	}

	event, err := raw.toEvent()
	if err != nil {
		c.logger.Warnf("Parser produced an unusable event: %v", err)
		return nil, err
	}

	return &Result{
		Event:           event,
		Conflict:        raw.Conflict,
		ConflictMessage: raw.ConflictMessage,
	}, nil
}

func (r parseResponse) toEvent() (*models.Event, error) {
	if r.Title == "" {
		return nil, fmt.Errorf("parser reply has no title")
	}
	start, err := time.Parse(time.RFC3339, r.Start)
	if err != nil {
		return nil, fmt.Errorf("parser reply has invalid start: %w", err)
	}

	event := &models.Event{
		Title:      r.Title,
		Start:      start.Local(),
		Recurrence: models.Recurrence(r.Recurrence),
		Color:      models.Color(r.Color),
	}
	if end, err := time.Parse(time.RFC3339, r.End); err == nil {
		event.End = end.Local()
	}

	// The boundary does not trust the external shape: enums outside the
	// closed sets fall back to defaults instead of propagating.
	if !event.Recurrence.Valid() {
		event.Recurrence = models.RecurrenceNone
	}
	if !event.Color.Valid() {
		event.Color = models.ColorBlue
	}
	event.Normalize()

	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("parser reply is not a valid event: %w", err)
	}
	return event, nil
}
