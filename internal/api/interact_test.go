package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lbarone/chronos/internal/models"
)

func dialInteract(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(env.server.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/schedule/interact"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) interactReply {
	t.Helper()
	var reply interactReply
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestInteractDragMoveCommits(t *testing.T) {
	env := newTestServer()

	anchor := time.Date(2025, 1, 14, 10, 0, 0, 0, time.Local)
	env.events.On("GetByID", mock.Anything, "ev1").Return(&models.Event{
		ID:         "ev1",
		Title:      "Session",
		Start:      anchor,
		End:        anchor.Add(time.Hour),
		Recurrence: models.RecurrenceNone,
	}, nil)
	// 36px down at the default 0.8 px/min is 45 minutes, already on the
	// 15-minute grid.
	wantStart := anchor.Add(45 * time.Minute)
	wantEnd := wantStart.Add(time.Hour)
	env.events.On("UpdateTimes", mock.Anything, "ev1", wantStart, wantEnd).Return(nil)

	conn := dialInteract(t, env)

	require.NoError(t, conn.WriteJSON(interactCommand{
		Type: "down", EventID: "ev1", Canonical: true, Mode: "move", X: 10, Y: 100,
	}))
	reply := readReply(t, conn)
	require.Equal(t, "session", reply.Type)
	require.True(t, reply.Session.NewStart.Equal(anchor))

	require.NoError(t, conn.WriteJSON(interactCommand{Type: "move", X: 10, Y: 136}))
	reply = readReply(t, conn)
	require.Equal(t, "session", reply.Type)
	require.True(t, reply.Session.NewStart.Equal(wantStart))

	require.NoError(t, conn.WriteJSON(interactCommand{Type: "up"}))
	reply = readReply(t, conn)
	require.Equal(t, "commit", reply.Type)
	env.events.AssertExpectations(t)
}

func TestInteractClickBelowThreshold(t *testing.T) {
	env := newTestServer()

	anchor := time.Date(2025, 1, 14, 10, 0, 0, 0, time.Local)
	env.events.On("GetByID", mock.Anything, "ev1").Return(&models.Event{
		ID:         "ev1",
		Title:      "Session",
		Start:      anchor,
		End:        anchor.Add(time.Hour),
		Recurrence: models.RecurrenceNone,
	}, nil)

	conn := dialInteract(t, env)

	require.NoError(t, conn.WriteJSON(interactCommand{
		Type: "down", EventID: "ev1", Canonical: true, Mode: "move", X: 10, Y: 100,
	}))
	readReply(t, conn)

	// 2px of jitter stays below the 3px click threshold.
	require.NoError(t, conn.WriteJSON(interactCommand{Type: "move", X: 11, Y: 102}))
	readReply(t, conn)

	require.NoError(t, conn.WriteJSON(interactCommand{Type: "up"}))
	reply := readReply(t, conn)
	require.Equal(t, "click", reply.Type)
	env.events.AssertNotCalled(t, "UpdateTimes",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInteractRevertedDragRepliesNoop(t *testing.T) {
	env := newTestServer()

	anchor := time.Date(2025, 1, 14, 10, 0, 0, 0, time.Local)
	env.events.On("GetByID", mock.Anything, "ev1").Return(&models.Event{
		ID:         "ev1",
		Title:      "Session",
		Start:      anchor,
		End:        anchor.Add(time.Hour),
		Recurrence: models.RecurrenceNone,
	}, nil)

	conn := dialInteract(t, env)

	require.NoError(t, conn.WriteJSON(interactCommand{
		Type: "down", EventID: "ev1", Canonical: true, Mode: "move", X: 10, Y: 100,
	}))
	readReply(t, conn)

	// Drag well past the click threshold, then back to the origin.
	require.NoError(t, conn.WriteJSON(interactCommand{Type: "move", X: 10, Y: 160}))
	readReply(t, conn)
	require.NoError(t, conn.WriteJSON(interactCommand{Type: "move", X: 10, Y: 100}))
	readReply(t, conn)

	// The release changed nothing, but the client still gets an answer.
	require.NoError(t, conn.WriteJSON(interactCommand{Type: "up"}))
	reply := readReply(t, conn)
	require.Equal(t, "noop", reply.Type)
	env.events.AssertNotCalled(t, "UpdateTimes",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInteractUnknownEvent(t *testing.T) {
	env := newTestServer()

	env.events.On("GetByID", mock.Anything, "missing").Return(nil, nil)

	conn := dialInteract(t, env)

	require.NoError(t, conn.WriteJSON(interactCommand{
		Type: "down", EventID: "missing", Canonical: true, Mode: "move",
	}))
	reply := readReply(t, conn)
	require.Equal(t, "error", reply.Type)
}
