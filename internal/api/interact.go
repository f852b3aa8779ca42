package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lbarone/chronos/internal/schedule"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API serves a single trusted operator; cross-origin drags from the
	// local UI are expected.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// interactCommand is one client message of the interactive drag protocol.
// Pointer coordinates are in the client's viewport space.
type interactCommand struct {
	Type string `json:"type"` // down, move, up, scroll

	// down
	EventID         string            `json:"eventId,omitempty"`
	OccurrenceStart time.Time         `json:"occurrenceStart,omitempty"`
	Canonical       bool              `json:"canonical,omitempty"`
	Mode            schedule.DragMode `json:"mode,omitempty"`

	// down, move, scroll
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
}

// interactReply is one server message of the interactive drag protocol.
type interactReply struct {
	Type    string                `json:"type"` // session, commit, click, scroll, noop, error
	Session *schedule.DragSession `json:"session,omitempty"`
	Step    float64               `json:"step,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// handleInteract runs the interactive drag protocol over a websocket. Each
// connection owns its own controller, so concurrent clients never share
// interaction state, and messages are processed in order on a single
// goroutine, matching the controller's single-threaded contract.
func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Error("failed to upgrade interact socket")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	view := s.svc.ViewConfig()

	var replies []interactReply
	ctrl := schedule.NewController(schedule.ControllerConfig{
		PxPerMinute:    view.PxPerMinute,
		SnapMinutes:    view.SnapMinutes,
		MinDuration:    time.Duration(view.MinDurationMinutes) * time.Minute,
		DayColumnWidth: view.DayColumnWidth,
		ScrollZone:     view.ScrollZone,
		ScrollSpeed:    view.ScrollSpeed,
	}, func(ref schedule.OccurrenceRef, newStart, newEnd time.Time) {
		if err := s.svc.MoveOccurrence(ctx, ref, newStart, newEnd); err != nil {
			s.logger.WithError(err).Error("failed to commit drag")
			replies = append(replies, interactReply{Type: "error", Error: "failed to commit drag"})
			return
		}
		dragCommitsTotal.Inc()
		replies = append(replies, interactReply{Type: "commit"})
	}, func(ref schedule.OccurrenceRef) {
		replies = append(replies, interactReply{Type: "click"})
	})

	for {
		var cmd interactCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.WithError(err).Debug("interact socket closed")
			}
			return
		}

		replies = replies[:0]
		switch cmd.Type {
		case "down":
			replies = s.interactDown(ctx, ctrl, cmd, replies)
		case "move":
			ctrl.PointerMove(cmd.X, cmd.Y)
			replies = append(replies, interactReply{Type: "session", Session: ctrl.Session()})
		case "scroll":
			replies = append(replies, interactReply{Type: "scroll", Step: ctrl.ScrollStep(cmd.Y)})
		case "up":
			// PointerUp fires the commit or click callback, which queues
			// the matching reply. A drag released back at its origin fires
			// neither, so answer with an explicit noop to still complete
			// the exchange.
			ctrl.PointerUp()
			if len(replies) == 0 {
				replies = append(replies, interactReply{Type: "noop"})
			}
		default:
			replies = append(replies, interactReply{Type: "error", Error: "unknown command type"})
		}

		for _, reply := range replies {
			if err := conn.WriteJSON(reply); err != nil {
				s.logger.WithError(err).Error("failed to write interact reply")
				return
			}
		}
	}
}

// interactDown resolves the dragged occurrence against its stored definition
// and opens the drag session. The occurrence keeps the definition's duration;
// a canonical occurrence starts at the definition's own anchor.
func (s *Server) interactDown(ctx context.Context, ctrl *schedule.Controller, cmd interactCommand, replies []interactReply) []interactReply {
	if ctrl.Dragging() {
		return append(replies, interactReply{Type: "error", Error: "drag already in progress"})
	}

	event, err := s.svc.Events.GetByID(ctx, cmd.EventID)
	if err != nil {
		s.logger.WithError(err).Error("failed to load event for drag")
		return append(replies, interactReply{Type: "error", Error: "failed to load event"})
	}
	if event == nil {
		return append(replies, interactReply{Type: "error", Error: "event not found"})
	}

	inst := schedule.Instance{
		Ref: schedule.OccurrenceRef{
			EventID:   event.ID,
			Start:     cmd.OccurrenceStart,
			Canonical: cmd.Canonical,
		},
		Event: *event,
	}
	if cmd.Canonical || cmd.OccurrenceStart.IsZero() {
		inst.Ref.Start = event.Start
		inst.Ref.Canonical = true
	} else {
		inst.Start = cmd.OccurrenceStart
		inst.End = cmd.OccurrenceStart.Add(event.Duration())
	}

	if !ctrl.PointerDown(inst, cmd.Mode, cmd.X, cmd.Y) {
		return append(replies, interactReply{Type: "error", Error: "invalid drag mode"})
	}
	return append(replies, interactReply{Type: "session", Session: ctrl.Session()})
}
