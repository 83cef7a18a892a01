package handlers

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/lmt/todolist/internal/core/services"
	"github.com/lmt/todolist/internal/infrastructure/logger"
	"github.com/lmt/todolist/internal/transport/http/dto"
)

const eventWriteTimeout = 10 * time.Second

type eventMessage struct {
	Type services.TaskEventType `json:"type"`
	ID   string                 `json:"id"`
	Task *dto.TodoResponse      `json:"task,omitempty"`
}

// EventsHandler streams task change events to websocket clients.
type EventsHandler struct {
	hub    *services.EventHub
	logger *logger.Logger
}

func NewEventsHandler(hub *services.EventHub, logger *logger.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger}
}

func (h *EventsHandler) Stream(c *websocket.Conn) {
	sub := h.hub.Subscribe()
	defer sub.Close()

	h.logger.Infow("events_stream_open", "remote", c.RemoteAddr().String())

	// The feed is one-way. Reading still has to happen so close frames are
	// seen; done fires when the peer goes away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			h.logger.Infow("events_stream_closed")
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			msg := eventMessage{Type: ev.Type, ID: ev.ID}
			if ev.Task != nil {
				resp := dto.TodoToResponse(ev.Task)
				msg.Task = &resp
			}
			_ = c.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := c.WriteJSON(msg); err != nil {
				h.logger.Warnw("events_stream_write_failed", "error", err)
				return
			}
		}
	}
}
