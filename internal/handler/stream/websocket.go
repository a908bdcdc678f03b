package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/naomedical/translator/backend/internal/logging"
	"github.com/naomedical/translator/backend/internal/model/conversation"
	conversationService "github.com/naomedical/translator/backend/internal/service/conversation"
	"github.com/naomedical/translator/backend/internal/service/relay"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SendMessage is the payload of an inbound "send" message.
type SendMessage struct {
	Text    string `json:"text"`
	IsAudio bool   `json:"isAudio"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// panelSocket is one connected panel. Only the serve loop writes to conn.
type panelSocket struct {
	conn      *websocket.Conn
	sessionID string
	role      conversation.Role
	store     *conversationService.Store
	logger    zerolog.Logger
}

func (h *Handler) handlePanelSocket(w http.ResponseWriter, r *http.Request) {
	sessionID, role, store, ok := h.resolvePanel(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := h.connContext(r)
	defer cancel()

	socket := &panelSocket{
		conn:      conn,
		sessionID: sessionID,
		role:      role,
		store:     store,
		logger:    logging.Ctx(ctx).With().Str("session", sessionID).Str("role", string(role)).Logger(),
	}
	socket.logger.Debug().Msg("panel socket connected")
	defer socket.logger.Debug().Msg("panel socket closed")

	events, unsubscribe := store.Subscribe(eventBuffer)
	defer unsubscribe()

	inbound := make(chan inboundMessage)
	go socket.readLoop(ctx, cancel, inbound)

	h.serve(ctx, socket, events, inbound)
}

func (h *Handler) serve(ctx context.Context, s *panelSocket, events <-chan conversationService.Event, inbound <-chan inboundMessage) {
	if err := s.write("snapshot", snapshotUpdate(s.sessionID, s.role, s.store)); err != nil {
		return
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			if h.base != nil && h.base.Err() != nil {
				s.closeGoingAway()
			}
			return
		case ev, open := <-events:
			if !open {
				return
			}
			name, update := eventUpdate(s.sessionID, s.role, s.store, ev)
			err = s.write(name, update)
		case msg := <-inbound:
			err = h.handleInbound(ctx, s, msg)
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err = s.conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			if !contextDone(ctx) {
				s.logger.Debug().Err(err).Msg("panel socket write failed")
			}
			return
		}
	}
}

// handleInbound acts on one client message. Only write failures are
// returned; request problems are reported to the client.
func (h *Handler) handleInbound(ctx context.Context, s *panelSocket, msg inboundMessage) error {
	if msg.Type != "send" {
		return s.writeError("unsupported message type")
	}

	var payload SendMessage
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return s.writeError("invalid send payload")
	}

	if h.relay == nil {
		return s.writeError("sending unavailable")
	}

	_, err := h.relay.Send(ctx, s.sessionID, s.role, payload.Text, payload.IsAudio)
	switch {
	case err == nil, errors.Is(err, conversationService.ErrEmptyMessage):
		return nil
	case errors.Is(err, relay.ErrClosed):
		return s.writeError("sending unavailable")
	default:
		s.logger.Error().Err(err).Msg("failed to send message")
		return s.writeError("failed to send message")
	}
}

func (s *panelSocket) readLoop(ctx context.Context, cancel context.CancelFunc, inbound chan<- inboundMessage) {
	defer cancel()

	_ = s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		var msg inboundMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug().Err(err).Msg("panel socket read error")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(readTimeout))

		select {
		case inbound <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (s *panelSocket) write(kind string, data interface{}) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(outgoingMessage{
		Type:      kind,
		SessionID: s.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

func (s *panelSocket) writeError(message string) error {
	return s.write("error", map[string]string{"message": message})
}

// closeGoingAway tells the client the server is shutting down.
func (s *panelSocket) closeGoingAway() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	if err := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout)); err != nil {
		s.logger.Debug().Err(err).Msg("failed to send close frame")
	}
}
