package stream

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/naomedical/translator/backend/internal/logging"
	"github.com/naomedical/translator/backend/internal/model/conversation"
	conversationService "github.com/naomedical/translator/backend/internal/service/conversation"
	"github.com/naomedical/translator/backend/internal/service/relay"
	"github.com/naomedical/translator/backend/pkg/utils"
)

const (
	defaultHeartbeat = 8 * time.Second
	eventBuffer      = 64
)

// Handler 实时推送面板更新 (Server-Sent Events 与 WebSocket)
type Handler struct {
	base      context.Context
	registry  *conversationService.Registry
	relay     *relay.Relay
	heartbeat time.Duration
	upgrader  websocket.Upgrader
}

// New 创建推送处理器。base 取消时所有推送连接随之关闭；relay 仅用于
// WebSocket 上发送的消息。
func New(base context.Context, registry *conversationService.Registry, r *relay.Relay) *Handler {
	return &Handler{
		base:      base,
		registry:  registry,
		relay:     r,
		heartbeat: defaultHeartbeat,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册面板推送路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{sessionID}/panels/{role}/stream", h.handlePanelStream)
	r.Get("/sessions/{sessionID}/panels/{role}/ws", h.handlePanelSocket)
}

// snapshotPayload carries a whole panel; Messages is always present so an
// empty log clears the client.
type snapshotPayload struct {
	SessionID string                    `json:"sessionId"`
	Role      conversation.Role         `json:"role"`
	Messages  []conversation.PanelEntry `json:"messages"`
}

// messagePayload carries one appended or patched entry.
type messagePayload struct {
	SessionID string                  `json:"sessionId"`
	Role      conversation.Role       `json:"role"`
	Message   conversation.PanelEntry `json:"message"`
}

// connContext ends when either the request or the handler's base context
// ends. Hijacked connections are not tracked by http.Server.Shutdown, so the
// base context is what closes them.
func (h *Handler) connContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(r.Context())
	if h.base == nil {
		return ctx, cancel
	}
	stop := context.AfterFunc(h.base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (h *Handler) handlePanelStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sessionID, role, store, ok := h.resolvePanel(w, r)
	if !ok {
		return
	}

	events, unsubscribe := store.Subscribe(eventBuffer)
	defer unsubscribe()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx, cancel := h.connContext(r)
	defer cancel()
	logger := logging.Ctx(ctx).With().Str("session", sessionID).Str("role", string(role)).Logger()
	logger.Debug().Msg("panel stream opened")
	defer logger.Debug().Msg("panel stream closed")

	if err := utils.SendSSEEvent(w, flusher, "snapshot", snapshotUpdate(sessionID, role, store)); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			name, update := eventUpdate(sessionID, role, store, ev)
			err = utils.SendSSEEvent(w, flusher, name, update)
		case t := <-ticker.C:
			err = utils.SendSSEEvent(w, flusher, "heartbeat", map[string]string{
				"time": t.UTC().Format(time.RFC3339),
			})
		}
		if err != nil {
			logger.Debug().Err(err).Msg("panel stream write failed")
			return
		}
	}
}

// resolvePanel validates the route parameters and opens the conversation,
// writing the error response itself when it fails.
func (h *Handler) resolvePanel(w http.ResponseWriter, r *http.Request) (string, conversation.Role, *conversationService.Store, bool) {
	role, err := conversation.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return "", "", nil, false
	}

	sessionID := chi.URLParam(r, "sessionID")
	store, err := h.registry.Open(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, conversationService.ErrInvalidSessionID) {
			utils.RespondError(w, http.StatusBadRequest, "invalid session id")
		} else {
			logging.Ctx(r.Context()).Error().Err(err).Msg("failed to open conversation")
			utils.RespondError(w, http.StatusInternalServerError, "failed to load conversation")
		}
		return "", "", nil, false
	}
	return sessionID, role, store, true
}

func snapshotUpdate(sessionID string, role conversation.Role, store *conversationService.Store) snapshotPayload {
	return snapshotPayload{
		SessionID: sessionID,
		Role:      role,
		Messages:  conversation.RenderPanel(store.Snapshot(), role),
	}
}

// eventUpdate turns a store event into the event name and payload a panel
// consumes. A replaced log is resent whole.
func eventUpdate(sessionID string, role conversation.Role, store *conversationService.Store, ev conversationService.Event) (string, interface{}) {
	if ev.Type == conversationService.EventReplaced {
		return "snapshot", snapshotUpdate(sessionID, role, store)
	}
	return "message", messagePayload{
		SessionID: sessionID,
		Role:      role,
		Message:   conversation.Render(ev.Message, role),
	}
}

func contextDone(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
