package conversation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	summaryHandler "github.com/naomedical/translator/backend/internal/handler/summary"
	"github.com/naomedical/translator/backend/internal/logging"
	"github.com/naomedical/translator/backend/internal/model/conversation"
	"github.com/naomedical/translator/backend/internal/model/participant"
	conversationService "github.com/naomedical/translator/backend/internal/service/conversation"
	"github.com/naomedical/translator/backend/internal/service/relay"
	summaryService "github.com/naomedical/translator/backend/internal/service/summary"
	"github.com/naomedical/translator/backend/pkg/utils"
)

const maxLogBytes = 4 << 20

// Handler 会话服务的HTTP处理器
type Handler struct {
	registry     *conversationService.Registry
	relay        *relay.Relay
	summaries    *summaryService.Service
	participants participant.Store
}

// New 创建会话处理器
func New(registry *conversationService.Registry, r *relay.Relay, summaries *summaryService.Service, participants participant.Store) *Handler {
	return &Handler{
		registry:     registry,
		relay:        r,
		summaries:    summaries,
		participants: participants,
	}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/sessions/{sessionID}/messages", h.handleListMessages)
	r.Post("/sessions/{sessionID}/messages", h.handleSendMessage)
	r.Put("/sessions/{sessionID}/messages", h.handleReplaceMessages)
	r.Get("/sessions/{sessionID}/panels/{role}", h.handlePanel)
	r.Post("/sessions/{sessionID}/summary", h.handleSummary)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, _, err := h.registry.Create(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openStore(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, store.Snapshot())
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Sender  string `json:"sender"`
		Text    string `json:"text"`
		IsAudio bool   `json:"isAudio"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sender, err := conversation.ParseRole(payload.Sender)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.relay.Send(r.Context(), chi.URLParam(r, "sessionID"), sender, payload.Text, payload.IsAudio)
	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusCreated, msg)
	case errors.Is(err, conversationService.ErrEmptyMessage):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, conversationService.ErrInvalidSessionID):
		utils.RespondError(w, http.StatusBadRequest, "invalid session id")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to send message")
		utils.RespondError(w, http.StatusInternalServerError, "failed to send message")
	}
}

func (h *Handler) handleReplaceMessages(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openStore(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxLogBytes))
	if err != nil {
		utils.RespondError(w, http.StatusRequestEntityTooLarge, "conversation log too large")
		return
	}

	var messages []conversation.Message
	if err := json.Unmarshal(body, &messages); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "malformed conversation log")
		return
	}

	count := store.Replace(r.Context(), messages)
	utils.RespondJSON(w, http.StatusOK, map[string]int{"count": count})
}

type panelResponse struct {
	Participant participant.Participant   `json:"participant"`
	Messages    []conversation.PanelEntry `json:"messages"`
}

func (h *Handler) handlePanel(w http.ResponseWriter, r *http.Request) {
	role, err := conversation.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	store, ok := h.openStore(w, r)
	if !ok {
		return
	}

	profile, _ := h.participants.FindByRole(role)
	utils.RespondJSON(w, http.StatusOK, panelResponse{
		Participant: profile,
		Messages:    conversation.RenderPanel(store.Snapshot(), role),
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	store, ok := h.openStore(w, r)
	if !ok {
		return
	}

	out, err := h.summaries.Summarize(r.Context(), conversation.Lines(store.Snapshot()))
	summaryHandler.Respond(w, out, err)
}

func (h *Handler) openStore(w http.ResponseWriter, r *http.Request) (*conversationService.Store, bool) {
	store, err := h.registry.Open(r.Context(), chi.URLParam(r, "sessionID"))
	if err == nil {
		return store, true
	}

	if errors.Is(err, conversationService.ErrInvalidSessionID) {
		utils.RespondError(w, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	logging.Ctx(r.Context()).Error().Err(err).Msg("failed to open conversation")
	utils.RespondError(w, http.StatusInternalServerError, "failed to load conversation")
	return nil, false
}
