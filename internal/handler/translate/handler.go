package translate

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/naomedical/translator/backend/internal/model/conversation"
	"github.com/naomedical/translator/backend/internal/service/translation"
	"github.com/naomedical/translator/backend/pkg/utils"
)

// Handler serves the stateless translate contract.
type Handler struct {
	translations *translation.Service
}

// New 创建翻译处理器
func New(translations *translation.Service) *Handler {
	return &Handler{translations: translations}
}

// RegisterRoutes 注册翻译路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/translate", h.handleTranslate)
}

type translateResponse struct {
	Translation string `json:"translation"`
}

func (h *Handler) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text       string `json:"text"`
		TargetRole string `json:"targetRole"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := conversation.ParseRole(payload.TargetRole)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "targetRole must be doctor or patient")
		return
	}

	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	t := h.translations.Translate(r.Context(), payload.Text, target)
	switch {
	case t.State == conversation.StateTranslated:
		utils.RespondJSON(w, http.StatusOK, translateResponse{Translation: t.Text})
	case t.Text == conversation.MissingCredential:
		utils.RespondJSON(w, http.StatusOK, translateResponse{Translation: conversation.MissingCredential})
	default:
		utils.RespondJSON(w, http.StatusInternalServerError, translateResponse{Translation: conversation.TranslationError})
	}
}
