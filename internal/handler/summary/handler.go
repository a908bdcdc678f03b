package summary

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/naomedical/translator/backend/internal/model/conversation"
	summaryService "github.com/naomedical/translator/backend/internal/service/summary"
	"github.com/naomedical/translator/backend/pkg/utils"
)

// Handler serves the stateless summary contract: the client sends the
// messages it holds.
type Handler struct {
	summaries *summaryService.Service
}

// New 创建摘要处理器
func New(summaries *summaryService.Service) *Handler {
	return &Handler{summaries: summaries}
}

// RegisterRoutes 注册摘要路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/summary", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Messages []conversation.TranscriptLine `json:"messages"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.summaries.Summarize(r.Context(), payload.Messages)
	Respond(w, out, err)
}

// Respond maps a summary outcome onto the HTTP contract.
func Respond(w http.ResponseWriter, summary string, err error) {
	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusOK, map[string]string{"summary": summary})
	case errors.Is(err, summaryService.ErrNothingToSummarize):
		utils.RespondError(w, http.StatusBadRequest, summaryService.NothingToSummarizeText)
	default:
		utils.RespondError(w, http.StatusInternalServerError, summaryService.FailedText)
	}
}
