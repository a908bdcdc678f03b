package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/naomedical/translator/backend/internal/model/participant"
	"github.com/naomedical/translator/backend/internal/service/ai"
	conversationService "github.com/naomedical/translator/backend/internal/service/conversation"
	"github.com/naomedical/translator/backend/internal/service/relay"
	summaryService "github.com/naomedical/translator/backend/internal/service/summary"
	"github.com/naomedical/translator/backend/internal/service/translation"
	"github.com/naomedical/translator/backend/internal/storage"
)

// newTestRouter builds the full router with no collaborator configured.
func newTestRouter(metricsEnabled bool) http.Handler {
	participants := participant.NewMemoryStore(participant.Seed())
	aiSvc := ai.NewService(nil, "none")
	translations := translation.NewService(aiSvc, participants, 0)
	registry := conversationService.NewRegistry(storage.NewMemoryStorage(), "medical-chat-history", "default")

	return NewRouter(Dependencies{
		Participants:   participants,
		Registry:       registry,
		Relay:          relay.New(registry, translations),
		Translations:   translations,
		Summaries:      summaryService.NewService(aiSvc, 0),
		MetricsEnabled: metricsEnabled,
	})
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestHealthz(t *testing.T) {
	resp := serve(newTestRouter(false), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsToggle(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(newTestRouter(true), http.MethodGet, "/metrics", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(newTestRouter(false), http.MethodGet, "/metrics", "").Code)
}

func TestTranslateWithoutCredential(t *testing.T) {
	resp := serve(newTestRouter(false), http.MethodPost, "/api/translate", `{"text":"Hello","targetRole":"patient"}`)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"translation":"Error: No API Key found."}`, resp.Body.String())
}

func TestSummaryRoutes(t *testing.T) {
	router := newTestRouter(false)

	resp := serve(router, http.MethodPost, "/api/summary", `{"messages":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = serve(router, http.MethodPost, "/api/summary", `{"messages":[{"sender":"doctor","originalText":"hi"}]}`)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"error":"Summary Failed"}`, resp.Body.String())
}

func TestSessionRoutesMounted(t *testing.T) {
	router := newTestRouter(false)
	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/api/sessions", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/participants", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/sessions/default/panels/doctor", "").Code)
}
