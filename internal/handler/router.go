package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	conversationHandler "github.com/naomedical/translator/backend/internal/handler/conversation"
	participantHandler "github.com/naomedical/translator/backend/internal/handler/participant"
	"github.com/naomedical/translator/backend/internal/handler/stream"
	summaryHandler "github.com/naomedical/translator/backend/internal/handler/summary"
	"github.com/naomedical/translator/backend/internal/handler/translate"
	"github.com/naomedical/translator/backend/internal/logging"
	"github.com/naomedical/translator/backend/internal/metrics"
	middlewarePkg "github.com/naomedical/translator/backend/internal/middleware"
	"github.com/naomedical/translator/backend/internal/model/participant"
	conversationService "github.com/naomedical/translator/backend/internal/service/conversation"
	"github.com/naomedical/translator/backend/internal/service/relay"
	summaryService "github.com/naomedical/translator/backend/internal/service/summary"
	"github.com/naomedical/translator/backend/internal/service/translation"
	"github.com/naomedical/translator/backend/pkg/utils"
)

// Dependencies are the services the HTTP layer is built on. Cancelling
// StreamContext closes every open panel stream and socket.
type Dependencies struct {
	StreamContext  context.Context
	Participants   participant.Store
	Registry       *conversationService.Registry
	Relay          *relay.Relay
	Translations   *translation.Service
	Summaries      *summaryService.Service
	MetricsEnabled bool
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		translate.New(deps.Translations).RegisterRoutes(api)
		summaryHandler.New(deps.Summaries).RegisterRoutes(api)
		participantHandler.New(deps.Participants).RegisterRoutes(api)
		conversationHandler.New(deps.Registry, deps.Relay, deps.Summaries, deps.Participants).RegisterRoutes(api)
		stream.New(deps.StreamContext, deps.Registry, deps.Relay).RegisterRoutes(api)
	})

	return r
}
