package participant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/naomedical/translator/backend/internal/model/participant"
)

func TestListParticipants(t *testing.T) {
	r := chi.NewRouter()
	New(participant.NewMemoryStore(participant.Seed())).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/participants", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var got []participant.Participant
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Language != "English" || got[1].Language != "Spanish" {
		t.Fatalf("unexpected participants: %+v", got)
	}
}
