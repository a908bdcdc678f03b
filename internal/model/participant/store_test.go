package participant

import (
	"testing"

	"github.com/naomedical/translator/backend/internal/model/conversation"
)

func TestFindByRole(t *testing.T) {
	store := NewMemoryStore(Seed())

	doctor, ok := store.FindByRole(conversation.RoleDoctor)
	if !ok {
		t.Fatal("expected doctor profile")
	}
	if doctor.Locale != "en-US" {
		t.Fatalf("unexpected doctor locale: %s", doctor.Locale)
	}

	if _, ok := NewMemoryStore(nil).FindByRole(conversation.RolePatient); ok {
		t.Fatal("expected no profile in empty store")
	}
}

func TestListReturnsCopy(t *testing.T) {
	store := NewMemoryStore(Seed())
	items := store.List()
	items[0].Name = "changed"

	if store.List()[0].Name == "changed" {
		t.Fatal("List must not expose internal slice")
	}
}

func TestLanguageFor(t *testing.T) {
	store := NewMemoryStore(Seed())
	if got := LanguageFor(store, conversation.RolePatient); got != "Spanish" {
		t.Fatalf("expected Spanish, got %s", got)
	}

	custom := NewMemoryStore([]Participant{{Role: conversation.RolePatient, Language: "Portuguese"}})
	if got := LanguageFor(custom, conversation.RolePatient); got != "Portuguese" {
		t.Fatalf("expected Portuguese, got %s", got)
	}
	if got := LanguageFor(custom, conversation.RoleDoctor); got != "English" {
		t.Fatalf("expected English fallback, got %s", got)
	}
	if got := LanguageFor(nil, conversation.RolePatient); got != "Spanish" {
		t.Fatalf("expected Spanish fallback, got %s", got)
	}
}
