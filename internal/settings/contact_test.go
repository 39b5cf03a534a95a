package settings

import (
	"context"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	g := DefaultGlobal()
	if g.Author != "disabled" {
		t.Errorf("Author=%q, want disabled", g.Author)
	}
	if g.CreateZip != "original" {
		t.Errorf("CreateZip=%q, want original", g.CreateZip)
	}
	if g.DeleteZip != 30 {
		t.Errorf("DeleteZip=%d, want 30", g.DeleteZip)
	}

	s := DefaultSite()
	if !s.ConfirmationEnabled {
		t.Error("confirmation must be enabled by default")
	}
	if !s.Antispam {
		t.Error("antispam must be enabled by default")
	}
	if len(s.Questions) != 10 {
		t.Errorf("default questions = %d, want 10", len(s.Questions))
	}
	for q, a := range s.Questions {
		if a == "" {
			t.Errorf("question %q has no answer", q)
		}
	}
	for _, ph := range []string{"{email}", "{name}", "{ip}", "{newsletter}", "{subject}", "{message}"} {
		if !strings.Contains(s.NotifyBody, ph) {
			t.Errorf("notify body missing %s", ph)
		}
	}
}

func TestGlobalRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	want := GlobalSettings{
		NotifyRecipients:  []string{"curator@example.org", "archivist@example.org"},
		Author:            "owner",
		AuthorOnly:        true,
		SendWithUserEmail: false,
		CreateZip:         "large",
		DeleteZip:         7,
	}
	if err := SaveGlobal(ctx, store, want); err != nil {
		t.Fatalf("SaveGlobal: %v", err)
	}
	got, err := LoadGlobal(ctx, store)
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if got.Author != "owner" || !got.AuthorOnly || got.CreateZip != "large" || got.DeleteZip != 7 {
		t.Fatalf("got %+v", got)
	}
	if len(got.NotifyRecipients) != 2 || got.NotifyRecipients[0] != "curator@example.org" {
		t.Fatalf("recipients=%v", got.NotifyRecipients)
	}
}

func TestLoadGlobal_EmptyStoreYieldsDefaults(t *testing.T) {
	got, err := LoadGlobal(context.Background(), NewMemStore())
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	want := DefaultGlobal()
	if got.Author != want.Author || got.CreateZip != want.CreateZip || got.DeleteZip != want.DeleteZip {
		t.Fatalf("got %+v, want defaults", got)
	}
}

func TestLoadSite_OverridesAndDefaults(t *testing.T) {
	ctx := context.Background()
	store := NewMemSiteStore(1)
	if err := store.Set(ctx, 1, KeyNotifySubject, "A visitor wrote"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, 1, KeyAntispam, false); err != nil {
		t.Fatal(err)
	}

	got, err := LoadSite(ctx, store, 1)
	if err != nil {
		t.Fatalf("LoadSite: %v", err)
	}
	if got.NotifySubject != "A visitor wrote" {
		t.Errorf("NotifySubject=%q", got.NotifySubject)
	}
	if got.Antispam {
		t.Error("antispam override not applied")
	}
	// Unwritten keys keep their defaults.
	if got.ConsentLabel != DefaultSite().ConsentLabel {
		t.Errorf("ConsentLabel=%q", got.ConsentLabel)
	}
}
