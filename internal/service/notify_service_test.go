package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/contactus/backend/internal/event"
	"github.com/contactus/backend/internal/mail"
	"github.com/contactus/backend/internal/model"
	"github.com/contactus/backend/internal/repository"
	"github.com/contactus/backend/internal/settings"
	"gorm.io/gorm"
)

type mockMailer struct {
	sendFunc func(ctx context.Context, msg mail.Message) error
	sent     []mail.Message
}

func (m *mockMailer) Send(ctx context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, msg)
	}
	return nil
}

type mockAuthorRepository struct {
	findFunc func(ctx context.Context, resourceID uint64) (*repository.Author, error)
}

func (m *mockAuthorRepository) FindResourceAuthor(ctx context.Context, resourceID uint64) (*repository.Author, error) {
	if m.findFunc == nil {
		return nil, nil
	}
	return m.findFunc(ctx, resourceID)
}

func (m *mockAuthorRepository) SetDB(db *gorm.DB) {}

type mockSiteRepository struct {
	findFunc func(ctx context.Context, id uint64) (*repository.Site, error)
}

func (m *mockSiteRepository) FindByID(ctx context.Context, id uint64) (*repository.Site, error) {
	if m.findFunc == nil {
		return nil, nil
	}
	return m.findFunc(ctx, id)
}

func (m *mockSiteRepository) SetDB(db *gorm.DB) {}

type notifyFixture struct {
	global  *settings.MemStore
	sites   *settings.MemSiteStore
	mailer  *mockMailer
	authors *mockAuthorRepository
	svc     *NotifyService
}

func newNotifyFixture(t *testing.T) *notifyFixture {
	t.Helper()
	f := &notifyFixture{
		global:  settings.NewMemStore(),
		sites:   settings.NewMemSiteStore(),
		mailer:  &mockMailer{},
		authors: &mockAuthorRepository{},
	}
	f.svc = NewNotifyService(f.global, f.sites, f.mailer, f.authors, &mockSiteRepository{}, "Archive", "https://archive.example.org")
	return f
}

func (f *notifyFixture) setGlobal(t *testing.T, g settings.GlobalSettings) {
	t.Helper()
	if err := settings.SaveGlobal(context.Background(), f.global, g); err != nil {
		t.Fatal(err)
	}
}

func basicMessage() *model.ContactMessage {
	name := "Jane Roe"
	subject := "About a photograph"
	return &model.ContactMessage{
		ID:      1,
		Email:   "visitor@example.org",
		Name:    &name,
		Subject: &subject,
		Body:    "Where was this taken?",
		IP:      "203.0.113.7",
	}
}

// mailsTo returns the messages addressed to the given recipient.
func mailsTo(sent []mail.Message, to string) []mail.Message {
	var out []mail.Message
	for _, m := range sent {
		for _, r := range m.To {
			if r == to {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

func TestNotify_AdminAndConfirmation(t *testing.T) {
	f := newNotifyFixture(t)
	g := settings.DefaultGlobal()
	g.NotifyRecipients = []string{"curator@example.org"}
	f.setGlobal(t, g)

	f.svc.HandleMessageCreated(context.Background(), event.MessageCreated{Message: basicMessage()})

	admin := mailsTo(f.mailer.sent, "curator@example.org")
	if len(admin) != 1 {
		t.Fatalf("admin notifications = %d, want 1", len(admin))
	}
	if admin[0].ReplyTo != "visitor@example.org" {
		t.Errorf("ReplyTo=%q", admin[0].ReplyTo)
	}
	if !strings.Contains(admin[0].Subject, "About a photograph") {
		t.Errorf("subject=%q", admin[0].Subject)
	}
	if !strings.Contains(admin[0].Body, "Where was this taken?") {
		t.Errorf("body=%q", admin[0].Body)
	}

	confirmation := mailsTo(f.mailer.sent, "visitor@example.org")
	if len(confirmation) != 1 {
		t.Fatalf("confirmations = %d, want 1", len(confirmation))
	}
	if confirmation[0].From != "curator@example.org" {
		t.Errorf("From=%q, want first recipient", confirmation[0].From)
	}
}

func TestNotify_NoRecipientsStillConfirms(t *testing.T) {
	f := newNotifyFixture(t)
	f.setGlobal(t, settings.DefaultGlobal())

	f.svc.HandleMessageCreated(context.Background(), event.MessageCreated{Message: basicMessage()})

	if len(f.mailer.sent) != 1 {
		t.Fatalf("sent=%d, want only the confirmation", len(f.mailer.sent))
	}
	if f.mailer.sent[0].To[0] != "visitor@example.org" {
		t.Errorf("To=%v", f.mailer.sent[0].To)
	}
}

func TestNotify_ConfirmationDisabled(t *testing.T) {
	f := newNotifyFixture(t)
	g := settings.DefaultGlobal()
	g.NotifyRecipients = []string{"curator@example.org"}
	f.setGlobal(t, g)
	f.sites = settings.NewMemSiteStore(0)
	if err := f.sites.Set(context.Background(), 0, settings.KeyConfirmationEnabled, false); err != nil {
		t.Fatal(err)
	}
	f.svc = NewNotifyService(f.global, f.sites, f.mailer, f.authors, &mockSiteRepository{}, "Archive", "https://archive.example.org")

	f.svc.HandleMessageCreated(context.Background(), event.MessageCreated{Message: basicMessage()})

	if got := mailsTo(f.mailer.sent, "visitor@example.org"); len(got) != 0 {
		t.Fatalf("visitor mail=%d, want none", len(got))
	}
	if got := mailsTo(f.mailer.sent, "curator@example.org"); len(got) != 1 {
		t.Fatalf("admin mail=%d, want 1", len(got))
	}
}

func TestNotify_ToAuthorRouting(t *testing.T) {
	resourceID := uint64(12)

	tests := []struct {
		name       string
		author     string
		authorOnly bool
		resolved   *repository.Author
		wantAuthor int
		wantAdmin  int
	}{
		{"feature disabled", "disabled", false, &repository.Author{Name: "Curator", Email: "owner@example.org"}, 0, 1},
		{"author resolved", "owner", false, &repository.Author{Name: "Curator", Email: "owner@example.org"}, 1, 1},
		{"author only", "owner", true, &repository.Author{Name: "Curator", Email: "owner@example.org"}, 1, 0},
		{"author unresolved", "owner", true, nil, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newNotifyFixture(t)
			g := settings.DefaultGlobal()
			g.NotifyRecipients = []string{"curator@example.org"}
			g.Author = tt.author
			g.AuthorOnly = tt.authorOnly
			f.setGlobal(t, g)
			f.authors.findFunc = func(ctx context.Context, id uint64) (*repository.Author, error) {
				if id != resourceID {
					t.Fatalf("resolved resource %d", id)
				}
				return tt.resolved, nil
			}

			msg := basicMessage()
			msg.ToAuthor = true
			msg.ResourceID = &resourceID
			f.svc.HandleMessageCreated(context.Background(), event.MessageCreated{Message: msg})

			if got := mailsTo(f.mailer.sent, "owner@example.org"); len(got) != tt.wantAuthor {
				t.Errorf("author mail=%d, want %d", len(got), tt.wantAuthor)
			}
			if got := mailsTo(f.mailer.sent, "curator@example.org"); len(got) != tt.wantAdmin {
				t.Errorf("admin mail=%d, want %d", len(got), tt.wantAdmin)
			}
		})
	}
}

func TestNotify_NewsletterConfirmation(t *testing.T) {
	f := newNotifyFixture(t)
	f.setGlobal(t, settings.DefaultGlobal())

	yes := true
	msg := basicMessage()
	msg.Newsletter = &yes
	f.svc.HandleMessageCreated(context.Background(), event.MessageCreated{Message: msg})

	visitor := mailsTo(f.mailer.sent, "visitor@example.org")
	if len(visitor) != 2 {
		t.Fatalf("visitor mail=%d, want confirmation plus newsletter", len(visitor))
	}
	var newsletter bool
	for _, m := range visitor {
		if strings.Contains(m.Subject, "newsletter") {
			newsletter = true
		}
	}
	if !newsletter {
		t.Errorf("no newsletter confirmation among %v", visitor)
	}
}

func TestNotify_SendWithUserEmail(t *testing.T) {
	f := newNotifyFixture(t)
	g := settings.DefaultGlobal()
	g.NotifyRecipients = []string{"curator@example.org"}
	g.SendWithUserEmail = true
	f.setGlobal(t, g)

	f.svc.HandleMessageCreated(context.Background(), event.MessageCreated{Message: basicMessage()})

	admin := mailsTo(f.mailer.sent, "curator@example.org")
	if len(admin) != 1 || admin[0].From != "visitor@example.org" {
		t.Fatalf("admin mail=%+v, want visitor as sender", admin)
	}
}

func TestNotify_MailerFailureIsSwallowed(t *testing.T) {
	f := newNotifyFixture(t)
	g := settings.DefaultGlobal()
	g.NotifyRecipients = []string{"curator@example.org"}
	f.setGlobal(t, g)
	f.mailer.sendFunc = func(ctx context.Context, msg mail.Message) error {
		return errors.New("relay down")
	}

	// Must not panic and must still try every mail.
	f.svc.HandleMessageCreated(context.Background(), event.MessageCreated{Message: basicMessage()})
	if len(f.mailer.sent) != 2 {
		t.Fatalf("attempts=%d, want notification and confirmation", len(f.mailer.sent))
	}
}
