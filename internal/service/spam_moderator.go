package service

import (
	"context"
	"log"
	"time"

	"github.com/contactus/backend/internal/antispam"
	"github.com/contactus/backend/internal/event"
	"github.com/contactus/backend/internal/repository"
)

// SpamScorer rates a message 0-100 for spam likelihood.
type SpamScorer interface {
	Score(ctx context.Context, subject, body string) (float64, error)
}

// SpamModerator flags freshly created messages whose score crosses the
// threshold. Advisory only: a scorer failure leaves the message alone,
// and submissions are never rejected on its account.
type SpamModerator struct {
	repo   repository.MessageRepository
	scorer SpamScorer
	now    func() time.Time
}

func NewSpamModerator(repo repository.MessageRepository, scorer SpamScorer) *SpamModerator {
	return &SpamModerator{repo: repo, scorer: scorer, now: time.Now}
}

func (m *SpamModerator) Register(bus *event.Bus) {
	bus.Subscribe(func(ctx context.Context, ev any) {
		if created, ok := ev.(event.MessageCreated); ok {
			m.HandleMessageCreated(ctx, created)
		}
	})
}

func (m *SpamModerator) HandleMessageCreated(ctx context.Context, ev event.MessageCreated) {
	subject := ""
	if ev.Message.Subject != nil {
		subject = *ev.Message.Subject
	}
	score, err := m.scorer.Score(ctx, subject, ev.Message.Body)
	if err != nil {
		log.Printf("spam check skipped for message %d: %v", ev.Message.ID, err)
		return
	}
	if score < antispam.SpamThreshold {
		return
	}
	if err := m.repo.SetFlag(ctx, ev.Message.ID, "is_spam", true, m.now().UTC()); err != nil {
		log.Printf("spam flag failed for message %d: %v", ev.Message.ID, err)
	}
}
