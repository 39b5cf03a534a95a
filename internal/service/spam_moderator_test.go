package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/contactus/backend/internal/event"
	"github.com/contactus/backend/internal/model"
)

type mockSpamScorer struct {
	scoreFunc func(ctx context.Context, subject, body string) (float64, error)
}

func (m *mockSpamScorer) Score(ctx context.Context, subject, body string) (float64, error) {
	return m.scoreFunc(ctx, subject, body)
}

func TestSpamModerator(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		scoreErr error
		wantFlag bool
	}{
		{"clean message", 5, nil, false},
		{"just under threshold", 79.9, nil, false},
		{"at threshold", 80, nil, true},
		{"obvious spam", 100, nil, true},
		{"scorer failure", 0, errors.New("model unavailable"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flagged bool
			repo := &mockMessageRepository{
				setFlagFunc: func(ctx context.Context, id uint64, column string, value bool, modified time.Time) error {
					if column != "is_spam" || !value {
						t.Fatalf("SetFlag(%q, %v)", column, value)
					}
					flagged = true
					return nil
				},
			}
			scorer := &mockSpamScorer{
				scoreFunc: func(ctx context.Context, subject, body string) (float64, error) {
					return tt.score, tt.scoreErr
				},
			}
			m := NewSpamModerator(repo, scorer)

			m.HandleMessageCreated(context.Background(), event.MessageCreated{
				Message: &model.ContactMessage{ID: 3, Body: "buy now"},
			})
			if flagged != tt.wantFlag {
				t.Errorf("flagged=%v, want %v", flagged, tt.wantFlag)
			}
		})
	}
}

func TestSpamModerator_PassesSubjectAndBody(t *testing.T) {
	repo := &mockMessageRepository{
		setFlagFunc: func(ctx context.Context, id uint64, column string, value bool, modified time.Time) error {
			return nil
		},
	}
	var gotSubject, gotBody string
	scorer := &mockSpamScorer{
		scoreFunc: func(ctx context.Context, subject, body string) (float64, error) {
			gotSubject, gotBody = subject, body
			return 0, nil
		},
	}
	m := NewSpamModerator(repo, scorer)

	subject := "Cheap watches"
	m.HandleMessageCreated(context.Background(), event.MessageCreated{
		Message: &model.ContactMessage{ID: 3, Subject: &subject, Body: "buy now"},
	})
	if gotSubject != "Cheap watches" || gotBody != "buy now" {
		t.Errorf("scored %q / %q", gotSubject, gotBody)
	}
}
