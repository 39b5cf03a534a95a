package event

import (
	"context"
	"sync"

	"github.com/contactus/backend/internal/model"
)

// MessageCreated is published after a submission has been persisted.
type MessageCreated struct {
	Message *model.ContactMessage
	// SiteSettingsID is the site the form belonged to, 0 when none.
	SiteID uint64
}

// FlagChanged is published after a moderation flag actually transitioned.
type FlagChanged struct {
	Message *model.ContactMessage
	Flag    string // "is_read" or "is_spam"
}

// Bus dispatches domain events synchronously to all subscribers, in
// subscription order. Subscriber errors are the subscriber's problem;
// publication never fails.
type Bus struct {
	mu   sync.RWMutex
	subs []func(ctx context.Context, ev any)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(fn func(ctx context.Context, ev any)) {
	b.mu.Lock()
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
}

func (b *Bus) Publish(ctx context.Context, ev any) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(ctx, ev)
	}
}
