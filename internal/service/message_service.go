package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/contactus/backend/internal/event"
	"github.com/contactus/backend/internal/model"
	"github.com/contactus/backend/internal/repository"
	"github.com/contactus/backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment describes one uploaded file accompanying a submission.
type Attachment struct {
	MediaType string
	Extension string
	Content   io.Reader
}

// SubmitInput is a candidate contact message.
type SubmitInput struct {
	Email      string
	Name       string
	Subject    string
	Body       string
	Fields     map[string]string
	Source     string
	RequestURL string
	IP         string
	UserAgent  string
	Newsletter *bool
	OwnerID    *uint64
	ResourceID *uint64
	SiteID     *uint64
	ToAuthor   bool
	Attachment *Attachment
}

// SubmitResult carries the persisted message plus non-fatal warnings
// (attachment storage failures after the record was already saved).
type SubmitResult struct {
	Message  *model.ContactMessage
	Warnings []string
}

type MessageService interface {
	Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error)
	Get(ctx context.Context, id uint64, actor model.Actor) (*model.ContactMessage, error)
	MarkRead(ctx context.Context, id uint64, actor model.Actor) (*model.ContactMessage, error)
	MarkSpam(ctx context.Context, id uint64, actor model.Actor) (*model.ContactMessage, error)
	Search(ctx context.Context, f repository.MessageFilter, actor model.Actor) ([]model.ContactMessage, int64, error)
	Purge(ctx context.Context, olderThan time.Duration, onlyWithAttachment bool, actor model.Actor) (int, error)
}

type messageService struct {
	repo  repository.MessageRepository
	files storage.FileStore
	bus   *event.Bus
	now   func() time.Time
}

func NewMessageService(repo repository.MessageRepository, files storage.FileStore, bus *event.Bus) MessageService {
	return &messageService{repo: repo, files: files, bus: bus, now: time.Now}
}

func (s *messageService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, invalid("email", "required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "malformed address")
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, invalid("body", "required")
	}
	if strings.TrimSpace(in.IP) == "" {
		return nil, invalid("ip", "required")
	}

	msg := &model.ContactMessage{
		OwnerID:    in.OwnerID,
		ResourceID: in.ResourceID,
		SiteID:     in.SiteID,
		Email:      email,
		Body:       body,
		IP:         strings.TrimSpace(in.IP),
		Newsletter: in.Newsletter,
		ToAuthor:   in.ToAuthor,
		Created:    s.now().UTC(),
	}
	if v := strings.TrimSpace(in.Name); v != "" {
		msg.Name = &v
	}
	if v := strings.TrimSpace(in.Subject); v != "" {
		msg.Subject = &v
	}
	if v := strings.TrimSpace(in.UserAgent); v != "" {
		msg.UserAgent = &v
	}
	if v := strings.TrimSpace(in.RequestURL); v != "" {
		msg.RequestURL = &v
	}
	if in.Source != "" {
		msg.Source = &in.Source
	}
	if len(in.Fields) > 0 {
		raw, err := json.Marshal(in.Fields)
		if err != nil {
			return nil, invalid("fields", "not serializable")
		}
		msg.Fields = raw
	}
	if in.Attachment != nil {
		storageID := uuid.NewString()
		msg.StorageID = &storageID
		if in.Attachment.MediaType != "" {
			mt := in.Attachment.MediaType
			msg.MediaType = &mt
		}
		if in.Attachment.Extension != "" {
			ext := strings.TrimPrefix(strings.ToLower(in.Attachment.Extension), ".")
			msg.Extension = &ext
		}
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrDuplicateStorageID) {
			return nil, ErrConflict
		}
		return nil, err
	}

	res := &SubmitResult{Message: msg}
	if in.Attachment != nil && in.Attachment.Content != nil {
		if err := s.files.Put(ctx, msg.Filename(), in.Attachment.Content); err != nil {
			// The record is the durable source of truth; a storage
			// failure must not lose the message.
			log.Printf("attachment store failed for message %d: %v", msg.ID, err)
			res.Warnings = append(res.Warnings, "the attached file could not be stored")
		}
	}

	var siteID uint64
	if msg.SiteID != nil {
		siteID = *msg.SiteID
	}
	s.bus.Publish(ctx, event.MessageCreated{Message: msg, SiteID: siteID})

	return res, nil
}

func (s *messageService) Get(ctx context.Context, id uint64, actor model.Actor) (*model.ContactMessage, error) {
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if actor.Admin {
				return nil, ErrNotFound
			}
			return nil, ErrForbidden
		}
		return nil, err
	}
	if !actor.Admin && !actor.Owns(msg) {
		return nil, ErrForbidden
	}
	return msg, nil
}

func (s *messageService) MarkRead(ctx context.Context, id uint64, actor model.Actor) (*model.ContactMessage, error) {
	return s.setFlag(ctx, id, actor, "is_read")
}

func (s *messageService) MarkSpam(ctx context.Context, id uint64, actor model.Actor) (*model.ContactMessage, error) {
	return s.setFlag(ctx, id, actor, "is_spam")
}

// setFlag transitions one moderation flag to true. Flagging is an
// administrative capability; owners may read but not flag. Setting an
// already-true flag is a no-op returning the current record.
func (s *messageService) setFlag(ctx context.Context, id uint64, actor model.Actor, column string) (*model.ContactMessage, error) {
	if !actor.Admin {
		return nil, ErrForbidden
	}
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	already := false
	switch column {
	case "is_read":
		already = msg.IsRead
	case "is_spam":
		already = msg.IsSpam
	default:
		return nil, fmt.Errorf("unknown flag column %q", column)
	}
	if already {
		return msg, nil
	}

	modified := s.now().UTC()
	if err := s.repo.SetFlag(ctx, id, column, true, modified); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	switch column {
	case "is_read":
		msg.IsRead = true
	case "is_spam":
		msg.IsSpam = true
	}
	msg.Modified = &modified

	s.bus.Publish(ctx, event.FlagChanged{Message: msg, Flag: column})
	return msg, nil
}

func (s *messageService) Search(ctx context.Context, f repository.MessageFilter, actor model.Actor) ([]model.ContactMessage, int64, error) {
	if !actor.Admin {
		// Non-admin searches are narrowed to the caller's own records
		// here, whatever OwnerID the caller supplied.
		if actor.UserID == nil {
			return nil, 0, ErrForbidden
		}
		f.OwnerID = actor.UserID
	}
	return s.repo.Search(ctx, f)
}

// Purge deletes messages older than the window. Destructive, so the
// admin capability is checked here as well as at the route.
func (s *messageService) Purge(ctx context.Context, olderThan time.Duration, onlyWithAttachment bool, actor model.Actor) (int, error) {
	if !actor.Admin {
		return 0, ErrForbidden
	}
	cutoff := s.now().UTC().Add(-olderThan)
	msgs, err := s.repo.DeleteOlderThan(ctx, cutoff, onlyWithAttachment)
	if err != nil {
		return 0, err
	}
	for i := range msgs {
		if !msgs[i].HasAttachment() {
			continue
		}
		if err := s.files.Delete(ctx, msgs[i].Filename()); err != nil {
			log.Printf("attachment delete failed for message %d: %v", msgs[i].ID, err)
		}
	}
	return len(msgs), nil
}
