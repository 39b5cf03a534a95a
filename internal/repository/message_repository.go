package repository

import (
	"context"
	"errors"
	"time"

	"github.com/contactus/backend/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

// ErrDuplicateStorageID reports a unique-index violation on storage_id.
var ErrDuplicateStorageID = errors.New("duplicate storage id")

// MessageFilter narrows a Search. Nil pointer fields are ignored.
type MessageFilter struct {
	OwnerID       *uint64
	Email         string
	ResourceID    *uint64
	SiteID        *uint64
	IsRead        *bool
	IsSpam        *bool
	ToAuthor      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

type MessageRepository interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
	FindByID(ctx context.Context, id uint64) (*model.ContactMessage, error)
	Search(ctx context.Context, f MessageFilter) ([]model.ContactMessage, int64, error)
	// SetFlag updates one moderation flag and the modified timestamp.
	SetFlag(ctx context.Context, id uint64, column string, value bool, modified time.Time) error
	// DeleteOlderThan removes matching rows and returns them so callers
	// can clean up attachment files.
	DeleteOlderThan(ctx context.Context, cutoff time.Time, onlyWithAttachment bool) ([]model.ContactMessage, error)
	SetDB(db *gorm.DB)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.ContactMessage) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateStorageID
		}
		return err
	}
	return nil
}

func (r *messageRepository) FindByID(ctx context.Context, id uint64) (*model.ContactMessage, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msg model.ContactMessage
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Search(ctx context.Context, f MessageFilter) ([]model.ContactMessage, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Model(&model.ContactMessage{})
	if f.OwnerID != nil {
		q = q.Where("owner_id = ?", *f.OwnerID)
	}
	if f.Email != "" {
		q = q.Where("email = ?", f.Email)
	}
	if f.ResourceID != nil {
		q = q.Where("resource_id = ?", *f.ResourceID)
	}
	if f.SiteID != nil {
		q = q.Where("site_id = ?", *f.SiteID)
	}
	if f.IsRead != nil {
		q = q.Where("is_read = ?", *f.IsRead)
	}
	if f.IsSpam != nil {
		q = q.Where("is_spam = ?", *f.IsSpam)
	}
	if f.ToAuthor != nil {
		q = q.Where("to_author = ?", *f.ToAuthor)
	}
	if f.CreatedAfter != nil {
		q = q.Where("created >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		q = q.Where("created < ?", *f.CreatedBefore)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	var msgs []model.ContactMessage
	if err := q.Order("created desc").Limit(limit).Offset(offset).Find(&msgs).Error; err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *messageRepository) SetFlag(ctx context.Context, id uint64, column string, value bool, modified time.Time) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	res := r.db.WithContext(ctx).Model(&model.ContactMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{column: value, "modified": modified})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *messageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, onlyWithAttachment bool) ([]model.ContactMessage, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Where("created < ?", cutoff)
	if onlyWithAttachment {
		q = q.Where("storage_id IS NOT NULL")
	}
	var msgs []model.ContactMessage
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	ids := make([]uint64, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	if err := r.db.WithContext(ctx).Delete(&model.ContactMessage{}, ids).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) SetDB(db *gorm.DB) {
	r.db = db
}
