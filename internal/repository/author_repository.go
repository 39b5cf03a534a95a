package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Author is the contact point for the author of a platform resource.
type Author struct {
	Name  string
	Email string
}

// AuthorRepository resolves the author of a resource. Backed by the host
// platform's resource and user tables, which this module reads but never
// writes.
type AuthorRepository interface {
	FindResourceAuthor(ctx context.Context, resourceID uint64) (*Author, error)
	SetDB(db *gorm.DB)
}

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) FindResourceAuthor(ctx context.Context, resourceID uint64) (*Author, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var row struct {
		Name  string
		Email string
	}
	err := r.db.WithContext(ctx).
		Table("resource").
		Select("user.name AS name, user.email AS email").
		Joins("JOIN user ON user.id = resource.owner_id").
		Where("resource.id = ?", resourceID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if row.Email == "" {
		return nil, nil
	}
	return &Author{Name: row.Name, Email: row.Email}, nil
}

func (r *authorRepository) SetDB(db *gorm.DB) {
	r.db = db
}
