package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Site is the host platform site a message came from.
type Site struct {
	ID    uint64
	Slug  string
	Title string
}

// SiteRepository reads the host platform's site table.
type SiteRepository interface {
	FindByID(ctx context.Context, id uint64) (*Site, error)
	SetDB(db *gorm.DB)
}

type siteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &siteRepository{db: db}
}

func (r *siteRepository) FindByID(ctx context.Context, id uint64) (*Site, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var site Site
	err := r.db.WithContext(ctx).Table("site").
		Select("id, slug, title").
		Where("id = ?", id).
		Take(&site).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) SetDB(db *gorm.DB) {
	r.db = db
}
