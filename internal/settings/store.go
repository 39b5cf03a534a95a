package settings

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/contactus/backend/internal/model"
	"gorm.io/gorm"
)

// Store is the instance-wide key-value settings port. Values are JSON
// encoded, so any serializable type round-trips.
type Store interface {
	Get(ctx context.Context, id string, out any) (bool, error)
	Set(ctx context.Context, id string, value any) error
	Delete(ctx context.Context, id string) error
}

// SiteStore is the per-site settings port. SiteIDs lists the sites known
// to the platform so migration steps can touch every site.
type SiteStore interface {
	Get(ctx context.Context, siteID uint64, id string, out any) (bool, error)
	Set(ctx context.Context, siteID uint64, id string, value any) error
	Delete(ctx context.Context, siteID uint64, id string) error
	SiteIDs(ctx context.Context) ([]uint64, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Get(ctx context.Context, id string, out any) (bool, error) {
	var row model.Setting
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(row.Value), out)
}

func (s *gormStore) Set(ctx context.Context, id string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Save(&model.Setting{ID: id, Value: string(raw)}).Error
}

func (s *gormStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&model.Setting{}, "id = ?", id).Error
}

type gormSiteStore struct {
	db *gorm.DB
}

func NewSiteStore(db *gorm.DB) SiteStore {
	return &gormSiteStore{db: db}
}

func (s *gormSiteStore) Get(ctx context.Context, siteID uint64, id string, out any) (bool, error) {
	var row model.SiteSetting
	err := s.db.WithContext(ctx).First(&row, "id = ? AND site_id = ?", id, siteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(row.Value), out)
}

func (s *gormSiteStore) Set(ctx context.Context, siteID uint64, id string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Save(&model.SiteSetting{ID: id, SiteID: siteID, Value: string(raw)}).Error
}

func (s *gormSiteStore) Delete(ctx context.Context, siteID uint64, id string) error {
	return s.db.WithContext(ctx).Delete(&model.SiteSetting{}, "id = ? AND site_id = ?", id, siteID).Error
}

func (s *gormSiteStore) SiteIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Table("site").Order("id").Pluck("id", &ids).Error
	return ids, err
}
