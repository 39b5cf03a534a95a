package model

// Setting is one instance-wide key-value pair. Values are stored as JSON
// so lists and maps round-trip without a schema change.
type Setting struct {
	ID    string `gorm:"primaryKey;size:190"`
	Value string `gorm:"type:longtext;not null"`
}

func (Setting) TableName() string {
	return "setting"
}

// SiteSetting is one per-site key-value pair.
type SiteSetting struct {
	ID     string `gorm:"primaryKey;size:190"`
	SiteID uint64 `gorm:"primaryKey;column:site_id"`
	Value  string `gorm:"type:longtext;not null"`
}

func (SiteSetting) TableName() string {
	return "site_setting"
}
