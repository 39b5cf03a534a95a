package model

import (
	"time"

	"gorm.io/datatypes"
)

// ContactMessage is a message submitted through a site contact form.
// Owner, resource and site are references into the host platform; the
// message survives deletion of any of them (columns are set to null).
type ContactMessage struct {
	ID         uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID    *uint64        `gorm:"column:owner_id;index" json:"ownerId,omitempty"`
	ResourceID *uint64        `gorm:"column:resource_id;index" json:"resourceId,omitempty"`
	SiteID     *uint64        `gorm:"column:site_id;index" json:"siteId,omitempty"`
	Email      string         `gorm:"size:190;not null" json:"email"`
	Name       *string        `gorm:"size:190" json:"name,omitempty"`
	Subject    *string        `gorm:"type:longtext" json:"subject,omitempty"`
	Body       string         `gorm:"type:longtext;not null" json:"body"`
	Fields     datatypes.JSON `gorm:"column:fields" json:"fields,omitempty"`
	Source     *string        `gorm:"type:longtext" json:"-"`
	MediaType  *string        `gorm:"column:media_type;size:190" json:"mediaType,omitempty"`
	StorageID  *string        `gorm:"column:storage_id;size:190;uniqueIndex" json:"storageId,omitempty"`
	Extension  *string        `gorm:"size:190" json:"extension,omitempty"`
	RequestURL *string        `gorm:"column:request_url;size:1024" json:"requestUrl,omitempty"`
	IP         string         `gorm:"column:ip;size:45;not null" json:"ip"`
	UserAgent  *string        `gorm:"column:user_agent;size:1024" json:"userAgent,omitempty"`
	Newsletter *bool          `gorm:"column:newsletter" json:"newsletter,omitempty"`
	IsRead     bool           `gorm:"column:is_read;not null;default:false" json:"isRead"`
	IsSpam     bool           `gorm:"column:is_spam;not null;default:false" json:"isSpam"`
	ToAuthor   bool           `gorm:"column:to_author;not null;default:false" json:"toAuthor"`
	Created    time.Time      `gorm:"column:created;not null" json:"created"`
	Modified   *time.Time     `gorm:"column:modified" json:"modified,omitempty"`
}

func (ContactMessage) TableName() string {
	return "contact_message"
}

// HasAttachment reports whether the message carries a stored file.
func (m *ContactMessage) HasAttachment() bool {
	return m.StorageID != nil && *m.StorageID != ""
}

// Filename returns the attachment file name ("storageid.ext"), or ""
// when there is no attachment.
func (m *ContactMessage) Filename() string {
	if !m.HasAttachment() {
		return ""
	}
	name := *m.StorageID
	if m.Extension != nil && *m.Extension != "" {
		name += "." + *m.Extension
	}
	return name
}
