package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session tracks an authenticated login so that logout can revoke it.
type Session struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	IdentityID   string     `gorm:"type:uuid;not null;index" json:"identity_id"`
	Identity     *Identity  `gorm:"foreignKey:IdentityID" json:"identity,omitempty"`
	RefreshToken string     `gorm:"uniqueIndex;not null" json:"-"`
	IPAddress    string     `json:"ip_address"`
	UserAgent    string     `json:"user_agent"`
	ExpiresAt    time.Time  `gorm:"index" json:"expires_at"`
	LastUsedAt   time.Time  `json:"last_used_at"`
	CreatedAt    time.Time  `json:"created_at"`
	RevokedAt    *time.Time `json:"revoked_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
