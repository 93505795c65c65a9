package refreshtoken

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshToken is one link in a login session's rotation chain. A token is
// ACTIVE until it is either rotated (revoked with a pointer to its
// replacement) or expired (deleted). Neither state is ever re-entered.
type RefreshToken struct {
	ID                uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index:idx_refresh_tokens_user"`
	TenantID          string     `json:"tenant_id" gorm:"size:64;not null;index"`
	Token             string     `json:"-" gorm:"uniqueIndex;size:500;not null"`
	ExpiresAt         time.Time  `json:"expires_at" gorm:"not null;index"`
	Revoked           bool       `json:"revoked" gorm:"not null;default:false"`
	ReplacedByTokenID *uuid.UUID `json:"replaced_by_token_id" gorm:"type:uuid;index"`
	LastUsedAt        *time.Time `json:"last_used_at"`
	IPAddress         string     `json:"ip_address" gorm:"size:45"`
	UserAgent         string     `json:"user_agent" gorm:"size:500"`
	DeviceInfo        string     `json:"device_info" gorm:"size:255"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *RefreshToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// RotationResult is what a successful refresh returns: a fresh token pair
// minted from the user's current state, so role or tenant changes since the
// last login propagate immediately.
type RotationResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	UserID       uuid.UUID
	Email        string
	Role         string
	TenantID     string
}
