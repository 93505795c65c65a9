package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleClient     Role = "CLIENT"
	RoleFreelancer Role = "FREELANCER"
)

type User struct {
	ID                  uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	FullName            string     `json:"full_name" gorm:"size:255;not null"`
	Email               string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password            string     `json:"-" gorm:"size:255;not null"`
	Role                Role       `json:"role" gorm:"size:20;not null;default:CLIENT"`
	TenantID            string     `json:"tenant_id" gorm:"size:64;not null;index"`
	Active              bool       `json:"active" gorm:"not null;default:true"`
	FailedLoginAttempts int        `json:"-" gorm:"not null;default:0"`
	AccountLockedUntil  *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Locked reports whether the account is currently locked out. Locks expire
// lazily: once AccountLockedUntil passes, the account behaves as unlocked
// without any background job.
func (u *User) Locked() bool {
	return u.AccountLockedUntil != nil && time.Now().Before(*u.AccountLockedUntil)
}
