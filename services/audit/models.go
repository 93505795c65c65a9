package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Action string

const (
	ActionLoginSuccess         Action = "LOGIN_SUCCESS"
	ActionLoginFailed          Action = "LOGIN_FAILED"
	ActionAccountLocked        Action = "ACCOUNT_LOCKED"
	ActionTokenRefreshed       Action = "TOKEN_REFRESHED"
	ActionTokenReuseDetected   Action = "TOKEN_REUSE_DETECTED"
	ActionImpersonationStarted Action = "IMPERSONATION_STARTED"
	ActionLogout               Action = "LOGOUT"
)

type AuditLog struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  string     `json:"tenant_id" gorm:"size:64;not null;index"`
	UserID    *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action    Action     `json:"action" gorm:"size:50;not null;index"`
	Detail    string     `json:"detail" gorm:"size:1000"`
	CreatedAt time.Time  `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
