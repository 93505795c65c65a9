package audit

import (
	"context"

	"github.com/Triet1705/client-hub-backend/background"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service records security events. Writes are deferred to the background
// pool and best-effort: a failed audit write degrades to a warning, it never
// fails the operation being audited. Isolation still applies: the row is
// written under the tenant propagated from the submitting request.
type Service struct {
	db     *gorm.DB
	pool   *background.Pool
	logger *logging.Service
}

func NewService(db *gorm.DB, pool *background.Pool, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		pool:   pool,
		logger: logger,
	}
}

// Record dispatches one audit entry. The ctx passed here is the request
// context; its tenant and principal are captured at this handoff point.
func (s *Service) Record(ctx context.Context, userID *uuid.UUID, action Action, detail string) {
	entry := AuditLog{
		UserID: userID,
		Action: action,
		Detail: detail,
	}

	err := s.pool.Submit(ctx, "audit:"+string(action), func(taskCtx context.Context) error {
		return s.db.WithContext(taskCtx).Create(&entry).Error
	})
	if err != nil {
		s.logger.Warn("audit entry dropped",
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

// RecentForTenant returns the caller's tenant audit trail, newest first.
func (s *Service) RecentForTenant(ctx context.Context, limit int) ([]AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []AuditLog
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
