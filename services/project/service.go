package project

import (
	"context"
	"errors"

	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("project not found")

type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{db: db, logger: logger}
}

// Create stamps the project with the caller's tenant; the database layer
// rejects a mismatching TenantID.
func (s *Service) Create(ctx context.Context, p *Project) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		s.logger.Errorf("failed to create project: %v", err)
		return err
	}
	return nil
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	var p Project
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) List(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]Project, error) {
	var projects []Project
	err := s.db.WithContext(ctx).Where("client_id = ?", clientID).Order("created_at DESC").Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Project, error) {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Status = status
	if err := s.db.WithContext(ctx).Model(&Project{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Project{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}
