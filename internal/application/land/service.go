package land

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agrolease/agrolease/internal/apperr"
	"github.com/agrolease/agrolease/internal/domain/audit"
	domain "github.com/agrolease/agrolease/internal/domain/land"
)

// Auditor records land events.
type Auditor interface {
	Log(ctx context.Context, entry *audit.AuditEntry)
}

// Service handles land records.
type Service struct {
	repo     domain.Repository
	auditSvc Auditor
	logger   zerolog.Logger
}

// NewService creates a land service.
func NewService(repo domain.Repository, auditSvc Auditor, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		auditSvc: auditSvc,
		logger:   logger.With().Str("service", "land").Logger(),
	}
}

// CreateInput defines land listing input.
type CreateInput struct {
	Title     string
	Location  string
	SizeAcres float64
}

// Create lists a parcel for the owner.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput, actor string) (*domain.Land, error) {
	if err := domain.Validate(input.Title, input.Location, input.SizeAcres); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	now := time.Now().UTC()
	l := &domain.Land{
		LandID:    uuid.New(),
		OwnerID:   ownerID,
		Title:     input.Title,
		Location:  input.Location,
		SizeAcres: input.SizeAcres,
		Status:    domain.StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeLand,
		EntityID:   l.LandID.String(),
		Action:     audit.ActionCreate,
		Actor:      actor,
	})
	s.logger.Info().Str("land_id", l.LandID.String()).Str("owner_id", ownerID.String()).Msg("land listed")
	return l, nil
}

func (s *Service) GetByID(ctx context.Context, landID uuid.UUID) (*domain.Land, error) {
	l, err := s.repo.GetByID(ctx, landID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("land %s: %w", landID, apperr.ErrNotFound)
	}
	return l, nil
}

func (s *Service) List(ctx context.Context, filter domain.Filter, limit, offset int) ([]*domain.Land, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.repo.List(ctx, filter, limit, offset)
}
