package investment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agrolease/agrolease/internal/apperr"
	"github.com/agrolease/agrolease/internal/application/actor"
	"github.com/agrolease/agrolease/internal/domain/audit"
	domain "github.com/agrolease/agrolease/internal/domain/investment"
	"github.com/agrolease/agrolease/internal/domain/lease"
)

// Auditor records investment events.
type Auditor interface {
	Log(ctx context.Context, entry *audit.AuditEntry)
}

// Service handles investments placed against leases.
type Service struct {
	repo      domain.Repository
	leaseRepo lease.Repository
	auditSvc  Auditor
	logger    zerolog.Logger
}

// NewService creates an investment service.
func NewService(repo domain.Repository, leaseRepo lease.Repository, auditSvc Auditor, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		leaseRepo: leaseRepo,
		auditSvc:  auditSvc,
		logger:    logger.With().Str("service", "investment").Logger(),
	}
}

// Create places an investment against an approved or active lease.
func (s *Service) Create(ctx context.Context, leaseID uuid.UUID, a actor.Actor, amount int64) (*domain.Investment, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	ls, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if ls == nil {
		return nil, fmt.Errorf("lease %s: %w", leaseID, apperr.ErrNotFound)
	}
	if ls.Status != lease.StatusApproved && ls.Status != lease.StatusActive {
		return nil, fmt.Errorf("%w: lease is %s", apperr.ErrValidation, ls.Status)
	}

	now := time.Now().UTC()
	inv := &domain.Investment{
		InvestmentID: uuid.New(),
		InvestorID:   a.UserID,
		LeaseID:      leaseID,
		Amount:       amount,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeInvestment,
		EntityID:   inv.InvestmentID.String(),
		Action:     audit.ActionCreate,
		Actor:      a.String(),
		ActorRoles: a.Roles(),
	})
	s.logger.Info().Str("investment_id", inv.InvestmentID.String()).Str("lease_id", leaseID.String()).Msg("investment placed")
	return inv, nil
}

// GetByID returns one investment, restricted to the investor unless the
// caller is an admin.
func (s *Service) GetByID(ctx context.Context, investmentID uuid.UUID, a actor.Actor) (*domain.Investment, error) {
	inv, err := s.repo.GetByID(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("investment %s: %w", investmentID, apperr.ErrNotFound)
	}
	if !a.IsAdmin() && inv.InvestorID != a.UserID {
		return nil, fmt.Errorf("%w: not your investment", apperr.ErrForbidden)
	}
	return inv, nil
}

// List returns investments. Non-admin callers only see their own.
func (s *Service) List(ctx context.Context, filter domain.Filter, a actor.Actor, limit, offset int) ([]*domain.Investment, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if !a.IsAdmin() {
		filter.InvestorID = &a.UserID
	}
	return s.repo.List(ctx, filter, limit, offset)
}
