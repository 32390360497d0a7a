package lease

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agrolease/agrolease/internal/apperr"
	"github.com/agrolease/agrolease/internal/application/actor"
	"github.com/agrolease/agrolease/internal/domain/audit"
	"github.com/agrolease/agrolease/internal/domain/land"
	domain "github.com/agrolease/agrolease/internal/domain/lease"
	"github.com/agrolease/agrolease/internal/domain/notify"
)

// Auditor records lease events.
type Auditor interface {
	Log(ctx context.Context, entry *audit.AuditEntry)
}

// Service handles the lease lifecycle.
type Service struct {
	repo     domain.Repository
	landRepo land.Repository
	auditSvc Auditor
	hub      notify.Hub
	logger   zerolog.Logger
}

// NewService creates a lease service.
func NewService(repo domain.Repository, landRepo land.Repository, auditSvc Auditor, hub notify.Hub, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		landRepo: landRepo,
		auditSvc: auditSvc,
		hub:      hub,
		logger:   logger.With().Str("service", "lease").Logger(),
	}
}

// RequestInput defines lease request input.
type RequestInput struct {
	DurationMonths int
	PricePerMonth  int64
}

// Request creates a pending lease on an available parcel.
func (s *Service) Request(ctx context.Context, landID uuid.UUID, farmer actor.Actor, input RequestInput) (*domain.Lease, error) {
	l, err := s.landRepo.GetByID(ctx, landID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("land %s: %w", landID, apperr.ErrNotFound)
	}
	if !l.IsAvailable() {
		return nil, fmt.Errorf("%w: land is not available for lease", apperr.ErrValidation)
	}
	if input.DurationMonths <= 0 {
		return nil, fmt.Errorf("%w: duration_months must be positive", apperr.ErrValidation)
	}
	if input.PricePerMonth <= 0 {
		return nil, fmt.Errorf("%w: price_per_month must be positive", apperr.ErrValidation)
	}

	now := time.Now().UTC()
	ls := &domain.Lease{
		LeaseID:        uuid.New(),
		LandID:         landID,
		FarmerID:       farmer.UserID,
		OwnerID:        l.OwnerID,
		DurationMonths: input.DurationMonths,
		PricePerMonth:  input.PricePerMonth,
		TotalPayments:  input.DurationMonths,
		PaymentsMade:   0,
		Status:         domain.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, ls); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeLease,
		EntityID:   ls.LeaseID.String(),
		Action:     audit.ActionCreate,
		Actor:      farmer.String(),
		ActorRoles: farmer.Roles(),
	})
	s.notifyUser(l.OwnerID.String(), "lease.requested", ls)
	s.logger.Info().Str("lease_id", ls.LeaseID.String()).Str("land_id", landID.String()).Msg("lease requested")
	return ls, nil
}

// Approve moves a pending lease to approved and flips the land to leased.
// Only the land owner may approve.
func (s *Service) Approve(ctx context.Context, leaseID uuid.UUID, a actor.Actor) (*domain.Lease, error) {
	ls, err := s.get(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if ls.OwnerID != a.UserID {
		return nil, fmt.Errorf("%w: only the land owner may approve", apperr.ErrForbidden)
	}
	if !ls.CanTransitionTo(domain.StatusApproved) {
		return nil, fmt.Errorf("%w: lease is %s", apperr.ErrInvalidTransition, ls.Status)
	}

	ok, err := s.repo.UpdateStatus(ctx, leaseID, domain.StatusPending, domain.StatusApproved)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("lease %s: %w", leaseID, apperr.ErrConflict)
	}
	// Land flip is conditional too; a parcel already leased through another
	// agreement leaves this lease approved but is surfaced in the log.
	flipped, err := s.landRepo.UpdateStatus(ctx, ls.LandID, land.StatusAvailable, land.StatusLeased)
	if err != nil {
		return nil, err
	}
	if !flipped {
		s.logger.Warn().Str("land_id", ls.LandID.String()).Msg("land was not available at lease approval")
	}
	ls.Status = domain.StatusApproved

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeLease,
		EntityID:   ls.LeaseID.String(),
		Action:     audit.ActionApprove,
		Actor:      a.String(),
		ActorRoles: a.Roles(),
	})
	s.notifyUser(ls.FarmerID.String(), "lease.approved", ls)
	return ls, nil
}

// Reject moves a pending lease to rejected.
func (s *Service) Reject(ctx context.Context, leaseID uuid.UUID, a actor.Actor, reason string) (*domain.Lease, error) {
	ls, err := s.get(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if ls.OwnerID != a.UserID {
		return nil, fmt.Errorf("%w: only the land owner may reject", apperr.ErrForbidden)
	}
	if !ls.CanTransitionTo(domain.StatusRejected) {
		return nil, fmt.Errorf("%w: lease is %s", apperr.ErrInvalidTransition, ls.Status)
	}

	ok, err := s.repo.UpdateStatus(ctx, leaseID, domain.StatusPending, domain.StatusRejected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("lease %s: %w", leaseID, apperr.ErrConflict)
	}
	ls.Status = domain.StatusRejected

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeLease,
		EntityID:   ls.LeaseID.String(),
		Action:     audit.ActionReject,
		Actor:      a.String(),
		ActorRoles: a.Roles(),
		Reason:     reason,
	})
	s.notifyUser(ls.FarmerID.String(), "lease.rejected", ls)
	return ls, nil
}

// Delete hard-deletes a lease. Only legal while pending, only for the
// requesting farmer or the land owner.
func (s *Service) Delete(ctx context.Context, leaseID uuid.UUID, a actor.Actor) error {
	ls, err := s.get(ctx, leaseID)
	if err != nil {
		return err
	}
	if ls.FarmerID != a.UserID && ls.OwnerID != a.UserID {
		return fmt.Errorf("%w: not a party to this lease", apperr.ErrForbidden)
	}
	if !ls.Deletable() {
		return fmt.Errorf("%w: only pending leases can be deleted", apperr.ErrInvalidTransition)
	}
	if err := s.repo.Delete(ctx, leaseID); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeLease,
		EntityID:   leaseID.String(),
		Action:     audit.ActionDelete,
		Actor:      a.String(),
		ActorRoles: a.Roles(),
	})
	return nil
}

// GetByID returns one lease, restricted to its parties unless the caller
// is an admin.
func (s *Service) GetByID(ctx context.Context, leaseID uuid.UUID, a actor.Actor) (*domain.Lease, error) {
	ls, err := s.get(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if !a.IsAdmin() && ls.FarmerID != a.UserID && ls.OwnerID != a.UserID {
		return nil, fmt.Errorf("%w: not a party to this lease", apperr.ErrForbidden)
	}
	return ls, nil
}

// List returns leases. Non-admin callers only see leases they are party to.
func (s *Service) List(ctx context.Context, filter domain.Filter, a actor.Actor, limit, offset int) ([]*domain.Lease, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if !a.IsAdmin() && filter.FarmerID == nil && filter.OwnerID == nil {
		// Default to the caller's own leases on either side.
		own, err := s.repo.List(ctx, domain.Filter{FarmerID: &a.UserID, Status: filter.Status}, limit, offset)
		if err != nil {
			return nil, err
		}
		owned, err := s.repo.List(ctx, domain.Filter{OwnerID: &a.UserID, Status: filter.Status}, limit, offset)
		if err != nil {
			return nil, err
		}
		return append(own, owned...), nil
	}
	return s.repo.List(ctx, filter, limit, offset)
}

func (s *Service) get(ctx context.Context, leaseID uuid.UUID) (*domain.Lease, error) {
	ls, err := s.repo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if ls == nil {
		return nil, fmt.Errorf("lease %s: %w", leaseID, apperr.ErrNotFound)
	}
	return ls, nil
}

func (s *Service) notifyUser(userID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	s.hub.BroadcastToUser(userID, notify.NewMessage(event, data))
}
