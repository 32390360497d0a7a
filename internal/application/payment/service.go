package payment

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
	"github.com/agrolease/agrolease/internal/domain/lease"
	"github.com/agrolease/agrolease/internal/domain/notify"
	domain "github.com/agrolease/agrolease/internal/domain/payment"
)

// Auditor records escrow events.
type Auditor interface {
	Log(ctx context.Context, entry *audit.AuditEntry)
}

// Service handles escrow payments: rent paid into escrow by the farmer,
// released to the landowner or refunded by an admin.
type Service struct {
	repo      domain.Repository
	leaseRepo lease.Repository
	auditSvc  Auditor
	hub       notify.Hub
	logger    zerolog.Logger
}

// NewService creates a payment service.
func NewService(repo domain.Repository, leaseRepo lease.Repository, auditSvc Auditor, hub notify.Hub, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		leaseRepo: leaseRepo,
		auditSvc:  auditSvc,
		hub:       hub,
		logger:    logger.With().Str("service", "payment").Logger(),
	}
}

// FundInput defines escrow funding input.
type FundInput struct {
	Amount *int64
}

// Fund pays one month of rent into escrow. Only the lease's farmer may
// fund; the first funding moves the lease from approved to active.
func (s *Service) Fund(ctx context.Context, leaseID uuid.UUID, a actor.Actor, input FundInput) (*domain.Payment, error) {
	ls, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if ls == nil {
		return nil, fmt.Errorf("lease %s: %w", leaseID, apperr.ErrNotFound)
	}
	if ls.FarmerID != a.UserID {
		return nil, fmt.Errorf("%w: only the lease farmer may fund escrow", apperr.ErrForbidden)
	}
	if ls.Status != lease.StatusApproved && ls.Status != lease.StatusActive {
		return nil, fmt.Errorf("%w: lease is %s", apperr.ErrValidation, ls.Status)
	}
	if ls.FullyPaid() {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, lease.ErrAllPaymentsComplete)
	}

	amount := ls.PricePerMonth
	if input.Amount != nil {
		amount = *input.Amount
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperr.ErrValidation)
	}

	now := time.Now().UTC()
	p := &domain.Payment{
		PaymentID: uuid.New(),
		LeaseID:   leaseID,
		PayerID:   ls.FarmerID,
		PayeeID:   ls.OwnerID,
		Amount:    amount,
		Status:    domain.StatusEscrow,
		CreatedAt: now,
	}
	entry := &domain.HistoryEntry{
		PaymentID: p.PaymentID,
		Status:    domain.StatusEscrow,
		ChangedBy: a.String(),
		ChangedAt: now,
	}
	if err := s.repo.CreateEscrow(ctx, p, entry); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypePayment,
		EntityID:   p.PaymentID.String(),
		Action:     audit.ActionCreate,
		Actor:      a.String(),
		ActorRoles: a.Roles(),
	})
	s.notifyUser(ls.OwnerID.String(), "payment.escrowed", p)
	s.logger.Info().Str("payment_id", p.PaymentID.String()).Str("lease_id", leaseID.String()).Msg("escrow funded")
	return p, nil
}

// RequestRelease asks an admin to release escrowed funds. Only the payee
// and only while the payment sits in escrow.
func (s *Service) RequestRelease(ctx context.Context, paymentID uuid.UUID, a actor.Actor) (*domain.Payment, error) {
	p, err := s.get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.PayeeID != a.UserID {
		return nil, fmt.Errorf("%w: only the payee may request release", apperr.ErrForbidden)
	}
	if err := p.CanRequestRelease(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalidTransition, err)
	}

	ok, err := s.repo.RequestRelease(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", paymentID, apperr.ErrConflict)
	}
	p.ReleaseRequested = true

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypePayment,
		EntityID:   paymentID.String(),
		Action:     audit.ActionRequestRelease,
		Actor:      a.String(),
		ActorRoles: a.Roles(),
	})
	s.notifyGroup("admins", "payment.release_requested", p)
	return p, nil
}

// Release settles an escrow payment to the payee. Admin only.
func (s *Service) Release(ctx context.Context, paymentID uuid.UUID, a actor.Actor, note *string) (*domain.Payment, error) {
	return s.settle(ctx, paymentID, a, domain.StatusReleased, audit.ActionRelease, note)
}

// Refund settles an escrow payment back to the payer. Admin only.
func (s *Service) Refund(ctx context.Context, paymentID uuid.UUID, a actor.Actor, note *string) (*domain.Payment, error) {
	return s.settle(ctx, paymentID, a, domain.StatusRefunded, audit.ActionRefund, note)
}

func (s *Service) settle(ctx context.Context, paymentID uuid.UUID, a actor.Actor, to domain.Status, action audit.Action, note *string) (*domain.Payment, error) {
	p, err := s.get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !p.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalidTransition, domain.ErrInvalidTransition)
	}

	now := time.Now().UTC()
	entry := &domain.HistoryEntry{
		PaymentID: paymentID,
		Status:    to,
		Note:      note,
		ChangedBy: a.String(),
		ChangedAt: now,
	}
	if err := s.repo.Settle(ctx, paymentID, to, now, entry); err != nil {
		return nil, err
	}

	p, err = s.get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypePayment,
		EntityID:   paymentID.String(),
		Action:     action,
		Actor:      a.String(),
		ActorRoles: a.Roles(),
		Reason:     strOrEmpty(note),
	})
	target := p.PayeeID
	if to == domain.StatusRefunded {
		target = p.PayerID
	}
	s.notifyUser(target.String(), "payment."+statusEvent(to), p)
	return p, nil
}

// GetByID returns one payment, restricted to its parties unless the
// caller is an admin.
func (s *Service) GetByID(ctx context.Context, paymentID uuid.UUID, a actor.Actor) (*domain.Payment, error) {
	p, err := s.get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !a.IsAdmin() && p.PayerID != a.UserID && p.PayeeID != a.UserID {
		return nil, fmt.Errorf("%w: not a party to this payment", apperr.ErrForbidden)
	}
	return p, nil
}

// List returns payments. Non-admin callers only see their own side.
func (s *Service) List(ctx context.Context, filter domain.Filter, a actor.Actor, limit, offset int) ([]*domain.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if !a.IsAdmin() && filter.PayerID == nil && filter.PayeeID == nil {
		paid, err := s.repo.List(ctx, domain.Filter{PayerID: &a.UserID, Status: filter.Status, LeaseID: filter.LeaseID}, limit, offset)
		if err != nil {
			return nil, err
		}
		received, err := s.repo.List(ctx, domain.Filter{PayeeID: &a.UserID, Status: filter.Status, LeaseID: filter.LeaseID}, limit, offset)
		if err != nil {
			return nil, err
		}
		return append(paid, received...), nil
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// History returns the append-only status history of one payment.
func (s *Service) History(ctx context.Context, paymentID uuid.UUID, a actor.Actor) ([]*domain.HistoryEntry, error) {
	if _, err := s.GetByID(ctx, paymentID, a); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, paymentID)
}

func (s *Service) get(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("payment %s: %w", paymentID, apperr.ErrNotFound)
	}
	return p, nil
}

func (s *Service) notifyUser(userID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	s.hub.BroadcastToUser(userID, notify.NewMessage(event, data))
}

func (s *Service) notifyGroup(group, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	s.hub.BroadcastToGroup(group, notify.NewMessage(event, data))
}

func statusEvent(st domain.Status) string {
	if st == domain.StatusRefunded {
		return "refunded"
	}
	return "released"
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
