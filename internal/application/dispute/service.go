package dispute

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agrolease/agrolease/internal/apperr"
	"github.com/agrolease/agrolease/internal/application/actor"
	"github.com/agrolease/agrolease/internal/domain/audit"
	domain "github.com/agrolease/agrolease/internal/domain/dispute"
	"github.com/agrolease/agrolease/internal/domain/lease"
	"github.com/agrolease/agrolease/internal/domain/notify"
	"github.com/agrolease/agrolease/internal/domain/payment"
)

// Auditor records dispute events.
type Auditor interface {
	Log(ctx context.Context, entry *audit.AuditEntry)
}

// Service handles disputes raised against lease or payment counterparties.
type Service struct {
	repo        domain.Repository
	leaseRepo   lease.Repository
	paymentRepo payment.Repository
	auditSvc    Auditor
	hub         notify.Hub
	logger      zerolog.Logger
}

// NewService creates a dispute service.
func NewService(repo domain.Repository, leaseRepo lease.Repository, paymentRepo payment.Repository, auditSvc Auditor, hub notify.Hub, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		leaseRepo:   leaseRepo,
		paymentRepo: paymentRepo,
		auditSvc:    auditSvc,
		hub:         hub,
		logger:      logger.With().Str("service", "dispute").Logger(),
	}
}

// CreateInput defines dispute creation input. Exactly one of LeaseID and
// PaymentID must be set.
type CreateInput struct {
	LeaseID   *uuid.UUID
	PaymentID *uuid.UUID
	Category  domain.Category
	Reason    string
}

// Create raises a dispute. The counterparty is resolved from the subject:
// the other side of the lease, or the other side of the payment. Raising a
// second open dispute on the same subject returns the existing dispute
// alongside ErrDuplicatePending.
func (s *Service) Create(ctx context.Context, a actor.Actor, input CreateInput) (*domain.Dispute, error) {
	if err := domain.ValidateCategory(input.Category); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	if input.Reason == "" {
		return nil, fmt.Errorf("%w: reason is required", apperr.ErrValidation)
	}
	if (input.LeaseID == nil) == (input.PaymentID == nil) {
		return nil, fmt.Errorf("%w: exactly one of lease_id and payment_id is required", apperr.ErrValidation)
	}

	var subjectType domain.SubjectType
	var subjectID, against uuid.UUID
	if input.LeaseID != nil {
		ls, err := s.leaseRepo.GetByID(ctx, *input.LeaseID)
		if err != nil {
			return nil, err
		}
		if ls == nil {
			return nil, fmt.Errorf("lease %s: %w", *input.LeaseID, apperr.ErrNotFound)
		}
		switch a.UserID {
		case ls.FarmerID:
			against = ls.OwnerID
		case ls.OwnerID:
			against = ls.FarmerID
		default:
			return nil, fmt.Errorf("%w: not a party to this lease", apperr.ErrForbidden)
		}
		subjectType, subjectID = domain.SubjectLease, ls.LeaseID
	} else {
		p, err := s.paymentRepo.GetByID(ctx, *input.PaymentID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("payment %s: %w", *input.PaymentID, apperr.ErrNotFound)
		}
		switch a.UserID {
		case p.PayerID:
			against = p.PayeeID
		case p.PayeeID:
			against = p.PayerID
		default:
			return nil, fmt.Errorf("%w: not a party to this payment", apperr.ErrForbidden)
		}
		subjectType, subjectID = domain.SubjectPayment, p.PaymentID
	}

	now := time.Now().UTC()
	d := &domain.Dispute{
		DisputeID:   uuid.New(),
		RaisedBy:    a.UserID,
		Against:     against,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Category:    input.Category,
		Reason:      input.Reason,
		Status:      domain.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	entry := &domain.HistoryEntry{
		DisputeID: d.DisputeID,
		Status:    domain.StatusOpen,
		ChangedBy: a.String(),
		ChangedAt: now,
	}
	if err := s.repo.Create(ctx, d, entry); err != nil {
		if errors.Is(err, apperr.ErrDuplicatePending) {
			existing, ferr := s.repo.FindOpen(ctx, a.UserID, subjectID)
			if ferr == nil && existing != nil {
				return existing, fmt.Errorf("open dispute already exists: %w", apperr.ErrDuplicatePending)
			}
		}
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeDispute,
		EntityID:   d.DisputeID.String(),
		Action:     audit.ActionCreate,
		Actor:      a.String(),
		ActorRoles: a.Roles(),
		Reason:     input.Reason,
	})
	s.notifyGroup("admins", "dispute.opened", d)
	s.notifyUser(against.String(), "dispute.opened", d)
	s.logger.Info().Str("dispute_id", d.DisputeID.String()).Str("subject_id", subjectID.String()).Msg("dispute opened")
	return d, nil
}

// UpdateStatus applies an admin status change.
func (s *Service) UpdateStatus(ctx context.Context, disputeID uuid.UUID, a actor.Actor, to domain.Status, resolutionNote *string) (*domain.Dispute, error) {
	if err := domain.ValidateStatus(to); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	d, err := s.get(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if !d.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, d.Status, to)
	}

	now := time.Now().UTC()
	entry := &domain.HistoryEntry{
		DisputeID: disputeID,
		Status:    to,
		Note:      resolutionNote,
		ChangedBy: a.String(),
		ChangedAt: now,
	}
	if err := s.repo.UpdateStatus(ctx, disputeID, d.Status, to, resolutionNote, a.String(), entry); err != nil {
		return nil, err
	}

	d, err = s.get(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeDispute,
		EntityID:   disputeID.String(),
		Action:     audit.ActionUpdateStatus,
		Actor:      a.String(),
		ActorRoles: a.Roles(),
		Reason:     string(to),
	})
	s.notifyUser(d.RaisedBy.String(), "dispute.updated", d)
	s.notifyUser(d.Against.String(), "dispute.updated", d)
	return d, nil
}

// GetByID returns one dispute, restricted to its parties unless the
// caller is an admin.
func (s *Service) GetByID(ctx context.Context, disputeID uuid.UUID, a actor.Actor) (*domain.Dispute, error) {
	d, err := s.get(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if !a.IsAdmin() && d.RaisedBy != a.UserID && d.Against != a.UserID {
		return nil, fmt.Errorf("%w: not a party to this dispute", apperr.ErrForbidden)
	}
	return d, nil
}

// List returns disputes. Non-admin callers only see disputes involving them.
func (s *Service) List(ctx context.Context, filter domain.Filter, a actor.Actor, limit, offset int) ([]*domain.Dispute, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if !a.IsAdmin() && filter.RaisedBy == nil && filter.Against == nil {
		raised, err := s.repo.List(ctx, domain.Filter{RaisedBy: &a.UserID, Status: filter.Status}, limit, offset)
		if err != nil {
			return nil, err
		}
		received, err := s.repo.List(ctx, domain.Filter{Against: &a.UserID, Status: filter.Status}, limit, offset)
		if err != nil {
			return nil, err
		}
		return append(raised, received...), nil
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// History returns the append-only status history of one dispute.
func (s *Service) History(ctx context.Context, disputeID uuid.UUID, a actor.Actor) ([]*domain.HistoryEntry, error) {
	if _, err := s.GetByID(ctx, disputeID, a); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, disputeID)
}

func (s *Service) get(ctx context.Context, disputeID uuid.UUID) (*domain.Dispute, error) {
	d, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("dispute %s: %w", disputeID, apperr.ErrNotFound)
	}
	return d, nil
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
