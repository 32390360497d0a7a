package payout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agrolease/agrolease/internal/apperr"
	"github.com/agrolease/agrolease/internal/application/actor"
	"github.com/agrolease/agrolease/internal/application/policy"
	"github.com/agrolease/agrolease/internal/domain/audit"
	"github.com/agrolease/agrolease/internal/domain/investment"
	"github.com/agrolease/agrolease/internal/domain/lease"
	"github.com/agrolease/agrolease/internal/domain/notify"
	domain "github.com/agrolease/agrolease/internal/domain/payout"
)

// Auditor records payout events.
type Auditor interface {
	Log(ctx context.Context, entry *audit.AuditEntry)
}

// Service handles the unified payout request lifecycle. Lease-rent and
// investment-return requests share the record shape, the state machine,
// and the review path; only source validation differs by kind.
type Service struct {
	repo           domain.Repository
	leaseRepo      lease.Repository
	investmentRepo investment.Repository
	auditSvc       Auditor
	reviewPolicy   *policy.Engine
	hub            notify.Hub
	logger         zerolog.Logger
}

// NewService creates a payout service.
func NewService(
	repo domain.Repository,
	leaseRepo lease.Repository,
	investmentRepo investment.Repository,
	auditSvc Auditor,
	reviewPolicy *policy.Engine,
	hub notify.Hub,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:           repo,
		leaseRepo:      leaseRepo,
		investmentRepo: investmentRepo,
		auditSvc:       auditSvc,
		reviewPolicy:   reviewPolicy,
		hub:            hub,
		logger:         logger.With().Str("service", "payout").Logger(),
	}
}

// CreateInput defines payout request creation input.
type CreateInput struct {
	PayoutMethodID string
	Amount         *int64
}

// RequestLeaseRent creates a rent payout request for the lease owner.
// Amount defaults to one month's rent.
func (s *Service) RequestLeaseRent(ctx context.Context, leaseID uuid.UUID, a actor.Actor, input CreateInput) (*domain.Request, error) {
	ls, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if ls == nil {
		return nil, fmt.Errorf("lease %s: %w", leaseID, apperr.ErrNotFound)
	}
	if ls.OwnerID != a.UserID {
		return nil, fmt.Errorf("%w: only the lease owner may request a rent payout", apperr.ErrForbidden)
	}
	if ls.FullyPaid() {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, lease.ErrAllPaymentsComplete)
	}
	if ls.Status != lease.StatusActive {
		return nil, fmt.Errorf("%w: lease is %s", apperr.ErrValidation, ls.Status)
	}

	amount := ls.PricePerMonth
	if input.Amount != nil {
		amount = *input.Amount
	}
	policyParams := map[string]interface{}{
		"kind":          string(domain.KindLeaseRent),
		"amount":        float64(amount),
		"paymentsMade":  float64(ls.PaymentsMade),
		"totalPayments": float64(ls.TotalPayments),
	}
	return s.create(ctx, domain.KindLeaseRent, leaseID, a, input.PayoutMethodID, amount, policyParams)
}

// RequestInvestmentReturn creates a return payout request for the
// investor who placed the investment.
func (s *Service) RequestInvestmentReturn(ctx context.Context, investmentID uuid.UUID, a actor.Actor, input CreateInput) (*domain.Request, error) {
	inv, err := s.investmentRepo.GetByID(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("investment %s: %w", investmentID, apperr.ErrNotFound)
	}
	if inv.InvestorID != a.UserID {
		return nil, fmt.Errorf("%w: only the investor may request a return payout", apperr.ErrForbidden)
	}
	if !inv.IsActive() {
		return nil, fmt.Errorf("%w: investment is %s", apperr.ErrValidation, inv.Status)
	}

	amount := inv.Amount
	if input.Amount != nil {
		amount = *input.Amount
	}
	policyParams := map[string]interface{}{
		"kind":   string(domain.KindInvestmentReturn),
		"amount": float64(amount),
	}
	return s.create(ctx, domain.KindInvestmentReturn, investmentID, a, input.PayoutMethodID, amount, policyParams)
}

func (s *Service) create(ctx context.Context, kind domain.Kind, sourceID uuid.UUID, a actor.Actor, methodID string, amount int64, policyParams map[string]interface{}) (*domain.Request, error) {
	if methodID == "" {
		return nil, fmt.Errorf("%w: payout_method_id is required", apperr.ErrValidation)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperr.ErrValidation)
	}
	// Pre-check; the partial unique index catches the race the check misses.
	pending, err := s.repo.HasPending(ctx, kind, sourceID, a.UserID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("payout request for %s: %w", sourceID, apperr.ErrDuplicatePending)
	}

	flagged, err := s.reviewPolicy.Evaluate(policyParams)
	if err != nil {
		s.logger.Warn().Err(err).Msg("review policy evaluation failed, not flagging")
		flagged = false
	}

	now := time.Now().UTC()
	r := &domain.Request{
		RequestID:        uuid.New(),
		Kind:             kind,
		SourceID:         sourceID,
		RequesterID:      a.UserID,
		Amount:           amount,
		PayoutMethodID:   methodID,
		Status:           domain.StatusPending,
		FlaggedForReview: flagged,
		RequestedAt:      now,
		UpdatedAt:        now,
	}
	entry := &domain.HistoryEntry{
		RequestID: r.RequestID,
		Status:    domain.StatusPending,
		ChangedBy: a.String(),
		ChangedAt: now,
	}
	if err := s.repo.Create(ctx, r, entry); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypePayoutRequest,
		EntityID:   r.RequestID.String(),
		Action:     audit.ActionCreate,
		Actor:      a.String(),
		ActorRoles: a.Roles(),
	})
	s.notifyGroup("admins", "payout.requested", r)
	s.logger.Info().
		Str("request_id", r.RequestID.String()).
		Str("kind", string(kind)).
		Bool("flagged", flagged).
		Msg("payout requested")
	return r, nil
}

// ReviewInput defines the admin review input.
type ReviewInput struct {
	Status         domain.Status
	Note           *string
	TransactionRef *string
	PaidAmount     *int64
	ReceiptURL     *string
}

// Review applies an admin decision: approve, reject, or mark paid. The
// transition table is enforced here and again by the conditional update,
// so a concurrent reviewer loses cleanly instead of overwriting.
func (s *Service) Review(ctx context.Context, requestID uuid.UUID, a actor.Actor, input ReviewInput) (*domain.Request, error) {
	r, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateStatus(input.Status); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	if !r.CanTransitionTo(input.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, r.Status, input.Status)
	}

	now := time.Now().UTC()
	review := domain.Review{
		Status:         input.Status,
		Note:           input.Note,
		TransactionRef: input.TransactionRef,
		PaidAmount:     input.PaidAmount,
		ReceiptURL:     input.ReceiptURL,
		ReviewedBy:     a.String(),
		ReviewedAt:     now,
	}
	entry := &domain.HistoryEntry{
		RequestID: requestID,
		Status:    input.Status,
		Note:      input.Note,
		ChangedBy: a.String(),
		ChangedAt: now,
	}

	var action audit.Action
	switch input.Status {
	case domain.StatusApproved:
		action = audit.ActionApprove
		if err := s.repo.UpdateStatus(ctx, requestID, domain.StatusPending, review, entry); err != nil {
			return nil, err
		}
	case domain.StatusRejected:
		action = audit.ActionReject
		if err := s.repo.UpdateStatus(ctx, requestID, domain.StatusPending, review, entry); err != nil {
			return nil, err
		}
	case domain.StatusPaid:
		action = audit.ActionPay
		result, err := s.repo.MarkPaid(ctx, requestID, review, entry)
		if err != nil {
			return nil, err
		}
		if r.Kind == domain.KindLeaseRent && result.LeaseCompleted {
			s.logger.Info().Str("lease_id", r.SourceID.String()).Msg("lease fully paid")
		}
	default:
		return nil, fmt.Errorf("%w: %s is not a review outcome", apperr.ErrValidation, input.Status)
	}

	updated, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypePayoutRequest,
		EntityID:   requestID.String(),
		Action:     action,
		Actor:      a.String(),
		ActorRoles: a.Roles(),
		Reason:     strOrEmpty(input.Note),
	})
	s.notifyUser(updated.RequesterID.String(), "payout."+statusEvent(input.Status), updated)
	return updated, nil
}

// Cancel withdraws a pending request. Only the requester may cancel.
func (s *Service) Cancel(ctx context.Context, requestID uuid.UUID, a actor.Actor) (*domain.Request, error) {
	r, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r.RequesterID != a.UserID {
		return nil, fmt.Errorf("%w: only the requester may cancel", apperr.ErrForbidden)
	}
	if !r.CanTransitionTo(domain.StatusCanceled) {
		return nil, fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, r.Status, domain.StatusCanceled)
	}

	now := time.Now().UTC()
	entry := &domain.HistoryEntry{
		RequestID: requestID,
		Status:    domain.StatusCanceled,
		ChangedBy: a.String(),
		ChangedAt: now,
	}
	if err := s.repo.Cancel(ctx, requestID, entry); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypePayoutRequest,
		EntityID:   requestID.String(),
		Action:     audit.ActionCancel,
		Actor:      a.String(),
		ActorRoles: a.Roles(),
	})
	return s.get(ctx, requestID)
}

// GetByID returns one request, restricted to the requester unless the
// caller is an admin.
func (s *Service) GetByID(ctx context.Context, requestID uuid.UUID, a actor.Actor) (*domain.Request, error) {
	r, err := s.get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !a.IsAdmin() && r.RequesterID != a.UserID {
		return nil, fmt.Errorf("%w: not your payout request", apperr.ErrForbidden)
	}
	return r, nil
}

// List returns requests. Non-admin callers only see their own.
func (s *Service) List(ctx context.Context, filter domain.Filter, a actor.Actor, limit, offset int) ([]*domain.Request, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if !a.IsAdmin() {
		filter.RequesterID = &a.UserID
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// History returns the append-only status history of one request.
func (s *Service) History(ctx context.Context, requestID uuid.UUID, a actor.Actor) ([]*domain.HistoryEntry, error) {
	if _, err := s.GetByID(ctx, requestID, a); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, requestID)
}

func (s *Service) get(ctx context.Context, requestID uuid.UUID) (*domain.Request, error) {
	r, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("payout request %s: %w", requestID, apperr.ErrNotFound)
	}
	return r, nil
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
	switch st {
	case domain.StatusApproved:
		return "approved"
	case domain.StatusRejected:
		return "rejected"
	case domain.StatusPaid:
		return "paid"
	default:
		return "updated"
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
