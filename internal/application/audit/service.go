package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agrolease/agrolease/internal/domain/audit"
)

// Service handles audit log operations.
type Service struct {
	repo    audit.Repository
	signKey []byte
	logger  zerolog.Logger
}

// NewService creates an audit service. When signKey is non-empty every
// entry is HMAC-signed before it is stored.
func NewService(repo audit.Repository, signKey []byte, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		signKey: signKey,
		logger:  logger.With().Str("service", "audit").Logger(),
	}
}

// Log creates an audit log entry asynchronously. Failures are logged, not
// propagated; audit writes never block the operation they record.
func (s *Service) Log(ctx context.Context, entry *audit.AuditEntry) {
	go func() {
		if err := s.LogSync(context.Background(), entry); err != nil {
			s.logger.Error().Err(err).
				Str("entityType", string(entry.EntityType)).
				Str("entityId", entry.EntityID).
				Str("action", string(entry.Action)).
				Msg("failed to create audit log")
		}
	}()
}

// LogSync creates an audit log entry synchronously.
func (s *Service) LogSync(ctx context.Context, entry *audit.AuditEntry) error {
	auditLog, err := audit.NewAuditLog(entry)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	if len(s.signKey) > 0 {
		sig, err := audit.SignAuditLog(auditLog, s.signKey)
		if err != nil {
			return fmt.Errorf("failed to sign audit log: %w", err)
		}
		auditLog.Signature = sig
	}

	if err := s.repo.Create(ctx, auditLog); err != nil {
		return fmt.Errorf("failed to save audit log: %w", err)
	}

	s.logger.Debug().
		Str("auditId", auditLog.AuditID.String()).
		Str("entityType", string(auditLog.EntityType)).
		Str("entityId", auditLog.EntityID).
		Str("action", string(auditLog.Action)).
		Str("actor", auditLog.Actor).
		Msg("audit log created")

	return nil
}

// Query retrieves audit logs matching the filter.
func (s *Service) Query(ctx context.Context, filter audit.QueryFilter, limit, offset int) ([]*audit.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	logs, err := s.repo.Query(ctx, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	return logs, nil
}

// GetByID retrieves one audit log.
func (s *Service) GetByID(ctx context.Context, auditID uuid.UUID) (*audit.AuditLog, error) {
	return s.repo.GetByID(ctx, auditID)
}

// GetEntityHistory retrieves the complete audit history for an entity.
func (s *Service) GetEntityHistory(ctx context.Context, entityType audit.EntityType, entityID string) ([]*audit.AuditLog, error) {
	return s.repo.GetByEntityID(ctx, entityType, entityID)
}

// VerifyResult reports an integrity check outcome.
type VerifyResult struct {
	AuditID  uuid.UUID `json:"auditId"`
	Verified bool      `json:"verified"`
	Message  string    `json:"message"`
}

// VerifyIntegrity recomputes the stored signature for one entry.
func (s *Service) VerifyIntegrity(ctx context.Context, auditID uuid.UUID) (*VerifyResult, error) {
	l, err := s.repo.GetByID(ctx, auditID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("audit log not found: %s", auditID)
	}
	verified, err := audit.VerifyAuditLog(l, s.signKey)
	if err != nil {
		return nil, fmt.Errorf("failed to verify signature: %w", err)
	}
	result := &VerifyResult{AuditID: auditID, Verified: verified}
	if verified {
		result.Message = "audit log integrity verified"
	} else {
		result.Message = "audit log signature mismatch"
		s.logger.Warn().
			Str("auditId", auditID.String()).
			Msg("audit log signature verification failed")
	}
	return result, nil
}
