package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agrolease/agrolease/internal/apperr"
	"github.com/agrolease/agrolease/internal/domain/audit"
	domain "github.com/agrolease/agrolease/internal/domain/user"
)

// Auditor records user management events.
type Auditor interface {
	Log(ctx context.Context, entry *audit.AuditEntry)
}

// Service handles user management.
type Service struct {
	repo     domain.Repository
	auditSvc Auditor
	logger   zerolog.Logger
}

// NewService creates a user service.
func NewService(repo domain.Repository, auditSvc Auditor, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		auditSvc: auditSvc,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// RegisterInput defines self-service registration input.
type RegisterInput struct {
	Username string
	Password string
	Role     domain.Role
}

// Register creates a marketplace account. Admin accounts cannot be
// self-registered; they are created by an existing admin.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := domain.RegistrableRole(input.Role); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	return s.create(ctx, input.Username, input.Password, input.Role, "")
}

// CreateInput defines admin user creation input.
type CreateInput struct {
	Username string
	Password string
	Role     domain.Role
}

// CreateUser creates a user with any role. Admin only.
func (s *Service) CreateUser(ctx context.Context, input CreateInput, actor string) (*domain.User, error) {
	if err := domain.ValidateRole(input.Role); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	return s.create(ctx, input.Username, input.Password, input.Role, actor)
}

func (s *Service) create(ctx context.Context, username, password string, role domain.Role, actor string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	if err := domain.ValidatePassword(password, username); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	hash, err := domain.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:       uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if actor == "" {
		actor = u.Username
	}
	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeUser,
		EntityID:   u.UserID.String(),
		Action:     audit.ActionCreate,
		Actor:      actor,
	})
	s.logger.Info().Str("user_id", u.UserID.String()).Str("username", u.Username).Msg("user created")
	return u, nil
}

// SetStatus enables or disables an account. Admin only.
func (s *Service) SetStatus(ctx context.Context, userID uuid.UUID, status domain.Status, actor string) (*domain.User, error) {
	if err := domain.ValidateStatus(status); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, err)
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, &audit.AuditEntry{
		EntityType: audit.EntityTypeUser,
		EntityID:   u.UserID.String(),
		Action:     audit.ActionUpdateStatus,
		Actor:      actor,
		Reason:     string(status),
	})
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}
	return u, nil
}

// CountUsers reports the total number of accounts. Used by the bootstrap
// endpoint to refuse reuse once any account exists.
func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) List(ctx context.Context, filter domain.Filter, limit, offset int) ([]*domain.User, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.repo.List(ctx, filter, limit, offset)
}
