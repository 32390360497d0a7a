package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrolease/agrolease/internal/domain/audit"
)

// AuditRepository implements audit.Repository.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Create(ctx context.Context, l *audit.AuditLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (audit_id, entity_type, entity_id, action, actor, actor_roles, reason, signature, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, l.AuditID, l.EntityType, l.EntityID, l.Action, l.Actor, l.ActorRoles, l.Reason, l.Signature, l.CreatedAt)
	return err
}

func scanAuditLog(row pgx.Row) (*audit.AuditLog, error) {
	var l audit.AuditLog
	err := row.Scan(&l.ID, &l.AuditID, &l.EntityType, &l.EntityID, &l.Action, &l.Actor, &l.ActorRoles, &l.Reason, &l.Signature, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *AuditRepository) GetByID(ctx context.Context, auditID uuid.UUID) (*audit.AuditLog, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, audit_id, entity_type, entity_id, action, actor, actor_roles, reason, signature, created_at
		FROM audit_logs WHERE audit_id=$1
	`, auditID)
	l, err := scanAuditLog(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func (r *AuditRepository) Query(ctx context.Context, filter audit.QueryFilter, limit, offset int) ([]*audit.AuditLog, error) {
	query := `
		SELECT id, audit_id, entity_type, entity_id, action, actor, actor_roles, reason, signature, created_at
		FROM audit_logs`
	args := []interface{}{}
	if filter.EntityType != nil {
		args = append(args, *filter.EntityType)
		query += addWhere(query) + " entity_type=$" + itoa(len(args))
	}
	if filter.EntityID != nil {
		args = append(args, *filter.EntityID)
		query += addWhere(query) + " entity_id=$" + itoa(len(args))
	}
	if filter.Action != nil {
		args = append(args, *filter.Action)
		query += addWhere(query) + " action=$" + itoa(len(args))
	}
	if filter.Actor != nil {
		args = append(args, *filter.Actor)
		query += addWhere(query) + " actor=$" + itoa(len(args))
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(len(args)+1) + " OFFSET $" + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []*audit.AuditLog
	for rows.Next() {
		l, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *AuditRepository) GetByEntityID(ctx context.Context, entityType audit.EntityType, entityID string) ([]*audit.AuditLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, audit_id, entity_type, entity_id, action, actor, actor_roles, reason, signature, created_at
		FROM audit_logs WHERE entity_type=$1 AND entity_id=$2 ORDER BY created_at ASC
	`, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []*audit.AuditLog
	for rows.Next() {
		l, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
