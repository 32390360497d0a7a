package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrolease/agrolease/internal/apperr"
	"github.com/agrolease/agrolease/internal/domain/dispute"
)

// DisputeRepository implements dispute.Repository.
type DisputeRepository struct {
	pool *pgxpool.Pool
}

func NewDisputeRepository(pool *pgxpool.Pool) *DisputeRepository {
	return &DisputeRepository{pool: pool}
}

const disputeColumns = `id, dispute_id, raised_by, against, subject_type, subject_id, category, reason, status,
		resolution_note, action_taken_by, action_taken_at, created_at, updated_at`

func scanDispute(row pgx.Row) (*dispute.Dispute, error) {
	var d dispute.Dispute
	err := row.Scan(&d.ID, &d.DisputeID, &d.RaisedBy, &d.Against, &d.SubjectType, &d.SubjectID, &d.Category, &d.Reason, &d.Status,
		&d.ResolutionNote, &d.ActionTakenBy, &d.ActionTakenAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DisputeRepository) Create(ctx context.Context, d *dispute.Dispute, entry *dispute.HistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO disputes
		(dispute_id, raised_by, against, subject_type, subject_id, category, reason, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, d.DisputeID, d.RaisedBy, d.Against, d.SubjectType, d.SubjectID, d.Category, d.Reason, d.Status, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "disputes_one_open") {
			return apperr.ErrDuplicatePending
		}
		return err
	}
	if err := insertDisputeHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *DisputeRepository) GetByID(ctx context.Context, disputeID uuid.UUID) (*dispute.Dispute, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+disputeColumns+`
		FROM disputes WHERE dispute_id=$1
	`, disputeID)
	d, err := scanDispute(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (r *DisputeRepository) List(ctx context.Context, filter dispute.Filter, limit, offset int) ([]*dispute.Dispute, error) {
	query := `
		SELECT ` + disputeColumns + `
		FROM disputes`
	args := []interface{}{}
	if filter.RaisedBy != nil {
		args = append(args, *filter.RaisedBy)
		query += addWhere(query) + " raised_by=$" + itoa(len(args))
	}
	if filter.Against != nil {
		args = append(args, *filter.Against)
		query += addWhere(query) + " against=$" + itoa(len(args))
	}
	if filter.SubjectID != nil {
		args = append(args, *filter.SubjectID)
		query += addWhere(query) + " subject_id=$" + itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += addWhere(query) + " status=$" + itoa(len(args))
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(len(args)+1) + " OFFSET $" + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var disputes []*dispute.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, d)
	}
	return disputes, rows.Err()
}

func (r *DisputeRepository) FindOpen(ctx context.Context, raisedBy, subjectID uuid.UUID) (*dispute.Dispute, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+disputeColumns+`
		FROM disputes WHERE raised_by=$1 AND subject_id=$2 AND status='OPEN'
	`, raisedBy, subjectID)
	d, err := scanDispute(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (r *DisputeRepository) UpdateStatus(ctx context.Context, disputeID uuid.UUID, from, to dispute.Status, resolutionNote *string, actionTakenBy string, entry *dispute.HistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE disputes
		SET status=$1, resolution_note=COALESCE($2, resolution_note), action_taken_by=$3, action_taken_at=$4, updated_at=$4
		WHERE dispute_id=$5 AND status=$6
	`, to, resolutionNote, actionTakenBy, entry.ChangedAt, disputeID, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrConflict
	}
	if err := insertDisputeHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *DisputeRepository) ListHistory(ctx context.Context, disputeID uuid.UUID) ([]*dispute.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, dispute_id, status, note, changed_by, changed_at
		FROM dispute_history WHERE dispute_id=$1 ORDER BY id ASC
	`, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*dispute.HistoryEntry
	for rows.Next() {
		var e dispute.HistoryEntry
		if err := rows.Scan(&e.ID, &e.DisputeID, &e.Status, &e.Note, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func insertDisputeHistory(ctx context.Context, tx pgx.Tx, entry *dispute.HistoryEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO dispute_history (dispute_id, status, note, changed_by, changed_at)
		VALUES ($1,$2,$3,$4,$5)
	`, entry.DisputeID, entry.Status, entry.Note, entry.ChangedBy, entry.ChangedAt)
	return err
}
