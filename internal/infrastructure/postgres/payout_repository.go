package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrolease/agrolease/internal/apperr"
	"github.com/agrolease/agrolease/internal/domain/lease"
	"github.com/agrolease/agrolease/internal/domain/payout"
)

// PayoutRepository implements payout.Repository.
type PayoutRepository struct {
	pool *pgxpool.Pool
}

func NewPayoutRepository(pool *pgxpool.Pool) *PayoutRepository {
	return &PayoutRepository{pool: pool}
}

const payoutColumns = `id, request_id, kind, source_id, requester_id, amount, payout_method_id, status,
		admin_comment, transaction_ref, paid_amount, receipt_url, flagged_for_review,
		requested_at, reviewed_at, canceled_at, updated_at`

func scanPayout(row pgx.Row) (*payout.Request, error) {
	var r payout.Request
	err := row.Scan(&r.ID, &r.RequestID, &r.Kind, &r.SourceID, &r.RequesterID, &r.Amount, &r.PayoutMethodID, &r.Status,
		&r.AdminComment, &r.TransactionRef, &r.PaidAmount, &r.ReceiptURL, &r.FlaggedForReview,
		&r.RequestedAt, &r.ReviewedAt, &r.CanceledAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *PayoutRepository) Create(ctx context.Context, r *payout.Request, entry *payout.HistoryEntry) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO payout_requests
		(request_id, kind, source_id, requester_id, amount, payout_method_id, status, flagged_for_review, requested_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, r.RequestID, r.Kind, r.SourceID, r.RequesterID, r.Amount, r.PayoutMethodID, r.Status, r.FlaggedForReview, r.RequestedAt, r.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "payout_requests_one_pending") {
			return apperr.ErrDuplicatePending
		}
		return err
	}
	if err := insertPayoutHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *PayoutRepository) GetByID(ctx context.Context, requestID uuid.UUID) (*payout.Request, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT `+payoutColumns+`
		FROM payout_requests WHERE request_id=$1
	`, requestID)
	r, err := scanPayout(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func (p *PayoutRepository) List(ctx context.Context, filter payout.Filter, limit, offset int) ([]*payout.Request, error) {
	query := `
		SELECT ` + payoutColumns + `
		FROM payout_requests`
	args := []interface{}{}
	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		query += addWhere(query) + " kind=$" + itoa(len(args))
	}
	if filter.SourceID != nil {
		args = append(args, *filter.SourceID)
		query += addWhere(query) + " source_id=$" + itoa(len(args))
	}
	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		query += addWhere(query) + " requester_id=$" + itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += addWhere(query) + " status=$" + itoa(len(args))
	}
	query += " ORDER BY requested_at DESC LIMIT $" + itoa(len(args)+1) + " OFFSET $" + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var requests []*payout.Request
	for rows.Next() {
		r, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (p *PayoutRepository) HasPending(ctx context.Context, kind payout.Kind, sourceID, requesterID uuid.UUID) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payout_requests
			WHERE kind=$1 AND source_id=$2 AND requester_id=$3 AND status='PENDING'
		)
	`, kind, sourceID, requesterID).Scan(&exists)
	return exists, err
}

func (p *PayoutRepository) UpdateStatus(ctx context.Context, requestID uuid.UUID, from payout.Status, review payout.Review, entry *payout.HistoryEntry) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE payout_requests
		SET status=$1, admin_comment=$2, transaction_ref=$3, paid_amount=$4, receipt_url=$5, reviewed_at=$6, updated_at=$6
		WHERE request_id=$7 AND status=$8
	`, review.Status, review.Note, review.TransactionRef, review.PaidAmount, review.ReceiptURL, review.ReviewedAt, requestID, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrConflict
	}
	if err := insertPayoutHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *PayoutRepository) MarkPaid(ctx context.Context, requestID uuid.UUID, review payout.Review, entry *payout.HistoryEntry) (*payout.PaidResult, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var kind payout.Kind
	var sourceID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE payout_requests
		SET status=$1, admin_comment=$2, transaction_ref=$3, paid_amount=$4, receipt_url=$5, reviewed_at=$6, updated_at=$6
		WHERE request_id=$7 AND status=$8
		RETURNING kind, source_id
	`, payout.StatusPaid, review.Note, review.TransactionRef, review.PaidAmount, review.ReceiptURL, review.ReviewedAt, requestID, payout.StatusApproved).Scan(&kind, &sourceID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.ErrConflict
		}
		return nil, err
	}
	if err := insertPayoutHistory(ctx, tx, entry); err != nil {
		return nil, err
	}

	result := &payout.PaidResult{}
	if kind == payout.KindLeaseRent {
		err = tx.QueryRow(ctx, `
			UPDATE leases
			SET payments_made = payments_made + 1, updated_at=$1
			WHERE lease_id=$2 AND payments_made < total_payments
			RETURNING payments_made, total_payments
		`, review.ReviewedAt, sourceID).Scan(&result.PaymentsMade, &result.TotalPayments)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, fmt.Errorf("lease %s payment counter already full: %w", sourceID, apperr.ErrConflict)
			}
			return nil, err
		}
		if result.PaymentsMade == result.TotalPayments {
			_, err = tx.Exec(ctx, `
				UPDATE leases SET status=$1, updated_at=$2 WHERE lease_id=$3 AND status=$4
			`, lease.StatusCompleted, review.ReviewedAt, sourceID, lease.StatusActive)
			if err != nil {
				return nil, err
			}
			result.LeaseCompleted = true
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *PayoutRepository) Cancel(ctx context.Context, requestID uuid.UUID, entry *payout.HistoryEntry) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE payout_requests
		SET status=$1, canceled_at=$2, updated_at=$2
		WHERE request_id=$3 AND status=$4
	`, payout.StatusCanceled, entry.ChangedAt, requestID, payout.StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrConflict
	}
	if err := insertPayoutHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *PayoutRepository) ListHistory(ctx context.Context, requestID uuid.UUID) ([]*payout.HistoryEntry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, request_id, status, note, changed_by, changed_at
		FROM payout_request_history WHERE request_id=$1 ORDER BY id ASC
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*payout.HistoryEntry
	for rows.Next() {
		var e payout.HistoryEntry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Status, &e.Note, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func insertPayoutHistory(ctx context.Context, tx pgx.Tx, entry *payout.HistoryEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payout_request_history (request_id, status, note, changed_by, changed_at)
		VALUES ($1,$2,$3,$4,$5)
	`, entry.RequestID, entry.Status, entry.Note, entry.ChangedBy, entry.ChangedAt)
	return err
}
