package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrolease/agrolease/internal/apperr"
	"github.com/agrolease/agrolease/internal/domain/lease"
	"github.com/agrolease/agrolease/internal/domain/payment"
)

// PaymentRepository implements payment.Repository.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, payment_id, lease_id, payer_id, payee_id, amount, status, release_requested,
		created_at, released_at, refunded_at`

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(&p.ID, &p.PaymentID, &p.LeaseID, &p.PayerID, &p.PayeeID, &p.Amount, &p.Status, &p.ReleaseRequested,
		&p.CreatedAt, &p.ReleasedAt, &p.RefundedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) CreateEscrow(ctx context.Context, p *payment.Payment, entry *payment.HistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO payments (payment_id, lease_id, payer_id, payee_id, amount, status, release_requested, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, p.PaymentID, p.LeaseID, p.PayerID, p.PayeeID, p.Amount, p.Status, p.ReleaseRequested, p.CreatedAt)
	if err != nil {
		return err
	}
	if err := insertPaymentHistory(ctx, tx, entry); err != nil {
		return err
	}
	// First funding activates the lease. Later fundings match no row and
	// that is fine.
	_, err = tx.Exec(ctx, `
		UPDATE leases SET status=$1, updated_at=$2 WHERE lease_id=$3 AND status=$4
	`, lease.StatusActive, p.CreatedAt, p.LeaseID, lease.StatusApproved)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PaymentRepository) GetByID(ctx context.Context, paymentID uuid.UUID) (*payment.Payment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+paymentColumns+`
		FROM payments WHERE payment_id=$1
	`, paymentID)
	p, err := scanPayment(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *PaymentRepository) List(ctx context.Context, filter payment.Filter, limit, offset int) ([]*payment.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments`
	args := []interface{}{}
	if filter.LeaseID != nil {
		args = append(args, *filter.LeaseID)
		query += addWhere(query) + " lease_id=$" + itoa(len(args))
	}
	if filter.PayerID != nil {
		args = append(args, *filter.PayerID)
		query += addWhere(query) + " payer_id=$" + itoa(len(args))
	}
	if filter.PayeeID != nil {
		args = append(args, *filter.PayeeID)
		query += addWhere(query) + " payee_id=$" + itoa(len(args))
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
	var payments []*payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *PaymentRepository) RequestRelease(ctx context.Context, paymentID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments SET release_requested=TRUE
		WHERE payment_id=$1 AND status=$2 AND release_requested=FALSE
	`, paymentID, payment.StatusEscrow)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PaymentRepository) Settle(ctx context.Context, paymentID uuid.UUID, to payment.Status, at time.Time, entry *payment.HistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE payments SET status=$1, release_requested=FALSE, released_at=$2
		WHERE payment_id=$3 AND status=$4`
	if to == payment.StatusRefunded {
		query = `
		UPDATE payments SET status=$1, release_requested=FALSE, refunded_at=$2
		WHERE payment_id=$3 AND status=$4`
	}
	tag, err := tx.Exec(ctx, query, to, at, paymentID, payment.StatusEscrow)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrConflict
	}
	if err := insertPaymentHistory(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PaymentRepository) ListHistory(ctx context.Context, paymentID uuid.UUID) ([]*payment.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, payment_id, status, note, changed_by, changed_at
		FROM payment_history WHERE payment_id=$1 ORDER BY id ASC
	`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*payment.HistoryEntry
	for rows.Next() {
		var e payment.HistoryEntry
		if err := rows.Scan(&e.ID, &e.PaymentID, &e.Status, &e.Note, &e.ChangedBy, &e.ChangedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func insertPaymentHistory(ctx context.Context, tx pgx.Tx, entry *payment.HistoryEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payment_history (payment_id, status, note, changed_by, changed_at)
		VALUES ($1,$2,$3,$4,$5)
	`, entry.PaymentID, entry.Status, entry.Note, entry.ChangedBy, entry.ChangedAt)
	return err
}
