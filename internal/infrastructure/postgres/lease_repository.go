package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrolease/agrolease/internal/domain/lease"
)

// LeaseRepository implements lease.Repository.
type LeaseRepository struct {
	pool *pgxpool.Pool
}

func NewLeaseRepository(pool *pgxpool.Pool) *LeaseRepository {
	return &LeaseRepository{pool: pool}
}

const leaseColumns = `id, lease_id, land_id, farmer_id, owner_id, duration_months, price_per_month,
		total_payments, payments_made, status, agreement_url, created_at, updated_at`

func scanLease(row pgx.Row) (*lease.Lease, error) {
	var l lease.Lease
	err := row.Scan(&l.ID, &l.LeaseID, &l.LandID, &l.FarmerID, &l.OwnerID, &l.DurationMonths, &l.PricePerMonth,
		&l.TotalPayments, &l.PaymentsMade, &l.Status, &l.AgreementURL, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeaseRepository) Create(ctx context.Context, l *lease.Lease) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leases
		(lease_id, land_id, farmer_id, owner_id, duration_months, price_per_month, total_payments, payments_made, status, agreement_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, l.LeaseID, l.LandID, l.FarmerID, l.OwnerID, l.DurationMonths, l.PricePerMonth, l.TotalPayments, l.PaymentsMade, l.Status, l.AgreementURL, l.CreatedAt, l.UpdatedAt)
	return err
}

func (r *LeaseRepository) GetByID(ctx context.Context, leaseID uuid.UUID) (*lease.Lease, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leaseColumns+`
		FROM leases WHERE lease_id=$1
	`, leaseID)
	l, err := scanLease(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func (r *LeaseRepository) List(ctx context.Context, filter lease.Filter, limit, offset int) ([]*lease.Lease, error) {
	query := `
		SELECT ` + leaseColumns + `
		FROM leases`
	args := []interface{}{}
	if filter.LandID != nil {
		args = append(args, *filter.LandID)
		query += addWhere(query) + " land_id=$" + itoa(len(args))
	}
	if filter.FarmerID != nil {
		args = append(args, *filter.FarmerID)
		query += addWhere(query) + " farmer_id=$" + itoa(len(args))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		query += addWhere(query) + " owner_id=$" + itoa(len(args))
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
	var leases []*lease.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, l)
	}
	return leases, rows.Err()
}

func (r *LeaseRepository) UpdateStatus(ctx context.Context, leaseID uuid.UUID, from, to lease.Status) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leases SET status=$1, updated_at=NOW() WHERE lease_id=$2 AND status=$3
	`, to, leaseID, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *LeaseRepository) Delete(ctx context.Context, leaseID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM leases WHERE lease_id=$1`, leaseID)
	return err
}
