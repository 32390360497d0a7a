package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrolease/agrolease/internal/domain/investment"
)

// InvestmentRepository implements investment.Repository.
type InvestmentRepository struct {
	pool *pgxpool.Pool
}

func NewInvestmentRepository(pool *pgxpool.Pool) *InvestmentRepository {
	return &InvestmentRepository{pool: pool}
}

func (r *InvestmentRepository) Create(ctx context.Context, i *investment.Investment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO investments (investment_id, investor_id, lease_id, amount, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, i.InvestmentID, i.InvestorID, i.LeaseID, i.Amount, i.Status, i.CreatedAt, i.UpdatedAt)
	return err
}

func scanInvestment(row pgx.Row) (*investment.Investment, error) {
	var i investment.Investment
	err := row.Scan(&i.ID, &i.InvestmentID, &i.InvestorID, &i.LeaseID, &i.Amount, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InvestmentRepository) GetByID(ctx context.Context, investmentID uuid.UUID) (*investment.Investment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, investment_id, investor_id, lease_id, amount, status, created_at, updated_at
		FROM investments WHERE investment_id=$1
	`, investmentID)
	i, err := scanInvestment(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return i, err
}

func (r *InvestmentRepository) List(ctx context.Context, filter investment.Filter, limit, offset int) ([]*investment.Investment, error) {
	query := `
		SELECT id, investment_id, investor_id, lease_id, amount, status, created_at, updated_at
		FROM investments`
	args := []interface{}{}
	if filter.InvestorID != nil {
		args = append(args, *filter.InvestorID)
		query += addWhere(query) + " investor_id=$" + itoa(len(args))
	}
	if filter.LeaseID != nil {
		args = append(args, *filter.LeaseID)
		query += addWhere(query) + " lease_id=$" + itoa(len(args))
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
	var investments []*investment.Investment
	for rows.Next() {
		i, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		investments = append(investments, i)
	}
	return investments, rows.Err()
}

func (r *InvestmentRepository) UpdateStatus(ctx context.Context, investmentID uuid.UUID, from, to investment.Status) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE investments SET status=$1, updated_at=NOW() WHERE investment_id=$2 AND status=$3
	`, to, investmentID, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
