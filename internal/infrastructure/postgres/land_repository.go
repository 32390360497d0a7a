package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agrolease/agrolease/internal/domain/land"
)

// LandRepository implements land.Repository.
type LandRepository struct {
	pool *pgxpool.Pool
}

func NewLandRepository(pool *pgxpool.Pool) *LandRepository {
	return &LandRepository{pool: pool}
}

func (r *LandRepository) Create(ctx context.Context, l *land.Land) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lands (land_id, owner_id, title, location, size_acres, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, l.LandID, l.OwnerID, l.Title, l.Location, l.SizeAcres, l.Status, l.CreatedAt, l.UpdatedAt)
	return err
}

func scanLand(row pgx.Row) (*land.Land, error) {
	var l land.Land
	err := row.Scan(&l.ID, &l.LandID, &l.OwnerID, &l.Title, &l.Location, &l.SizeAcres, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LandRepository) GetByID(ctx context.Context, landID uuid.UUID) (*land.Land, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, land_id, owner_id, title, location, size_acres, status, created_at, updated_at
		FROM lands WHERE land_id=$1
	`, landID)
	l, err := scanLand(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func (r *LandRepository) List(ctx context.Context, filter land.Filter, limit, offset int) ([]*land.Land, error) {
	query := `
		SELECT id, land_id, owner_id, title, location, size_acres, status, created_at, updated_at
		FROM lands`
	args := []interface{}{}
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
	var lands []*land.Land
	for rows.Next() {
		l, err := scanLand(rows)
		if err != nil {
			return nil, err
		}
		lands = append(lands, l)
	}
	return lands, rows.Err()
}

func (r *LandRepository) UpdateStatus(ctx context.Context, landID uuid.UUID, from, to land.Status) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE lands SET status=$1, updated_at=NOW() WHERE land_id=$2 AND status=$3
	`, to, landID, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
