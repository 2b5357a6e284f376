package match

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kplc/bulletin-notify/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// indexPG backs Index with the two tsvector/tsquery Postgres functions
// mirroring the original's search_specific_location_{primary,secondary}_text
// signatures.
type indexPG struct{ pool *pgxpool.Pool }

func NewIndexPG(pool *pgxpool.Pool) Index {
	return &indexPG{pool: pool}
}

func (r *indexPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *indexPG) SearchPrimary(ctx context.Context, candidates []string, locationID uuid.UUID, areaName string) (bool, error) {
	var hit uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT location_id FROM location.search_specific_location_primary_text($1::text[], $2::uuid, $3::text)`,
		candidates, locationID, areaName).Scan(&hit)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *indexPG) SearchNearby(ctx context.Context, candidates []string, locationID uuid.UUID) (bool, error) {
	var hit uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT location_id FROM location.search_specific_location_secondary_text($1::text[], $2::uuid)`,
		candidates, locationID).Scan(&hit)
	if err != nil {
		return false, nil
	}
	return true, nil
}
