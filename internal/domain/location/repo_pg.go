package location

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const locationCols = `location_id, external_id, name, address, sanitized_address, api_response, lat, lng, created_at`

func scanLocation(row pgx.Row) (*Location, error) {
	var l Location
	if err := row.Scan(&l.LocationID, &l.ExternalID, &l.Name, &l.Address, &l.SanitizedAddress,
		&l.APIResponse, &l.Lat, &l.Lng, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repoPG) GetByExternalID(ctx context.Context, externalID string) (*Location, error) {
	return scanLocation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+locationCols+` FROM location WHERE external_id = $1`, externalID))
}

func (r *repoPG) GetByID(ctx context.Context, locationID uuid.UUID) (*Location, error) {
	return scanLocation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+locationCols+` FROM location WHERE location_id = $1`, locationID))
}

func (r *repoPG) Create(ctx context.Context, loc *Location) error {
	loc.LocationID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO location (location_id, external_id, name, address, sanitized_address, api_response, lat, lng)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
		RETURNING created_at`,
		loc.LocationID, loc.ExternalID, loc.Name, loc.Address, loc.SanitizedAddress,
		loc.APIResponse, loc.Lat, loc.Lng).Scan(&loc.CreatedAt)
}

func scanNearby(row pgx.Row) (*NearbyLocations, error) {
	var n NearbyLocations
	if err := row.Scan(&n.NearbyID, &n.LocationID, &n.SourceURL, &n.Response, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repoPG) GetNearbyByLocationID(ctx context.Context, locationID uuid.UUID) (*NearbyLocations, error) {
	return scanNearby(r.conn(ctx).QueryRow(ctx,
		`SELECT nearby_id, location_id, source_url, response, created_at
		 FROM nearby_locations WHERE location_id = $1`, locationID))
}

func (r *repoPG) CreateNearby(ctx context.Context, nearby *NearbyLocations) error {
	nearby.NearbyID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO nearby_locations (nearby_id, location_id, source_url, response)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (source_url) DO UPDATE SET source_url = EXCLUDED.source_url
		RETURNING created_at`,
		nearby.NearbyID, nearby.LocationID, nearby.SourceURL, nearby.Response).Scan(&nearby.CreatedAt)
}
