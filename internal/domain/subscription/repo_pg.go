package subscription

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

func scanSubscriberLocation(row pgx.Row) (*SubscriberLocation, error) {
	var sl SubscriberLocation
	if err := row.Scan(&sl.ID, &sl.SubscriberID, &sl.LocationID, &sl.CreatedAt); err != nil {
		return nil, err
	}
	return &sl, nil
}

func (r *repoPG) Create(ctx context.Context, subscriberID, locationID uuid.UUID) (*SubscriberLocation, error) {
	id := uuid.New()
	return scanSubscriberLocation(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO subscriber_location (id, subscriber_id, location_id)
		VALUES ($1,$2,$3)
		ON CONFLICT (subscriber_id, location_id) DO UPDATE SET subscriber_id = EXCLUDED.subscriber_id
		RETURNING id, subscriber_id, location_id, created_at`,
		id, subscriberID, locationID))
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*SubscriberLocation, error) {
	return scanSubscriberLocation(r.conn(ctx).QueryRow(ctx,
		`SELECT id, subscriber_id, location_id, created_at FROM subscriber_location WHERE id = $1`, id))
}

func (r *repoPG) Delete(ctx context.Context, subscriberID, locationID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM subscriber_location WHERE subscriber_id = $1 AND location_id = $2`, subscriberID, locationID)
	return err
}

func (r *repoPG) DeleteByID(ctx context.Context, subscriberID, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM subscriber_location WHERE id = $1 AND subscriber_id = $2`, id, subscriberID)
	return err
}

func (r *repoPG) ListAll(ctx context.Context) ([]SubscriberLocation, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, subscriber_id, location_id, created_at FROM subscriber_location ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []SubscriberLocation
	for rows.Next() {
		var sl SubscriberLocation
		if err := rows.Scan(&sl.ID, &sl.SubscriberID, &sl.LocationID, &sl.CreatedAt); err != nil {
			return nil, err
		}
		all = append(all, sl)
	}
	return all, rows.Err()
}

func (r *repoPG) ListBySubscriber(ctx context.Context, subscriberID uuid.UUID) ([]View, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT sl.id, sl.subscriber_id, sl.location_id, sl.created_at, l.name, l.address
		FROM subscriber_location sl
		JOIN location l ON l.location_id = sl.location_id
		WHERE sl.subscriber_id = $1
		ORDER BY sl.created_at DESC`, subscriberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []View
	for rows.Next() {
		var v View
		if err := rows.Scan(&v.ID, &v.SubscriberID, &v.LocationID, &v.CreatedAt, &v.Name, &v.Address); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
