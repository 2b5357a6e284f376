package subscriber

import (
	"context"
	"time"

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

// NewRepoPG returns a Repository backed by Postgres.
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

const subscriberCols = `subscriber_id, external_id, name, email, last_login, created_at`

func scanSubscriber(row pgx.Row) (*Subscriber, error) {
	var s Subscriber
	if err := row.Scan(&s.SubscriberID, &s.ExternalID, &s.Name, &s.Email, &s.LastLogin, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Subscriber, error) {
	return scanSubscriber(r.conn(ctx).QueryRow(ctx,
		`SELECT `+subscriberCols+` FROM subscriber WHERE subscriber_id = $1`, id))
}

func (r *repoPG) GetByExternalID(ctx context.Context, externalID string) (*Subscriber, error) {
	return scanSubscriber(r.conn(ctx).QueryRow(ctx,
		`SELECT `+subscriberCols+` FROM subscriber WHERE external_id = $1`, externalID))
}

func (r *repoPG) GetOrCreateByExternalID(ctx context.Context, externalID, name, email string) (*Subscriber, error) {
	now := time.Now().UTC()
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO subscriber (subscriber_id, external_id, name, email, last_login, created_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (external_id) DO UPDATE
			SET name = EXCLUDED.name, email = EXCLUDED.email, last_login = EXCLUDED.last_login
		RETURNING `+subscriberCols,
		uuid.New(), externalID, name, email, now)
	return scanSubscriber(row)
}
