package notification

import (
	"context"
	"fmt"
	"strings"

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

func (r *repoPG) GetOrCreateStrategyByName(ctx context.Context, name string) (*NotificationStrategy, error) {
	var s NotificationStrategy
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO notification_strategy (strategy_id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING strategy_id, name`,
		uuid.New(), name).Scan(&s.StrategyID, &s.Name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ReserveRecords inserts every rec in one statement, so a subscriber
// matched against many lines costs one round trip instead of one per line.
func (r *repoPG) ReserveRecords(ctx context.Context, recs []*NotificationRecord) ([]*NotificationRecord, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO notification_record
		(source_id, subscriber_id, line_name, strategy_id, location_id_matched, directly_affected, external_send_id)
		VALUES `)
	args := make([]interface{}, 0, len(recs)*6)
	for i, rec := range recs {
		if i > 0 {
			sb.WriteString(",")
		}
		base := i * 6
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,'')", base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, rec.SourceID, rec.SubscriberID, rec.LineName, rec.StrategyID, rec.LocationIDMatched, rec.DirectlyAffected)
	}
	sb.WriteString(` ON CONFLICT (source_id, subscriber_id, line_name, strategy_id) DO NOTHING RETURNING line_name`)

	rows, err := r.conn(ctx).Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	won := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		won[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]*NotificationRecord, 0, len(recs))
	for _, rec := range recs {
		if won[rec.LineName] {
			result = append(result, rec)
		}
	}
	return result, nil
}

// SetExternalSendID stamps every rec in one statement so a partial
// database failure can never leave some lines sent but permanently
// unstamped: the UPDATE either stamps the whole batch or none of it.
func (r *repoPG) SetExternalSendID(ctx context.Context, recs []*NotificationRecord, externalSendID string) error {
	if len(recs) == 0 {
		return nil
	}
	lineNames := lineNamesOf(recs)
	rec := recs[0]
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE notification_record SET external_send_id = $5
		WHERE source_id = $1 AND subscriber_id = $2 AND strategy_id = $3 AND line_name = ANY($4)`,
		rec.SourceID, rec.SubscriberID, rec.StrategyID, lineNames, externalSendID)
	return err
}

func (r *repoPG) Release(ctx context.Context, recs []*NotificationRecord) error {
	if len(recs) == 0 {
		return nil
	}
	lineNames := lineNamesOf(recs)
	rec := recs[0]
	_, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM notification_record
		WHERE source_id = $1 AND subscriber_id = $2 AND strategy_id = $3 AND line_name = ANY($4) AND external_send_id = ''`,
		rec.SourceID, rec.SubscriberID, rec.StrategyID, lineNames)
	return err
}

func lineNamesOf(recs []*NotificationRecord) []string {
	names := make([]string, len(recs))
	for i, rec := range recs {
		names[i] = rec.LineName
	}
	return names
}
