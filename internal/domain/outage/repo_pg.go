package outage

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kplc/bulletin-notify/internal/platform/db"
	"github.com/kplc/bulletin-notify/pkg/apperr"
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

func (r *repoPG) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	txCtx, tx, err := db.WithTx(ctx)
	if err != nil {
		return err
	}
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// ResolveCountyID performs the tolerant match described in spec.md §4.3:
// exact case-insensitive, then first-word substring, then dash/space
// normalization.
func (r *repoPG) ResolveCountyID(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT county_id FROM county WHERE lower(name) = lower($1)`, name).Scan(&id)
	if err == nil {
		return id, nil
	}

	firstWord := name
	if i := strings.IndexAny(name, " -"); i > 0 {
		firstWord = name[:i]
	}
	err = r.conn(ctx).QueryRow(ctx,
		`SELECT county_id FROM county WHERE lower(name) LIKE lower($1) || '%' LIMIT 1`, firstWord).Scan(&id)
	if err == nil {
		return id, nil
	}

	normalized := strings.ReplaceAll(strings.ReplaceAll(name, "-", " "), "_", " ")
	err = r.conn(ctx).QueryRow(ctx,
		`SELECT county_id FROM county
		 WHERE lower(replace(replace(name, '-', ' '), '_', ' ')) = lower($1)`, normalized).Scan(&id)
	if err == nil {
		return id, nil
	}
	return uuid.Nil, apperr.Expected("no county matches "+name, err)
}

func (r *repoPG) UpsertArea(ctx context.Context, countyID uuid.UUID, name string) (*Area, error) {
	var a Area
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO area (area_id, county_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (county_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING area_id, county_id, name`,
		uuid.New(), countyID, name).Scan(&a.AreaID, &a.CountyID, &a.Name)
	return &a, err
}

func (r *repoPG) UpsertLine(ctx context.Context, areaID uuid.UUID, name string) (*Line, error) {
	var l Line
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO line (line_id, area_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (area_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING line_id, area_id, name`,
		uuid.New(), areaID, name).Scan(&l.LineID, &l.AreaID, &l.Name)
	return &l, err
}

func (r *repoPG) InsertSchedule(ctx context.Context, sched *BlackoutSchedule) error {
	sched.ScheduleID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO blackout_schedule (schedule_id, area_id, source_id, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)`,
		sched.ScheduleID, sched.AreaID, sched.SourceID, sched.StartTime, sched.EndTime)
	return err
}

func (r *repoPG) LinkLineSchedule(ctx context.Context, lineID, scheduleID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO line_schedule (line_id, schedule_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, lineID, scheduleID)
	return err
}

func (r *repoPG) FutureSchedulesForArea(ctx context.Context, areaID uuid.UUID, now time.Time) ([]ScheduleWithLines, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT bs.schedule_id, bs.area_id, bs.source_id, bs.start_time, bs.end_time,
			l.line_id, l.area_id, l.name
		FROM blackout_schedule bs
		JOIN line_schedule ls ON ls.schedule_id = bs.schedule_id
		JOIN line l ON l.line_id = ls.line_id
		WHERE bs.area_id = $1 AND bs.end_time > $2
		ORDER BY bs.schedule_id`, areaID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make(map[uuid.UUID]*ScheduleWithLines)
	var order []uuid.UUID
	for rows.Next() {
		var sched BlackoutSchedule
		var line Line
		if err := rows.Scan(&sched.ScheduleID, &sched.AreaID, &sched.SourceID, &sched.StartTime, &sched.EndTime,
			&line.LineID, &line.AreaID, &line.Name); err != nil {
			return nil, err
		}
		g, ok := grouped[sched.ScheduleID]
		if !ok {
			g = &ScheduleWithLines{Schedule: sched}
			grouped[sched.ScheduleID] = g
			order = append(order, sched.ScheduleID)
		}
		g.Lines = append(g.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]ScheduleWithLines, 0, len(order))
	for _, id := range order {
		result = append(result, *grouped[id])
	}
	return result, nil
}

func (r *repoPG) AllAreasWithFutureSchedules(ctx context.Context, now time.Time) ([]Area, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT a.area_id, a.county_id, a.name
		FROM area a
		JOIN blackout_schedule bs ON bs.area_id = a.area_id
		WHERE bs.end_time > $1`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []Area
	for rows.Next() {
		var a Area
		if err := rows.Scan(&a.AreaID, &a.CountyID, &a.Name); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}
