// Package postgres provides a PostgreSQL-backed storage driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx PostgreSQL driver as "pgx"

	"github.com/papercomputeco/memostack/pkg/memo"
	"github.com/papercomputeco/memostack/pkg/storage"
)

// Driver implements storage.Driver using PostgreSQL.
type Driver struct {
	db *sql.DB
}

// NewDriver creates a new PostgreSQL-backed driver.
// The connStr is a PostgreSQL connection string, e.g.
// "host=localhost port=5432 user=memostack dbname=memostack sslmode=disable"
// or a connection URI like "postgres://memostack@localhost:5432/memostack".
func NewDriver(ctx context.Context, connStr string) (*Driver, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify the connection is reachable
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &Driver{db: db}

	if err := d.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

func (d *Driver) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS memos (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'hot',
		creation_date TEXT NOT NULL,
		completion_date TEXT,
		delay_minutes INTEGER
	);

	CREATE TABLE IF NOT EXISTS hot_stack (
		id INTEGER PRIMARY KEY,
		stack_json TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS prefs (
		id INTEGER PRIMARY KEY,
		always_on_top BOOLEAN NOT NULL DEFAULT FALSE,
		input_text TEXT NOT NULL DEFAULT '',
		input_height DOUBLE PRECISION NOT NULL DEFAULT 180.0,
		window_width DOUBLE PRECISION NOT NULL DEFAULT 800.0,
		window_height DOUBLE PRECISION NOT NULL DEFAULT 600.0,
		window_x DOUBLE PRECISION,
		window_y DOUBLE PRECISION
	);
	`

	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	if _, err := d.db.ExecContext(ctx, `INSERT INTO hot_stack (id, stack_json) VALUES (1, '[]') ON CONFLICT (id) DO NOTHING`); err != nil {
		return err
	}

	_, err := d.db.ExecContext(ctx, `INSERT INTO prefs (id) VALUES (1) ON CONFLICT (id) DO NOTHING`)
	return err
}

// InsertMemo stores a new memo row and returns the assigned id.
func (d *Driver) InsertMemo(ctx context.Context, title, body string, status memo.Status, createdAt time.Time, delayMinutes *int) (int64, error) {
	query := `INSERT INTO memos (title, body, status, creation_date, delay_minutes) VALUES ($1, $2, $3, $4, $5) RETURNING id`

	var delay sql.NullInt64
	if delayMinutes != nil {
		delay = sql.NullInt64{Int64: int64(*delayMinutes), Valid: true}
	}

	var id int64
	err := d.db.QueryRowContext(ctx, query, title, body, string(status), createdAt.Format(time.RFC3339Nano), delay).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert memo: %w", err)
	}

	return id, nil
}

// UpdateStatus sets a memo's status tag and completion timestamp.
func (d *Driver) UpdateStatus(ctx context.Context, id int64, status memo.Status, completedAt *time.Time) error {
	query := `UPDATE memos SET status = $1, completion_date = $2 WHERE id = $3`

	var completed sql.NullString
	if completedAt != nil {
		completed = sql.NullString{String: completedAt.Format(time.RFC3339Nano), Valid: true}
	}

	result, err := d.db.ExecContext(ctx, query, string(status), completed, id)
	if err != nil {
		return fmt.Errorf("failed to update memo status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return storage.NotFoundError{ID: id}
	}

	return nil
}

// DeleteMemo removes a memo row.
func (d *Driver) DeleteMemo(ctx context.Context, id int64) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM memos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete memo: %w", err)
	}
	return nil
}

// ListMemos returns all memo rows with the same defaulting behavior as the
// SQLite driver: unknown status tags load as hot, unparseable creation
// timestamps load as now.
func (d *Driver) ListMemos(ctx context.Context) ([]*memo.Memo, error) {
	query := `SELECT id, title, body, status, creation_date, completion_date, delay_minutes FROM memos`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query memos: %w", err)
	}
	defer rows.Close()

	var memos []*memo.Memo
	for rows.Next() {
		var (
			m         memo.Memo
			statusTag string
			created   string
			completed sql.NullString
			delay     sql.NullInt64
		)

		if err := rows.Scan(&m.ID, &m.Title, &m.Body, &statusTag, &created, &completed, &delay); err != nil {
			return nil, fmt.Errorf("failed to scan memo: %w", err)
		}

		m.Status = memo.ParseStatus(statusTag)
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			m.CreatedAt = t
		} else {
			m.CreatedAt = time.Now().UTC()
		}
		if completed.Valid {
			if t, err := time.Parse(time.RFC3339Nano, completed.String); err == nil {
				m.CompletedAt = &t
			}
		}
		if delay.Valid {
			minutes := int(delay.Int64)
			m.DelayMinutes = &minutes
		}

		memos = append(memos, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return memos, nil
}

// SaveStack overwrites the single hot-stack row.
func (d *Driver) SaveStack(ctx context.Context, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}

	stackJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal stack: %w", err)
	}

	if _, err := d.db.ExecContext(ctx, `UPDATE hot_stack SET stack_json = $1 WHERE id = 1`, string(stackJSON)); err != nil {
		return fmt.Errorf("failed to save stack: %w", err)
	}

	return nil
}

// LoadStack returns the persisted hot-stack id list.
func (d *Driver) LoadStack(ctx context.Context) ([]int64, error) {
	var stackJSON string
	err := d.db.QueryRowContext(ctx, `SELECT stack_json FROM hot_stack WHERE id = 1`).Scan(&stackJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stack: %w", err)
	}

	var ids []int64
	if err := json.Unmarshal([]byte(stackJSON), &ids); err != nil {
		return nil, nil
	}

	return ids, nil
}

// SavePrefs overwrites the single prefs row.
func (d *Driver) SavePrefs(ctx context.Context, prefs storage.Prefs) error {
	query := `UPDATE prefs SET always_on_top = $1, input_text = $2, input_height = $3, window_width = $4, window_height = $5, window_x = $6, window_y = $7 WHERE id = 1`

	_, err := d.db.ExecContext(ctx, query,
		prefs.AlwaysOnTop,
		prefs.InputText,
		prefs.InputHeight,
		prefs.WindowWidth,
		prefs.WindowHeight,
		nullFloat(prefs.WindowX),
		nullFloat(prefs.WindowY),
	)
	if err != nil {
		return fmt.Errorf("failed to save prefs: %w", err)
	}

	return nil
}

// LoadPrefs returns the single prefs row.
func (d *Driver) LoadPrefs(ctx context.Context) (storage.Prefs, error) {
	query := `SELECT always_on_top, input_text, input_height, window_width, window_height, window_x, window_y FROM prefs WHERE id = 1`

	var (
		prefs   storage.Prefs
		windowX sql.NullFloat64
		windowY sql.NullFloat64
	)

	err := d.db.QueryRowContext(ctx, query).Scan(
		&prefs.AlwaysOnTop,
		&prefs.InputText,
		&prefs.InputHeight,
		&prefs.WindowWidth,
		&prefs.WindowHeight,
		&windowX,
		&windowY,
	)
	if err == sql.ErrNoRows {
		return storage.DefaultPrefs(), nil
	}
	if err != nil {
		return storage.Prefs{}, fmt.Errorf("failed to load prefs: %w", err)
	}

	if windowX.Valid {
		x := windowX.Float64
		prefs.WindowX = &x
	}
	if windowY.Valid {
		y := windowY.Float64
		prefs.WindowY = &y
	}

	return prefs, nil
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

// Close closes the database connection.
func (d *Driver) Close() error {
	return d.db.Close()
}

// Ensure Driver implements storage.Driver
var _ storage.Driver = (*Driver)(nil)
