// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/memostack/pkg/memo"
	"github.com/papercomputeco/memostack/pkg/storage"
)

// Driver implements storage.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

// NewDriver creates a new SQLite-backed driver.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	d := &Driver{db: db}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

// migrate creates the necessary tables if they don't exist and seeds the
// single-row hot_stack and prefs records.
func (d *Driver) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'hot',
		creation_date TEXT NOT NULL,
		completion_date TEXT,
		delay_minutes INTEGER
	);

	CREATE TABLE IF NOT EXISTS hot_stack (
		id INTEGER PRIMARY KEY DEFAULT 1,
		stack_json TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS prefs (
		id INTEGER PRIMARY KEY DEFAULT 1,
		always_on_top INTEGER NOT NULL DEFAULT 0,
		input_text TEXT NOT NULL DEFAULT '',
		input_height REAL NOT NULL DEFAULT 180.0,
		window_width REAL NOT NULL DEFAULT 800.0,
		window_height REAL NOT NULL DEFAULT 600.0,
		window_x REAL,
		window_y REAL
	);
	`

	if _, err := d.db.Exec(schema); err != nil {
		return err
	}

	if _, err := d.db.Exec(`INSERT OR IGNORE INTO hot_stack (id, stack_json) VALUES (1, '[]')`); err != nil {
		return err
	}

	_, err := d.db.Exec(`INSERT OR IGNORE INTO prefs (id) VALUES (1)`)
	return err
}

// InsertMemo stores a new memo row and returns the assigned rowid.
func (d *Driver) InsertMemo(ctx context.Context, title, body string, status memo.Status, createdAt time.Time, delayMinutes *int) (int64, error) {
	query := `INSERT INTO memos (title, body, status, creation_date, delay_minutes) VALUES (?, ?, ?, ?, ?)`

	var delay sql.NullInt64
	if delayMinutes != nil {
		delay = sql.NullInt64{Int64: int64(*delayMinutes), Valid: true}
	}

	result, err := d.db.ExecContext(ctx, query, title, body, string(status), createdAt.Format(time.RFC3339Nano), delay)
	if err != nil {
		return 0, fmt.Errorf("failed to insert memo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}

	return id, nil
}

// UpdateStatus sets a memo's status tag and completion timestamp.
func (d *Driver) UpdateStatus(ctx context.Context, id int64, status memo.Status, completedAt *time.Time) error {
	query := `UPDATE memos SET status = ?, completion_date = ? WHERE id = ?`

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
	if _, err := d.db.ExecContext(ctx, `DELETE FROM memos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete memo: %w", err)
	}
	return nil
}

// ListMemos returns all memo rows. Malformed rows are defaulted rather than
// surfaced as errors: unknown status tags load as hot and unparseable
// creation timestamps load as now.
func (d *Driver) ListMemos(ctx context.Context) ([]*memo.Memo, error) {
	query := `SELECT id, title, body, status, creation_date, completion_date, delay_minutes FROM memos`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query memos: %w", err)
	}
	defer rows.Close()

	return scanMemos(rows)
}

// scanMemos scans memo rows into Memo structs.
func scanMemos(rows *sql.Rows) ([]*memo.Memo, error) {
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
		m.CreatedAt = parseTimeOrNow(created)

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

// parseTimeOrNow defaults an unparseable stored timestamp to now so a
// corrupt row never fails the load.
func parseTimeOrNow(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

// SaveStack overwrites the single hot-stack row with the ordered id list
// serialized as a JSON array.
func (d *Driver) SaveStack(ctx context.Context, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}

	stackJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal stack: %w", err)
	}

	if _, err := d.db.ExecContext(ctx, `UPDATE hot_stack SET stack_json = ? WHERE id = 1`, string(stackJSON)); err != nil {
		return fmt.Errorf("failed to save stack: %w", err)
	}

	return nil
}

// LoadStack returns the persisted hot-stack id list. A malformed stored
// array loads as empty.
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
	query := `UPDATE prefs SET always_on_top = ?, input_text = ?, input_height = ?, window_width = ?, window_height = ?, window_x = ?, window_y = ? WHERE id = 1`

	_, err := d.db.ExecContext(ctx, query,
		boolToInt(prefs.AlwaysOnTop),
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
		onTop   int
		windowX sql.NullFloat64
		windowY sql.NullFloat64
	)

	err := d.db.QueryRowContext(ctx, query).Scan(
		&onTop,
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

	prefs.AlwaysOnTop = onTop != 0
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

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
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
