package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"opsboard/internal/core"
	"opsboard/internal/log"
	"opsboard/internal/ports"
	"opsboard/internal/schema"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores entity records as JSON documents and persists board views.
type SQLiteRepository struct {
	db        *sql.DB
	validator *schema.Validator
	logger    *log.Logger
	now       func() time.Time
}

var _ ports.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, validator *schema.Validator, logger *log.Logger) (*SQLiteRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps :memory: databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db:        db,
		validator: validator,
		logger:    log.OrDefault(logger, log.ComponentStorage),
		now:       time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable; used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Collection(entity string) (ports.Collection, error) {
	if !core.IsEntity(entity) {
		return nil, fmt.Errorf("%w: %s", ports.ErrUnknownEntity, entity)
	}
	return &sqliteCollection{repo: r, entity: entity}, nil
}

// Seed inserts records that do not exist yet. Existing ids are left untouched.
func (r *SQLiteRepository) Seed(ctx context.Context, entity string, rows []core.Record) error {
	c, err := r.Collection(entity)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if id := row.ID(); id != "" {
			if _, err := c.Get(ctx, id); err == nil {
				continue
			}
		}
		if _, err := c.(*sqliteCollection).insert(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// GetView returns a persisted board view value.
func (r *SQLiteRepository) GetView(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM board_views WHERE view_key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get view %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) SetView(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO board_views (view_key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(view_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, r.timestamp())
	if err != nil {
		return fmt.Errorf("set view %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteView(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM board_views WHERE view_key = ?`, key); err != nil {
		return fmt.Errorf("delete view %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

type sqliteCollection struct {
	repo   *SQLiteRepository
	entity string
}

func (c *sqliteCollection) List(ctx context.Context) ([]core.Record, error) {
	rows, err := c.repo.db.QueryContext(ctx,
		`SELECT data FROM records WHERE entity = ? ORDER BY seq`, c.entity)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.entity, err)
	}
	defer rows.Close()

	out := []core.Record{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.entity, err)
		}
		rec, err := decode(data)
		if err != nil {
			c.repo.logger.Warn("Skipping undecodable record",
				log.FieldEntity, c.entity, log.FieldError, err)
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (c *sqliteCollection) Get(ctx context.Context, id string) (core.Record, error) {
	var data string
	err := c.repo.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE entity = ? AND id = ?`, c.entity, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", c.entity, id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", c.entity, id, err)
	}
	return decode(data)
}

func (c *sqliteCollection) Create(ctx context.Context, fields core.Record) (core.Record, error) {
	if err := c.repo.validator.Validate(c.entity, fields); err != nil {
		return nil, err
	}
	return c.insert(ctx, fields)
}

func (c *sqliteCollection) insert(ctx context.Context, fields core.Record) (core.Record, error) {
	rec := fields.Clone()
	if rec == nil {
		rec = core.Record{}
	}
	if rec.ID() == "" {
		rec[core.FieldID] = uuid.NewString()
	}
	ts := c.repo.timestamp()
	if !rec.Has("created_at") {
		rec["created_at"] = ts
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.entity, err)
	}
	_, err = c.repo.db.ExecContext(ctx, `
		INSERT INTO records (entity, id, seq, data, created_at, updated_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records WHERE entity = ?), ?, ?, ?)`,
		c.entity, rec.ID(), c.entity, string(data), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", c.entity, err)
	}

	c.repo.logger.Debug("Record created", log.FieldEntity, c.entity, log.FieldRecordID, rec.ID())
	return rec, nil
}

func (c *sqliteCollection) Update(ctx context.Context, id string, fields core.Record) error {
	if err := c.repo.validator.ValidatePartial(c.entity, fields); err != nil {
		return err
	}

	tx, err := c.repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM records WHERE entity = ? AND id = ?`, c.entity, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", c.entity, id, ports.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load %s %s: %w", c.entity, id, err)
	}
	current, err := decode(data)
	if err != nil {
		return err
	}

	ts := c.repo.timestamp()
	merged := current.Merge(fields)
	merged[core.FieldID] = id
	merged["updated_at"] = ts
	encoded, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.entity, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE records SET data = ?, updated_at = ? WHERE entity = ? AND id = ?`,
		string(encoded), ts, c.entity, id); err != nil {
		return fmt.Errorf("update %s %s: %w", c.entity, id, err)
	}
	return tx.Commit()
}

func (c *sqliteCollection) Delete(ctx context.Context, id string) error {
	res, err := c.repo.db.ExecContext(ctx,
		`DELETE FROM records WHERE entity = ? AND id = ?`, c.entity, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.entity, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %s: %w", c.entity, id, ports.ErrNotFound)
	}
	return nil
}

func decode(data string) (core.Record, error) {
	var rec core.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
