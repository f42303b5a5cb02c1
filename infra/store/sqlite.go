package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pun33th45/spotmate/core/dataset"
	"github.com/pun33th45/spotmate/core/model"
)

// SQLiteStore persists the occupancy table in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures the
// schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS occupancy (
        zone_id TEXT NOT NULL,
        day INTEGER NOT NULL,
        hour INTEGER NOT NULL,
        occupancy REAL NOT NULL,
        is_weekend INTEGER NOT NULL,
        PRIMARY KEY(zone_id, day, hour)
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("schema: %w (close: %v)", err, cerr)
		}
		return nil, fmt.Errorf("schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]model.OccupancyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT zone_id, day, hour, occupancy, is_weekend
        FROM occupancy ORDER BY zone_id, day, hour`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var records []model.OccupancyRecord
	for rows.Next() {
		var rec model.OccupancyRecord
		var weekend int
		if err := rows.Scan(&rec.ZoneID, &rec.Day, &rec.Hour, &rec.Occupancy, &weekend); err != nil {
			return nil, err
		}
		rec.IsWeekend = weekend != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, dataset.ErrNotFound
	}
	return records, nil
}

func (s *SQLiteStore) Save(ctx context.Context, records []model.OccupancyRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM occupancy`); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, rec := range records {
		if err := upsert(ctx, tx, rec); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Append(ctx context.Context, rec model.OccupancyRecord) error {
	return upsert(ctx, s.db, rec)
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, rec model.OccupancyRecord) error {
	weekend := 0
	if rec.IsWeekend {
		weekend = 1
	}
	_, err := db.ExecContext(ctx, `INSERT INTO occupancy (zone_id, day, hour, occupancy, is_weekend)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(zone_id, day, hour) DO UPDATE SET occupancy=excluded.occupancy, is_weekend=excluded.is_weekend`,
		rec.ZoneID, rec.Day, rec.Hour, rec.Occupancy, weekend)
	return err
}
