package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/abelzeko/petrodata/internal/entities"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const createSlotsTableSQL = `
	CREATE TABLE IF NOT EXISTS slots (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

// corruptSuffix names the slot that receives an undecodable collection
// before it is overwritten.
const corruptSuffix = ".corrupt"

const (
	selectSlotSQL = `SELECT value FROM slots WHERE name = ?`
	upsertSlotSQL = `
		INSERT INTO slots(name, value, updated_at)
		VALUES(?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
		value=excluded.value,
		updated_at=excluded.updated_at`
)

// SQLiteReportRepository implements ReportRepository on a SQLite file holding
// one named slot with the JSON array of all reports.
type SQLiteReportRepository struct {
	db     *sql.DB
	DBPath string
	slot   string
	// mu serialises read-modify-write cycles so concurrent upserts cannot
	// produce two reports for one identity triple.
	mu sync.Mutex
}

// NewSQLiteReportRepository creates and initializes a new SQLite repository.
// Use ":memory:" for a throwaway database.
func NewSQLiteReportRepository(dbPath string) (*SQLiteReportRepository, error) {
	if dbPath == "" {
		dbPath = filepath.Join("data", "petrodata.db")
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	log.Info().Msgf("Opening database at %s", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and writes ordered.
	db.SetMaxOpenConns(1)

	repo, err := NewSQLiteReportRepositoryWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	repo.DBPath = dbPath
	return repo, nil
}

// NewSQLiteReportRepositoryWithDB wraps an already opened database handle.
func NewSQLiteReportRepositoryWithDB(db *sql.DB) (*SQLiteReportRepository, error) {
	if _, err := db.Exec(createSlotsTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &SQLiteReportRepository{db: db, slot: ReportsSlot}, nil
}

// Close closes the database connection
func (r *SQLiteReportRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// List returns every stored report. Read or decode failures are logged and
// treated as an empty collection.
func (r *SQLiteReportRepository) List(ctx context.Context) []entities.DailyReport {
	var raw string
	err := r.db.QueryRowContext(ctx, selectSlotSQL, r.slot).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []entities.DailyReport{}
	}
	if err != nil {
		log.Error().Err(err).Str("slot", r.slot).Msg("Failed to read reports, treating as empty")
		return []entities.DailyReport{}
	}

	reports, err := decodeReports(raw)
	if err != nil {
		log.Error().Err(err).Str("slot", r.slot).Msg("Stored reports are unreadable, treating as empty")
		return []entities.DailyReport{}
	}
	return reports
}

// Upsert stores a report, replacing any report with the same identity triple in place.
func (r *SQLiteReportRepository) Upsert(ctx context.Context, report entities.DailyReport) error {
	return r.mutate(ctx, func(s *reportSet) {
		if s.upsert(report) {
			log.Info().Msgf("Replaced report %s", report.Key())
		} else {
			log.Info().Msgf("Added report %s", report.Key())
		}
	})
}

// SaveReports upserts a batch of reports in a single write.
func (r *SQLiteReportRepository) SaveReports(ctx context.Context, reports []entities.DailyReport) error {
	err := r.mutate(ctx, func(s *reportSet) {
		for _, report := range reports {
			s.upsert(report)
		}
	})
	if err != nil {
		return err
	}
	log.Info().Msgf("Successfully saved %d reports", len(reports))
	return nil
}

// Delete removes the report with the given ID and persists the rest.
func (r *SQLiteReportRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(ctx, func(s *reportSet) {
		if s.remove(id) == 0 {
			log.Debug().Msgf("No report with id %s to delete", id)
		}
	})
}

// mutate loads the collection, applies fn and writes the whole collection
// back inside one transaction.
func (r *SQLiteReportRepository) mutate(ctx context.Context, fn func(*reportSet)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var raw string
	var reports []entities.DailyReport
	err = tx.QueryRowContext(ctx, selectSlotSQL, r.slot).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		tx.Rollback()
		return fmt.Errorf("failed to read reports: %w", err)
	default:
		if reports, err = decodeReports(raw); err != nil {
			// Unreadable data counts as no records; the old value is kept aside.
			log.Error().Err(err).Str("slot", r.slot).Msgf("Stored reports are unreadable, moving them to %s", r.slot+corruptSuffix)
			if _, err := tx.ExecContext(ctx, upsertSlotSQL, r.slot+corruptSuffix, raw, time.Now().UTC()); err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to preserve unreadable reports: %w", err)
			}
			reports = nil
		}
	}

	set := newReportSet(reports)
	fn(set)

	data, err := json.Marshal(set.list())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to encode reports: %w", err)
	}

	if _, err := tx.ExecContext(ctx, upsertSlotSQL, r.slot, string(data), time.Now().UTC()); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to write reports: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func decodeReports(raw string) ([]entities.DailyReport, error) {
	if raw == "" {
		return []entities.DailyReport{}, nil
	}
	var reports []entities.DailyReport
	if err := json.Unmarshal([]byte(raw), &reports); err != nil {
		return nil, fmt.Errorf("stored reports are unreadable: %w", err)
	}
	if reports == nil {
		reports = []entities.DailyReport{}
	}
	return reports, nil
}
