// Package storage provides a SQLite-backed audit log of dispatched alerts.
// The in-memory engine state (cooldown, warmup) is intentionally not
// persisted; only delivered alerts are recorded, best-effort.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/02s02s/volatility-alerts-bot/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Storage wraps a SQLite database holding the alert audit log.
type Storage struct {
	db         *sql.DB
	maxRecords int
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/volatility-alerts/alerts.db.
func New(maxRecords int, dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "volatility-alerts", "alerts.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Storage{db: db, maxRecords: maxRecords}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id             TEXT PRIMARY KEY,
			symbol         TEXT NOT NULL,
			category       TEXT NOT NULL,
			direction      TEXT NOT NULL,
			price          TEXT NOT NULL,
			change_5m      TEXT NOT NULL,
			change_15m     TEXT NOT NULL,
			volatility_15m TEXT NOT NULL,
			volume_15m     TEXT NOT NULL,
			volume_spike   TEXT NOT NULL,
			sent_at        INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_sent_at ON alerts(sent_at)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordAlert inserts a dispatched alert and prunes the table down to the
// configured cap, oldest first.
func (s *Storage) RecordAlert(record models.AlertRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO alerts
			(id, symbol, category, direction, price, change_5m, change_15m,
			 volatility_15m, volume_15m, volume_spike, sent_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		record.ID, record.Symbol, string(record.Category), string(record.Direction),
		record.Price.String(), record.Change5m.String(), record.Change15m.String(),
		record.Volatility15m.String(), record.Volume15m.String(), record.VolumeSpike.String(),
		record.SentAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}

	if _, err = tx.Exec(`
		DELETE FROM alerts WHERE id NOT IN (
			SELECT id FROM alerts ORDER BY sent_at DESC LIMIT ?
		)`, s.maxRecords); err != nil {
		return fmt.Errorf("failed to enforce record cap: %w", err)
	}

	return tx.Commit()
}

// RecentAlerts returns up to limit alerts, newest first.
func (s *Storage) RecentAlerts(limit int) ([]models.AlertRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, symbol, category, direction, price, change_5m, change_15m,
		       volatility_15m, volume_15m, volume_spike, sent_at
		FROM alerts ORDER BY sent_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var records []models.AlertRecord
	for rows.Next() {
		record, err := scanAlert(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// CountAlerts returns the number of stored audit records.
func (s *Storage) CountAlerts() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM alerts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return n, nil
}

func scanAlert(scan func(...any) error) (models.AlertRecord, error) {
	var record models.AlertRecord
	var category, direction string
	var price, change5m, change15m, volatility, volume15m, spike string
	var sentAtMs int64

	if err := scan(&record.ID, &record.Symbol, &category, &direction,
		&price, &change5m, &change15m, &volatility, &volume15m, &spike,
		&sentAtMs); err != nil {
		return models.AlertRecord{}, err
	}

	record.Category = models.AlertCategory(category)
	record.Direction = models.Direction(direction)
	record.SentAt = time.UnixMilli(sentAtMs)

	var err error
	for dst, src := range map[*decimal.Decimal]string{
		&record.Price:         price,
		&record.Change5m:      change5m,
		&record.Change15m:     change15m,
		&record.Volatility15m: volatility,
		&record.Volume15m:     volume15m,
		&record.VolumeSpike:   spike,
	} {
		if *dst, err = decimal.NewFromString(src); err != nil {
			return models.AlertRecord{}, fmt.Errorf("bad decimal column: %w", err)
		}
	}
	return record, nil
}
