package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"cardseer/internal/guess"
)

// SnapshotKey is the key for the guess-session snapshot blob. Kept
// stable across versions so existing databases remain readable.
const SnapshotKey = "gac_state_v1"

// Snapshot is the persisted guess-session state. The dataset itself is
// always re-fetched on startup, so only the history and sort preference
// are stored.
type Snapshot struct {
	Guesses []guess.Guess `json:"guesses"`
	SortBy  string        `json:"sortBy"`
}

// Service provides snapshot and import-audit persistence on top of DB.
// When encryption is non-nil, snapshot payloads are encrypted at rest.
type Service struct {
	db         *DB
	encryption *EncryptionConfig
}

// NewService creates a storage service. encryption may be nil.
func NewService(db *DB, encryption *EncryptionConfig) *Service {
	return &Service{db: db, encryption: encryption}
}

// SaveSnapshot writes the session snapshot under SnapshotKey. Called
// after every mutating operation.
func (s *Service) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	encrypted := 0
	if s.encryption != nil {
		payload, err = EncryptData(payload, s.encryption)
		if err != nil {
			return fmt.Errorf("failed to encrypt snapshot: %w", err)
		}
		encrypted = 1
	}

	query := `
		INSERT INTO snapshots (key, payload, encrypted, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			encrypted = excluded.encrypted,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.Conn().ExecContext(ctx, query, SnapshotKey, payload, encrypted); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads the session snapshot. Returns nil when no snapshot
// has been saved yet.
func (s *Service) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	query := `SELECT payload, encrypted FROM snapshots WHERE key = ?`

	var payload []byte
	var encrypted int
	err := s.db.Conn().QueryRowContext(ctx, query, SnapshotKey).Scan(&payload, &encrypted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	if encrypted == 1 {
		if s.encryption == nil {
			return nil, fmt.Errorf("snapshot is encrypted but no passphrase is configured")
		}
		payload, err = DecryptData(payload, s.encryption)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt snapshot: %w", err)
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snap, nil
}

// ClearSnapshot deletes the stored snapshot.
func (s *Service) ClearSnapshot(ctx context.Context) error {
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, SnapshotKey); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}

// RecordImport appends one row to the import audit table.
func (s *Service) RecordImport(ctx context.Context, file string, cards, dropped int) error {
	query := `INSERT INTO imports (file, cards, dropped) VALUES (?, ?, ?)`
	if _, err := s.db.Conn().ExecContext(ctx, query, file, cards, dropped); err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}
	return nil
}

// ImportRecord is one row of the import audit table.
type ImportRecord struct {
	ID      int64
	File    string
	Cards   int
	Dropped int
}

// ListImports returns import audit rows, newest first.
func (s *Service) ListImports(ctx context.Context, limit int) ([]ImportRecord, error) {
	query := `
		SELECT id, file, cards, dropped
		FROM imports
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.Conn().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []ImportRecord
	for rows.Next() {
		var r ImportRecord
		if err := rows.Scan(&r.ID, &r.File, &r.Cards, &r.Dropped); err != nil {
			return nil, fmt.Errorf("failed to scan import record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate import records: %w", err)
	}

	return records, nil
}
