package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/fet-timetable-api/internal/models"
	"github.com/noah-isme/fet-timetable-api/pkg/storage"
)

const mappingsFile = "mappings.json"

// FileMappingRepository stores each session's rename tables as
// "<session>/mappings.json" under the data directory.
type FileMappingRepository struct {
	store *storage.LocalStorage
}

// NewFileMappingRepository constructs the file backend.
func NewFileMappingRepository(store *storage.LocalStorage) *FileMappingRepository {
	return &FileMappingRepository{store: store}
}

// Load returns the persisted mappings, or empty tables when none exist.
func (r *FileMappingRepository) Load(ctx context.Context, sessionID string) (models.Mappings, error) {
	raw, err := r.store.Read(path.Join(sessionID, mappingsFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.NewMappings(), nil
		}
		return models.Mappings{}, fmt.Errorf("read mappings for %s: %w", sessionID, err)
	}
	var m models.Mappings
	if err := json.Unmarshal(raw, &m); err != nil {
		return models.Mappings{}, fmt.Errorf("decode mappings for %s: %w", sessionID, err)
	}
	if m.Teachers == nil {
		m.Teachers = models.RenameTable{}
	}
	if m.Rooms == nil {
		m.Rooms = models.RenameTable{}
	}
	return m, nil
}

// Save overwrites the session's mappings file.
func (r *FileMappingRepository) Save(ctx context.Context, sessionID string, m models.Mappings) error {
	if m.Teachers == nil {
		m.Teachers = models.RenameTable{}
	}
	if m.Rooms == nil {
		m.Rooms = models.RenameTable{}
	}
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mappings for %s: %w", sessionID, err)
	}
	if _, err := r.store.Save(path.Join(sessionID, mappingsFile), payload); err != nil {
		return fmt.Errorf("write mappings for %s: %w", sessionID, err)
	}
	return nil
}

type mappingRow struct {
	Kind     string `db:"kind"`
	Original string `db:"original"`
	Renamed  string `db:"renamed"`
}

// PostgresMappingRepository keeps rename tables in the rename_mappings table.
type PostgresMappingRepository struct {
	db *sqlx.DB
}

// NewPostgresMappingRepository constructs the Postgres backend.
func NewPostgresMappingRepository(db *sqlx.DB) *PostgresMappingRepository {
	return &PostgresMappingRepository{db: db}
}

// EnsureSchema creates the mappings table when missing.
func (r *PostgresMappingRepository) EnsureSchema(ctx context.Context) error {
	const query = `CREATE TABLE IF NOT EXISTS rename_mappings (
    session_id TEXT NOT NULL,
    kind       TEXT NOT NULL,
    original   TEXT NOT NULL,
    renamed    TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (session_id, kind, original)
)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure rename_mappings schema: %w", err)
	}
	return nil
}

// Load reads both tables of a session.
func (r *PostgresMappingRepository) Load(ctx context.Context, sessionID string) (models.Mappings, error) {
	const query = `SELECT kind, original, renamed FROM rename_mappings WHERE session_id = $1 ORDER BY kind, original`
	var rows []mappingRow
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return models.Mappings{}, fmt.Errorf("load mappings: %w", err)
	}
	m := models.NewMappings()
	for _, row := range rows {
		switch models.RenameKind(row.Kind) {
		case models.RenameKindTeacher:
			m.Teachers[row.Original] = row.Renamed
		case models.RenameKindRoom:
			m.Rooms[row.Original] = row.Renamed
		}
	}
	return m, nil
}

// Save replaces the stored tables of a session in one transaction.
func (r *PostgresMappingRepository) Save(ctx context.Context, sessionID string, m models.Mappings) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mappings tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rename_mappings WHERE session_id = $1`, sessionID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear mappings: %w", err)
	}
	const insert = `INSERT INTO rename_mappings (session_id, kind, original, renamed, updated_at) VALUES ($1, $2, $3, $4, $5)`
	now := time.Now().UTC()
	for _, kind := range []models.RenameKind{models.RenameKindTeacher, models.RenameKindRoom} {
		table := m.Table(kind)
		for _, original := range sortedKeys(table) {
			if _, err := tx.ExecContext(ctx, insert, sessionID, string(kind), original, table[original], now); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("insert mapping: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mappings tx: %w", err)
	}
	return nil
}

func sortedKeys(table models.RenameTable) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
