/*
Package sqlite provides a SQLite-backed cashflow.Source.

PURPOSE:
  Persists the two inputs of a projection run: the control key/value map
  and the event definitions. Projections themselves are never stored;
  they are recomputed from these on every run.

KEY TABLES:
  control:      key/value rows, parsed by cashflow.ParseControl
  definitions:  one row per definition; the document form lives in
                definition_json (factory.DefinitionJSON), with kind, name
                and position pulled out as columns

ORDERING:
  position preserves the configured order of definitions. Within one kind,
  that order is the timeline tie-break for same-day instances, so
  Definitions() returns rows ORDER BY position and new rows are appended
  with MAX(position)+1.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/cashflow.db")
  if err != nil {
      log.Fatal().Err(err).Msg("open store")
  }
  defer store.Close()

  control, defs, err := cashflow.LoadInputs(ctx, store)

SEE ALSO:
  - cashflow/projection.go: Source interface
  - cashflow/store/memory.go: In-memory implementation for testing
  - factory/definition.go: document <-> Definition conversion
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/factory"
)

// Store implements cashflow.Source using SQLite.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	factory *factory.DefinitionFactory
	log     zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger. The default is zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l.With().Str("component", "sqlite").Logger() }
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, factory: factory.NewDefinitionFactory(), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	store.log.Debug().Str("path", dbPath).Msg("store opened")
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS control (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS definitions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		definition_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Definitions() reads every row grouped by kind in configured order
	CREATE INDEX IF NOT EXISTS idx_definitions_kind_position
		ON definitions(kind, position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CONTROL
// =============================================================================

// Control parses the stored control map.
func (s *Store) Control(ctx context.Context) (cashflow.ControlParameters, error) {
	kv, err := s.ControlMap(ctx)
	if err != nil {
		return cashflow.ControlParameters{}, err
	}
	return cashflow.ParseControl(kv)
}

// ControlMap returns the raw control rows.
func (s *Store) ControlMap(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM control")
	if err != nil {
		return nil, fmt.Errorf("failed to query control: %w", err)
	}
	defer rows.Close()

	kv := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan control: %w", err)
		}
		kv[k] = v
	}
	return kv, rows.Err()
}

// SetControl upserts every key in kv. Keys not in kv are left alone; an
// empty value deletes the key.
func (s *Store) SetControl(ctx context.Context, kv map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := setControlTx(ctx, sqlTx, kv); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return err
	}
	s.log.Info().Int("keys", len(kv)).Msg("control updated")
	return nil
}

func setControlTx(ctx context.Context, db execer, kv map[string]string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	// deterministic write order keeps the log and test failures readable
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := strings.TrimSpace(kv[k])
		if v == "" {
			if _, err := db.ExecContext(ctx, "DELETE FROM control WHERE key = ?", k); err != nil {
				return fmt.Errorf("failed to delete control %s: %w", k, err)
			}
			continue
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO control (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, k, v, now)
		if err != nil {
			return fmt.Errorf("failed to save control %s: %w", k, err)
		}
	}
	return nil
}

// =============================================================================
// DEFINITIONS
// =============================================================================

// SaveDefinition inserts def, or updates it in place (keeping its position)
// when the ID already exists. An empty ID is assigned.
func (s *Store) SaveDefinition(ctx context.Context, def cashflow.Definition) (cashflow.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if def.ID == "" {
		def.ID = s.factory.NewID()
	}
	if err := saveDefinitionTx(ctx, s.db, def); err != nil {
		return cashflow.Definition{}, err
	}
	s.log.Debug().Str("id", def.ID).Str("kind", def.Kind.String()).Str("name", def.Name).Msg("definition saved")
	return def, nil
}

func saveDefinitionTx(ctx context.Context, db execer, def cashflow.Definition) error {
	doc, err := json.Marshal(factory.ToJSON(def))
	if err != nil {
		return fmt.Errorf("failed to encode definition %s: %w", def.ID, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.ExecContext(ctx, `
		INSERT INTO definitions (id, kind, name, position, definition_json, created_at, updated_at)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM definitions), ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			name = excluded.name,
			definition_json = excluded.definition_json,
			updated_at = excluded.updated_at
	`, def.ID, def.Kind.String(), def.Name, string(doc), now, now)
	if err != nil {
		return fmt.Errorf("failed to save definition %s: %w", def.ID, err)
	}
	return nil
}

// GetDefinition retrieves a definition by ID.
func (s *Store) GetDefinition(ctx context.Context, id string) (cashflow.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT definition_json FROM definitions WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return cashflow.Definition{}, fmt.Errorf("definition %s: %w", id, cashflow.ErrDefinitionNotFound)
	}
	if err != nil {
		return cashflow.Definition{}, err
	}
	return s.decode(doc)
}

// ListDefinitions returns every definition in configured order.
func (s *Store) ListDefinitions(ctx context.Context) ([]cashflow.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT definition_json FROM definitions ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query definitions: %w", err)
	}
	defer rows.Close()

	var defs []cashflow.Definition
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}
		def, err := s.decode(doc)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// Definitions groups definitions by kind, each group in configured order.
func (s *Store) Definitions(ctx context.Context) (map[cashflow.Kind][]cashflow.Definition, error) {
	defs, err := s.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[cashflow.Kind][]cashflow.Definition)
	for _, def := range defs {
		grouped[def.Kind] = append(grouped[def.Kind], def)
	}
	return grouped, nil
}

// DeleteDefinition removes a definition.
func (s *Store) DeleteDefinition(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM definitions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("definition %s: %w", id, cashflow.ErrDefinitionNotFound)
	}
	s.log.Debug().Str("id", id).Msg("definition deleted")
	return nil
}

func (s *Store) decode(doc string) (cashflow.Definition, error) {
	var dj factory.DefinitionJSON
	if err := json.Unmarshal([]byte(doc), &dj); err != nil {
		return cashflow.Definition{}, fmt.Errorf("failed to decode definition: %w", err)
	}
	return s.factory.FromJSON(dj)
}

// =============================================================================
// BULK
// =============================================================================

// ReplaceAll atomically replaces the control map and every definition, in
// the order given. Used by imports and demo scenarios.
func (s *Store) ReplaceAll(ctx context.Context, control map[string]string, defs []cashflow.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, table := range []string{"control", "definitions"} {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	if err := setControlTx(ctx, sqlTx, control); err != nil {
		return err
	}
	for _, def := range defs {
		if def.ID == "" {
			def.ID = s.factory.NewID()
		}
		if err := saveDefinitionTx(ctx, sqlTx, def); err != nil {
			return err
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return err
	}
	s.log.Info().Int("control_keys", len(control)).Int("definitions", len(defs)).Msg("store replaced")
	return nil
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"control", "definitions"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
