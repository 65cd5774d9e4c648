package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/lox/holdem-engine/internal/game"
)

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS table_snapshots (
  table_id   TEXT PRIMARY KEY,
  version    BIGINT NOT NULL,
  hand_no    BIGINT NOT NULL,
  state      JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore upserts snapshots into a JSONB column. Older versions never
// overwrite newer ones.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a lib/pq connection and checks it.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres dsn: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the snapshot table.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("create table_snapshots: %w", err)
	}
	return nil
}

func (p *PostgresStore) Save(ctx context.Context, state game.TableState) error {
	data, err := game.EncodeTableState(state)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO table_snapshots (table_id, version, hand_no, state, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (table_id) DO UPDATE SET
  version = EXCLUDED.version,
  hand_no = EXCLUDED.hand_no,
  state = EXCLUDED.state,
  updated_at = now()
WHERE table_snapshots.version <= EXCLUDED.version
`
	if _, err := p.db.ExecContext(ctx, q, state.ID, state.Version, state.HandsPlayed, string(data)); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", state.ID, describePQ(err))
	}
	return nil
}

func (p *PostgresStore) Load(ctx context.Context, tableID string) (game.TableState, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx, `SELECT state FROM table_snapshots WHERE table_id = $1`, tableID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return game.TableState{}, fmt.Errorf("%w: table %s", ErrNotFound, tableID)
	}
	if err != nil {
		return game.TableState{}, fmt.Errorf("load snapshot %s: %w", tableID, describePQ(err))
	}
	return game.DecodeTableState(data)
}

func (p *PostgresStore) Delete(ctx context.Context, tableID string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM table_snapshots WHERE table_id = $1`, tableID); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", tableID, describePQ(err))
	}
	return nil
}

// describePQ adds the SQLSTATE code to lib/pq errors.
func describePQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%w (sqlstate %s)", err, pqErr.Code)
	}
	return err
}
