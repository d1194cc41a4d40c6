package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"caja/src/register/domain/entity"
	"caja/src/register/domain/port"
)

// SnapshotPostgresRepository implementa SnapshotRepository usando PostgreSQL.
// Se usa cuando varias cajas comparten una base central.
type SnapshotPostgresRepository struct {
	db         *sql.DB
	terminalID string
}

// NewSnapshotPostgresRepository crea una nueva instancia del repositorio.
// El slot de último cierre es por terminal.
func NewSnapshotPostgresRepository(db *sql.DB, terminalID string) port.SnapshotRepository {
	return &SnapshotPostgresRepository{
		db:         db,
		terminalID: terminalID,
	}
}

// EnsureSchema crea las tablas si no existen
func (r *SnapshotPostgresRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS pending_close_snapshots (
			session_id     TEXT PRIMARY KEY,
			terminal_id    TEXT NOT NULL,
			opened_at      TIMESTAMPTZ,
			closed_at      TIMESTAMPTZ,
			captured_at    TIMESTAMPTZ NOT NULL,
			movements_json JSONB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS last_closed_snapshots (
			terminal_id    TEXT PRIMARY KEY,
			session_id     TEXT NOT NULL,
			opened_at      TIMESTAMPTZ,
			closed_at      TIMESTAMPTZ,
			captured_at    TIMESTAMPTZ NOT NULL,
			movements_json JSONB NOT NULL
		);
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error creating snapshot tables: %w", err)
	}
	return nil
}

// SavePending inserta o reemplaza el snapshot pendiente
func (r *SnapshotPostgresRepository) SavePending(ctx context.Context, snapshot *entity.CloseSnapshot) error {
	row, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO pending_close_snapshots (
			session_id, terminal_id, opened_at, closed_at, captured_at, movements_json
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE SET
			opened_at = EXCLUDED.opened_at,
			closed_at = EXCLUDED.closed_at,
			captured_at = EXCLUDED.captured_at,
			movements_json = EXCLUDED.movements_json
	`
	_, err = r.db.ExecContext(ctx, query,
		row.sessionID,
		r.terminalID,
		nullableTime(&row.openedAt),
		nullableTime(row.closedAt),
		row.capturedAt,
		row.movements,
	)
	if err != nil {
		return fmt.Errorf("error saving pending snapshot: %w", err)
	}
	return nil
}

// GetPending retorna nil, nil si no existe
func (r *SnapshotPostgresRepository) GetPending(ctx context.Context, sessionID string) (*entity.CloseSnapshot, error) {
	query := `
		SELECT session_id, opened_at, closed_at, captured_at, movements_json
		FROM pending_close_snapshots
		WHERE session_id = $1
	`
	snapshot, err := scanPostgresSnapshot(r.db.QueryRowContext(ctx, query, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting pending snapshot: %w", err)
	}
	return snapshot, nil
}

// ListPending retorna los pendientes de esta terminal
func (r *SnapshotPostgresRepository) ListPending(ctx context.Context) ([]*entity.CloseSnapshot, error) {
	query := `
		SELECT session_id, opened_at, closed_at, captured_at, movements_json
		FROM pending_close_snapshots
		WHERE terminal_id = $1
		ORDER BY captured_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, r.terminalID)
	if err != nil {
		return nil, fmt.Errorf("error querying pending snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*entity.CloseSnapshot
	for rows.Next() {
		snapshot, err := scanPostgresSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning pending snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending snapshots: %w", err)
	}
	return snapshots, nil
}

// DeletePending elimina el pendiente de la sesión
func (r *SnapshotPostgresRepository) DeletePending(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_close_snapshots WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("error deleting pending snapshot: %w", err)
	}
	return nil
}

// SaveLastClosed reemplaza el último cierre de esta terminal
func (r *SnapshotPostgresRepository) SaveLastClosed(ctx context.Context, snapshot *entity.CloseSnapshot) error {
	row, err := encodeClosedSnapshot(snapshot)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO last_closed_snapshots (
			terminal_id, session_id, opened_at, closed_at, captured_at, movements_json
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (terminal_id) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			opened_at = EXCLUDED.opened_at,
			closed_at = EXCLUDED.closed_at,
			captured_at = EXCLUDED.captured_at,
			movements_json = EXCLUDED.movements_json
	`
	_, err = r.db.ExecContext(ctx, query,
		r.terminalID,
		row.sessionID,
		nullableTime(&row.openedAt),
		nullableTime(row.closedAt),
		row.capturedAt,
		row.movements,
	)
	if err != nil {
		return fmt.Errorf("error saving last closed snapshot: %w", err)
	}
	return nil
}

// GetLastClosed retorna nil, nil si todavía no hubo cierres
func (r *SnapshotPostgresRepository) GetLastClosed(ctx context.Context) (*entity.CloseSnapshot, error) {
	query := `
		SELECT session_id, opened_at, closed_at, captured_at, movements_json
		FROM last_closed_snapshots
		WHERE terminal_id = $1
	`
	snapshot, err := scanPostgresSnapshot(r.db.QueryRowContext(ctx, query, r.terminalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting last closed snapshot: %w", err)
	}
	return snapshot, nil
}

func scanPostgresSnapshot(row rowScanner) (*entity.CloseSnapshot, error) {
	var (
		snapshot  entity.CloseSnapshot
		openedAt  sql.NullTime
		closedAt  sql.NullTime
		movements []byte
	)
	if err := row.Scan(&snapshot.SessionID, &openedAt, &closedAt, &snapshot.CapturedAt, &movements); err != nil {
		return nil, err
	}
	if openedAt.Valid {
		snapshot.OpenedAt = openedAt.Time.UTC()
	}
	if closedAt.Valid {
		t := closedAt.Time.UTC()
		snapshot.ClosedAt = &t
	}
	snapshot.CapturedAt = snapshot.CapturedAt.UTC()
	if err := decodeMovements(movements, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func nullableTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}
