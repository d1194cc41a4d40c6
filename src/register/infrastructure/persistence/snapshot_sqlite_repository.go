package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"caja/src/register/domain/entity"
	"caja/src/register/domain/port"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pending_close_snapshots (
	session_id     TEXT PRIMARY KEY,
	opened_at      INTEGER NOT NULL,
	closed_at      INTEGER,
	captured_at    INTEGER NOT NULL,
	movements_json TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS last_closed_snapshot (
	slot           INTEGER PRIMARY KEY CHECK (slot = 1),
	session_id     TEXT NOT NULL,
	opened_at      INTEGER NOT NULL,
	closed_at      INTEGER,
	captured_at    INTEGER NOT NULL,
	movements_json TEXT NOT NULL
);`

// SnapshotSQLiteRepository guarda los snapshots de cierre en un archivo SQLite local
type SnapshotSQLiteRepository struct {
	db *sql.DB
}

// OpenSnapshotSQLite abre (y crea si hace falta) la base local de snapshots
func OpenSnapshotSQLite(path string) (*SnapshotSQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshot tables: %w", err)
	}
	return &SnapshotSQLiteRepository{db: db}, nil
}

var _ port.SnapshotRepository = (*SnapshotSQLiteRepository)(nil)

// Close libera la conexión
func (r *SnapshotSQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SavePending inserta o reemplaza el snapshot pendiente de la sesión
func (r *SnapshotSQLiteRepository) SavePending(ctx context.Context, snapshot *entity.CloseSnapshot) error {
	row, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO pending_close_snapshots (session_id, opened_at, closed_at, captured_at, movements_json)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		    opened_at = excluded.opened_at,
		    closed_at = excluded.closed_at,
		    captured_at = excluded.captured_at,
		    movements_json = excluded.movements_json`,
		row.sessionID, toMillis(row.openedAt), nullableMillis(row.closedAt), toMillis(row.capturedAt), row.movements,
	)
	if err != nil {
		return fmt.Errorf("save pending snapshot: %w", err)
	}
	return nil
}

// GetPending retorna nil, nil si no existe
func (r *SnapshotSQLiteRepository) GetPending(ctx context.Context, sessionID string) (*entity.CloseSnapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT session_id, opened_at, closed_at, captured_at, movements_json
		 FROM pending_close_snapshots WHERE session_id = ?`, sessionID)
	snapshot, err := scanSQLiteSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending snapshot: %w", err)
	}
	return snapshot, nil
}

// ListPending lista todos los snapshots pendientes, los más antiguos primero
func (r *SnapshotSQLiteRepository) ListPending(ctx context.Context) ([]*entity.CloseSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id, opened_at, closed_at, captured_at, movements_json
		 FROM pending_close_snapshots ORDER BY captured_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pending snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*entity.CloseSnapshot
	for rows.Next() {
		snapshot, err := scanSQLiteSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// DeletePending elimina el pendiente; no falla si no existe
func (r *SnapshotSQLiteRepository) DeletePending(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_close_snapshots WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete pending snapshot: %w", err)
	}
	return nil
}

// SaveLastClosed reemplaza el slot único de último cierre
func (r *SnapshotSQLiteRepository) SaveLastClosed(ctx context.Context, snapshot *entity.CloseSnapshot) error {
	row, err := encodeClosedSnapshot(snapshot)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO last_closed_snapshot (slot, session_id, opened_at, closed_at, captured_at, movements_json)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		    session_id = excluded.session_id,
		    opened_at = excluded.opened_at,
		    closed_at = excluded.closed_at,
		    captured_at = excluded.captured_at,
		    movements_json = excluded.movements_json`,
		row.sessionID, toMillis(row.openedAt), nullableMillis(row.closedAt), toMillis(row.capturedAt), row.movements,
	)
	if err != nil {
		return fmt.Errorf("save last closed snapshot: %w", err)
	}
	return nil
}

// GetLastClosed retorna nil, nil si todavía no hubo cierres
func (r *SnapshotSQLiteRepository) GetLastClosed(ctx context.Context) (*entity.CloseSnapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT session_id, opened_at, closed_at, captured_at, movements_json
		 FROM last_closed_snapshot WHERE slot = 1`)
	snapshot, err := scanSQLiteSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last closed snapshot: %w", err)
	}
	return snapshot, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSnapshot(row rowScanner) (*entity.CloseSnapshot, error) {
	var (
		sessionID  string
		openedAt   int64
		closedAt   sql.NullInt64
		capturedAt int64
		movements  string
	)
	if err := row.Scan(&sessionID, &openedAt, &closedAt, &capturedAt, &movements); err != nil {
		return nil, err
	}
	snapshot := &entity.CloseSnapshot{
		SessionID:  sessionID,
		OpenedAt:   fromMillis(openedAt),
		CapturedAt: fromMillis(capturedAt),
	}
	if closedAt.Valid {
		t := fromMillis(closedAt.Int64)
		snapshot.ClosedAt = &t
	}
	if err := decodeMovements([]byte(movements), snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func nullableMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return toMillis(*t)
}

// snapshotRow representación plana compartida por los repositorios SQL
type snapshotRow struct {
	sessionID  string
	openedAt   time.Time
	closedAt   *time.Time
	capturedAt time.Time
	movements  string
}

func encodeSnapshot(snapshot *entity.CloseSnapshot) (snapshotRow, error) {
	if snapshot == nil || snapshot.SessionID == "" {
		return snapshotRow{}, entity.ErrSessionIDRequired
	}
	movements := snapshot.Movements
	if movements == nil {
		movements = []entity.CashMovement{}
	}
	data, err := json.Marshal(movements)
	if err != nil {
		return snapshotRow{}, fmt.Errorf("encode snapshot movements: %w", err)
	}
	capturedAt := snapshot.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}
	return snapshotRow{
		sessionID:  snapshot.SessionID,
		openedAt:   snapshot.OpenedAt,
		closedAt:   snapshot.ClosedAt,
		capturedAt: capturedAt,
		movements:  string(data),
	}, nil
}

// encodeClosedSnapshot solo acepta snapshots sellados con la hora de cierre
func encodeClosedSnapshot(snapshot *entity.CloseSnapshot) (snapshotRow, error) {
	if snapshot != nil && !snapshot.IsFinalized() {
		return snapshotRow{}, entity.ErrSnapshotNotFinalized
	}
	return encodeSnapshot(snapshot)
}

func decodeMovements(data []byte, snapshot *entity.CloseSnapshot) error {
	if err := json.Unmarshal(data, &snapshot.Movements); err != nil {
		return fmt.Errorf("decode snapshot movements: %w", err)
	}
	return nil
}
