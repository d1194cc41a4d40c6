package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"caja/src/register/domain/entity"

	"github.com/shopspring/decimal"
)

func openTestStore(t *testing.T) *SnapshotSQLiteRepository {
	t.Helper()
	store, err := OpenSnapshotSQLite(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store
}

func sampleSnapshot(id string, captured time.Time) *entity.CloseSnapshot {
	return &entity.CloseSnapshot{
		SessionID: id,
		OpenedAt:  time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC),
		Movements: []entity.CashMovement{{
			ID:          "mov-1",
			SessionID:   id,
			Timestamp:   time.Date(2026, 5, 4, 10, 15, 0, 0, time.UTC),
			Kind:        entity.MovementIncome,
			Amount:      decimal.RequireFromString("50.25"),
			Description: "cambio",
			ActingUser:  "ana",
		}},
		CapturedAt: captured,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := OpenSnapshotSQLite("  "); err == nil {
		t.Fatal("expected error")
	}
}

func TestPendingSnapshotLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	missing, err := store.GetPending(ctx, "caja-1")
	if err != nil || missing != nil {
		t.Fatalf("GetPending on empty store = %+v, %v", missing, err)
	}

	if err := store.SavePending(ctx, sampleSnapshot("caja-1", time.Date(2026, 5, 4, 21, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("SavePending: %v", err)
	}
	if err := store.SavePending(ctx, sampleSnapshot("caja-0", time.Date(2026, 5, 3, 21, 0, 0, 0, time.UTC))); err != nil {
		t.Fatalf("SavePending: %v", err)
	}

	got, err := store.GetPending(ctx, "caja-1")
	if err != nil || got == nil {
		t.Fatalf("GetPending = %+v, %v", got, err)
	}
	if len(got.Movements) != 1 || !got.Movements[0].Amount.Equal(decimal.RequireFromString("50.25")) {
		t.Fatalf("movements = %+v", got.Movements)
	}
	if got.IsFinalized() {
		t.Fatal("pending snapshot should not be finalized")
	}

	pending, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 2 || pending[0].SessionID != "caja-0" {
		t.Fatalf("pending order = %+v", pending)
	}

	if err := store.DeletePending(ctx, "caja-1"); err != nil {
		t.Fatalf("DeletePending: %v", err)
	}
	if err := store.DeletePending(ctx, "caja-1"); err != nil {
		t.Fatalf("DeletePending twice: %v", err)
	}
	got, _ = store.GetPending(ctx, "caja-1")
	if got != nil {
		t.Fatalf("snapshot still pending: %+v", got)
	}
}

func TestLastClosedSlotIsReplaced(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if s, err := store.GetLastClosed(ctx); err != nil || s != nil {
		t.Fatalf("GetLastClosed on empty store = %+v, %v", s, err)
	}

	first := sampleSnapshot("caja-1", time.Now().UTC())
	first.Finalize(time.Date(2026, 5, 4, 21, 30, 0, 0, time.UTC))
	second := sampleSnapshot("caja-2", time.Now().UTC())
	second.Finalize(time.Date(2026, 5, 5, 21, 30, 0, 0, time.UTC))

	for _, s := range []*entity.CloseSnapshot{first, second} {
		if err := store.SaveLastClosed(ctx, s); err != nil {
			t.Fatalf("SaveLastClosed: %v", err)
		}
	}

	got, err := store.GetLastClosed(ctx)
	if err != nil {
		t.Fatalf("GetLastClosed: %v", err)
	}
	if got.SessionID != "caja-2" || !got.ClosedAt.Equal(*second.ClosedAt) {
		t.Fatalf("last closed = %+v", got)
	}
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	ctx := context.Background()

	store, err := OpenSnapshotSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.SavePending(ctx, sampleSnapshot("caja-7", time.Now().UTC())); err != nil {
		t.Fatalf("SavePending: %v", err)
	}
	_ = store.Close()

	reopened, err := OpenSnapshotSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetPending(ctx, "caja-7")
	if err != nil || got == nil {
		t.Fatalf("GetPending after reopen = %+v, %v", got, err)
	}
	if got.OpenedAt.Hour() != 8 {
		t.Fatalf("opened at = %v", got.OpenedAt)
	}
}

func TestSaveRequiresSessionID(t *testing.T) {
	store := openTestStore(t)
	if err := store.SavePending(context.Background(), &entity.CloseSnapshot{}); err == nil {
		t.Fatal("expected error for snapshot without session id")
	}
}

func TestLastClosedRequiresClosedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.SaveLastClosed(ctx, sampleSnapshot("caja-3", time.Now().UTC()))
	if !errors.Is(err, entity.ErrSnapshotNotFinalized) {
		t.Fatalf("err = %v, want not finalized", err)
	}
	if s, _ := store.GetLastClosed(ctx); s != nil {
		t.Fatalf("unsealed snapshot stored as last closed: %+v", s)
	}
}
