package remote

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aknott/kumo/internal/db"
	"github.com/aknott/kumo/internal/model"
)

func openStore(t *testing.T) *SQLite {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "sync.db"))
	if err != nil {
		t.Fatalf("open sync db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewSQLite(database, 50*time.Millisecond)
}

func recvSnapshot(t *testing.T, sub *Subscription) []model.Todo {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots():
		if !ok {
			t.Fatal("snapshot channel closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

func TestSubscribeDeliversImmediateSnapshot(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	s.Upsert(ctx, "u1", model.Todo{ID: "a", Text: "existing", CreatedAt: time.Now()})

	sub, err := s.Subscribe(ctx, "u1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	snap := recvSnapshot(t, sub)
	if len(snap) != 1 || snap[0].ID != "a" {
		t.Errorf("first snapshot = %v", snap)
	}
}

func TestWriteTriggersNewSnapshot(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	sub, err := s.Subscribe(ctx, "u1")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	if snap := recvSnapshot(t, sub); len(snap) != 0 {
		t.Fatalf("expected empty first snapshot, got %v", snap)
	}

	if err := s.Upsert(ctx, "u1", model.Todo{ID: "n", Text: "new", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	snap := recvSnapshot(t, sub)
	if len(snap) != 1 || snap[0].Text != "new" {
		t.Errorf("snapshot after upsert = %v", snap)
	}

	if err := s.Delete(ctx, "u1", "n"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if snap := recvSnapshot(t, sub); len(snap) != 0 {
		t.Errorf("snapshot after delete = %v", snap)
	}
}

func TestSnapshotsScopedToUser(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	sub, _ := s.Subscribe(ctx, "alice")
	defer sub.Close()
	recvSnapshot(t, sub)

	// A write for another user must not produce a snapshot for alice
	s.Upsert(ctx, "bob", model.Todo{ID: "b", Text: "bob's", CreatedAt: time.Now()})

	select {
	case snap := <-sub.Snapshots():
		// Poll ticks re-deliver only on change, so nothing should arrive
		t.Errorf("alice received bob's change: %v", snap)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSnapshotOrderNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)

	s.Upsert(ctx, "u1", model.Todo{ID: "old", Text: "old", CreatedAt: base})
	s.Upsert(ctx, "u1", model.Todo{ID: "new", Text: "new", CreatedAt: base.Add(time.Hour)})

	sub, _ := s.Subscribe(ctx, "u1")
	defer sub.Close()

	snap := recvSnapshot(t, sub)
	if len(snap) != 2 || snap[0].ID != "new" {
		t.Errorf("snapshot order = %v", snap)
	}
}

func TestCloseIsIdempotentAndFinal(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	sub, _ := s.Subscribe(ctx, "u1")
	recvSnapshot(t, sub)

	sub.Close()
	sub.Close() // second close must not panic

	// The stream ends: channel closes once the pump exits
	select {
	case _, ok := <-sub.Snapshots():
		if ok {
			t.Error("snapshot delivered after close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot channel not closed after Close")
	}

	// Writes after close must not panic or deliver
	s.Upsert(ctx, "u1", model.Todo{ID: "late", Text: "late", CreatedAt: time.Now()})
}

func TestContextCancelStopsPump(t *testing.T) {
	s := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, _ := s.Subscribe(ctx, "u1")
	recvSnapshot(t, sub)

	cancel()
	select {
	case _, ok := <-sub.Snapshots():
		if ok {
			t.Error("snapshot delivered after context cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pump did not stop on context cancel")
	}
}
