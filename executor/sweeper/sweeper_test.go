package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/to404hanga/online_judge_engine/executor/workspace"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

func newSweeper(t *testing.T) (*Sweeper, *workspace.Manager) {
	t.Helper()
	m, err := workspace.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return New(loggerv2.GetGlobalLogger(), m, time.Hour, time.Hour), m
}

func age(t *testing.T, path string, d time.Duration) {
	t.Helper()
	old := time.Now().Add(-d)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
}

func TestCleanupNowByIDAndPath(t *testing.T) {
	s, m := newSweeper(t)

	a, err := m.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := m.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.CleanupNow(a.ID); err != nil {
		t.Fatalf("CleanupNow(id): %v", err)
	}
	if err := s.CleanupNow(b.Path); err != nil {
		t.Fatalf("CleanupNow(path): %v", err)
	}
	for _, p := range []string{a.Path, b.Path} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists", p)
		}
	}

	// idempotent
	if err := s.CleanupNow(a.ID); err != nil {
		t.Errorf("second CleanupNow: %v", err)
	}
	if err := s.CleanupNow(""); err != nil {
		t.Errorf("CleanupNow(\"\"): %v", err)
	}
}

func TestCleanupNowRejectsEscape(t *testing.T) {
	s, _ := newSweeper(t)
	outside := t.TempDir()
	if err := s.CleanupNow(outside); err == nil {
		t.Fatal("expected error for a path outside the root")
	}
	if err := s.CleanupNow("../x"); err == nil {
		t.Fatal("expected error for an id with a separator")
	}
}

func TestSweepRemovesOnlyStale(t *testing.T) {
	s, m := newSweeper(t)

	stale, err := m.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := stale.WriteFile(workspace.InputFileName, []byte("1\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	age(t, stale.Path, 48*time.Hour)

	fresh, err := m.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stray := filepath.Join(m.Root(), "stray.txt")
	if err := os.WriteFile(stray, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	age(t, stray, 48*time.Hour)

	removed, err := s.Sweep(24 * time.Hour)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, err := os.Stat(stale.Path); !os.IsNotExist(err) {
		t.Error("stale workspace survived")
	}
	if _, err := os.Stat(fresh.Path); err != nil {
		t.Errorf("fresh workspace removed: %v", err)
	}
}

func TestStartSweepsImmediately(t *testing.T) {
	m, err := workspace.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	s := New(loggerv2.GetGlobalLogger(), m, time.Hour, time.Hour)

	orphan, err := m.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	age(t, orphan.Path, 2*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(orphan.Path); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("startup sweep did not remove the orphan")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done
}
