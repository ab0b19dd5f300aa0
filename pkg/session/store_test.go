package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		got, err := s.Get(ctx, uuid.NewString())
		if err != nil || got != nil {
			t.Errorf("Get(missing) = %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("set get delete", func(t *testing.T) {
		sess, err := New("Gout", "MAIN: Gout\nSYMPTOM: Podagra", time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Set(ctx, sess); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := s.Get(ctx, sess.ID)
		if err != nil || got == nil {
			t.Fatalf("Get() = %v, %v", got, err)
		}
		if got.Topic != "Gout" || got.Content != sess.Content {
			t.Errorf("Get() = %+v", got)
		}

		if err := s.Delete(ctx, sess.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if got, _ := s.Get(ctx, sess.ID); got != nil {
			t.Error("session still present after Delete")
		}
		if err := s.Delete(ctx, sess.ID); err != nil {
			t.Errorf("Delete(missing) error = %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		sess, _ := New("Old", "MAIN: Old", time.Hour)
		sess.ExpiresAt = time.Now().Add(-time.Minute)
		if err := s.Set(ctx, sess); err != nil {
			t.Fatal(err)
		}
		if got, err := s.Get(ctx, sess.ID); err != nil || got != nil {
			t.Errorf("Get(expired) = %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		base := time.Now().UTC().Truncate(time.Millisecond)
		older, _ := New("Older", "MAIN: A", time.Hour)
		older.CreatedAt = base.Add(-time.Minute)
		newer, _ := New("Newer", "MAIN: B", time.Hour)
		newer.CreatedAt = base
		stale, _ := New("Stale", "MAIN: C", time.Hour)
		stale.ExpiresAt = base.Add(-time.Hour)

		for _, sess := range []*Session{older, newer, stale} {
			if err := s.Set(ctx, sess); err != nil {
				t.Fatal(err)
			}
		}

		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("List() = %d sessions, want 2: %+v", len(list), list)
		}
		if list[0].ID != newer.ID || list[1].ID != older.ID {
			t.Errorf("List() order = %s, %s", list[0].Topic, list[1].Topic)
		}

		if err := s.Cleanup(ctx); err != nil {
			t.Fatalf("Cleanup() error = %v", err)
		}
		for _, sess := range []*Session{older, newer} {
			if err := s.Delete(ctx, sess.ID); err != nil {
				t.Fatal(err)
			}
		}
	})
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStore(t, s)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreRejectsUnsafeIDs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := s.Get(ctx, "../../etc/passwd"); err == nil {
		t.Error("Get() with traversal id should fail")
	}
	if err := s.Set(ctx, &Session{ID: "../x"}); err == nil {
		t.Error("Set() with traversal id should fail")
	}
}

func TestFileStorePermissionsAndCleanup(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	sess, _ := New("Gout", "MAIN: Gout", time.Hour)
	sess.ExpiresAt = time.Now().Add(-time.Second)
	if err := s.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, sess.ID+".json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}

	// Garbage files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := s.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired session file not removed")
	}
}

func TestNew(t *testing.T) {
	sess, err := New("  Gout  ", "MAIN: Gout", 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("ID %q is not a UUID", sess.ID)
	}
	if sess.Topic != "Gout" {
		t.Errorf("Topic = %q", sess.Topic)
	}
	if got := sess.ExpiresAt.Sub(sess.CreatedAt); got != DefaultTTL {
		t.Errorf("ttl = %v, want %v", got, DefaultTTL)
	}
	if sess.IsExpired() {
		t.Error("new session should not be expired")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendMemory})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T", s)
	}

	s, err = Open(ctx, Options{Backend: BackendFile, Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open(file) = %T", s)
	}

	if _, err := Open(ctx, Options{Backend: "etcd"}); err == nil {
		t.Error("Open(unknown) error = nil")
	}
}

func TestFileStoreKeepsReplacedExpiredSession(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	old, _ := New("Old", "MAIN: Old", time.Hour)
	old.ExpiresAt = time.Now().Add(-time.Minute)
	if err := s.Set(ctx, old); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, old.ID+".json")

	// Get has read the expired session; a Set lands before it removes it.
	fresh := *old
	fresh.Topic = "Fresh"
	fresh.ExpiresAt = time.Now().Add(time.Hour)
	if err := s.Set(ctx, &fresh); err != nil {
		t.Fatal(err)
	}

	got, err := s.removeExpired(path)
	if err != nil {
		t.Fatalf("removeExpired() error = %v", err)
	}
	if got == nil || got.Topic != "Fresh" {
		t.Errorf("removeExpired() = %+v, want the replacement", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("replacement session file removed: %v", err)
	}
	if got, _ := s.Get(ctx, old.ID); got == nil || got.Topic != "Fresh" {
		t.Errorf("Get() after replace = %+v", got)
	}

	// Still expired under the write lock: removed.
	if err := s.Set(ctx, old); err != nil {
		t.Fatal(err)
	}
	if got, err := s.removeExpired(path); err != nil || got != nil {
		t.Errorf("removeExpired(expired) = %+v, %v; want nil, nil", got, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired session file not removed")
	}
}
