package cache

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/vaidya-ai/clinicalmap/pkg/observability"
)

type recordedHooks struct {
	mu     sync.Mutex
	events []string
}

func (h *recordedHooks) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordedHooks) OnCacheHit(_ context.Context, keyType string)  { h.add("hit:" + keyType) }
func (h *recordedHooks) OnCacheMiss(_ context.Context, keyType string) { h.add("miss:" + keyType) }
func (h *recordedHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.add("set:" + keyType)
}

func recordHooks(t *testing.T) *recordedHooks {
	t.Helper()
	h := &recordedHooks{}
	observability.SetCacheHooks(h)
	t.Cleanup(observability.Reset)
	return h
}

func TestCacheHooks(t *testing.T) {
	ctx := context.Background()
	layoutKey := NewDefaultKeyer().LayoutKey("abc", LayoutKeyOpts{Width: 600, Height: 400})

	t.Run("null", func(t *testing.T) {
		h := recordHooks(t)
		c := NewNullCache()
		c.Set(ctx, layoutKey, []byte("x"), time.Hour)
		c.Get(ctx, layoutKey)
		if want := []string{"miss:layout"}; !slices.Equal(h.events, want) {
			t.Errorf("events = %v, want %v", h.events, want)
		}
	})

	t.Run("file", func(t *testing.T) {
		h := recordHooks(t)
		c, err := NewFileCache(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		c.Get(ctx, layoutKey)
		c.Set(ctx, layoutKey, []byte("x"), time.Hour)
		c.Get(ctx, layoutKey)
		want := []string{"miss:layout", "set:layout", "hit:layout"}
		if !slices.Equal(h.events, want) {
			t.Errorf("events = %v, want %v", h.events, want)
		}
	})
}
