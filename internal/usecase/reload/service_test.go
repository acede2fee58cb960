package reload

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/gamerec/internal/domain"
	"github.com/kailas-cloud/gamerec/internal/domain/item"
	"github.com/kailas-cloud/gamerec/internal/snapshot"
)

// --- Mocks ---

type mockStore struct {
	items   []item.Item
	vectors [][]float32
	m       snapshot.Manifest
	err     error
	calls   int
}

func (m *mockStore) Load(_ context.Context) ([]item.Item, [][]float32, snapshot.Manifest, error) {
	m.calls++
	return m.items, m.vectors, m.m, m.err
}

func twoItems(t *testing.T) []item.Item {
	t.Helper()
	out := make([]item.Item, 2)
	for i, id := range []string{"570", "730"} {
		it, err := item.New(item.Fields{ID: id, Name: id, Genres: []string{"Action"}})
		if err != nil {
			t.Fatalf("item.New: %v", err)
		}
		out[i] = it
	}
	return out
}

// --- Tests ---

func TestLoad_Publishes(t *testing.T) {
	h := snapshot.NewHolder()
	svc := New(nil, h, nil)

	m, err := svc.Load(context.Background(), [][]float32{{1, 0}, {0, 1}}, twoItems(t),
		snapshot.Manifest{Version: "v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Count != 2 || m.Dimension != 2 {
		t.Errorf("unexpected manifest %+v", m)
	}

	cur, err := h.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.Manifest().Version != "v1" {
		t.Errorf("expected v1 published, got %q", cur.Manifest().Version)
	}
}

func TestLoad_FailureKeepsPrevious(t *testing.T) {
	h := snapshot.NewHolder()
	svc := New(nil, h, nil)
	ctx := context.Background()

	if _, err := svc.Load(ctx, [][]float32{{1, 0}, {0, 1}}, twoItems(t), snapshot.Manifest{Version: "v1"}); err != nil {
		t.Fatalf("first load: %v", err)
	}

	_, err := svc.Load(ctx, [][]float32{{1, 0}}, twoItems(t), snapshot.Manifest{Version: "v2"})
	if !errors.Is(err, domain.ErrReloadFailed) || !errors.Is(err, domain.ErrMisaligned) {
		t.Fatalf("expected ErrReloadFailed wrapping ErrMisaligned, got %v", err)
	}

	cur, _ := h.Current()
	if cur.Manifest().Version != "v1" {
		t.Errorf("failed load must keep v1, got %q", cur.Manifest().Version)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	h := snapshot.NewHolder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, h, nil).Load(ctx, [][]float32{{1, 0}, {0, 1}}, twoItems(t), snapshot.Manifest{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if h.Ready() {
		t.Error("nothing should be published")
	}
}

func TestReload(t *testing.T) {
	store := &mockStore{
		items:   twoItems(t),
		vectors: [][]float32{{1, 0, 0}, {0, 0, 1}},
		m:       snapshot.Manifest{Version: "2024-01", Model: "all-MiniLM-L6-v2"},
	}
	h := snapshot.NewHolder()

	m, err := New(store, h, nil).Reload(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Model != "all-MiniLM-L6-v2" || m.Dimension != 3 {
		t.Errorf("unexpected manifest %+v", m)
	}
	if store.calls != 1 {
		t.Errorf("expected 1 store read, got %d", store.calls)
	}
}

func TestReload_Errors(t *testing.T) {
	t.Run("store error", func(t *testing.T) {
		cause := errors.New("disk gone")
		_, err := New(&mockStore{err: cause}, snapshot.NewHolder(), nil).Reload(context.Background())
		if !errors.Is(err, domain.ErrReloadFailed) || !errors.Is(err, cause) {
			t.Fatalf("expected ErrReloadFailed wrapping cause, got %v", err)
		}
	})

	t.Run("no store", func(t *testing.T) {
		_, err := New(nil, snapshot.NewHolder(), nil).Reload(context.Background())
		if !errors.Is(err, domain.ErrReloadFailed) {
			t.Fatalf("expected ErrReloadFailed, got %v", err)
		}
	})
}

func TestReload_RejectsForeignDimension(t *testing.T) {
	store := &mockStore{
		items:   twoItems(t),
		vectors: [][]float32{{1, 0, 0}, {0, 0, 1}},
		m:       snapshot.Manifest{Version: "v1"},
	}
	h := snapshot.NewHolder()

	_, err := New(store, h, nil, WithDimension(384)).Reload(context.Background())
	if !errors.Is(err, domain.ErrReloadFailed) || !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrReloadFailed wrapping ErrDimensionMismatch, got %v", err)
	}
	if h.Ready() {
		t.Error("mismatched snapshot must not be published")
	}

	if _, err := New(store, h, nil, WithDimension(3)).Reload(context.Background()); err != nil {
		t.Fatalf("matching dimension: %v", err)
	}
	if !h.Ready() {
		t.Error("expected snapshot published")
	}
}

func TestLoad_ConcurrentWritersSerialize(t *testing.T) {
	h := snapshot.NewHolder()
	svc := New(nil, h, nil)
	items := twoItems(t)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Load(context.Background(), [][]float32{{1, 0}, {0, 1}}, items, snapshot.Manifest{}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	cur, err := h.Current()
	if err != nil || cur.Catalog().Count() != 2 {
		t.Fatalf("expected a published 2-item snapshot, err %v", err)
	}
}
