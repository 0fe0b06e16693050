package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Corphon/SceneVideoMaker/internal/models"
)

func startStore(t *testing.T) (*Store, context.CancelFunc) {
	t.Helper()
	store := NewStore(NewState(models.NewSeedProject()))
	ctx, cancel := context.WithCancel(context.Background())
	go store.Run(ctx)
	t.Cleanup(cancel)
	return store, cancel
}

func TestStoreDispatch(t *testing.T) {
	store, _ := startStore(t)
	ctx := context.Background()

	s, err := store.Dispatch(ctx, AddScene{})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(s.Project.Scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d", len(s.Project.Scenes))
	}
	if snap := store.Snapshot(); snap.Version != s.Version {
		t.Fatalf("snapshot version %d != dispatched %d", snap.Version, s.Version)
	}

	s, err = store.Dispatch(ctx, UpdateScene{Index: 9, Field: models.FieldTextHi, Value: "x"})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if len(s.Project.Scenes) != 3 {
		t.Fatalf("expected state to stay at 3 scenes, got %d", len(s.Project.Scenes))
	}
}

func TestStoreConcurrentDispatch(t *testing.T) {
	store, _ := startStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Dispatch(context.Background(), AddScene{}); err != nil {
				t.Errorf("dispatch: %v", err)
			}
		}()
	}
	wg.Wait()

	snap := store.Snapshot()
	if len(snap.Project.Scenes) != 52 {
		t.Fatalf("expected 52 scenes, got %d", len(snap.Project.Scenes))
	}
	if snap.Version != 50 {
		t.Fatalf("expected version 50, got %d", snap.Version)
	}
}

func TestStoreSubscribe(t *testing.T) {
	store, _ := startStore(t)
	updates, cancel := store.Subscribe()
	defer cancel()

	if _, err := store.Dispatch(context.Background(), SetTitle{Title: "live"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	select {
	case s := <-updates:
		if s.Project.Title != "live" {
			t.Fatalf("expected title live, got %q", s.Project.Title)
		}
	case <-time.After(time.Second):
		t.Fatalf("no update received")
	}

	cancel()
	if _, ok := <-updates; ok {
		t.Fatalf("expected channel closed after cancel")
	}
}

func TestStoreClosed(t *testing.T) {
	store, cancel := startStore(t)
	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()

	cancel()
	<-store.Done()

	if _, ok := <-updates; ok {
		t.Fatalf("expected subscriber channel closed when store stops")
	}
	if _, err := store.Dispatch(context.Background(), AddScene{}); !errors.Is(err, ErrStoreClosed) {
		t.Fatalf("expected ErrStoreClosed, got %v", err)
	}
}
