package checkpoint

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(time.Minute),
		"redis":  NewRedisStore(client, time.Minute),
	}
}

func TestSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := store.Load(ctx, "a1"); err != nil || ok {
				t.Fatalf("Load before save: ok=%v err=%v", ok, err)
			}

			want := Progress{QuestionIndex: 3, DeadlineUnix: 1700000000, UpdatedAt: 1699999990}
			if err := store.Save(ctx, "a1", want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, ok, err := store.Load(ctx, "a1")
			if err != nil || !ok {
				t.Fatalf("Load: ok=%v err=%v", ok, err)
			}
			if got != want {
				t.Fatalf("Load = %+v, want %+v", got, want)
			}

			// Overwrite wins.
			want.QuestionIndex = 4
			if err := store.Save(ctx, "a1", want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, _, _ = store.Load(ctx, "a1")
			if got.QuestionIndex != 4 {
				t.Fatalf("QuestionIndex = %d, want 4", got.QuestionIndex)
			}

			if err := store.Clear(ctx, "a1"); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			if _, ok, _ := store.Load(ctx, "a1"); ok {
				t.Fatal("Load after Clear should miss")
			}
		})
	}
}

func TestRedisEntriesExpire(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisStore(client, time.Second)

	if err := store.Save(ctx, "a1", Progress{QuestionIndex: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if _, ok, _ := store.Load(ctx, "a1"); ok {
		t.Fatal("entry should have expired")
	}
}
