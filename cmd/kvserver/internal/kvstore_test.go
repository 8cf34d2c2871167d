package internal

import (
	"strconv"
	"sync"
	"testing"

	"github.com/ananthvk/memkv"
	"github.com/ananthvk/memkv/internal/resp"
)

func TestKVStoreSerializesCommands(t *testing.T) {
	kv, _, _ := newTestKVStore()

	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				kv.Execute("INCR", bulks("counter"))
			}
		}()
	}
	wg.Wait()

	got := kv.Execute("GET", bulks("counter"))
	if want := resp.Integer(workers * perWorker); !got.Equal(want) {
		t.Errorf("GET counter = %v, want %v", got, want)
	}
}

func TestKVStoreRecoversFromPanics(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register("BOOM", func(args []resp.Value, store *memkv.Store) (resp.Value, error) {
		panic("boom")
	})
	kv := NewKVStore(memkv.NewStore(), registry, discardLogger())

	got := kv.Execute("BOOM", nil)
	if want := resp.Error("internal error"); !got.Equal(want) {
		t.Errorf("Execute() = %v, want %v", got, want)
	}

	// The lock must have been released
	for i := range 3 {
		got := kv.Execute("SET", bulks("k", strconv.Itoa(i)))
		if want := resp.SimpleString("OK"); !got.Equal(want) {
			t.Fatalf("Execute() = %v, want %v", got, want)
		}
	}
}
