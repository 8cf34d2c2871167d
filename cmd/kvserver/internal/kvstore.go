package internal

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ananthvk/memkv"
	"github.com/ananthvk/memkv/internal/resp"
)

// KVStore owns the store and is the only way to reach it. Commands from every
// connection run one at a time under a single lock, lazy expiry included.
type KVStore struct {
	mu       sync.Mutex
	store    *memkv.Store
	registry *Registry
	logger   *slog.Logger
}

func NewKVStore(store *memkv.Store, registry *Registry, logger *slog.Logger) *KVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &KVStore{
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

// Execute runs a single command and returns its reply. Command failures come back
// as error frames, never as a Go error.
func (kv *KVStore) Execute(name string, args []resp.Value) (reply resp.Value) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			kv.logger.Error("command panicked", "command", name, "error", fmt.Sprint(r))
			reply = resp.Error("internal error")
		}
	}()

	result, err := kv.registry.Dispatch(name, args, kv.store)
	if err != nil {
		return resp.Error(err.Error())
	}
	return result
}
