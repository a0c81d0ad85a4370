package metrics

import (
	"sync"

	"github.com/Zentre-Ai/mcp-servers/internal/logger"
)

var (
	mu          sync.RWMutex
	globalStore *Store
)

// Init opens the global store. Until Init succeeds, RecordInvocation is a
// no-op, so library users and tests never touch the home directory.
func Init(dbPath string) error {
	store, err := NewStore(dbPath)
	if err != nil {
		return err
	}
	mu.Lock()
	prev := globalStore
	globalStore = store
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// RecordInvocation counts one tool call.
func RecordInvocation(integration, tool string, failed bool) {
	mu.RLock()
	store := globalStore
	mu.RUnlock()
	if store == nil {
		return
	}
	if err := store.Record(integration, tool, failed); err != nil {
		logger.Named("metrics").Warnw("failed to record invocation",
			"integration", integration, "tool", tool, "error", err)
	}
}

// GetStats returns cumulative totals, or nil if the store is not initialized.
func GetStats() []Total {
	mu.RLock()
	store := globalStore
	mu.RUnlock()
	if store == nil {
		return nil
	}

	totals, err := store.Totals()
	if err != nil {
		logger.Named("metrics").Warnw("failed to get stats", "error", err)
		return nil
	}
	return totals
}

// Close closes the global metrics store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if globalStore == nil {
		return nil
	}
	err := globalStore.Close()
	globalStore = nil
	return err
}

// SetStoreForTesting sets the global store instance for testing purposes.
func SetStoreForTesting(store *Store) {
	mu.Lock()
	defer mu.Unlock()
	globalStore = store
}

// ResetForTesting resets the global state for testing purposes.
func ResetForTesting() {
	_ = Close()
}
