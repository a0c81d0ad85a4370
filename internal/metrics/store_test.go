package metrics

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "test_stats.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	dbPath := filepath.Join(dir, "stats.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestRecordAndCountByDate(t *testing.T) {
	store := newTestStore(t)

	if err := store.Record("github", "get_repository", false); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record("github", "list_issues", true); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	today := time.Now().Format(dateLayout)
	count, err := store.CountByDate("github", today)
	if err != nil {
		t.Fatalf("CountByDate failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}

	count, err = store.CountByDate("github", "1999-01-01")
	if err != nil {
		t.Fatalf("CountByDate failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected count 0 for other date, got %d", count)
	}
}

func TestTotalsAcrossDays(t *testing.T) {
	store := newTestStore(t)

	for _, date := range []string{"2026-01-01", "2026-01-02"} {
		if err := store.recordOn("jira", "get_issue", date, false); err != nil {
			t.Fatalf("recordOn failed: %v", err)
		}
	}
	if err := store.recordOn("jira", "get_issue", "2026-01-02", true); err != nil {
		t.Fatalf("recordOn failed: %v", err)
	}
	if err := store.recordOn("datadog", "list_monitors", "2026-01-02", false); err != nil {
		t.Fatalf("recordOn failed: %v", err)
	}

	totals, err := store.Totals()
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}
	want := []Total{
		{Integration: "datadog", Tool: "list_monitors", Calls: 1},
		{Integration: "jira", Tool: "get_issue", Calls: 3, Errors: 1},
	}
	if len(totals) != len(want) {
		t.Fatalf("Expected %d totals, got %d: %+v", len(want), len(totals), totals)
	}
	for i := range want {
		if totals[i] != want[i] {
			t.Errorf("totals[%d] = %+v, want %+v", i, totals[i], want[i])
		}
	}

	jira, err := store.TotalByIntegration("jira")
	if err != nil {
		t.Fatalf("TotalByIntegration failed: %v", err)
	}
	if jira != 3 {
		t.Errorf("Expected jira total 3, got %d", jira)
	}
}

func TestConcurrentRecords(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Record("slack", "post_message", false); err != nil {
				t.Errorf("Record failed: %v", err)
			}
		}()
	}
	wg.Wait()

	total, err := store.TotalByIntegration("slack")
	if err != nil {
		t.Fatalf("TotalByIntegration failed: %v", err)
	}
	if total != 20 {
		t.Errorf("Expected 20, got %d", total)
	}
}

func TestGlobalRecorderIsNoopUntilInit(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	RecordInvocation("github", "get_repository", false)
	if stats := GetStats(); stats != nil {
		t.Fatalf("Expected nil stats before Init, got %+v", stats)
	}

	if err := Init(filepath.Join(t.TempDir(), "stats.db")); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	RecordInvocation("github", "get_repository", false)

	stats := GetStats()
	if len(stats) != 1 || stats[0].Calls != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
