package metrics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Total is the cumulative call count of one tool.
type Total struct {
	Integration string `json:"integration"`
	Tool        string `json:"tool"`
	Calls       int64  `json:"calls"`
	Errors      int64  `json:"errors"`
}

// Store persists tool invocation counts in SQLite, one row per
// integration, tool and day.
type Store struct {
	db *sql.DB
}

// DefaultPath is ~/.mcp-servers/stats.db.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".mcp-servers", "stats.db"), nil
}

// NewStore opens the store at dbPath, or DefaultPath when empty, creating
// the parent directory and schema as needed.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		var err error
		if dbPath, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; concurrent tool calls queue here instead of
	// failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE IF NOT EXISTS tool_invocations (
			integration TEXT NOT NULL,
			tool TEXT NOT NULL,
			date TEXT NOT NULL,
			calls INTEGER NOT NULL DEFAULT 0,
			errors INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (integration, tool, date)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Store{db: db}, nil
}

// Record counts one call of tool for today.
func (s *Store) Record(integration, tool string, failed bool) error {
	return s.recordOn(integration, tool, time.Now().Format(dateLayout), failed)
}

func (s *Store) recordOn(integration, tool, date string, failed bool) error {
	errInc := 0
	if failed {
		errInc = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO tool_invocations (integration, tool, date, calls, errors)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(integration, tool, date) DO UPDATE SET
			calls = calls + 1,
			errors = errors + excluded.errors;
	`, integration, tool, date, errInc)
	if err != nil {
		return fmt.Errorf("failed to record invocation: %w", err)
	}
	return nil
}

// Totals returns cumulative counts per tool, ordered by integration and tool.
func (s *Store) Totals() ([]Total, error) {
	rows, err := s.db.Query(`
		SELECT integration, tool, SUM(calls), SUM(errors)
		FROM tool_invocations
		GROUP BY integration, tool
		ORDER BY integration, tool
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer rows.Close()

	var totals []Total
	for rows.Next() {
		var t Total
		if err := rows.Scan(&t.Integration, &t.Tool, &t.Calls, &t.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return totals, nil
}

// TotalByIntegration returns the cumulative call count of one integration.
func (s *Store) TotalByIntegration(integration string) (int64, error) {
	var total int64
	row := s.db.QueryRow(
		"SELECT COALESCE(SUM(calls), 0) FROM tool_invocations WHERE integration = ?",
		integration,
	)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get total for %s: %w", integration, err)
	}
	return total, nil
}

// CountByDate returns the calls made to an integration on date (YYYY-MM-DD).
func (s *Store) CountByDate(integration, date string) (int64, error) {
	var count int64
	row := s.db.QueryRow(
		"SELECT COALESCE(SUM(calls), 0) FROM tool_invocations WHERE integration = ? AND date = ?",
		integration, date,
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get count: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
