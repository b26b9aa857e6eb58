// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/shelf-bridge/pkg/types"
)

const logDBFile = "resolutions.db"

// Log records per-item resolution verdicts in a SQLite database, one
// row per subject. The mapping files carry only the confirmed pairs;
// the log keeps the full history (scores, reasons, contenders) that
// review and stats commands need.
type Log struct {
	db *sql.DB
}

// OpenLog opens or creates the resolution log at indexDir/resolutions.db.
func OpenLog(indexDir string) (*Log, error) {
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, logDBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening resolution log: %w", err)
	}

	l := &Log{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

func (l *Log) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS resolutions (
			subject_url TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			title TEXT,
			status TEXT NOT NULL,
			reason TEXT,
			confidence REAL,
			target_url TEXT,
			candidates TEXT,
			resolved_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resolutions_status ON resolutions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_resolutions_category ON resolutions(category)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record upserts the verdict for one item. A later run replaces the
// earlier row, so the log always reflects the most recent attempt.
func (l *Log) Record(ctx context.Context, item types.CatalogItem, res types.Resolution) error {
	candidatesJSON, _ := json.Marshal(res.Candidates)
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO resolutions (subject_url, category, title, status, reason, confidence, target_url, candidates, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(subject_url) DO UPDATE SET
			category=excluded.category, title=excluded.title, status=excluded.status,
			reason=excluded.reason, confidence=excluded.confidence,
			target_url=excluded.target_url, candidates=excluded.candidates,
			resolved_at=excluded.resolved_at`,
		item.SubjectURL, string(item.Category), item.QueryTitle(),
		string(res.Status), res.Reason, res.Confidence, res.TargetURL,
		string(candidatesJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording resolution for %s: %w", item.SubjectURL, err)
	}
	return nil
}

// ReviewEntry is one item needing human adjudication.
type ReviewEntry struct {
	SubjectURL string                  `json:"subject_url" yaml:"subject_url"`
	Category   string                  `json:"category" yaml:"category"`
	Title      string                  `json:"title" yaml:"title"`
	Status     string                  `json:"status" yaml:"status"`
	Reason     string                  `json:"reason,omitempty" yaml:"reason,omitempty"`
	Confidence float64                 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Candidates []types.ScoredCandidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

// NeedsReview returns the ambiguous and unresolved entries, optionally
// filtered by category, ordered by subject URL.
func (l *Log) NeedsReview(ctx context.Context, category types.Category) ([]ReviewEntry, error) {
	query := `SELECT subject_url, category, title, status, reason, confidence, candidates
		FROM resolutions WHERE status != ?`
	args := []any{string(types.StatusMatched)}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY subject_url`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying review entries: %w", err)
	}
	defer rows.Close()

	var entries []ReviewEntry
	for rows.Next() {
		var e ReviewEntry
		var candidatesJSON string
		if err := rows.Scan(&e.SubjectURL, &e.Category, &e.Title, &e.Status, &e.Reason, &e.Confidence, &candidatesJSON); err != nil {
			return nil, fmt.Errorf("scanning review entry: %w", err)
		}
		if candidatesJSON != "" && candidatesJSON != "null" {
			if err := json.Unmarshal([]byte(candidatesJSON), &e.Candidates); err != nil {
				return nil, fmt.Errorf("parsing candidates for %s: %w", e.SubjectURL, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats holds per-status counts from the resolution log.
type Stats struct {
	Matched    int
	Ambiguous  int
	Unresolved int
}

// Total returns the number of logged items.
func (s Stats) Total() int {
	return s.Matched + s.Ambiguous + s.Unresolved
}

// Stats counts logged resolutions by status, optionally filtered by
// category.
func (l *Log) Stats(ctx context.Context, category types.Category) (Stats, error) {
	query := `SELECT status, count(*) FROM resolutions`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` GROUP BY status`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, fmt.Errorf("scanning stats row: %w", err)
		}
		switch types.ResolutionStatus(status) {
		case types.StatusMatched:
			stats.Matched = count
		case types.StatusAmbiguous:
			stats.Ambiguous = count
		case types.StatusUnresolved:
			stats.Unresolved = count
		}
	}
	return stats, rows.Err()
}
