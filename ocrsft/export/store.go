// Package export persists encoded splits to a libsql database for a trainer
// to consume.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/ocrsft/ocrsft/encoding"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"
)

var ErrSampleNotFound = errors.New("sample not found")

// timeLayout is fixed-width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run identifies one export.
type Run struct {
	ID        uuid.UUID
	Config    string
	CreatedAt time.Time
}

// Store writes runs and their samples.
type Store struct {
	db *sql.DB
}

// Open connects to dsn. A "file:" DSN has its parent directory created; any
// other DSN is passed to the libsql driver unchanged.
func Open(dsn string) (*Store, error) {
	if path, ok := strings.CutPrefix(dsn, "file:"); ok {
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("could not create export directory: %w", err)
		}
	}

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connector: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize export database: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY UNIQUE,
		config TEXT,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS samples (
		run_id TEXT NOT NULL REFERENCES runs(id),
		split TEXT NOT NULL,
		idx INTEGER NOT NULL,
		pair_key INTEGER NOT NULL,
		input_ids TEXT NOT NULL,
		attention_mask TEXT NOT NULL,
		labels TEXT NOT NULL,
		PRIMARY KEY (run_id, split, idx)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create samples table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun records a new run with its serialised configuration.
func (s *Store) CreateRun(ctx context.Context, config any) (*Run, error) {
	b, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run config: %w", err)
	}
	run := &Run{ID: uuid.New(), Config: string(b), CreatedAt: time.Now().UTC()}

	_, err = s.db.ExecContext(ctx, `INSERT INTO runs (id, config, created_at) VALUES (?, ?, ?)`,
		run.ID.String(), run.Config, run.CreatedAt.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// WriteSplit stores samples for one split in a single transaction. keys[i]
// is the pair key behind samples[i].
func (s *Store) WriteSplit(ctx context.Context, runID uuid.UUID, split string, keys []int64, samples []*encoding.Sample) (err error) {
	if len(keys) != len(samples) {
		return fmt.Errorf("have %d keys for %d samples", len(keys), len(samples))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO samples
		(run_id, split, idx, pair_key, input_ids, attention_mask, labels)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, smp := range samples {
		ids, mask, labels, err := marshalSample(smp)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, runID.String(), split, i, keys[i], ids, mask, labels); err != nil {
			return fmt.Errorf("failed to insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit split %s: %w", split, err)
	}
	return nil
}

// CountSamples returns how many samples a run holds for split.
func (s *Store) CountSamples(ctx context.Context, runID uuid.UUID, split string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples WHERE run_id = ? AND split = ?`,
		runID.String(), split).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return n, nil
}

// LoadSample reads one sample back together with its pair key.
func (s *Store) LoadSample(ctx context.Context, runID uuid.UUID, split string, idx int) (*encoding.Sample, int64, error) {
	var (
		key                  int64
		ids, mask, labelsRaw string
	)
	err := s.db.QueryRowContext(ctx, `SELECT pair_key, input_ids, attention_mask, labels
		FROM samples WHERE run_id = ? AND split = ? AND idx = ?`, runID.String(), split, idx).
		Scan(&key, &ids, &mask, &labelsRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("%w: %s[%d]", ErrSampleNotFound, split, idx)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load sample: %w", err)
	}

	smp := &encoding.Sample{}
	if err := json.Unmarshal([]byte(ids), &smp.InputIDs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode input_ids: %w", err)
	}
	if err := json.Unmarshal([]byte(mask), &smp.AttentionMask); err != nil {
		return nil, 0, fmt.Errorf("failed to decode attention_mask: %w", err)
	}
	if err := json.Unmarshal([]byte(labelsRaw), &smp.Labels); err != nil {
		return nil, 0, fmt.Errorf("failed to decode labels: %w", err)
	}
	return smp, key, nil
}

// ListRuns returns every run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, config, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			id, created string
			run         Run
		)
		if err := rows.Scan(&id, &run.Config, &created); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", id, err)
		}
		if run.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", created, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func marshalSample(smp *encoding.Sample) (ids, mask, labels string, err error) {
	b, err := json.Marshal(smp.InputIDs)
	if err != nil {
		return "", "", "", err
	}
	ids = string(b)
	if b, err = json.Marshal(smp.AttentionMask); err != nil {
		return "", "", "", err
	}
	mask = string(b)
	if b, err = json.Marshal(smp.Labels); err != nil {
		return "", "", "", err
	}
	labels = string(b)
	return ids, mask, labels, nil
}
