// Package ledger is the append-only record of every compilation
// attempt. Unlike the cache it is authoritative: append failures are
// reported, records are immutable once written, and corrupt records are
// skipped in place rather than deleted.
//
// Attempts are partitioned by UTC creation date (one YYYY-MM-DD
// directory per day) for storage locality and bulk expiry. Record names
// embed a fresh UUID plus a timestamp, so concurrent appends into the
// same partition cannot collide.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	partitionLayout = "2006-01-02"

	// nameTimeLayout is fixed-width so record names inside a partition
	// sort by creation time.
	nameTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	recordExt = ".json"
)

// Attempt is one immutable record of a compilation request and its
// outcome. Input, output, and metadata are free-form mappings supplied
// by the caller.
type Attempt struct {
	AttemptID string         `json:"attempt_id"`
	Timestamp time.Time      `json:"timestamp"`
	Input     map[string]any `json:"input"`
	Output    map[string]any `json:"output"`
	Metadata  map[string]any `json:"metadata"`
}

// Stats describes the ledger after one full scan.
type Stats struct {
	TotalAttempts      int     `json:"total_attempts"`
	SuccessfulAttempts int     `json:"successful_attempts"`
	TotalSizeBytes     int64   `json:"total_size_bytes"`
	DateRange          string  `json:"date_range,omitempty"`
	SuccessRate        float64 `json:"success_rate"`
}

// Ledger stores attempts under a root directory of date partitions.
type Ledger struct {
	fs   afero.Fs
	root string
	log  *zap.Logger
}

// New creates a ledger rooted at dir. Pass afero.NewOsFs() outside of
// tests.
func New(fs afero.Fs, dir string, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ledger{fs: fs, root: dir, log: logger}
}

// Append stores a new attempt and returns its id. The ledger is the
// attempt-of-record, so a write that cannot complete is reported rather
// than swallowed.
func (l *Ledger) Append(input, output, metadata map[string]any) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	if metadata == nil {
		metadata = map[string]any{}
	}

	attempt := Attempt{
		AttemptID: id,
		Timestamp: now,
		Input:     input,
		Output:    output,
		Metadata:  metadata,
	}

	data, err := json.MarshalIndent(&attempt, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode attempt: %w", err)
	}

	partition := filepath.Join(l.root, now.Format(partitionLayout))
	if err := l.fs.MkdirAll(partition, 0o755); err != nil {
		return "", fmt.Errorf("failed to create partition: %w", err)
	}

	name := now.Format(nameTimeLayout) + "_" + id + recordExt
	if err := afero.WriteFile(l.fs, filepath.Join(partition, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write attempt: %w", err)
	}

	return id, nil
}

// Get returns the attempt with the given id, or nil if no partition
// holds it. Ids are globally unique, so at most one record matches.
func (l *Ledger) Get(attemptID string) (*Attempt, error) {
	partitions, err := l.partitions()
	if err != nil {
		return nil, err
	}

	for _, partition := range partitions {
		matches, err := afero.Glob(l.fs, filepath.Join(l.root, partition, "*_"+attemptID+recordExt))
		if err != nil {
			continue
		}

		for _, match := range matches {
			var attempt Attempt
			if l.readRecord(match, &attempt) {
				return &attempt, nil
			}
		}
	}

	return nil, nil
}

// Query returns attempts matching every filter, newest first, stopping
// at limit matches (limit <= 0 means unbounded). Filters are dotted
// paths into the record resolved through nested mappings; a missing
// segment or type mismatch means no match. Corrupt records are skipped,
// not fatal.
func (l *Ledger) Query(filters map[string]any, limit int) ([]Attempt, error) {
	partitions, err := l.partitions()
	if err != nil {
		return nil, err
	}

	// Descending date order, newest partition first
	sort.Sort(sort.Reverse(sort.StringSlice(partitions)))

	attempts := []Attempt{}

	for _, partition := range partitions {
		entries, err := afero.ReadDir(l.fs, filepath.Join(l.root, partition))
		if err != nil {
			continue
		}

		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), recordExt) {
				names = append(names, entry.Name())
			}
		}

		// Newest record first within the partition
		sort.Sort(sort.Reverse(sort.StringSlice(names)))

		for _, name := range names {
			if limit > 0 && len(attempts) >= limit {
				return attempts, nil
			}

			path := filepath.Join(l.root, partition, name)

			data, err := afero.ReadFile(l.fs, path)
			if err != nil {
				continue
			}

			var view map[string]any
			if json.Unmarshal(data, &view) != nil {
				continue
			}

			if !matchesFilters(view, filters) {
				continue
			}

			var attempt Attempt
			if json.Unmarshal(data, &attempt) == nil {
				attempts = append(attempts, attempt)
			}
		}
	}

	return attempts, nil
}

// PurgeOlderThan deletes whole partitions strictly older than now -
// days and returns the number of records removed. Partial-partition
// deletion is not supported.
func (l *Ledger) PurgeOlderThan(days int) (int, error) {
	partitions, err := l.partitions()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	deleted := 0

	for _, partition := range partitions {
		date, err := time.Parse(partitionLayout, partition)
		if err != nil {
			continue
		}

		if !date.Before(cutoff) {
			continue
		}

		dir := filepath.Join(l.root, partition)

		matches, err := afero.Glob(l.fs, filepath.Join(dir, "*"+recordExt))
		if err != nil {
			continue
		}

		if err := l.fs.RemoveAll(dir); err != nil {
			l.log.Warn("failed to remove partition", zap.String("partition", partition), zap.Error(err))
			continue
		}

		deleted += len(matches)
	}

	return deleted, nil
}

// ComputeStats scans every partition once. Success rate is the share of
// attempts whose output return code is zero.
func (l *Ledger) ComputeStats() (Stats, error) {
	partitions, err := l.partitions()
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, partition := range partitions {
		entries, err := afero.ReadDir(l.fs, filepath.Join(l.root, partition))
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
				continue
			}

			stats.TotalAttempts++
			stats.TotalSizeBytes += entry.Size()

			var attempt Attempt
			if !l.readRecord(filepath.Join(l.root, partition, entry.Name()), &attempt) {
				continue
			}

			if code, ok := numericValue(attempt.Output["returncode"]); ok && code == 0 {
				stats.SuccessfulAttempts++
			}
		}
	}

	if len(partitions) > 0 {
		sort.Strings(partitions)
		stats.DateRange = fmt.Sprintf("%s to %s", partitions[0], partitions[len(partitions)-1])
	}

	if stats.TotalAttempts > 0 {
		stats.SuccessRate = float64(stats.SuccessfulAttempts) / float64(stats.TotalAttempts)
	}

	return stats, nil
}

// partitions lists the date-named subdirectories of the ledger root.
func (l *Ledger) partitions() ([]string, error) {
	entries, err := afero.ReadDir(l.fs, l.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger root: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}

func (l *Ledger) readRecord(path string, attempt *Attempt) bool {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return false
	}

	return json.Unmarshal(data, attempt) == nil
}
