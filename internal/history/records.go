package history

import (
	"context"
	"fmt"
	"time"

	"picsema/internal/model"
)

// IngestStatus is the final outcome of a single ingestion attempt.
type IngestStatus string

const (
	StatusSuccess  IngestStatus = "success"
	StatusDegraded IngestStatus = "degraded"
	StatusFailed   IngestStatus = "failed"
)

// IngestEntry is one row of the ingestion audit trail.
type IngestEntry struct {
	ImageID      string
	FilePath     string
	Status       IngestStatus
	FailureStage string
	FailureCause string
	ModelUsed    string
	IngestedAt   time.Time
}

// RecordIngest appends one ingestion attempt to the ledger.
func (l *Ledger) RecordIngest(ctx context.Context, entry IngestEntry) error {
	const q = `
INSERT INTO ingests (image_id, file_path, status, failure_stage, failure_cause, model_used)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))`
	_, err := l.pool.Exec(ctx, q,
		entry.ImageID, entry.FilePath, string(entry.Status),
		entry.FailureStage, entry.FailureCause, entry.ModelUsed)
	if err != nil {
		return fmt.Errorf("history: failed to record ingest: %w", err)
	}
	return nil
}

// RecordBatch appends the summary of a directory run to the ledger.
func (l *Ledger) RecordBatch(ctx context.Context, directory string, report *model.BatchReport) error {
	const q = `
INSERT INTO batches (directory, succeeded, failed, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := l.pool.Exec(ctx, q,
		directory, len(report.Succeeded), len(report.Failed), report.Started, report.Finished)
	if err != nil {
		return fmt.Errorf("history: failed to record batch: %w", err)
	}
	return nil
}

// RecentIngests returns the newest ledger entries, most recent first.
func (l *Ledger) RecentIngests(ctx context.Context, limit int) ([]IngestEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT image_id, file_path, status,
       COALESCE(failure_stage, ''), COALESCE(failure_cause, ''), COALESCE(model_used, ''),
       ingested_at
FROM ingests
ORDER BY ingested_at DESC
LIMIT $1`
	rows, err := l.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("history: failed to query ingests: %w", err)
	}
	defer rows.Close()

	var entries []IngestEntry
	for rows.Next() {
		var e IngestEntry
		var status string
		if err := rows.Scan(&e.ImageID, &e.FilePath, &status,
			&e.FailureStage, &e.FailureCause, &e.ModelUsed, &e.IngestedAt); err != nil {
			return nil, fmt.Errorf("history: failed to scan ingest row: %w", err)
		}
		e.Status = IngestStatus(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: failed to read ingest rows: %w", err)
	}
	return entries, nil
}

// CountByStatus returns how many ingestion attempts ended in each status.
func (l *Ledger) CountByStatus(ctx context.Context) (map[IngestStatus]int64, error) {
	const q = `SELECT status, COUNT(*) FROM ingests GROUP BY status`
	rows, err := l.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("history: failed to count ingests: %w", err)
	}
	defer rows.Close()

	counts := make(map[IngestStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("history: failed to scan count row: %w", err)
		}
		counts[IngestStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: failed to read count rows: %w", err)
	}
	return counts, nil
}
