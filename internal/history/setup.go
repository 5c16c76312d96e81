package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"picsema/internal/logger"
)

// Ledger keeps a durable record of every ingestion attempt and batch run so
// operators can answer what was processed, when, and with which outcome.
// The vector collections are the source of truth for retrieval; the ledger
// is the audit trail.
type Ledger struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewLedger connects to the configured database and makes sure the ledger
// tables exist.
func NewLedger(ctx context.Context, cfg Config, log *logger.Logger) (*Ledger, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("history: failed to connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history: database unreachable: %w", err)
	}

	l := &Ledger{pool: pool, logger: log}
	if err := l.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("connected to ledger database", nil, nil)
	return l, nil
}

func (l *Ledger) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS ingests (
    id            BIGSERIAL PRIMARY KEY,
    image_id      TEXT NOT NULL,
    file_path     TEXT NOT NULL,
    status        TEXT NOT NULL,
    failure_stage TEXT,
    failure_cause TEXT,
    model_used    TEXT,
    ingested_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_ingests_image_id ON ingests (image_id);
CREATE INDEX IF NOT EXISTS idx_ingests_ingested_at ON ingests (ingested_at);

CREATE TABLE IF NOT EXISTS batches (
    id          BIGSERIAL PRIMARY KEY,
    directory   TEXT NOT NULL,
    succeeded   INTEGER NOT NULL,
    failed      INTEGER NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL
);`
	if _, err := l.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("history: failed to ensure schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (l *Ledger) Close() {
	l.pool.Close()
}
