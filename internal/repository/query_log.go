package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Swigstan1810/Heights-sub002/internal/domain/models"
)

// queryLogSchema creates the assistant query log table. Idempotent.
var queryLogSchema = []string{
	`CREATE TABLE IF NOT EXISTS assistant_queries (
		ts            DateTime64(3),
		response_id   String,
		query         String,
		intent        LowCardinality(String),
		asset_symbol  LowCardinality(String),
		sources       Array(String),
		confidence    Float64,
		freshness     LowCardinality(String),
		latency_ms    UInt32
	) ENGINE = MergeTree()
	ORDER BY (ts, intent)
	TTL toDateTime(ts) + INTERVAL 90 DAY`,
}

// ClickHouseQueryLog records processed queries for offline evaluation.
type ClickHouseQueryLog struct {
	db    *sql.DB
	table string
}

func NewClickHouseQueryLog(db *sql.DB) *ClickHouseQueryLog {
	return &ClickHouseQueryLog{db: db, table: "assistant_queries"}
}

// InitSchema creates the log table if missing.
func (l *ClickHouseQueryLog) InitSchema(ctx context.Context) error {
	for _, stmt := range queryLogSchema {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("query log schema: %w", err)
		}
	}
	return nil
}

func (l *ClickHouseQueryLog) Record(ctx context.Context, query string, resp *models.AIResponse) error {
	if resp == nil {
		return nil
	}
	intent, symbol := "", ""
	if resp.Metadata.Classification != nil {
		intent = string(resp.Metadata.Classification.Intent)
		symbol = resp.Metadata.Classification.AssetSymbol
	}
	sources := make([]string, 0, len(resp.Metadata.Sources))
	for _, s := range resp.Metadata.Sources {
		sources = append(sources, string(s))
	}

	q := fmt.Sprintf(
		"INSERT INTO %s (ts, response_id, query, intent, asset_symbol, sources, confidence, freshness, latency_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		l.table,
	)
	_, err := l.db.ExecContext(ctx, q,
		resp.Timestamp,
		resp.ID,
		truncateQuery(query),
		intent,
		symbol,
		sources,
		resp.Metadata.Confidence,
		resp.Metadata.DataFreshness,
		uint32(resp.Metadata.ProcessingTime / time.Millisecond),
	)
	if err != nil {
		return fmt.Errorf("query log insert: %w", err)
	}
	return nil
}

func (l *ClickHouseQueryLog) Close() error {
	return nil // pool managed by pkg/clickhouse
}

// truncateQuery bounds stored query text; the log is for evaluation, not replay.
func truncateQuery(q string) string {
	q = strings.TrimSpace(q)
	if len(q) > 500 {
		return q[:500]
	}
	return q
}
