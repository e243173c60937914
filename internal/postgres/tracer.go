package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

type queryStartKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

// queryLogger implements pgx.QueryTracer. Failed queries log at warn, the
// rest at debug.
type queryLogger struct{}

func (queryLogger) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, at: time.Now()})
}

func (queryLogger) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qs, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	attrs := []any{"sql", qs.sql, "duration", time.Since(qs.at), "rows", data.CommandTag.RowsAffected()}
	if data.Err != nil {
		slog.WarnContext(ctx, "query failed", append(attrs, "error", data.Err)...)
		return
	}
	slog.DebugContext(ctx, "query", attrs...)
}
