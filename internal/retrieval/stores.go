package retrieval

import (
	"context"

	"github.com/argofloatchat/queryresolver/internal/domain"
)

// RelationalStore is the interface the Retrieval Coordinator needs from
// the relational store. Implemented by internal/store/postgres.
type RelationalStore interface {
	// Query executes a validated SELECT and returns rows as ordered
	// column maps.
	Query(ctx context.Context, sqlText string) ([]map[string]any, error)
	// Count executes a companion COUNT(*) statement; callers fall back
	// to len(rows) on error per §4.6.
	Count(ctx context.Context, sqlText string) (int, error)
	// FloatExists reports whether a float_id is present in the store,
	// used by the no-results and float-not-found formatters.
	FloatExists(ctx context.Context, floatID domain.FloatID) (bool, error)
	// FloatDateRange reports a float's observed profile date range and
	// profile count.
	FloatDateRange(ctx context.Context, floatID domain.FloatID) (domain.Float, error)
	// SimilarFloatIDs returns float_ids sharing the given prefix.
	SimilarFloatIDs(ctx context.Context, prefix string, limit int) ([]domain.FloatID, error)
	// Stats returns a coarse database-statistics snapshot.
	Stats(ctx context.Context) (domain.DBStats, error)
	// Ping verifies connectivity for health_check().
	Ping(ctx context.Context) error
}

// VectorStore is the interface the Retrieval Coordinator needs from the
// vector store. Implemented by internal/store/qdrant.
type VectorStore interface {
	// Search runs a semantic search for the given text, returning up to
	// topK ranked hits.
	Search(ctx context.Context, text string, topK int) ([]domain.VectorHit, error)
	// Ping verifies connectivity for health_check().
	Ping(ctx context.Context) error
}
