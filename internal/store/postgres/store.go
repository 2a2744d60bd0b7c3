// Package postgres implements the relational store contract over
// PostgreSQL. Grounded on the constructor/zap/sqlx idiom of
// _examples/other_examples/963e5c8c_SoySergo-location_microservice__internal-repository-postgresosm-environment_repository.go.go.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/argofloatchat/queryresolver/internal/domain"
)

// Store is the sqlx-backed relational store implementation.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger
}

// New opens a connection pool against dsn.
func New(dsn string, log *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}, nil
}

// Query executes a validated SELECT and returns rows as ordered column
// maps, decoding array columns (DOUBLE PRECISION[]) into []float64.
func (s *Store) Query(ctx context.Context, sqlText string) ([]map[string]any, error) {
	rows, err := s.db.QueryxContext(ctx, sqlText)
	if err != nil {
		s.log.Error("query failed", zap.String("sql", sqlText), zap.Error(err))
		return nil, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		raw := map[string]any{}
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		out = append(out, decodeArrays(raw))
	}
	return out, rows.Err()
}

// decodeArrays converts any pq.Array-wire []byte/driver representations
// surfaced by MapScan for DOUBLE PRECISION[] columns into []float64.
func decodeArrays(raw map[string]any) map[string]any {
	for k, v := range raw {
		if b, ok := v.([]byte); ok {
			var arr pq.Float64Array
			if err := arr.Scan(b); err == nil && len(arr) > 0 {
				raw[k] = []float64(arr)
			}
		}
	}
	return raw
}

// Count executes a companion COUNT(*) statement.
func (s *Store) Count(ctx context.Context, sqlText string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, sqlText); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return n, nil
}

// FloatExists reports whether a float_id is present in argo_floats.
func (s *Store) FloatExists(ctx context.Context, floatID domain.FloatID) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM argo_floats WHERE float_id = $1)", string(floatID))
	if err != nil {
		return false, fmt.Errorf("postgres: float exists: %w", err)
	}
	return exists, nil
}

// FloatDateRange reports a float's observed profile date range and count.
func (s *Store) FloatDateRange(ctx context.Context, floatID domain.FloatID) (domain.Float, error) {
	var row struct {
		FirstProfile pq.NullTime `db:"first_profile"`
		LastProfile  pq.NullTime `db:"last_profile"`
		ProfileCount int         `db:"profile_count"`
	}
	err := s.db.GetContext(ctx, &row, `
SELECT MIN(profile_date) as first_profile, MAX(profile_date) as last_profile, COUNT(*) as profile_count
FROM argo_profiles WHERE float_id = $1`, string(floatID))
	if err != nil {
		return domain.Float{}, fmt.Errorf("postgres: float date range: %w", err)
	}
	return domain.Float{
		ID:           floatID,
		FirstProfile: row.FirstProfile.Time,
		LastProfile:  row.LastProfile.Time,
		ProfileCount: row.ProfileCount,
	}, nil
}

// SimilarFloatIDs returns float_ids sharing the given prefix.
func (s *Store) SimilarFloatIDs(ctx context.Context, prefix string, limit int) ([]domain.FloatID, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		"SELECT float_id FROM argo_floats WHERE float_id LIKE $1 LIMIT $2", prefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: similar float ids: %w", err)
	}
	out := make([]domain.FloatID, len(ids))
	for i, id := range ids {
		out[i] = domain.FloatID(id)
	}
	return out, nil
}

// Stats returns a coarse database-statistics snapshot.
func (s *Store) Stats(ctx context.Context) (domain.DBStats, error) {
	var stats domain.DBStats
	err := s.db.GetContext(ctx, &stats.TotalFloats, "SELECT COUNT(*) FROM argo_floats")
	if err != nil {
		return domain.DBStats{}, fmt.Errorf("postgres: stats floats: %w", err)
	}
	err = s.db.GetContext(ctx, &stats.TotalProfiles, "SELECT COUNT(*) FROM argo_profiles")
	if err != nil {
		return domain.DBStats{}, fmt.Errorf("postgres: stats profiles: %w", err)
	}
	return stats, nil
}

// Ping verifies connectivity for health_check().
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
