// Package retrieval implements the Retrieval Coordinator: SQL-only,
// vector-only, and parallel hybrid retrieval, with geographic
// post-filtering and broadening fallback. The hybrid concurrency pattern
// is grounded on
// _examples/Tangerg-lynx/ai/rag/pipeline.go's retrieveByQuery: an
// errgroup joins both sub-retrievals, tolerating a partial failure.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/argofloatchat/queryresolver/internal/catalog"
	"github.com/argofloatchat/queryresolver/internal/domain"
	"github.com/argofloatchat/queryresolver/internal/sqlgen"
)

// Coordinator runs one or both retrieval paths and composes the result.
type Coordinator struct {
	sql    RelationalStore
	vector VectorStore
	synth  *sqlgen.Synthesizer
	cat    *catalog.Catalog
	log    *zap.Logger
}

// New builds a Coordinator.
func New(sql RelationalStore, vector VectorStore, synth *sqlgen.Synthesizer, cat *catalog.Catalog, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{sql: sql, vector: vector, synth: synth, cat: cat, log: log}
}

// Retrieve dispatches to the SQL, vector, or hybrid path according to
// variant.
func (c *Coordinator) Retrieve(ctx context.Context, variant domain.QueryVariant, query string, ents domain.ExtractedEntities, maxResults int) (domain.RetrievedData, error) {
	switch variant {
	case domain.VariantSQL:
		return c.retrieveSQL(ctx, query, ents)
	case domain.VariantVector:
		return c.retrieveVector(ctx, query, ents, maxResults)
	default:
		return c.retrieveHybrid(ctx, query, ents, maxResults)
	}
}

func (c *Coordinator) retrieveSQL(ctx context.Context, query string, ents domain.ExtractedEntities) (domain.RetrievedData, error) {
	gen := c.synth.Generate(ctx, query, ents)
	if err := sqlgen.Validate(gen.SQLText); err != nil {
		return domain.RetrievedData{}, fmt.Errorf("retrieval: generated sql failed validation: %w", err)
	}

	rows, err := c.sql.Query(ctx, gen.SQLText)
	if err != nil {
		return domain.RetrievedData{}, fmt.Errorf("retrieval: sql query failed: %w", err)
	}

	total := len(rows)
	if gen.CompanionCountSQL != "" {
		if n, cerr := c.sql.Count(ctx, gen.CompanionCountSQL); cerr == nil {
			total = n
		} else {
			c.log.Warn("companion count query failed, falling back to row count", zap.Error(cerr))
		}
	}
	if gen.GenerationMethod == sqlgen.MethodNearestFloats {
		total = len(rows)
	}

	stats, _ := c.sql.Stats(ctx)

	return domain.RetrievedData{
		SQLRows:          rows,
		SQLText:          gen.SQLText,
		GenerationMethod: string(gen.GenerationMethod),
		TotalCount:       total,
		Stats:            stats,
	}, nil
}

func (c *Coordinator) retrieveVector(ctx context.Context, query string, ents domain.ExtractedEntities, maxResults int) (domain.RetrievedData, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	hits, err := c.vector.Search(ctx, query, maxResults)
	if err != nil {
		return domain.RetrievedData{}, fmt.Errorf("retrieval: vector search failed: %w", err)
	}

	hits = c.applyGeographicPostFilter(query, ents, hits)
	hits = c.mergeSupplementarySearches(ctx, ents, hits)

	return domain.RetrievedData{
		VectorHits: hits,
		TotalCount: len(hits),
	}, nil
}

// applyGeographicPostFilter implements §4.6's region post-filter with
// broadening fallback.
func (c *Coordinator) applyGeographicPostFilter(query string, ents domain.ExtractedEntities, hits []domain.VectorHit) []domain.VectorHit {
	region, found := c.cat.FindRegion(query)
	if !found {
		for _, name := range ents.Regions {
			if r, ok := findRegionByName(c.cat, name); ok {
				region, found = r, true
				break
			}
		}
	}
	if !found {
		return hits
	}

	strict := filterHitsByRect(hits, region.Rect, false)
	if len(strict) > 0 {
		return strict
	}
	if region.Broader != nil {
		return filterHitsByRect(hits, *region.Broader, true)
	}
	return strict
}

func findRegionByName(cat *catalog.Catalog, name string) (domain.Region, bool) {
	for _, r := range cat.Regions() {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return domain.Region{}, false
}

func filterHitsByRect(hits []domain.VectorHit, rect domain.Rectangle, broadened bool) []domain.VectorHit {
	var out []domain.VectorHit
	for _, h := range hits {
		lat, latOK := toFloat(h.Metadata["latitude"])
		lon, lonOK := toFloat(h.Metadata["longitude"])
		if !latOK || !lonOK {
			continue
		}
		if rect.Contains(lat, lon) {
			h.Broadened = broadened
			out = append(out, h)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// mergeSupplementarySearches runs limit-5 single-term searches for any
// additional named parameters/regions and merges them in, deduplicating
// by hit id and preserving first-seen order.
func (c *Coordinator) mergeSupplementarySearches(ctx context.Context, ents domain.ExtractedEntities, hits []domain.VectorHit) []domain.VectorHit {
	terms := append(append([]string{}, ents.Parameters...), ents.Regions...)
	if len(terms) == 0 {
		return hits
	}
	all := hits
	for _, term := range terms {
		extra, err := c.vector.Search(ctx, term, 5)
		if err != nil {
			c.log.Warn("supplementary vector search failed", zap.String("term", term), zap.Error(err))
			continue
		}
		all = append(all, extra...)
	}
	return lo.UniqBy(all, func(h domain.VectorHit) string { return h.ID })
}

// retrieveHybrid runs SQL and vector retrieval concurrently, each with
// half the result budget, per §4.6's concurrency contract: join both,
// compose explicitly, no automatic failure propagation.
func (c *Coordinator) retrieveHybrid(ctx context.Context, query string, ents domain.ExtractedEntities, maxResults int) (domain.RetrievedData, error) {
	half := maxResults / 2
	if half <= 0 {
		half = 5
	}

	var (
		mu       sync.Mutex
		sqlData  domain.RetrievedData
		sqlErr   error
		vecData  domain.RetrievedData
		vecErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)

	g.Go(func() error {
		d, err := c.retrieveSQL(gctx, query, ents)
		if len(d.SQLRows) > half {
			d.SQLRows = d.SQLRows[:half]
		}
		mu.Lock()
		sqlData, sqlErr = d, err
		mu.Unlock()
		return nil // partial-failure-tolerant: never abort the group
	})
	g.Go(func() error {
		d, err := c.retrieveVector(gctx, query, ents, half)
		mu.Lock()
		vecData, vecErr = d, err
		mu.Unlock()
		return nil
	})
	_ = g.Wait()

	if sqlErr != nil && vecErr != nil {
		return domain.RetrievedData{}, fmt.Errorf("retrieval: hybrid failed on both paths: sql=%v vector=%v", sqlErr, vecErr)
	}
	if sqlErr != nil {
		c.log.Warn("hybrid sql path failed, returning vector-only", zap.Error(sqlErr))
		return vecData, nil
	}
	if vecErr != nil {
		c.log.Warn("hybrid vector path failed, returning sql-only", zap.Error(vecErr))
		return sqlData, nil
	}

	return domain.RetrievedData{
		SQLRows:          sqlData.SQLRows,
		VectorHits:       vecData.VectorHits,
		SQLText:          sqlData.SQLText,
		GenerationMethod: sqlData.GenerationMethod,
		TotalCount:       sqlData.TotalCount + vecData.TotalCount,
		Stats:            sqlData.Stats,
	}, nil
}
