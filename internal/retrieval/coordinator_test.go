package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argofloatchat/queryresolver/internal/catalog"
	"github.com/argofloatchat/queryresolver/internal/domain"
	"github.com/argofloatchat/queryresolver/internal/sqlgen"
)

type fakeRelationalStore struct {
	rows      []map[string]any
	count     int
	queryErr  error
	countErr  error
}

func (f *fakeRelationalStore) Query(ctx context.Context, sqlText string) ([]map[string]any, error) {
	return f.rows, f.queryErr
}
func (f *fakeRelationalStore) Count(ctx context.Context, sqlText string) (int, error) {
	return f.count, f.countErr
}
func (f *fakeRelationalStore) FloatExists(ctx context.Context, id domain.FloatID) (bool, error) {
	return true, nil
}
func (f *fakeRelationalStore) FloatDateRange(ctx context.Context, id domain.FloatID) (domain.Float, error) {
	return domain.Float{ID: id}, nil
}
func (f *fakeRelationalStore) SimilarFloatIDs(ctx context.Context, prefix string, limit int) ([]domain.FloatID, error) {
	return nil, nil
}
func (f *fakeRelationalStore) Stats(ctx context.Context) (domain.DBStats, error) {
	return domain.DBStats{}, nil
}
func (f *fakeRelationalStore) Ping(ctx context.Context) error { return nil }

type fakeVectorStore struct {
	hits    []domain.VectorHit
	searchErr error
}

func (f *fakeVectorStore) Search(ctx context.Context, text string, topK int) ([]domain.VectorHit, error) {
	return f.hits, f.searchErr
}
func (f *fakeVectorStore) Ping(ctx context.Context) error { return nil }

func TestRetrieveSQLPath(t *testing.T) {
	cat := catalog.New()
	sql := &fakeRelationalStore{rows: []map[string]any{{"count": 5}}, count: 5}
	vec := &fakeVectorStore{}
	synth := sqlgen.New(cat, nil, nil)
	coord := New(sql, vec, synth, cat, nil)

	data, err := coord.Retrieve(context.Background(), domain.QueryVariant("sql"), "how many profiles in 2023", domain.ExtractedEntities{}, 25)
	require.NoError(t, err)
	assert.Equal(t, 5, data.TotalCount)
	assert.Equal(t, "year_count_direct", data.GenerationMethod)
}

func TestRetrieveHybridDegradesOnSQLFailure(t *testing.T) {
	cat := catalog.New()
	sql := &fakeRelationalStore{queryErr: assert.AnError}
	vec := &fakeVectorStore{hits: []domain.VectorHit{{ID: "1", Document: "doc"}}}
	synth := sqlgen.New(cat, nil, nil)
	coord := New(sql, vec, synth, cat, nil)

	data, err := coord.Retrieve(context.Background(), domain.QueryVariant("hybrid"), "compare temperature between 2021 and 2022", domain.ExtractedEntities{}, 10)
	require.NoError(t, err)
	assert.Len(t, data.VectorHits, 1)
	assert.Empty(t, data.SQLRows)
}

func TestRetrieveHybridFailsWhenBothPathsFail(t *testing.T) {
	cat := catalog.New()
	sql := &fakeRelationalStore{queryErr: assert.AnError}
	vec := &fakeVectorStore{searchErr: assert.AnError}
	synth := sqlgen.New(cat, nil, nil)
	coord := New(sql, vec, synth, cat, nil)

	_, err := coord.Retrieve(context.Background(), domain.QueryVariant("hybrid"), "compare temperature between 2021 and 2022", domain.ExtractedEntities{}, 10)
	assert.Error(t, err)
}
