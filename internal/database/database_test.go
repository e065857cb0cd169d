package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/analysis"
	"github.com/ZanzyTHEbar/cognitive-risk-indicator/internal/cache"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db)
}

func sampleOutput(t *testing.T) *analysis.RiskOutput {
	t.Helper()
	a, err := analysis.NewAnalyzer(analysis.DefaultSettings(), nil)
	require.NoError(t, err)
	out, err := a.Analyze(context.Background(), analysis.AssessmentRequest{})
	require.NoError(t, err)
	return out
}

func assessmentAt(t *testing.T, out *analysis.RiskOutput, at time.Time) *Assessment {
	a := NewAssessment(out)
	a.CreatedAt = at.UTC().Truncate(time.Millisecond)
	return a
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	out := sampleOutput(t)

	a := NewAssessment(out)
	require.True(t, ValidID(a.ID))
	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, out.Score, got.Result.Score)
	assert.Equal(t, out.Level, got.Result.Level)
	assert.Equal(t, out.Disclaimer, got.Result.Disclaimer)

	_, err = repo.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	out := sampleOutput(t)
	base := time.Now()

	var ids []string
	for i := 0; i < 3; i++ {
		a := assessmentAt(t, out, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Save(ctx, a))
		ids = append(ids, a.ID)
	}

	list, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
	assert.Equal(t, out.Level, list[0].RiskLevel)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRepositoryDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := NewAssessment(sampleOutput(t))
	require.NoError(t, repo.Save(ctx, a))

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), ErrNotFound)
}

func TestRepositoryDeleteOlderThan(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	out := sampleOutput(t)
	now := time.Now()

	old := assessmentAt(t, out, now.AddDate(0, 0, -100))
	fresh := assessmentAt(t, out, now.AddDate(0, 0, -1))
	require.NoError(t, repo.Save(ctx, old))
	require.NoError(t, repo.Save(ctx, fresh))

	n, err := repo.DeleteOlderThan(ctx, now.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Get(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(t, IsTransient(sqlite3.Error{Code: sqlite3.ErrLocked}))
	assert.False(t, IsTransient(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, IsTransient(errors.New("boom")))
}

type cacheCounter struct{ hits, misses int }

func (c *cacheCounter) IncrementCacheHit()  { c.hits++ }
func (c *cacheCounter) IncrementCacheMiss() { c.misses++ }

func TestHistoryService(t *testing.T) {
	ctx := context.Background()
	counter := &cacheCounter{}
	svc := NewHistoryService(newTestRepo(t), cache.New[string, *Assessment](8, time.Minute, counter), nil)
	out := sampleOutput(t)

	a := NewAssessment(out)
	require.NoError(t, svc.Record(ctx, a))
	assert.Equal(t, "closed", svc.BreakerState())

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Equal(t, 1, counter.hits)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, counter.misses)
}

func TestHistoryServiceListLimits(t *testing.T) {
	ctx := context.Background()
	svc := NewHistoryService(newTestRepo(t), cache.New[string, *Assessment](8, time.Minute, nil), nil)
	out := sampleOutput(t)
	for i := 0; i < DefaultListLimit+5; i++ {
		require.NoError(t, svc.Record(ctx, NewAssessment(out)))
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultListLimit},
		{-3, DefaultListLimit},
		{5, 5},
		{MaxListLimit + 50, DefaultListLimit + 5},
	}
	for _, tt := range tests {
		list, err := svc.List(ctx, tt.limit)
		require.NoError(t, err)
		assert.Len(t, list, tt.want, "limit %d", tt.limit)
	}
}

func TestHistoryServiceRecordAfterClose(t *testing.T) {
	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	svc := NewHistoryService(NewRepository(db), cache.New[string, *Assessment](8, time.Minute, nil), nil)
	require.NoError(t, db.Close())

	assert.Error(t, svc.Record(context.Background(), NewAssessment(sampleOutput(t))))
}
