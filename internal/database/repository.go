package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when no assessment has the requested ID.
var ErrNotFound = errors.New("assessment not found")

// Repository performs the assessment queries.
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Save(ctx context.Context, a *Assessment) error {
	stmt, err := r.db.GetPreparedStatement(stmtInsert)
	if err != nil {
		return err
	}
	result, err := json.Marshal(a.Result)
	if err != nil {
		return eris.Wrap(err, "database: encode assessment")
	}

	_, err = stmt.ExecContext(ctx,
		a.ID, a.CreatedAt.UnixMilli(), a.Result.Level, a.Result.Score,
		a.Result.Confidence, a.Result.RecommendRetest, string(result),
	)
	if err != nil {
		return eris.Wrap(err, "database: insert assessment")
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Assessment, error) {
	stmt, err := r.db.GetPreparedStatement(stmtGet)
	if err != nil {
		return nil, err
	}

	var (
		a         Assessment
		createdAt int64
		result    string
	)
	err = stmt.QueryRowContext(ctx, id).Scan(&a.ID, &createdAt, &result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "database: query assessment")
	}
	if err := json.Unmarshal([]byte(result), &a.Result); err != nil {
		return nil, eris.Wrap(err, "database: decode assessment")
	}
	a.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &a, nil
}

// ListRecent returns up to limit summaries, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]AssessmentSummary, error) {
	stmt, err := r.db.GetPreparedStatement(stmtList)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, eris.Wrap(err, "database: list assessments")
	}
	defer rows.Close()

	summaries := make([]AssessmentSummary, 0, limit)
	for rows.Next() {
		var (
			s         AssessmentSummary
			createdAt int64
		)
		if err := rows.Scan(&s.ID, &createdAt, &s.RiskLevel, &s.CompositeScore, &s.Confidence, &s.RecommendRetest); err != nil {
			return nil, eris.Wrap(err, "database: scan assessment")
		}
		s.CreatedAt = time.UnixMilli(createdAt).UTC()
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "database: iterate assessments")
	}
	return summaries, nil
}

// Delete removes one assessment. A missing ID yields ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id string) error {
	stmt, err := r.db.GetPreparedStatement(stmtDelete)
	if err != nil {
		return err
	}
	res, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return eris.Wrap(err, "database: delete assessment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOlderThan removes every assessment created before cutoff and
// returns how many were removed.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	stmt, err := r.db.GetPreparedStatement(stmtPurge)
	if err != nil {
		return 0, err
	}
	res, err := stmt.ExecContext(ctx, cutoff.UnixMilli())
	if err != nil {
		return 0, eris.Wrap(err, "database: purge assessments")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "database: purge row count")
	}
	return n, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	stmt, err := r.db.GetPreparedStatement(stmtCount)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := stmt.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "database: count assessments")
	}
	return n, nil
}
