package privacy

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// History is the subset of the assessment store the privacy service needs.
type History interface {
	Delete(ctx context.Context, id string) error
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeRecorder receives purge counts. *monitoring.Metrics satisfies it.
type PurgeRecorder interface {
	RecordPurged(n int64)
}

// Service enforces the retention window and handles erasure requests.
type Service struct {
	history       History
	recorder      PurgeRecorder
	retentionDays int
	now           func() time.Time
}

func NewService(history History, recorder PurgeRecorder, retentionDays int) *Service {
	return &Service{
		history:       history,
		recorder:      recorder,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// Cutoff is the creation time before which assessments are expired.
func (s *Service) Cutoff() time.Time {
	return s.now().AddDate(0, 0, -s.retentionDays)
}

// PurgeExpired deletes every assessment older than the retention window.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := s.Cutoff()
	n, err := s.history.Purge(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if s.recorder != nil {
		s.recorder.RecordPurged(n)
	}
	zap.L().Info("Retention purge completed",
		zap.Time("cutoff", cutoff),
		zap.Int64("assessments_deleted", n),
	)
	return n, nil
}

// Run purges once immediately and then every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
			zap.L().Warn("Retention purge failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Erase deletes one assessment on request.
func (s *Service) Erase(ctx context.Context, id string) error {
	if err := s.history.Delete(ctx, id); err != nil {
		return err
	}
	zap.L().Info("Assessment erased", zap.String("assessment_id", redact(id)))
	return nil
}

// RetentionInfo describes the data handling policy.
func (s *Service) RetentionInfo() map[string]any {
	return map[string]any{
		"assessment_retention_days": s.retentionDays,
		"raw_inputs_stored":         false,
		"deletion":                  "DELETE /api/assessments/{id}",
	}
}

func redact(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
