package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/support_matching/internal/config"
	"github.com/shenikar/support_matching/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=sweeper.go -destination=mocks/mock_sweeper.go -package=mocks

// SweepRunner запускает один проход по несопоставленным обращениям
type SweepRunner interface {
	SweepUnmatched(ctx context.Context) (models.SweepResult, error)
}

// Sweeper - периодический проход по обращениям, которые так и не были сопоставлены
type Sweeper struct {
	reports ReportRepository
	matcher MatchingService
	logger  *logrus.Logger
	cfg     *config.Config
}

func NewSweeper(reports ReportRepository, matcher MatchingService, logger *logrus.Logger, cfg *config.Config) *Sweeper {
	return &Sweeper{
		reports: reports,
		matcher: matcher,
		logger:  logger,
		cfg:     cfg,
	}
}

// SweepUnmatched запускает подбор для каждого несопоставленного обращения
// не более чем в SweepConcurrency горутинах. Ошибка одного обращения не прерывает проход;
// ошибка возвращается, только если не удалось получить список обращений.
func (s *Sweeper) SweepUnmatched(ctx context.Context) (models.SweepResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "sweeper",
		"method":  "SweepUnmatched",
	})

	ids, err := s.reports.ListUnmatched(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list unmatched reports")
		return models.SweepResult{}, fmt.Errorf("service: could not list unmatched reports: %w", err)
	}

	result := models.SweepResult{Attempted: len(ids)}
	if len(ids) == 0 {
		log.Debug("No unmatched reports")
		return result, nil
	}
	log.WithField("unmatched", len(ids)).Info("Starting reconciliation sweep")

	limit := s.cfg.SweepConcurrency
	if limit < 1 {
		limit = 1
	}

	var (
		mu       sync.Mutex
		g        errgroup.Group
		noResult int
	)
	g.SetLimit(limit)

	for _, id := range ids {
		g.Go(func() error {
			selected, err := s.matchOne(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Succeeded++
				if len(selected) == 0 {
					noResult++
				}
			case isNoop(err):
				result.Succeeded++
			default:
				result.Failed++
				entry := log.WithError(err).WithField("report_id", id)
				if IsDanglingMatch(err) {
					entry.WithField("reconcile_required", true).Error("Sweep left report matched without match rows")
				} else {
					entry.Warn("Failed to match report during sweep")
				}
			}
			// ошибки собираются в result, группа не должна отменяться
			return nil
		})
	}
	_ = g.Wait()

	log.WithFields(logrus.Fields{
		"attempted":     result.Attempted,
		"succeeded":     result.Succeeded,
		"failed":        result.Failed,
		"no_candidates": noResult,
	}).Info("Reconciliation sweep finished")

	return result, nil
}

// matchOne ограничивает время подбора одного обращения, чтобы медленный запрос не занимал слот пула
func (s *Sweeper) matchOne(ctx context.Context, id uuid.UUID) ([]models.Candidate, error) {
	if s.cfg.ReportMatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ReportMatchTimeout)
		defer cancel()
	}
	return s.matcher.MatchReport(ctx, id)
}

// Start запускает проходы каждые SweepInterval, первый - сразу. Нулевой интервал отключает фоновые проходы.
func (s *Sweeper) Start(ctx context.Context) {
	if s.cfg.SweepInterval <= 0 {
		s.logger.Info("Reconciliation sweeper disabled")
		return
	}

	s.logger.WithField("interval", s.cfg.SweepInterval).Info("Starting reconciliation sweeper...")
	go func() {
		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			if ctx.Err() != nil {
				s.logger.Info("Stopping reconciliation sweeper.")
				return
			}
			if _, err := s.SweepUnmatched(ctx); err != nil {
				s.logger.WithError(err).Error("Reconciliation sweep failed")
			}

			select {
			case <-ctx.Done():
				s.logger.Info("Stopping reconciliation sweeper.")
				return
			case <-ticker.C:
			}
		}
	}()
}
