package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/support_matching/internal/config"
	"github.com/shenikar/support_matching/internal/geo"
	"github.com/shenikar/support_matching/internal/matching"
	"github.com/shenikar/support_matching/internal/models"
	"github.com/shenikar/support_matching/internal/webhook"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=matching.go -destination=mocks/mock_matching.go -package=mocks

// ReportRepository определяет контракт для работы с обращениями
type ReportRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	// MarkMatched помечает обращение сопоставленным, только если оно еще не было помечено.
	// Возвращает true, если именно этот вызов изменил строку.
	MarkMatched(ctx context.Context, id uuid.UUID) (bool, error)
	ListUnmatched(ctx context.Context) ([]uuid.UUID, error)
}

type SupportServiceRepository interface {
	ListAll(ctx context.Context) ([]models.SupportService, error)
}

type ProfileRepository interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ProviderProfile, error)
}

// MatchRepository - InsertBatch должен быть идемпотентным по паре (report_id, service_id)
type MatchRepository interface {
	InsertBatch(ctx context.Context, matches []models.Match) error
	CountByReport(ctx context.Context, reportID uuid.UUID) (int, error)
	ListByReport(ctx context.Context, reportID uuid.UUID, status models.MatchStatus) ([]*models.Match, error)
}

// ReportLocker - взаимное исключение подбора для одного обращения между процессами
type ReportLocker interface {
	TryLock(ctx context.Context, reportID uuid.UUID) (token string, acquired bool, err error)
	Unlock(ctx context.Context, reportID uuid.UUID, token string) error
}

// MatchingService определяет контракт подбора служб поддержки для обращений
type MatchingService interface {
	MatchReport(ctx context.Context, reportID uuid.UUID) ([]models.Candidate, error)
	ListMatches(ctx context.Context, reportID uuid.UUID, status models.MatchStatus) ([]*models.Match, error)
}

// Repositories собирает хранилища, которые нужны сервису подбора
type Repositories struct {
	Reports  ReportRepository
	Services SupportServiceRepository
	Profiles ProfileRepository
	Matches  MatchRepository
	Locker   ReportLocker
}

type matchingService struct {
	repos      Repositories
	dispatcher webhook.NotificationDispatcher
	logger     *logrus.Logger
	cfg        *config.Config
	now        func() time.Time
}

func NewMatchingService(repos Repositories, dispatcher webhook.NotificationDispatcher, logger *logrus.Logger, cfg *config.Config) MatchingService {
	return &matchingService{
		repos:      repos,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// MatchReport подбирает до MatchLimit подтвержденных служб для обращения,
// сохраняет результат и рассылает уведомления.
// Пустой результат без ошибки означает, что подходящих служб нет и обращение осталось
// несопоставленным до следующего прохода.
func (s *matchingService) MatchReport(ctx context.Context, reportID uuid.UUID) ([]models.Candidate, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "matching",
		"method":    "MatchReport",
		"report_id": reportID,
	})
	log.Info("Attempting to match report")

	release, held, err := s.lock(ctx, reportID, log)
	if err != nil {
		return nil, err
	}
	defer release()

	report, err := s.repos.Reports.GetByID(ctx, reportID)
	if err != nil {
		log.WithError(err).Error("Failed to get report from repository")
		return nil, &FetchError{Resource: "report", Err: err}
	}

	services, err := s.repos.Services.ListAll(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list support services")
		return nil, &FetchError{Resource: "support services", Err: err}
	}

	profiles, err := s.repos.Profiles.GetByIDs(ctx, matching.ProviderIDs(services))
	if err != nil {
		log.WithError(err).Error("Failed to get provider profiles")
		return nil, &FetchError{Resource: "provider profiles", Err: err}
	}

	// фильтр подтверждения всегда до подсчета баллов
	verified := matching.FilterVerified(services, profiles)

	candidates := make([]models.Candidate, 0, len(verified))
	for i := range verified {
		svc := verified[i]
		if !report.RequiresCategory(svc.Category) {
			continue
		}
		distance := geo.DistanceBetween(report.Latitude, report.Longitude, svc.Latitude, svc.Longitude)
		candidates = append(candidates, models.Candidate{
			Service:    svc,
			DistanceKm: distance,
			Score:      matching.Score(report, &svc, distance),
		})
	}

	selected := matching.SelectTop(candidates, s.cfg.MatchLimit)
	log = log.WithFields(logrus.Fields{
		"services_total":    len(services),
		"services_verified": len(verified),
		"candidates":        len(candidates),
		"selected":          len(selected),
	})
	if len(selected) == 0 {
		log.Info("No eligible verified services found, report stays unmatched")
		return selected, nil
	}

	if err := s.persist(ctx, report, selected, held, log); err != nil {
		return nil, err
	}

	s.notify(ctx, report, selected, log)

	log.WithField("top_score", selected[0].Score).Info("Report matched successfully")
	return selected, nil
}

// ListMatches возвращает сохраненные совпадения обращения, status может быть пустым
func (s *matchingService) ListMatches(ctx context.Context, reportID uuid.UUID, status models.MatchStatus) ([]*models.Match, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "matching",
		"method":    "ListMatches",
		"report_id": reportID,
	})

	matches, err := s.repos.Matches.ListByReport(ctx, reportID, status)
	if err != nil {
		log.WithError(err).Error("Failed to list matches from repository")
		return nil, fmt.Errorf("service: could not list matches: %w", err)
	}
	return matches, nil
}

// lock берет блокировку обращения. Если хранилище блокировок недоступно,
// подбор продолжается без нее (held=false): от двойной пометки защищает условный UPDATE в MarkMatched.
func (s *matchingService) lock(ctx context.Context, reportID uuid.UUID, log *logrus.Entry) (func(), bool, error) {
	noop := func() {}
	if s.repos.Locker == nil {
		return noop, false, nil
	}

	token, acquired, err := s.repos.Locker.TryLock(ctx, reportID)
	if err != nil {
		log.WithError(err).Warn("Failed to acquire report lock, continuing without it")
		return noop, false, nil
	}
	if !acquired {
		log.Info("Report is being matched by another worker")
		return nil, false, ErrMatchInProgress
	}

	return func() {
		// контекст запроса мог истечь, снимаем блокировку в отдельном
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.repos.Locker.Unlock(unlockCtx, reportID, token); err != nil {
			log.WithError(err).Warn("Failed to release report lock")
		}
	}, true, nil
}

// persist переводит обращение в matched/pending и записывает строки Match.
// Если обращение уже помечено, а строк нет (прошлый сбой между шагами),
// повторно вставляет только совпадения, не трогая обращение. Восстановление возможно
// только под блокировкой: без нее пустая таблица Match может означать, что победивший
// конкурент еще не успел вставить строки.
func (s *matchingService) persist(ctx context.Context, report *models.Report, selected []models.Candidate, held bool, log *logrus.Entry) error {
	flipped, err := s.repos.Reports.MarkMatched(ctx, report.ID)
	if err != nil {
		log.WithError(err).Error("Failed to mark report as matched")
		return &PersistenceError{Stage: StageReportUpdate, Err: err}
	}

	if !flipped {
		count, err := s.repos.Matches.CountByReport(ctx, report.ID)
		if err != nil {
			log.WithError(err).Error("Failed to count existing matches")
			return &FetchError{Resource: "existing matches", Err: err}
		}
		if count > 0 {
			log.WithField("existing_matches", count).Info("Report was already matched by another invocation")
			return ErrAlreadyMatched
		}
		if !held {
			log.Info("Report is flagged matched without match rows, leaving repair to a locked invocation")
			return ErrMatchInProgress
		}
		log.Warn("Report is flagged matched without match rows, repairing")
	}

	now := s.now().UTC()
	matches := make([]models.Match, 0, len(selected))
	for _, c := range selected {
		matches = append(matches, models.Match{
			ID:          uuid.New(),
			ReportID:    report.ID,
			ServiceID:   c.Service.ID,
			Score:       c.Score,
			Status:      models.MatchStatusPending,
			Description: report.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.repos.Matches.InsertBatch(ctx, matches); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"reconcile_required": true,
			"persist_stage":      StageMatchInsert,
		}).Error("Report marked matched but match rows were not written")
		return &PersistenceError{Stage: StageMatchInsert, Err: err}
	}

	report.IsMatched = true
	report.MatchStatus = models.MatchStatusPending
	return nil
}

// isNoop - результат, при котором проход по обращению считается успешным
func isNoop(err error) bool {
	return errors.Is(err, ErrAlreadyMatched) || errors.Is(err, ErrMatchInProgress)
}
