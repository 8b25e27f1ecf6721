package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/support_matching/internal/models"
	"github.com/shenikar/support_matching/internal/service"
)

type ReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) service.ReportRepository {
	return &ReportRepository{db: db}
}

// GetByID возвращает обращение по его UUID
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report := &models.Report{}
	query := `
		SELECT
			id,
			required_services,
			urgency,
			latitude,
			longitude,
			description,
			match_status,
			ismatched,
			submitter_id,
			created_at,
			updated_at
		FROM reports
		WHERE id = $1;
	`
	var urgency, matchStatus *string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.RequiredServices,
		&urgency,
		&report.Latitude,
		&report.Longitude,
		&report.Description,
		&matchStatus,
		&report.IsMatched,
		&report.SubmitterID,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report with id %s: %w", id, models.ErrReportNotFound)
		}
		return nil, fmt.Errorf("failed to get report by id: %w", err)
	}

	// пустые значения в базе допустимы, подбор трактует их как low/pending
	if urgency != nil {
		report.Urgency = models.Urgency(*urgency)
	}
	report.MatchStatus = models.MatchStatusPending
	if matchStatus != nil && *matchStatus != "" {
		report.MatchStatus = models.MatchStatus(*matchStatus)
	}
	return report, nil
}

// MarkMatched выставляет ismatched и match_status только у еще не сопоставленного обращения.
// Количество затронутых строк показывает, кто из конкурирующих вызовов выиграл.
func (r *ReportRepository) MarkMatched(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE reports SET
			ismatched = TRUE,
			match_status = 'pending',
			updated_at = NOW()
		WHERE id = $1 AND ismatched = FALSE;
	`
	cmdTag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark report as matched: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// ListUnmatched возвращает идентификаторы всех несопоставленных обращений, старые первыми
func (r *ReportRepository) ListUnmatched(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM reports
		WHERE ismatched = FALSE
		ORDER BY created_at ASC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched reports: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan unmatched report id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in ListUnmatched: %w", err)
	}
	return ids, nil
}
