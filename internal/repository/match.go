package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/support_matching/internal/models"
	"github.com/shenikar/support_matching/internal/service"
)

type MatchRepository struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) service.MatchRepository {
	return &MatchRepository{db: db}
}

// InsertBatch вставляет совпадения в одной транзакции. Уже существующие пары
// (report_id, service_id) пропускаются, поэтому повтор после сбоя безопасен.
func (r *MatchRepository) InsertBatch(ctx context.Context, matches []models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	query := `
		INSERT INTO matches (id, report_id, service_id, score, status, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (report_id, service_id) DO NOTHING;
	`

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, m := range matches {
			batch.Queue(query,
				m.ID,
				m.ReportID,
				m.ServiceID,
				m.Score,
				string(m.Status),
				m.Description,
				m.CreatedAt,
				m.UpdatedAt,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to insert matches: %w", err)
	}
	return nil
}

func (r *MatchRepository) CountByReport(ctx context.Context, reportID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE report_id = $1;`
	var count int
	if err := r.db.QueryRow(ctx, query, reportID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

// ListByReport возвращает совпадения обращения, лучшие первыми. Пустой status - без фильтра.
func (r *MatchRepository) ListByReport(ctx context.Context, reportID uuid.UUID, status models.MatchStatus) ([]*models.Match, error) {
	query := `
		SELECT
			id,
			report_id,
			service_id,
			score,
			status,
			description,
			created_at,
			updated_at
		FROM matches
		WHERE report_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY score DESC, created_at ASC;
	`
	rows, err := r.db.Query(ctx, query, reportID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m := &models.Match{}
		var st string
		err := rows.Scan(
			&m.ID,
			&m.ReportID,
			&m.ServiceID,
			&m.Score,
			&st,
			&m.Description,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		m.Status = models.MatchStatus(st)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in ListByReport: %w", err)
	}
	return matches, nil
}
