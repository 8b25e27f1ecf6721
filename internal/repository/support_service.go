package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/support_matching/internal/models"
	"github.com/shenikar/support_matching/internal/service"
)

type SupportServiceRepository struct {
	db *pgxpool.Pool
}

func NewSupportServiceRepository(db *pgxpool.Pool) service.SupportServiceRepository {
	return &SupportServiceRepository{db: db}
}

// ListAll возвращает все службы поддержки. Активность не фильтруется:
// единственный фильтр подбора - подтвержденность владельца.
func (r *SupportServiceRepository) ListAll(ctx context.Context) ([]models.SupportService, error) {
	query := `
		SELECT
			id,
			provider_id,
			name,
			category,
			latitude,
			longitude,
			coverage_area_radius,
			availability,
			active
		FROM support_services;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list support services: %w", err)
	}
	defer rows.Close()

	services := make([]models.SupportService, 0)
	for rows.Next() {
		var svc models.SupportService
		var availability *string
		err := rows.Scan(
			&svc.ID,
			&svc.ProviderID,
			&svc.Name,
			&svc.Category,
			&svc.Latitude,
			&svc.Longitude,
			&svc.CoverageRadiusKm,
			&availability,
			&svc.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan support service row: %w", err)
		}
		if availability != nil {
			svc.Availability = *availability
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in ListAll: %w", err)
	}
	return services, nil
}
