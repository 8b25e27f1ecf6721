package v1

import (
	"time"

	"github.com/google/uuid"
)

// CandidateResponse DTO с выбранной службой поддержки
// @Description Выбранная для обращения служба поддержки
type CandidateResponse struct {
	ServiceID   uuid.UUID  `json:"service_id"`
	ProviderID  *uuid.UUID `json:"provider_id,omitempty"`
	ServiceName string     `json:"service_name"`
	Category    string     `json:"category"`
	Score       int        `json:"score"`
	// DistanceKm отсутствует, если у обращения или службы нет координат
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// MatchResponse DTO сохраненного совпадения
// @Description Сохраненное совпадение обращения и службы
type MatchResponse struct {
	ID          uuid.UUID `json:"id"`
	ReportID    uuid.UUID `json:"report_id"`
	ServiceID   uuid.UUID `json:"service_id"`
	Score       int       `json:"score"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SweepResponse DTO с итогами прохода
// @Description Итоги прохода по несопоставленным обращениям
type SweepResponse struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ListMatchesQuery - параметры запроса списка совпадений
type ListMatchesQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=pending accepted rejected completed"`
}
