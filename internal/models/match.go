package models

import (
	"time"

	"github.com/google/uuid"
)

// Match - сохраненный результат подбора одной службы для обращения
type Match struct {
	ID          uuid.UUID   `json:"id"`
	ReportID    uuid.UUID   `json:"report_id"`
	ServiceID   uuid.UUID   `json:"service_id"`
	Score       int         `json:"score"`
	Status      MatchStatus `json:"status"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Candidate существует только в рамках одного запуска подбора и не сохраняется.
// DistanceKm равен +Inf, если у обращения или службы нет координат.
type Candidate struct {
	Service    SupportService
	DistanceKm float64
	Score      int
}

// SweepResult - итог прохода по несопоставленным обращениям
type SweepResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}
