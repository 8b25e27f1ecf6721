package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Urgency - степень срочности обращения
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// MatchStatus - статус подбора, которым дальше управляет внешний процесс принятия
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusAccepted  MatchStatus = "accepted"
	MatchStatusRejected  MatchStatus = "rejected"
	MatchStatusCompleted MatchStatus = "completed"
)

// Report представляет обращение о насилии, для которого подбираются службы поддержки
type Report struct {
	ID               uuid.UUID   `json:"id"`
	RequiredServices []string    `json:"required_services"`
	Urgency          Urgency     `json:"urgency"`
	Latitude         *float64    `json:"latitude,omitempty"`
	Longitude        *float64    `json:"longitude,omitempty"`
	Description      string      `json:"description"`
	MatchStatus      MatchStatus `json:"match_status"`
	IsMatched        bool        `json:"ismatched"`
	SubmitterID      *uuid.UUID  `json:"submitter_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// RequiresCategory проверяет, входит ли категория в список требуемых услуг
func (r *Report) RequiresCategory(category string) bool {
	category = strings.TrimSpace(category)
	if category == "" {
		return false
	}
	for _, required := range r.RequiredServices {
		if strings.TrimSpace(required) == category {
			return true
		}
	}
	return false
}
