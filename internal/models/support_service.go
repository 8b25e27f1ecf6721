package models

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultCoverageRadiusKm используется, когда служба не указала радиус покрытия
const DefaultCoverageRadiusKm = 50.0

// SupportService - услуга, которую предлагает провайдер
type SupportService struct {
	ID               uuid.UUID  `json:"id"`
	ProviderID       *uuid.UUID `json:"provider_id,omitempty"`
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	CoverageRadiusKm *float64   `json:"coverage_area_radius,omitempty"`
	Availability     string     `json:"availability"`
	Active           bool       `json:"active"`
}

// CoverageRadius возвращает радиус покрытия в км с учетом значения по умолчанию
func (s *SupportService) CoverageRadius() float64 {
	if s.CoverageRadiusKm == nil || *s.CoverageRadiusKm <= 0 {
		return DefaultCoverageRadiusKm
	}
	return *s.CoverageRadiusKm
}

// DisplayName возвращает название услуги для уведомлений
func (s *SupportService) DisplayName() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return s.Category
}
