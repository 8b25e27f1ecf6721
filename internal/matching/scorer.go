package matching

import (
	"math"
	"strings"

	"github.com/shenikar/support_matching/internal/models"
)

const (
	BaseScore         = 60.0
	MaxDistanceScore  = 20.0
	AvailabilityBonus = 10.0
)

var availabilityKeywords = []string{"24/7", "open", "available", "always"}

// Score вычисляет итоговый балл кандидата. Вызывается только для служб,
// категория которых входит в требования обращения.
func Score(report *models.Report, service *models.SupportService, distanceKm float64) int {
	raw := BaseScore + DistanceScore(distanceKm, service.CoverageRadius()) + AvailabilityScore(service.Availability)
	// множитель берется в процентах: 90*1.15 в float64 дает 103.4999..., а не 103.5
	return int(math.Round(raw * float64(urgencyPercent(report.Urgency)) / 100))
}

// DistanceScore: 20 в точке службы, линейно до 0 на границе радиуса покрытия
func DistanceScore(distanceKm, radiusKm float64) float64 {
	if math.IsInf(distanceKm, 0) || math.IsNaN(distanceKm) {
		return 0
	}
	if radiusKm <= 0 {
		radiusKm = models.DefaultCoverageRadiusKm
	}
	return math.Max(0, MaxDistanceScore*(1-math.Min(distanceKm/radiusKm, 1)))
}

func AvailabilityScore(availability string) float64 {
	text := strings.ToLower(availability)
	for _, kw := range availabilityKeywords {
		if strings.Contains(text, kw) {
			return AvailabilityBonus
		}
	}
	return 0
}

// UrgencyMultiplier - неизвестная или пустая срочность считается низкой
func UrgencyMultiplier(urgency models.Urgency) float64 {
	return float64(urgencyPercent(urgency)) / 100
}

func urgencyPercent(urgency models.Urgency) int {
	switch models.Urgency(strings.ToLower(strings.TrimSpace(string(urgency)))) {
	case models.UrgencyHigh:
		return 115
	case models.UrgencyMedium:
		return 105
	default:
		return 100
	}
}
