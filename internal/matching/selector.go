package matching

import (
	"sort"

	"github.com/shenikar/support_matching/internal/models"
)

// DefaultMatchLimit - сколько служб максимум назначается на одно обращение
const DefaultMatchLimit = 5

// SelectTop сортирует кандидатов по баллу (по убыванию), при равенстве - по расстоянию,
// и оставляет первые limit. limit вне 1..DefaultMatchLimit приводится к DefaultMatchLimit.
// Исходный слайс не изменяется.
func SelectTop(candidates []models.Candidate, limit int) []models.Candidate {
	if limit <= 0 || limit > DefaultMatchLimit {
		limit = DefaultMatchLimit
	}

	sorted := make([]models.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].DistanceKm < sorted[j].DistanceKm
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
