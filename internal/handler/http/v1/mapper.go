package v1

import (
	"math"

	"github.com/shenikar/support_matching/internal/models"
)

// CandidateToResponse преобразует кандидата в DTO; бесконечная дистанция не сериализуется в JSON
func CandidateToResponse(c models.Candidate) CandidateResponse {
	resp := CandidateResponse{
		ServiceID:   c.Service.ID,
		ProviderID:  c.Service.ProviderID,
		ServiceName: c.Service.DisplayName(),
		Category:    c.Service.Category,
		Score:       c.Score,
	}
	if !math.IsInf(c.DistanceKm, 0) && !math.IsNaN(c.DistanceKm) {
		d := math.Round(c.DistanceKm*100) / 100
		resp.DistanceKm = &d
	}
	return resp
}

func CandidatesToResponses(candidates []models.Candidate) []CandidateResponse {
	responses := make([]CandidateResponse, len(candidates))
	for i, c := range candidates {
		responses[i] = CandidateToResponse(c)
	}
	return responses
}

func ModelToMatchResponse(m *models.Match) *MatchResponse {
	return &MatchResponse{
		ID:          m.ID,
		ReportID:    m.ReportID,
		ServiceID:   m.ServiceID,
		Score:       m.Score,
		Status:      string(m.Status),
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ModelsToMatchResponses преобразует слайс моделей в слайс DTO
func ModelsToMatchResponses(matches []*models.Match) []*MatchResponse {
	responses := make([]*MatchResponse, len(matches))
	for i, m := range matches {
		responses[i] = ModelToMatchResponse(m)
	}
	return responses
}

func SweepResultToResponse(r models.SweepResult) SweepResponse {
	return SweepResponse{
		Attempted: r.Attempted,
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
	}
}
