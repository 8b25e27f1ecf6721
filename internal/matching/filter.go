package matching

import (
	"github.com/google/uuid"
	"github.com/shenikar/support_matching/internal/models"
)

// FilterVerified оставляет только службы, чей владелец есть в profiles и прошел проверку.
// Флаг Active здесь не учитывается.
func FilterVerified(services []models.SupportService, profiles map[uuid.UUID]models.ProviderProfile) []models.SupportService {
	verified := make([]models.SupportService, 0, len(services))
	for _, svc := range services {
		if svc.ProviderID == nil {
			continue
		}
		profile, ok := profiles[*svc.ProviderID]
		if !ok || !profile.IsVerified() {
			continue
		}
		verified = append(verified, svc)
	}
	return verified
}

// ProviderIDs собирает уникальные идентификаторы владельцев служб
func ProviderIDs(services []models.SupportService) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(services))
	ids := make([]uuid.UUID, 0, len(services))
	for _, svc := range services {
		if svc.ProviderID == nil {
			continue
		}
		if _, ok := seen[*svc.ProviderID]; ok {
			continue
		}
		seen[*svc.ProviderID] = struct{}{}
		ids = append(ids, *svc.ProviderID)
	}
	return ids
}
