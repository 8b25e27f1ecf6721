package models

import (
	"strings"

	"github.com/google/uuid"
)

// ProviderProfile - проекция профиля владельца службы, только для чтения
type ProviderProfile struct {
	ID                uuid.UUID `json:"id"`
	FirstName         string    `json:"first_name"`
	Phone             string    `json:"phone"`
	ProfessionalTitle string    `json:"professional_title"`
	Email             string    `json:"email,omitempty"`
}

// IsVerified - профиль считается подтвержденным, если заполнены имя, телефон и должность
func (p *ProviderProfile) IsVerified() bool {
	return strings.TrimSpace(p.FirstName) != "" &&
		strings.TrimSpace(p.Phone) != "" &&
		strings.TrimSpace(p.ProfessionalTitle) != ""
}
