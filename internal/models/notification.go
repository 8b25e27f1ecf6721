package models

import "github.com/google/uuid"

const NotificationTypeMatchFound = "match_found"

// Notification - уведомление пользователю, доставляется вебхуком в сервис уведомлений
type Notification struct {
	UserID    uuid.UUID         `json:"user_id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Link      string            `json:"link"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	SendEmail bool              `json:"send_email"`
	EmailHTML string            `json:"email_html,omitempty"`
}
