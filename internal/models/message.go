package models

import "time"

// ChatMessage - сообщение чата инцидента. Локально не хранится.
type ChatMessage struct {
	ID         string    `json:"id,omitempty"`
	IncidentID string    `json:"incident_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at,omitempty"`
}
