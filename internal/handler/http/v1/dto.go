package v1

import "time"

// ReportIncidentRequest DTO для сигнала жителя
// @Description DTO для сигнала жителя. Без координат берется последняя точка стримера.
type ReportIncidentRequest struct {
	Type            string   `json:"type" validate:"required,oneof=Fire Police Barangay Hospital fire police barangay hospital"`
	ReporterName    string   `json:"reporter_name,omitempty" validate:"max=255"`
	ReporterContact string   `json:"reporter_contact,omitempty" validate:"max=255"`
	Description     string   `json:"description,omitempty" validate:"max=2000"`
	Latitude        *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// ChangeStatusRequest DTO для смены статуса отслеживаемого инцидента
// @Description DTO для смены статуса отслеживаемого инцидента
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// LocationFixRequest DTO координаты устройства
// @Description DTO координаты устройства
type LocationFixRequest struct {
	Latitude   *float64   `json:"latitude" validate:"required,latitude"`
	Longitude  *float64   `json:"longitude" validate:"required,longitude"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}

// SendMessageRequest DTO сообщения чата
// @Description DTO сообщения чата
type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	Name            string    `json:"name"`
	ReporterName    string    `json:"reporter_name,omitempty"`
	ReporterContact string    `json:"reporter_contact,omitempty"`
	Description     string    `json:"description,omitempty"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Status          string    `json:"status"`
	ChatAvailable   bool      `json:"chat_available"`
	CreatedAt       time.Time `json:"created_at"`
}

// InboxItemResponse DTO строки входящих
// @Description DTO строки входящих
type InboxItemResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Contact     string    `json:"contact,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// LocationResponse DTO координаты
// @Description DTO координаты
type LocationResponse struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CapturedAt time.Time `json:"captured_at"`
}

// RouteResponse DTO маршрута
// @Description DTO маршрута до инцидента
type RouteResponse struct {
	Points          []LocationResponse `json:"points"`
	DistanceMeters  float64            `json:"distance_meters"`
	DurationSeconds float64            `json:"duration_seconds"`
}

// ChatMessageResponse DTO сообщения чата
// @Description DTO сообщения чата
type ChatMessageResponse struct {
	ID         string    `json:"id,omitempty"`
	IncidentID string    `json:"incident_id,omitempty"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at,omitempty"`
}

// VerificationResponse DTO статуса проверки аккаунта
// @Description DTO статуса проверки аккаунта
type VerificationResponse struct {
	Status          string     `json:"status"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

// TransitionErrorResponse DTO отклоненного перехода
// @Description DTO отклоненного перехода; клиенту стоит перечитать инцидент
type TransitionErrorResponse struct {
	Error string `json:"error"`
	From  string `json:"from"`
	To    string `json:"to"`
}
