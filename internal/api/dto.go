package api

import (
	"strings"
	"time"

	"github.com/shenikar/bear_coordination/internal/models"
)

type messageResponse struct {
	Message string `json:"message"`
}

type locationDTO struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// reportRequest - тело POST /incidents
type reportRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Location    locationDTO `json:"location"`
	Type        string      `json:"type"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// incidentDTO - инцидент в ответах бэкенда
type incidentDTO struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Contact     string      `json:"contact"`
	Location    locationDTO `json:"location"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type incidentEnvelope struct {
	Message  string       `json:"message"`
	Incident *incidentDTO `json:"incident"`
}

type chatMessageDTO struct {
	MessageID  string    `json:"messageId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

type verificationDTO struct {
	VerificationStatus *string    `json:"verificationStatus"`
	VerifiedAt         *time.Time `json:"verifiedAt"`
	RejectionReason    string     `json:"rejectionReason"`
}

// Verification - статус проверки документов пользователя
type Verification struct {
	// Status пуст, если документы еще не отправлялись
	Status          string     `json:"status"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

func (d *incidentDTO) toSummary() models.IncidentSummary {
	status, ok := models.ParseIncidentStatus(d.Status)
	if !ok {
		status = models.StatusPending
	}
	typ := d.Type
	if parsed, err := models.ParseIncidentType(d.Type); err == nil {
		typ = string(parsed)
	}
	return models.IncidentSummary{
		ID:          d.ID,
		Name:        d.Name,
		Type:        typ,
		Description: d.Description,
		Contact:     d.Contact,
		Location: models.LocationSample{
			Latitude:  d.Location.Latitude,
			Longitude: d.Location.Longitude,
		},
		Status:    status,
		CreatedAt: d.CreatedAt,
	}
}

func toReportRequest(rec *models.IncidentRecord) reportRequest {
	req := reportRequest{
		Name: rec.Name,
		Location: locationDTO{
			Latitude:  rec.Location.Latitude,
			Longitude: rec.Location.Longitude,
		},
		Type: strings.ToLower(string(rec.Type)),
	}
	if rec.Description != nil {
		req.Description = *rec.Description
	}
	return req
}
