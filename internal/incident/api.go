package incident

import (
	"context"

	"github.com/shenikar/bear_coordination/internal/models"
)

// API - вызовы REST бэкенда, нужные трекеру
type API interface {
	ReportIncident(ctx context.Context, rec *models.IncidentRecord) (string, error)
	UpdateIncidentStatus(ctx context.Context, id string, status models.IncidentStatus) (*models.IncidentSummary, error)
	GetIncident(ctx context.Context, id string) (*models.IncidentSummary, error)
}

// Lister загружает список активных инцидентов для входящих
type Lister interface {
	ListIncidents(ctx context.Context) ([]models.IncidentSummary, error)
}
