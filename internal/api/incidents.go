package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shenikar/bear_coordination/internal/models"
)

// ReportIncident создает инцидент и возвращает присвоенный сервером id
func (c *Client) ReportIncident(ctx context.Context, rec *models.IncidentRecord) (string, error) {
	var resp incidentEnvelope
	if err := c.do(ctx, http.MethodPost, "/incidents", toReportRequest(rec), &resp); err != nil {
		return "", err
	}
	if resp.Incident == nil || resp.Incident.ID == "" {
		return "", fmt.Errorf("api: report incident: response without incident id")
	}
	return resp.Incident.ID, nil
}

// UpdateIncidentStatus меняет статус инцидента на бэкенде
func (c *Client) UpdateIncidentStatus(ctx context.Context, id string, status models.IncidentStatus) (*models.IncidentSummary, error) {
	var resp incidentEnvelope
	if err := c.do(ctx, http.MethodPut, incidentPath(id, "status"), statusRequest{Status: status.String()}, &resp); err != nil {
		return nil, err
	}
	if resp.Incident == nil {
		return nil, nil
	}
	summary := resp.Incident.toSummary()
	return &summary, nil
}

// GetIncident возвращает инцидент по id
func (c *Client) GetIncident(ctx context.Context, id string) (*models.IncidentSummary, error) {
	var dto incidentDTO
	if err := c.do(ctx, http.MethodGet, incidentPath(id), nil, &dto); err != nil {
		return nil, err
	}
	summary := dto.toSummary()
	return &summary, nil
}

// ListIncidents возвращает инциденты, видимые спасателю
func (c *Client) ListIncidents(ctx context.Context) ([]models.IncidentSummary, error) {
	var dtos []incidentDTO
	if err := c.do(ctx, http.MethodGet, "/incidents", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]models.IncidentSummary, 0, len(dtos))
	for i := range dtos {
		out = append(out, dtos[i].toSummary())
	}
	return out, nil
}

// MyActiveIncident возвращает активный инцидент текущего пользователя или nil
func (c *Client) MyActiveIncident(ctx context.Context) (*models.IncidentSummary, error) {
	var dto incidentDTO
	err := c.do(ctx, http.MethodGet, "/incidents/my-active", nil, &dto)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if dto.ID == "" {
		return nil, nil
	}
	summary := dto.toSummary()
	return &summary, nil
}

// ChatHistory возвращает сообщения инцидента в хронологическом порядке
func (c *Client) ChatHistory(ctx context.Context, incidentID string) ([]models.ChatMessage, error) {
	var dtos []chatMessageDTO
	if err := c.do(ctx, http.MethodGet, incidentPath(incidentID, "messages"), nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]models.ChatMessage, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, models.ChatMessage{
			ID:         d.MessageID,
			IncidentID: incidentID,
			SenderID:   d.SenderID,
			SenderName: d.SenderName,
			Content:    d.Content,
			SentAt:     d.Timestamp,
		})
	}
	return out, nil
}

// VerificationStatus возвращает статус проверки документов
func (c *Client) VerificationStatus(ctx context.Context) (*Verification, error) {
	var dto verificationDTO
	if err := c.do(ctx, http.MethodGet, "/verification/status", nil, &dto); err != nil {
		return nil, err
	}
	v := &Verification{
		VerifiedAt:      dto.VerifiedAt,
		RejectionReason: dto.RejectionReason,
	}
	if dto.VerificationStatus != nil {
		v.Status = *dto.VerificationStatus
	}
	return v, nil
}
