package v1

import (
	"github.com/shenikar/bear_coordination/internal/api"
	"github.com/shenikar/bear_coordination/internal/incident"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/shenikar/bear_coordination/internal/routing"
)

// DTOToReportRequest преобразует DTO сигнала в запрос трекера
func DTOToReportRequest(dto ReportIncidentRequest) (incident.ReportRequest, error) {
	incidentType, err := models.ParseIncidentType(dto.Type)
	if err != nil {
		return incident.ReportRequest{}, err
	}
	req := incident.ReportRequest{
		Type:            incidentType,
		ReporterName:    dto.ReporterName,
		ReporterContact: dto.ReporterContact,
		Description:     dto.Description,
	}
	if dto.Latitude != nil && dto.Longitude != nil {
		req.Location = models.LocationSample{Latitude: *dto.Latitude, Longitude: *dto.Longitude}
	}
	return req, nil
}

// DTOToLocationSample преобразует DTO координаты в модель
func DTOToLocationSample(dto LocationFixRequest) models.LocationSample {
	sample := models.LocationSample{Latitude: *dto.Latitude, Longitude: *dto.Longitude}
	if dto.CapturedAt != nil {
		sample.CapturedAt = dto.CapturedAt.UTC()
	}
	return sample
}

// ModelToIncidentResponse преобразует отслеживаемый инцидент в DTO для ответа
func ModelToIncidentResponse(rec models.IncidentRecord) *IncidentResponse {
	resp := &IncidentResponse{
		ID:              rec.ID,
		Type:            string(rec.Type),
		Name:            rec.Name,
		ReporterName:    rec.ReporterName,
		ReporterContact: rec.ReporterContact,
		Latitude:        rec.Location.Latitude,
		Longitude:       rec.Location.Longitude,
		Status:          rec.Status.String(),
		ChatAvailable:   rec.Status == models.StatusInProgress,
		CreatedAt:       rec.CreatedAt,
	}
	if rec.Description != nil {
		resp.Description = *rec.Description
	}
	return resp
}

// ModelsToInboxResponses преобразует входящие в слайс DTO
func ModelsToInboxResponses(list []models.IncidentSummary) []*InboxItemResponse {
	responses := make([]*InboxItemResponse, len(list))
	for i, s := range list {
		responses[i] = &InboxItemResponse{
			ID:          s.ID,
			Name:        s.Name,
			Type:        s.Type,
			Description: s.Description,
			Contact:     s.Contact,
			Latitude:    s.Location.Latitude,
			Longitude:   s.Location.Longitude,
			Status:      s.Status.String(),
			CreatedAt:   s.CreatedAt,
		}
	}
	return responses
}

// ModelToLocationResponse преобразует координату в DTO
func ModelToLocationResponse(s models.LocationSample) *LocationResponse {
	return &LocationResponse{Latitude: s.Latitude, Longitude: s.Longitude, CapturedAt: s.CapturedAt}
}

// RouteToResponse преобразует маршрут в DTO
func RouteToResponse(r *routing.Route) *RouteResponse {
	points := make([]LocationResponse, len(r.Points))
	for i, p := range r.Points {
		points[i] = LocationResponse{Latitude: p.Latitude, Longitude: p.Longitude}
	}
	return &RouteResponse{
		Points:          points,
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration.Seconds(),
	}
}

// ModelsToChatResponses преобразует сообщения в слайс DTO
func ModelsToChatResponses(msgs []models.ChatMessage) []*ChatMessageResponse {
	responses := make([]*ChatMessageResponse, len(msgs))
	for i, m := range msgs {
		responses[i] = &ChatMessageResponse{
			ID:         m.ID,
			IncidentID: m.IncidentID,
			SenderID:   m.SenderID,
			SenderName: m.SenderName,
			Content:    m.Content,
			SentAt:     m.SentAt,
		}
	}
	return responses
}

// VerificationToResponse преобразует статус проверки в DTO
func VerificationToResponse(v *api.Verification) *VerificationResponse {
	return &VerificationResponse{
		Status:          v.Status,
		VerifiedAt:      v.VerifiedAt,
		RejectionReason: v.RejectionReason,
	}
}
