package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/bear_coordination/internal/api"
	"github.com/shenikar/bear_coordination/internal/chat"
	"github.com/shenikar/bear_coordination/internal/config"
	"github.com/shenikar/bear_coordination/internal/incident"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/shenikar/bear_coordination/internal/routing"
	"github.com/shenikar/bear_coordination/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	coordinationService service.CoordinationService
	logger              *logrus.Logger
	validate            *validator.Validate
	cfg                 *config.Config
}

func NewHandler(coordinationService service.CoordinationService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		coordinationService: coordinationService,
		logger:              logger,
		validate:            validator.New(),
		cfg:                 cfg,
	}
}

// @Summary Get session status
// @Description Get role, connection state, room and binding count of the coordination session. Requires API key.
// @Tags Session
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} service.SessionStatus
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /session [get]
func (h *Handler) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.coordinationService.Status())
}

// @Summary Get latest location
// @Description Get the latest location sample streamed by this device. Requires API key.
// @Tags Location
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} LocationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No location available"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /location [get]
func (h *Handler) getLocation(c *gin.Context) {
	log := h.logger.WithField("method", "getLocation")

	sample, err := h.coordinationService.LatestLocation(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoLocation) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no location available"})
			return
		}
		log.WithError(err).Error("Failed to get location from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelToLocationResponse(*sample))
}

// @Summary Push a device fix
// @Description Push a location fix reported by the device. The streamer picks it up on its next tick. Requires API key.
// @Tags Location
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param fix body LocationFixRequest true "Device fix"
// @Success 202 "Accepted"
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /location/fix [post]
func (h *Handler) pushFix(c *gin.Context) {
	var input LocationFixRequest
	log := h.logger.WithField("method", "pushFix")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.coordinationService.PushFix(DTOToLocationSample(input)); err != nil {
		log.WithError(err).Warn("Failed to push fix")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusAccepted)
}

// @Summary Route to the tracked incident
// @Description Build a driving route from the latest location to the tracked incident. Requires API key.
// @Tags Location
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} RouteResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No tracked incident, location or route"
// @Failure 502 {object} map[string]string "Routing service error"
// @Router /route [get]
func (h *Handler) getRoute(c *gin.Context) {
	log := h.logger.WithField("method", "getRoute")

	route, err := h.coordinationService.RouteToIncident(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, RouteToResponse(route))
	case errors.Is(err, incident.ErrNoActiveIncident),
		errors.Is(err, service.ErrNoLocation),
		errors.Is(err, routing.ErrNoRoute):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Failed to build route")
		c.JSON(http.StatusBadGateway, gin.H{"error": "routing service error"})
	}
}

// @Summary Report an incident
// @Description Report a new incident as a resident. Without coordinates the latest streamed location is used. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param incident body ReportIncidentRequest true "Incident report"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not available for this role"
// @Failure 409 {object} map[string]string "Another incident is already tracked"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [post]
func (h *Handler) reportIncident(c *gin.Context) {
	var input ReportIncidentRequest
	log := h.logger.WithField("method", "reportIncident")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := DTOToReportRequest(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.coordinationService.ReportIncident(c.Request.Context(), req)
	if err != nil {
		h.writeIncidentError(c, log, err, "Failed to report incident in service")
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(rec))
}

// @Summary Track an incident
// @Description Load an incident from the backend and start tracking its lifecycle. Requires API key.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Another incident is already tracked"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/track [post]
func (h *Handler) trackIncident(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "trackIncident").WithField("id", id)

	rec, err := h.coordinationService.TrackIncident(c.Request.Context(), id)
	if err != nil {
		h.writeIncidentError(c, log, err, "Failed to track incident")
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(rec))
}

// @Summary Get the tracked incident
// @Description Get the incident currently tracked by this session. Requires API key.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} IncidentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No tracked incident"
// @Router /incidents/current [get]
func (h *Handler) currentIncident(c *gin.Context) {
	rec, ok := h.coordinationService.CurrentIncident()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active incident"})
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(rec))
}

// @Summary Change status of the tracked incident
// @Description Request a forward status transition. Backward transitions are rejected with 409. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param status body ChangeStatusRequest true "Target status"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid request body or unknown status"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No tracked incident"
// @Failure 409 {object} TransitionErrorResponse "Transition is not allowed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/current/status [put]
func (h *Handler) changeStatus(c *gin.Context) {
	var input ChangeStatusRequest
	log := h.logger.WithField("method", "changeStatus")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	to, ok := models.ParseIncidentStatus(input.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	if err := h.coordinationService.ChangeStatus(c.Request.Context(), to); err != nil {
		h.writeIncidentError(c, log, err, "Failed to change incident status")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get responder inbox
// @Description Get active incidents visible to the responder, newest first. Requires API key.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param refresh query bool false "Reload from backend" default(false)
// @Success 200 {array} InboxItemResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not available for this role"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /inbox [get]
func (h *Handler) getInbox(c *gin.Context) {
	log := h.logger.WithField("method", "getInbox")
	refresh, _ := strconv.ParseBool(c.DefaultQuery("refresh", "false"))

	items, err := h.coordinationService.Inbox(c.Request.Context(), refresh)
	if err != nil {
		if errors.Is(err, service.ErrWrongRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		log.WithError(err).Error("Failed to get inbox from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelsToInboxResponses(items))
}

// @Summary Get chat history
// @Description Get chat history of an incident room. Without incident_id the joined room is used. Requires API key.
// @Tags Chat
// @Produce json
// @Security ApiKeyAuth
// @Param incident_id query string false "Incident ID"
// @Success 200 {array} ChatMessageResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Chat room is not joined"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /chat/messages [get]
func (h *Handler) chatHistory(c *gin.Context) {
	incidentID := c.Query("incident_id")
	log := h.logger.WithField("method", "chatHistory").WithField("incident_id", incidentID)

	msgs, err := h.coordinationService.ChatHistory(c.Request.Context(), incidentID)
	if err != nil {
		if errors.Is(err, chat.ErrNotJoined) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.WithError(err).Error("Failed to load chat history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelsToChatResponses(msgs))
}

// @Summary Send a chat message
// @Description Send a message to the joined incident room. Requires API key.
// @Tags Chat
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param message body SendMessageRequest true "Message"
// @Success 202 "Accepted"
// @Failure 400 {object} map[string]string "Empty or too long message"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Chat room is not joined"
// @Router /chat/messages [post]
func (h *Handler) sendMessage(c *gin.Context) {
	var input SendMessageRequest
	log := h.logger.WithField("method", "sendMessage")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.coordinationService.SendMessage(input.Content)
	switch {
	case err == nil:
		c.Status(http.StatusAccepted)
	case errors.Is(err, chat.ErrNotJoined):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrMessageTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Failed to send message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// @Summary Get account verification status
// @Description Get verification status of the account documents. Requires API key.
// @Tags Session
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} VerificationResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Backend error"
// @Router /verification [get]
func (h *Handler) getVerification(c *gin.Context) {
	log := h.logger.WithField("method", "getVerification")

	v, err := h.coordinationService.Verification(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get verification status")
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend error"})
		return
	}
	c.JSON(http.StatusOK, VerificationToResponse(v))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeIncidentError отображает ошибки трекера и фасада в коды HTTP
func (h *Handler) writeIncidentError(c *gin.Context, log *logrus.Entry, err error, msg string) {
	var invalid *incident.InvalidTransitionError
	switch {
	case errors.As(err, &invalid):
		log.WithError(err).Warn("Transition rejected")
		c.JSON(http.StatusConflict, TransitionErrorResponse{
			Error: "transition is not allowed",
			From:  invalid.From.String(),
			To:    invalid.To.String(),
		})
	case errors.Is(err, service.ErrWrongRole):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, incident.ErrIncidentAlreadyTracked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, incident.ErrNoActiveIncident), errors.Is(err, api.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
	default:
		log.WithError(err).Error(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
