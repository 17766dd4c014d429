package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/bear_coordination/internal/location"
	"github.com/shenikar/bear_coordination/internal/service"
	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
)

const (
	streamBuffer       = 64
	streamWriteTimeout = 5 * time.Second
)

// UpdateSession - тип первого кадра потока со снимком сессии
const UpdateSession = "session"

// @Summary Stream session updates
// @Description Upgrade to WebSocket and stream connection, location, incident, chat and inbox updates as JSON frames. The connection holds a session binding while open. Requires API key.
// @Tags Session
// @Security ApiKeyAuth
// @Success 101 "Switching Protocols"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Location permission denied"
// @Failure 503 {object} map[string]string "Session unavailable"
// @Router /stream [get]
func (h *Handler) stream(c *gin.Context) {
	log := h.logger.WithField("method", "stream")

	handle, err := h.coordinationService.Bind(c.Request.Context())
	if err != nil {
		if errors.Is(err, location.ErrPermissionDenied) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		log.WithError(err).Error("Failed to bind session")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session unavailable"})
		return
	}
	defer func() {
		if err := h.coordinationService.Unbind(handle); err != nil {
			log.WithError(err).Warn("Failed to unbind session")
		}
	}()

	conn, err := websocket.Accept(rawWriter(c), c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.WithError(err).Warn("Failed to upgrade connection")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	log = log.WithField("handle", handle.String())
	log.Info("Stream opened")

	// Медленный клиент теряет кадры, а не тормозит рассылку
	updates := make(chan service.Update, streamBuffer)
	sub := h.coordinationService.Subscribe(func(u service.Update) {
		select {
		case updates <- u:
		default:
			log.WithField("type", u.Type).Warn("Stream buffer full, dropping update")
		}
	})
	defer h.coordinationService.Unsubscribe(sub)

	ctx := conn.CloseRead(c.Request.Context())

	if err := writeUpdate(ctx, conn, service.Update{Type: UpdateSession, Data: h.coordinationService.Status()}); err != nil {
		log.WithError(err).Warn("Failed to write stream frame")
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("Stream closed")
			return
		case u := <-updates:
			if err := writeUpdate(ctx, conn, u); err != nil {
				logStreamError(log, err)
				return
			}
		}
	}
}

// rawWriter возвращает исходный writer: gin не отдает соединение после записи статуса
func rawWriter(c *gin.Context) http.ResponseWriter {
	if u, ok := c.Writer.(interface{ Unwrap() http.ResponseWriter }); ok {
		return u.Unwrap()
	}
	return c.Writer
}

func writeUpdate(ctx context.Context, conn *websocket.Conn, u service.Update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

func logStreamError(log *logrus.Entry, err error) {
	if errors.Is(err, context.Canceled) || websocket.CloseStatus(err) != -1 {
		log.Info("Stream closed")
		return
	}
	log.WithError(err).Warn("Failed to write stream frame")
}
