package session

import (
	"sync"
	"time"

	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/sirupsen/logrus"
)

// handshake - состояние authenticate + join для текущего соединения
type handshake struct {
	mu            sync.Mutex
	generation    uint64
	scope         Scope
	authenticated bool
	online        bool
	attempt       int
	timer         *time.Timer
	timerSeq      uint64
}

// restart начинает новое поколение и сбрасывает состояние рукопожатия
func (h *handshake) restart() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.generation++
	h.stopTimerLocked()
	h.authenticated = false
	h.online = false
	h.attempt = 0
	return h.generation
}

func (h *handshake) stopTimerLocked() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

// SetScope меняет комнату сессии. Если сессия уже в сети, выполняется выход из
// старой комнаты и вход в новую; статус снова станет true после подтверждения.
// Нельзя вызывать из слушателя статуса соединения.
func (c *Coordinator) SetScope(scope Scope) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.hs.mu.Lock()
	old := c.hs.scope
	if old == scope {
		c.hs.mu.Unlock()
		return
	}
	c.hs.scope = scope
	wasOnline := c.hs.online
	authenticated := c.hs.authenticated
	gen := c.hs.generation
	if authenticated {
		c.hs.online = false
		c.leave(old)
		if c.join(scope) {
			c.armTimerLocked(gen)
		} else {
			c.hs.stopTimerLocked()
		}
	}
	c.hs.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"component":   "session",
		"room":        scope.Room,
		"incident_id": scope.IncidentID,
	}).Info("Session scope changed")

	if wasOnline {
		c.statusListeners.Publish(false)
	}
}

func (c *Coordinator) onConnectionState(gen uint64, state models.ConnectionState) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.hs.mu.Lock()
	if gen != c.hs.generation {
		c.hs.mu.Unlock()
		return
	}

	if state == models.Connected {
		c.hs.authenticated = false
		c.hs.online = false
		c.hs.attempt = 0
		c.beginLocked(gen)
		c.hs.mu.Unlock()
		return
	}

	c.hs.stopTimerLocked()
	wasOnline := c.hs.online
	c.hs.online = false
	c.hs.authenticated = false
	c.hs.mu.Unlock()

	if wasOnline {
		c.logger.WithFields(logrus.Fields{
			"component": "session",
			"state":     state.String(),
		}).Warn("Session went offline")
		c.statusListeners.Publish(false)
	}
}

func (c *Coordinator) onAuth(gen uint64, res events.AuthResult) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.hs.mu.Lock()
	defer c.hs.mu.Unlock()
	if gen != c.hs.generation {
		return
	}

	log := c.logger.WithField("component", "session")
	if !res.Authenticated {
		// повтор произойдет по таймауту рукопожатия
		log.WithField("reason", res.Message).Error("Authentication failed")
		return
	}
	if c.hs.authenticated {
		return
	}
	c.hs.authenticated = true
	log.WithField("user_id", res.UserID).Info("Authenticated")
	if !c.join(c.hs.scope) {
		// ждать нечего до SetScope
		c.hs.stopTimerLocked()
	}
}

func (c *Coordinator) onJoinAck(gen uint64, ack events.JoinAck) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.hs.mu.Lock()
	if gen != c.hs.generation || c.hs.online || !matchesScope(c.hs.scope, ack) {
		c.hs.mu.Unlock()
		return
	}
	c.hs.online = true
	c.hs.attempt = 0
	c.hs.stopTimerLocked()
	scope := c.hs.scope
	c.hs.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"component":   "session",
		"room":        scope.Room,
		"incident_id": scope.IncidentID,
	}).Info("Joined room, session is online")
	c.statusListeners.Publish(true)
}

// onJoinTimeout повторяет рукопожатие с растущим окном ожидания
func (c *Coordinator) onJoinTimeout(gen, seq uint64) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.hs.mu.Lock()
	defer c.hs.mu.Unlock()
	if gen != c.hs.generation || c.hs.timer == nil || c.hs.timerSeq != seq || c.hs.online {
		return
	}
	c.hs.timer = nil
	if c.transport.State() != models.Connected {
		return
	}

	c.hs.attempt++
	c.logger.WithFields(logrus.Fields{
		"component": "session",
		"attempt":   c.hs.attempt,
	}).Warn("Join acknowledgement timed out, retrying handshake")
	c.hs.authenticated = false
	c.beginLocked(gen)
}

func (c *Coordinator) beginLocked(gen uint64) {
	c.transport.Send(events.EventAuthenticate, map[string]string{"token": c.opts.Token})
	c.armTimerLocked(gen)
}

func (c *Coordinator) armTimerLocked(gen uint64) {
	c.hs.stopTimerLocked()
	window := c.opts.MaxJoinTimeout
	if c.hs.attempt < 16 {
		window = c.opts.JoinTimeout << c.hs.attempt
	}
	if window > c.opts.MaxJoinTimeout {
		window = c.opts.MaxJoinTimeout
	}
	c.hs.timerSeq++
	seq := c.hs.timerSeq
	c.hs.timer = time.AfterFunc(window, func() { c.onJoinTimeout(gen, seq) })
}

// join отправляет запрос входа в комнату и сообщает, был ли он отправлен
func (c *Coordinator) join(scope Scope) bool {
	switch scope.Room {
	case events.RoomDuty:
		c.transport.Send(events.EventJoinDuty, struct{}{})
		return true
	case events.RoomIncident:
		if scope.IncidentID == "" {
			c.logger.WithField("component", "session").Debug("No incident to join yet")
			return false
		}
		c.transport.Send(events.EventJoinIncident, map[string]string{"incidentId": scope.IncidentID})
		return true
	}
	return false
}

func (c *Coordinator) leave(scope Scope) {
	switch scope.Room {
	case events.RoomDuty:
		c.transport.Send(events.EventLeaveDuty, struct{}{})
	case events.RoomIncident:
		if scope.IncidentID == "" {
			return
		}
		c.transport.Send(events.EventLeaveIncident, map[string]string{"incidentId": scope.IncidentID})
	}
}

// matchesScope проверяет, что подтверждение относится к запрошенной комнате
func matchesScope(scope Scope, ack events.JoinAck) bool {
	if ack.Room != scope.Room {
		return false
	}
	return ack.IncidentID == "" || ack.IncidentID == scope.IncidentID
}
