package incident

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shenikar/bear_coordination/internal/broadcast"
	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/sirupsen/logrus"
)

// Inbox - живой список активных инцидентов спасателя
type Inbox struct {
	lister Lister
	logger *logrus.Logger

	notifyMu sync.Mutex

	mu    sync.Mutex
	items map[string]models.IncidentSummary

	observers *broadcast.Registry[[]models.IncidentSummary]
}

// NewInbox создает пустой список
func NewInbox(lister Lister, logger *logrus.Logger) *Inbox {
	return &Inbox{
		lister:    lister,
		logger:    logger,
		items:     make(map[string]models.IncidentSummary),
		observers: broadcast.NewRegistry[[]models.IncidentSummary](),
	}
}

// Attach подписывает список на ленту инцидентов
func (b *Inbox) Attach(router *events.Router) broadcast.Handle {
	return router.OnFeed(b.Apply)
}

// OnChange подписывает на обновления списка
func (b *Inbox) OnChange(fn func([]models.IncidentSummary)) broadcast.Handle {
	return b.observers.Add(fn)
}

// RemoveObserver снимает наблюдателя
func (b *Inbox) RemoveObserver(h broadcast.Handle) bool {
	return b.observers.Remove(h)
}

// Refresh заменяет список актуальными данными бэкенда
func (b *Inbox) Refresh(ctx context.Context) error {
	list, err := b.lister.ListIncidents(ctx)
	if err != nil {
		b.logger.WithField("component", "inbox").WithError(err).Error("Failed to refresh incidents")
		return fmt.Errorf("inbox: refresh: %w", err)
	}

	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	b.items = make(map[string]models.IncidentSummary, len(list))
	for _, s := range list {
		if !s.Status.Terminal() {
			b.items[s.ID] = s
		}
	}
	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	b.logger.WithFields(logrus.Fields{
		"component": "inbox",
		"count":     len(snapshot),
	}).Info("Incidents refreshed")
	b.observers.Publish(snapshot)
	return nil
}

// Apply применяет событие ленты
func (b *Inbox) Apply(fe events.FeedEvent) {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	changed := false
	switch fe.Kind {
	case events.FeedCreated, events.FeedUpdated:
		if fe.Incident == nil {
			break
		}
		if fe.Incident.Status.Terminal() {
			_, changed = b.items[fe.Incident.ID]
			delete(b.items, fe.Incident.ID)
		} else {
			b.items[fe.Incident.ID] = *fe.Incident
			changed = true
		}
	case events.FeedDeleted:
		_, changed = b.items[fe.IncidentID]
		delete(b.items, fe.IncidentID)
	}
	var snapshot []models.IncidentSummary
	if changed {
		snapshot = b.snapshotLocked()
	}
	b.mu.Unlock()

	if changed {
		b.logger.WithFields(logrus.Fields{
			"component":   "inbox",
			"kind":        fe.Kind,
			"incident_id": fe.IncidentID,
		}).Debug("Inbox updated")
		b.observers.Publish(snapshot)
	}
}

// Items возвращает инциденты, новые первыми
func (b *Inbox) Items() []models.IncidentSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Get возвращает инцидент из списка
func (b *Inbox) Get(id string) (models.IncidentSummary, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.items[id]
	return s, ok
}

func (b *Inbox) snapshotLocked() []models.IncidentSummary {
	out := make([]models.IncidentSummary, 0, len(b.items))
	for _, s := range b.items {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
