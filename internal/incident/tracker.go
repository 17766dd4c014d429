package incident

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shenikar/bear_coordination/internal/broadcast"
	"github.com/shenikar/bear_coordination/internal/events"
	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoActiveIncident       = errors.New("no active incident")
	ErrIncidentAlreadyTracked = errors.New("another incident is already tracked")
)

const (
	defaultReporterName    = "Unknown Resident"
	defaultReporterContact = "N/A"
)

// ChangeKind - вид изменения отслеживаемого инцидента
type ChangeKind string

const (
	ChangeTracked       ChangeKind = "tracked"
	ChangeStatus        ChangeKind = "status"
	ChangeChatAvailable ChangeKind = "chat_available"
	ChangeDiscarded     ChangeKind = "discarded"
)

// Change - уведомление наблюдателям трекера
type Change struct {
	Kind     ChangeKind
	Incident models.IncidentRecord
	From     models.IncidentStatus
	To       models.IncidentStatus
}

// ReportRequest - данные жителя для нового сигнала
type ReportRequest struct {
	Type            models.IncidentType
	ReporterName    string
	ReporterContact string
	Location        models.LocationSample
	Description     string
}

// Tracker хранит единственный активный инцидент процесса
type Tracker struct {
	api    API
	logger *logrus.Logger

	// notifyMu упорядочивает изменения и уведомления
	notifyMu sync.Mutex

	mu      sync.Mutex
	current *models.IncidentRecord

	observers *broadcast.Registry[Change]
}

// NewTracker создает трекер без инцидента
func NewTracker(api API, logger *logrus.Logger) *Tracker {
	return &Tracker{
		api:       api,
		logger:    logger,
		observers: broadcast.NewRegistry[Change](),
	}
}

// OnChange подписывает на изменения инцидента
func (t *Tracker) OnChange(fn func(Change)) broadcast.Handle {
	return t.observers.Add(fn)
}

// RemoveObserver снимает наблюдателя
func (t *Tracker) RemoveObserver(h broadcast.Handle) bool {
	return t.observers.Remove(h)
}

// Attach подписывает трекер на события статуса и ленты
func (t *Tracker) Attach(router *events.Router) []broadcast.Handle {
	return []broadcast.Handle{
		router.OnStatus(t.ApplyStatusEvent),
		router.OnFeed(t.applyFeed),
	}
}

// Current возвращает копию отслеживаемого инцидента
func (t *Tracker) Current() (models.IncidentRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return models.IncidentRecord{}, false
	}
	return copyRecord(t.current), true
}

// Track начинает отслеживать инцидент. Завершенный инцидент заменяется,
// активный другой - нет.
func (t *Tracker) Track(rec models.IncidentRecord) error {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	if t.current != nil && !t.current.Status.Terminal() && t.current.ID != rec.ID {
		t.mu.Unlock()
		return ErrIncidentAlreadyTracked
	}
	if rec.Status == models.StatusUnknown {
		rec.Status = models.StatusPending
	}
	stored := copyRecord(&rec)
	t.current = &stored
	t.mu.Unlock()

	t.logger.WithFields(logrus.Fields{
		"component":   "tracker",
		"incident_id": rec.ID,
		"status":      rec.Status.String(),
	}).Info("Tracking incident")
	t.observers.Publish(Change{Kind: ChangeTracked, Incident: copyRecord(&stored), To: stored.Status})
	if stored.Status == models.StatusInProgress {
		t.observers.Publish(Change{Kind: ChangeChatAvailable, Incident: copyRecord(&stored), To: stored.Status})
	}
	return nil
}

// Discard прекращает отслеживание
func (t *Tracker) Discard() {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	prev := t.current
	t.current = nil
	t.mu.Unlock()
	if prev == nil {
		return
	}
	t.logger.WithFields(logrus.Fields{
		"component":   "tracker",
		"incident_id": prev.ID,
	}).Info("Incident discarded")
	t.observers.Publish(Change{Kind: ChangeDiscarded, Incident: *prev, From: prev.Status})
}

// Report создает инцидент на бэкенде и начинает его отслеживать
func (t *Tracker) Report(ctx context.Context, req ReportRequest) (models.IncidentRecord, error) {
	log := t.logger.WithFields(logrus.Fields{
		"component": "tracker",
		"method":    "Report",
		"type":      req.Type,
	})

	if cur, ok := t.Current(); ok && !cur.Status.Terminal() {
		return models.IncidentRecord{}, ErrIncidentAlreadyTracked
	}

	rec := newRecord(req)
	id, err := t.api.ReportIncident(ctx, &rec)
	if err != nil {
		log.WithError(err).Error("Failed to report incident")
		return models.IncidentRecord{}, fmt.Errorf("tracker: report incident: %w", err)
	}
	rec.ID = id

	if err := t.Track(rec); err != nil {
		return models.IncidentRecord{}, err
	}
	log.WithField("incident_id", id).Info("Incident reported")
	return rec, nil
}

// Transition применяет переход к отслеживаемому инциденту
func (t *Tracker) Transition(to models.IncidentStatus) error {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	return t.transitionLocked("", to)
}

// RequestTransition проверяет переход, отправляет его на бэкенд и применяет локально
func (t *Tracker) RequestTransition(ctx context.Context, to models.IncidentStatus) error {
	cur, ok := t.Current()
	if !ok {
		return ErrNoActiveIncident
	}
	// повтор текущего статуса тоже вне таблицы переходов
	if !CanTransition(cur.Status, to) {
		return &InvalidTransitionError{IncidentID: cur.ID, From: cur.Status, To: to}
	}

	if _, err := t.api.UpdateIncidentStatus(ctx, cur.ID, to); err != nil {
		t.logger.WithFields(logrus.Fields{
			"component":   "tracker",
			"incident_id": cur.ID,
			"to":          to.String(),
		}).WithError(err).Error("Failed to update incident status")
		return fmt.Errorf("tracker: update status: %w", err)
	}

	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	t.mu.Lock()
	// событие статуса могло прийти раньше ответа REST
	already := t.current != nil && t.current.ID == cur.ID && t.current.Status == to
	t.mu.Unlock()
	if already {
		return nil
	}
	return t.transitionLocked(cur.ID, to)
}

// ApplyStatusEvent применяет входящее событие статуса. События чужого
// инцидента, неизвестные статусы и недопустимые переходы не меняют состояние.
func (t *Tracker) ApplyStatusEvent(upd events.StatusUpdate) {
	log := t.logger.WithFields(logrus.Fields{
		"component":   "tracker",
		"incident_id": upd.IncidentID,
		"new_status":  upd.NewStatus,
	})

	status, ok := models.ParseIncidentStatus(upd.NewStatus)
	if !ok {
		log.Warn("Ignoring unknown incident status")
		return
	}

	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	if t.current == nil || t.current.ID == "" || t.current.ID != upd.IncidentID {
		t.mu.Unlock()
		log.Debug("Ignoring status for untracked incident")
		return
	}
	same := t.current.Status == status
	t.mu.Unlock()
	if same {
		return
	}

	var invalid *InvalidTransitionError
	if err := t.transitionLocked(upd.IncidentID, status); errors.As(err, &invalid) {
		log.WithField("current", invalid.From.String()).Warn("Rejected out-of-order status update")
	}
}

func (t *Tracker) applyFeed(fe events.FeedEvent) {
	if fe.Kind != events.FeedUpdated || fe.Incident == nil {
		return
	}
	t.ApplyStatusEvent(events.StatusUpdate{IncidentID: fe.IncidentID, NewStatus: fe.Incident.Status.String()})
}

// transitionLocked вызывается под notifyMu. Пустой id означает текущий инцидент.
func (t *Tracker) transitionLocked(id string, to models.IncidentStatus) error {
	t.mu.Lock()
	if t.current == nil || (id != "" && t.current.ID != id) {
		t.mu.Unlock()
		return ErrNoActiveIncident
	}
	from := t.current.Status
	if err := apply(t.current, to); err != nil {
		t.mu.Unlock()
		return err
	}
	snapshot := copyRecord(t.current)
	t.mu.Unlock()

	t.logger.WithFields(logrus.Fields{
		"component":   "tracker",
		"incident_id": snapshot.ID,
		"from":        from.String(),
		"to":          to.String(),
	}).Info("Incident status changed")

	t.observers.Publish(Change{Kind: ChangeStatus, Incident: snapshot, From: from, To: to})
	if to == models.StatusInProgress {
		t.observers.Publish(Change{Kind: ChangeChatAvailable, Incident: snapshot, From: from, To: to})
	}
	return nil
}

func newRecord(req ReportRequest) models.IncidentRecord {
	name := strings.TrimSpace(req.ReporterName)
	if name == "" {
		name = defaultReporterName
	}
	contact := strings.TrimSpace(req.ReporterContact)
	if contact == "" {
		contact = defaultReporterContact
	}
	rec := models.IncidentRecord{
		Type:            req.Type,
		Name:            fmt.Sprintf("%s Report", req.Type),
		ReporterName:    name,
		ReporterContact: contact,
		Location:        req.Location,
		Status:          models.StatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		rec.Description = &desc
	}
	return rec
}

// FromSummary строит запись трекера из строки входящих
func FromSummary(s models.IncidentSummary) models.IncidentRecord {
	rec := models.IncidentRecord{
		ID:              s.ID,
		Type:            models.IncidentType(s.Type),
		Name:            s.Name,
		ReporterContact: s.Contact,
		Location:        s.Location,
		Status:          s.Status,
		CreatedAt:       s.CreatedAt,
	}
	if s.Description != "" {
		desc := s.Description
		rec.Description = &desc
	}
	return rec
}

func copyRecord(rec *models.IncidentRecord) models.IncidentRecord {
	out := *rec
	if rec.Description != nil {
		desc := *rec.Description
		out.Description = &desc
	}
	return out
}
