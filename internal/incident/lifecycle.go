// Package incident ведет жизненный цикл отслеживаемого инцидента и
// входящие инциденты спасателя.
package incident

import (
	"fmt"

	"github.com/shenikar/bear_coordination/internal/models"
)

// transitions - допустимые переходы; назад двигаться нельзя
var transitions = map[models.IncidentStatus][]models.IncidentStatus{
	models.StatusPending:    {models.StatusInProgress, models.StatusRejected, models.StatusCancelled},
	models.StatusInProgress: {models.StatusResolved},
}

// CanTransition сообщает, допустим ли переход from -> to
func CanTransition(from, to models.IncidentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError - запрошенный переход недопустим из текущего статуса.
// Вызывающему стоит перечитать актуальное состояние инцидента.
type InvalidTransitionError struct {
	IncidentID string
	From       models.IncidentStatus
	To         models.IncidentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("incident %s: invalid transition %s -> %s", e.IncidentID, e.From, e.To)
}

// apply переводит запись в новый статус или возвращает InvalidTransitionError
func apply(rec *models.IncidentRecord, to models.IncidentStatus) error {
	if !CanTransition(rec.Status, to) {
		return &InvalidTransitionError{IncidentID: rec.ID, From: rec.Status, To: to}
	}
	rec.Status = to
	return nil
}
