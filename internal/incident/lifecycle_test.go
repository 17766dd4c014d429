package incident

import (
	"errors"
	"testing"

	"github.com/shenikar/bear_coordination/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.IncidentStatus
		to   models.IncidentStatus
		want bool
	}{
		{"pending to in progress", models.StatusPending, models.StatusInProgress, true},
		{"pending to rejected", models.StatusPending, models.StatusRejected, true},
		{"pending to cancelled", models.StatusPending, models.StatusCancelled, true},
		{"in progress to resolved", models.StatusInProgress, models.StatusResolved, true},
		{"pending to resolved", models.StatusPending, models.StatusResolved, false},
		{"in progress to pending", models.StatusInProgress, models.StatusPending, false},
		{"in progress to cancelled", models.StatusInProgress, models.StatusCancelled, false},
		{"resolved to pending", models.StatusResolved, models.StatusPending, false},
		{"rejected to in progress", models.StatusRejected, models.StatusInProgress, false},
		{"cancelled to pending", models.StatusCancelled, models.StatusPending, false},
		{"unknown to pending", models.StatusUnknown, models.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestApply_ForwardPath(t *testing.T) {
	rec := &models.IncidentRecord{ID: "X", Status: models.StatusPending}

	require.NoError(t, apply(rec, models.StatusInProgress))
	require.NoError(t, apply(rec, models.StatusResolved))

	assert.Equal(t, models.StatusResolved, rec.Status)
}

func TestApply_BackwardRejected(t *testing.T) {
	rec := &models.IncidentRecord{ID: "X", Status: models.StatusResolved}

	err := apply(rec, models.StatusPending)

	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "X", invalid.IncidentID)
	assert.Equal(t, models.StatusResolved, invalid.From)
	assert.Equal(t, models.StatusPending, invalid.To)
	assert.Equal(t, models.StatusResolved, rec.Status)
	assert.Contains(t, err.Error(), "Resolved -> Pending")
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	all := []models.IncidentStatus{
		models.StatusPending, models.StatusInProgress, models.StatusResolved,
		models.StatusRejected, models.StatusCancelled,
	}
	for _, from := range all {
		if !from.Terminal() {
			continue
		}
		for _, to := range all {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}
