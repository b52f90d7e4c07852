package model_test

import (
	"testing"

	"routa/internal/dispatch-service/core/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.Status
		want     bool
	}{
		{model.StatusPending, model.StatusAccepted, true},
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusAccepted, model.StatusPickedUp, true},
		{model.StatusAccepted, model.StatusCancelled, true},
		{model.StatusPickedUp, model.StatusInTransit, true},
		{model.StatusInTransit, model.StatusDelivered, true},

		{model.StatusPending, model.StatusPickedUp, false},
		{model.StatusPending, model.StatusDelivered, false},
		{model.StatusAccepted, model.StatusInTransit, false},
		{model.StatusPickedUp, model.StatusCancelled, false},
		{model.StatusPickedUp, model.StatusDelivered, false},
		{model.StatusInTransit, model.StatusCancelled, false},
		{model.StatusDelivered, model.StatusCancelled, false},
		{model.StatusCancelled, model.StatusAccepted, false},
		{model.StatusDelivered, model.StatusPending, false},
		{model.StatusAccepted, model.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, model.CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, model.StatusDelivered.IsTerminal())
	assert.True(t, model.StatusCancelled.IsTerminal())
	assert.False(t, model.StatusPending.IsTerminal())
	assert.False(t, model.StatusAccepted.IsTerminal())
	assert.False(t, model.StatusPickedUp.IsTerminal())
	assert.False(t, model.StatusInTransit.IsTerminal())
}

func TestIsCancellable(t *testing.T) {
	assert.True(t, model.StatusPending.IsCancellable())
	assert.True(t, model.StatusAccepted.IsCancellable())
	assert.False(t, model.StatusPickedUp.IsCancellable())
	assert.False(t, model.StatusInTransit.IsCancellable())
	assert.False(t, model.StatusDelivered.IsCancellable())
	assert.False(t, model.StatusCancelled.IsCancellable())
}

func TestIsValid(t *testing.T) {
	assert.True(t, model.StatusPending.IsValid())
	assert.False(t, model.Status("SHIPPED").IsValid())
	assert.False(t, model.Status("pending").IsValid())
}

func TestNextDeliveryStatus(t *testing.T) {
	next, ok := model.NextDeliveryStatus(model.StatusAccepted)
	assert.True(t, ok)
	assert.Equal(t, model.StatusPickedUp, next)

	next, ok = model.NextDeliveryStatus(model.StatusPickedUp)
	assert.True(t, ok)
	assert.Equal(t, model.StatusInTransit, next)

	next, ok = model.NextDeliveryStatus(model.StatusInTransit)
	assert.True(t, ok)
	assert.Equal(t, model.StatusDelivered, next)

	// No driver transition out of PENDING or the terminal states.
	_, ok = model.NextDeliveryStatus(model.StatusPending)
	assert.False(t, ok)
	_, ok = model.NextDeliveryStatus(model.StatusDelivered)
	assert.False(t, ok)
	_, ok = model.NextDeliveryStatus(model.StatusCancelled)
	assert.False(t, ok)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "APPLIED", model.OutcomeApplied.String())
	assert.Equal(t, "REJECTED_INVALID_STATE", model.OutcomeInvalidState.String())
	assert.Equal(t, "REJECTED_UNAUTHORIZED", model.OutcomeUnauthorized.String())
	assert.Equal(t, "NONE", model.OutcomeNone.String())
}
