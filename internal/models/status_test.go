package models_test

import (
	"testing"

	"tienda/internal/models"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []models.OrderStatus{
	models.StatusPending,
	models.StatusPaid,
	models.StatusShipped,
	models.StatusDelivered,
	models.StatusCancelled,
}

func TestOrderStatus_TransitionTable(t *testing.T) {
	allowed := map[models.OrderStatus][]models.OrderStatus{
		models.StatusPending:   {models.StatusPaid, models.StatusCancelled},
		models.StatusPaid:      {models.StatusShipped, models.StatusCancelled},
		models.StatusShipped:   {models.StatusDelivered},
		models.StatusDelivered: {},
		models.StatusCancelled: {},
	}

	// Every (from, to) pair: in the table it must succeed, outside it
	// must fail and leave the status untouched.
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			isAllowed := false
			for _, a := range allowed[from] {
				if a == to {
					isAllowed = true
				}
			}

			order := &models.Order{ID: "order-1", Status: from}
			err := order.TransitionTo(to)
			if isAllowed {
				assert.NoError(t, err, "transition %s -> %s should be allowed", from, to)
				assert.Equal(t, to, order.Status)
			} else {
				assert.Error(t, err, "transition %s -> %s should be rejected", from, to)
				assert.Equal(t, from, order.Status, "failed transition must not change status")

				var invalid *models.InvalidTransitionError
				assert.ErrorAs(t, err, &invalid)
				assert.Equal(t, from, invalid.From)
				assert.Equal(t, to, invalid.To)
			}
		}
	}
}

func TestOrderStatus_PendingToShippedRejected(t *testing.T) {
	order := &models.Order{ID: "order-1", Status: models.StatusPending}

	err := order.TransitionTo(models.StatusShipped)

	assert.Error(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
}

func TestOrderStatus_FullLifecycle(t *testing.T) {
	order := &models.Order{ID: "order-1", Status: models.StatusPending}

	assert.NoError(t, order.TransitionTo(models.StatusPaid))
	assert.NoError(t, order.TransitionTo(models.StatusShipped))
	assert.NoError(t, order.TransitionTo(models.StatusDelivered))

	// Delivered is terminal: nothing is reachable from it.
	for _, to := range allStatuses {
		err := order.TransitionTo(to)
		assert.Error(t, err, "delivered order must reject transition to %s", to)
		assert.Equal(t, models.StatusDelivered, order.Status)
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	assert.True(t, models.StatusDelivered.IsTerminal())
	assert.True(t, models.StatusCancelled.IsTerminal())
	assert.False(t, models.StatusPending.IsTerminal())
	assert.False(t, models.StatusPaid.IsTerminal())
	assert.False(t, models.StatusShipped.IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	status, err := models.ParseOrderStatus("Paid")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPaid, status)

	status, err = models.ParseOrderStatus("  shipped ")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusShipped, status)

	_, err = models.ParseOrderStatus("processing")
	assert.Error(t, err)

	_, err = models.ParseOrderStatus("")
	assert.Error(t, err)
}
