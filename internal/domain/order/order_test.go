package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []LineItem {
	return []LineItem{
		NewLineItem(uuid.New(), "Composite A2", 2, decimal.NewFromInt(100)),
		NewLineItem(uuid.New(), "Gants nitrile", 1, decimal.NewFromInt(50)),
	}
}

func TestNewOrder(t *testing.T) {
	t.Run("computes total and defaults", func(t *testing.T) {
		o, err := NewOrder("Cabinet Benali", nil, sampleItems())
		require.NoError(t, err)

		assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(250)))
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, 3, o.ItemCount())
		assert.Equal(t, "250 MAD", o.Total().Display())

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderPlaced, events[0].EventType())
	})

	t.Run("links user when given", func(t *testing.T) {
		userID := uuid.New()
		o, err := NewOrder("A", &userID, sampleItems())
		require.NoError(t, err)
		require.NotNil(t, o.UserID)
		assert.Equal(t, userID, *o.UserID)
	})

	t.Run("rejects empty customer name", func(t *testing.T) {
		_, err := NewOrder("   ", nil, sampleItems())
		assert.Error(t, err)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		_, err := NewOrder("A", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one item")
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		items := []LineItem{NewLineItem(uuid.New(), "X", 0, decimal.NewFromInt(10))}
		_, err := NewOrder("A", nil, items)
		assert.Error(t, err)
	})
}

func TestOrder_ChangeStatus(t *testing.T) {
	o, err := NewOrder("A", nil, sampleItems())
	require.NoError(t, err)
	o.ClearDomainEvents()

	require.NoError(t, o.ChangeStatus(StatusShipped))
	assert.Equal(t, StatusShipped, o.Status)
	require.Len(t, o.GetDomainEvents(), 1)
	event := o.GetDomainEvents()[0].(*OrderStatusChangedEvent)
	assert.Equal(t, StatusPending, event.OldStatus)

	require.NoError(t, o.ChangeStatus(StatusShipped))
	assert.Len(t, o.GetDomainEvents(), 1, "same status is a no-op")

	err = o.ChangeStatus(Status("Perdue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid status")
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Livrée ")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, s)

	_, err = ParseStatus("delivered")
	assert.Error(t, err)
}

func TestBuildMessage(t *testing.T) {
	t.Run("two items without customer", func(t *testing.T) {
		msg := BuildMessage(sampleItems(), "")
		assert.Equal(t, "Composite A2 x2 = 200 MAD\nGants nitrile x1 = 50 MAD\nTotal: 250 MAD", msg)
	})

	t.Run("appends customer line", func(t *testing.T) {
		msg := BuildMessage(sampleItems(), "Dr. Alaoui")
		assert.Contains(t, msg, "\nClient: Dr. Alaoui")
	})

	t.Run("fractional prices", func(t *testing.T) {
		items := []LineItem{NewLineItem(uuid.New(), "Fraise", 3, decimal.RequireFromString("33.5"))}
		assert.Equal(t, "Fraise x3 = 100.5 MAD\nTotal: 100.5 MAD", BuildMessage(items, ""))
	})
}
