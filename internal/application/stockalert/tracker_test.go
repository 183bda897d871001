package stockalert

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_FirstObservationAlertsEverything(t *testing.T) {
	tracker := NewTracker()
	a := LowStockProduct{ID: uuid.New(), Name: "Fraise diamantée", StockQuantity: 4}
	b := LowStockProduct{ID: uuid.New(), Name: "Composite A2", StockQuantity: 0}

	delta := tracker.Observe([]LowStockProduct{a, b})

	assert.Equal(t, []LowStockProduct{a, b}, delta.LowStock)
	assert.Empty(t, delta.Restocked)
	assert.Equal(t, 2, tracker.Tracked())
}

func TestTracker_UnchangedQuantityIsSilent(t *testing.T) {
	tracker := NewTracker()
	a := LowStockProduct{ID: uuid.New(), Name: "Gants nitrile", StockQuantity: 5}

	tracker.Observe([]LowStockProduct{a})
	delta := tracker.Observe([]LowStockProduct{a})

	assert.True(t, delta.Empty())
}

func TestTracker_QuantityChangeRealerts(t *testing.T) {
	tracker := NewTracker()
	id := uuid.New()
	other := LowStockProduct{ID: uuid.New(), Name: "Other", StockQuantity: 2}

	tracker.Observe([]LowStockProduct{{ID: id, Name: "Lampe", StockQuantity: 5}, other})
	delta := tracker.Observe([]LowStockProduct{{ID: id, Name: "Lampe", StockQuantity: 4}, other})

	require.Len(t, delta.LowStock, 1)
	assert.Equal(t, id, delta.LowStock[0].ID)
	assert.Equal(t, 4, delta.LowStock[0].StockQuantity)
	assert.Empty(t, delta.Restocked)

	qty, ok := tracker.Quantity(id)
	assert.True(t, ok)
	assert.Equal(t, 4, qty)
}

func TestTracker_RestockEmitsStockOKOnce(t *testing.T) {
	tracker := NewTracker()
	id := uuid.New()

	tracker.Observe([]LowStockProduct{{ID: id, Name: "Scanner", StockQuantity: 5}})

	// 5 -> 15 leaves the low-stock set
	delta := tracker.Observe(nil)
	assert.Empty(t, delta.LowStock)
	assert.Equal(t, []RestockedProduct{{ID: id, Status: StatusStockOK}}, delta.Restocked)
	assert.Equal(t, 0, tracker.Tracked())

	delta = tracker.Observe(nil)
	assert.True(t, delta.Empty(), "a restocked product is reported once")
}

func TestTracker_DropBackBelowThresholdAlertsAgain(t *testing.T) {
	tracker := NewTracker()
	id := uuid.New()

	tracker.Observe([]LowStockProduct{{ID: id, Name: "Scanner", StockQuantity: 5}})
	tracker.Observe(nil)

	// 15 -> 3
	delta := tracker.Observe([]LowStockProduct{{ID: id, Name: "Scanner", StockQuantity: 3}})
	require.Len(t, delta.LowStock, 1)
	assert.Equal(t, 3, delta.LowStock[0].StockQuantity)
	assert.Empty(t, delta.Restocked)
}

func TestTracker_MixedDelta(t *testing.T) {
	tracker := NewTracker()
	stay := LowStockProduct{ID: uuid.New(), Name: "Stay", StockQuantity: 1}
	leave := LowStockProduct{ID: uuid.New(), Name: "Leave", StockQuantity: 2}
	fresh := LowStockProduct{ID: uuid.New(), Name: "Fresh", StockQuantity: 9}

	tracker.Observe([]LowStockProduct{stay, leave})
	delta := tracker.Observe([]LowStockProduct{stay, fresh})

	assert.Equal(t, []LowStockProduct{fresh}, delta.LowStock)
	assert.Equal(t, []RestockedProduct{{ID: leave.ID, Status: StatusStockOK}}, delta.Restocked)
	assert.Equal(t, 2, tracker.Tracked())
}
