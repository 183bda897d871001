package stockalert

import (
	"sort"

	"github.com/google/uuid"
)

// StatusStockOK marks a product that left the low-stock set
const StatusStockOK = "stock_ok"

// LowStockProduct is one entry of a low_stock batch
type LowStockProduct struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	StockQuantity int       `json:"stock_quantity"`
}

// RestockedProduct is one entry of a stock_ok batch
type RestockedProduct struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

// Delta is what changed between two consecutive polls
type Delta struct {
	LowStock  []LowStockProduct
	Restocked []RestockedProduct
}

// Empty reports whether the poll changed nothing
func (d Delta) Empty() bool {
	return len(d.LowStock) == 0 && len(d.Restocked) == 0
}

// Tracker remembers the quantity last alerted for each product of one stream.
// It is not safe for concurrent use; each stream owns its own Tracker.
type Tracker struct {
	lastAlerted map[uuid.UUID]int
}

// NewTracker creates a tracker with nothing alerted yet
func NewTracker() *Tracker {
	return &Tracker{lastAlerted: make(map[uuid.UUID]int)}
}

// Observe folds the current low-stock set into the tracker.
// Products that are new or whose quantity moved are reported as low stock,
// in the order given. Tracked products absent from current are reported as
// restocked and forgotten.
func (t *Tracker) Observe(current []LowStockProduct) Delta {
	var delta Delta
	seen := make(map[uuid.UUID]struct{}, len(current))

	for _, p := range current {
		seen[p.ID] = struct{}{}
		if qty, ok := t.lastAlerted[p.ID]; ok && qty == p.StockQuantity {
			continue
		}
		delta.LowStock = append(delta.LowStock, p)
		t.lastAlerted[p.ID] = p.StockQuantity
	}

	for id := range t.lastAlerted {
		if _, ok := seen[id]; ok {
			continue
		}
		delta.Restocked = append(delta.Restocked, RestockedProduct{ID: id, Status: StatusStockOK})
		delete(t.lastAlerted, id)
	}
	sort.Slice(delta.Restocked, func(i, j int) bool {
		return delta.Restocked[i].ID.String() < delta.Restocked[j].ID.String()
	})

	return delta
}

// Tracked returns how many products are currently alerted
func (t *Tracker) Tracked() int {
	return len(t.lastAlerted)
}

// Quantity returns the last alerted quantity of a product
func (t *Tracker) Quantity(id uuid.UUID) (int, bool) {
	qty, ok := t.lastAlerted[id]
	return qty, ok
}
