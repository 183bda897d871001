package stockalert

// EventType discriminates the messages pushed on the stream
type EventType string

const (
	EventConnectionAck EventType = "connection_ack"
	EventLowStock      EventType = "low_stock"
	EventStockOK       EventType = "stock_ok"
	EventError         EventType = "error"
)

// Client-facing messages
const (
	MessageConnected   = "Connected to stock alerts."
	MessageQueryFailed = "Error querying database for stock levels."
	MessageUnexpected  = "An unexpected error occurred on the server."
)

// Event is one message of the stream. Products holds []LowStockProduct for
// low_stock and []RestockedProduct for stock_ok.
type Event struct {
	Type     EventType   `json:"type"`
	Message  string      `json:"message,omitempty"`
	Products interface{} `json:"products,omitempty"`
}

// ConnectionAck is sent once when the stream opens
func ConnectionAck() Event {
	return Event{Type: EventConnectionAck, Message: MessageConnected}
}

// LowStockEvent batches newly low or changed products
func LowStockEvent(products []LowStockProduct) Event {
	return Event{Type: EventLowStock, Products: products}
}

// StockOKEvent batches products that are no longer low
func StockOKEvent(products []RestockedProduct) Event {
	return Event{Type: EventStockOK, Products: products}
}

// ErrorEvent reports a failure without necessarily closing the stream
func ErrorEvent(message string) Event {
	return Event{Type: EventError, Message: message}
}
