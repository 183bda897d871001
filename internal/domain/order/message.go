package order

import (
	"fmt"
	"strings"

	"github.com/dentalshop/backend/internal/domain/shared/valueobject"
)

// BuildMessage renders the plain-text checkout message sent over WhatsApp:
// one line per item, a total line, then the customer line when a name is set.
func BuildMessage(items []LineItem, customerName string) string {
	lines := make([]string, 0, len(items)+2)
	total := valueobject.ZeroMAD()
	for _, item := range items {
		subtotal := valueobject.NewMoneyMAD(item.Subtotal)
		lines = append(lines, fmt.Sprintf("%s x%d = %s", item.Name, item.Quantity, subtotal.Display()))
		total, _ = total.Add(subtotal)
	}
	lines = append(lines, "Total: "+total.Display())
	if name := strings.TrimSpace(customerName); name != "" {
		lines = append(lines, "Client: "+name)
	}
	return strings.Join(lines, "\n")
}
