// Package printing renders printable order slips: an HTML template filled
// with the order, turned into a PDF by a headless Chrome.
package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/dentalshop/backend/internal/application/order"
	"github.com/dentalshop/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SlipData is what the slip template sees
type SlipData struct {
	ShopName  string
	ShopPhone string
	Order     *order.OrderResponse
	PrintedAt time.Time
}

var titler = cases.Title(language.English)

var slipFuncs = template.FuncMap{
	"money": func(amount decimal.Decimal, currency string) string {
		m, err := valueobject.NewMoney(amount, valueobject.Currency(currency))
		if err != nil {
			return amount.StringFixed(2) + " " + currency
		}
		return m.Display()
	},
	"datetime": func(t time.Time) string { return t.Format("02/01/2006 15:04") },
	"status":   func(s string) string { return titler.String(strings.ReplaceAll(s, "_", " ")) },
	"short":    func(id fmt.Stringer) string { return strings.ToUpper(id.String()[:8]) },
}

var slipTemplate = template.Must(template.New("slip").Funcs(slipFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Order {{short .Order.ID}}</title>
<style>
body { font-family: sans-serif; font-size: 12px; margin: 0; }
header { border-bottom: 2px solid #0a6e8a; margin-bottom: 16px; padding-bottom: 8px; }
h1 { color: #0a6e8a; font-size: 18px; margin: 0; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ddd; padding: 6px 4px; text-align: left; }
td.num, th.num { text-align: right; }
tfoot td { border: none; font-weight: bold; }
.meta { color: #555; }
</style>
</head>
<body>
<header>
<h1>{{.ShopName}}</h1>
{{with .ShopPhone}}<div class="meta">{{.}}</div>{{end}}
</header>
<p>
<strong>Order {{short .Order.ID}}</strong> &middot; {{status .Order.Status}}<br>
<span class="meta">Placed {{datetime .Order.CreatedAt}}</span>
</p>
<p>
Customer: {{.Order.CustomerName}}{{with .Order.CustomerPhone}}<br>Phone: {{.}}{{end}}
</p>
<table>
<thead><tr><th>Product</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Subtotal</th></tr></thead>
<tbody>
{{- $cur := .Order.Currency}}
{{- range .Order.Items}}
<tr><td>{{.Name}}</td><td class="num">{{.Quantity}}</td><td class="num">{{money .Price $cur}}</td><td class="num">{{money .Subtotal $cur}}</td></tr>
{{- end}}
</tbody>
<tfoot><tr><td colspan="3" class="num">Total</td><td class="num">{{money .Order.TotalAmount $cur}}</td></tr></tfoot>
</table>
<p class="meta">Printed {{datetime .PrintedAt}}</p>
</body>
</html>
`))

// RenderSlipHTML fills the slip template
func RenderSlipHTML(data SlipData) (string, error) {
	if data.Order == nil {
		return "", fmt.Errorf("slip has no order")
	}
	var buf bytes.Buffer
	if err := slipTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render slip: %w", err)
	}
	return buf.String(), nil
}
