package billing

import (
	"html/template"

	"repairdesk/internal/domain"
)

var invoiceTmpl = template.Must(template.New("invoice").
	Funcs(template.FuncMap{
		"subtotal": func(p domain.RepairPart) float64 {
			price := p.UnitPrice
			if price == 0 && p.Item != nil {
				price = p.Item.SellingPrice
			}
			return price * float64(p.Quantity)
		},
	}).
	Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice - Repair #{{.Order.ID}}</title>
<style>
  body { font-family: Arial, sans-serif; margin: 40px; color: #222; }
  h1 { border-bottom: 2px solid #222; padding-bottom: 8px; }
  table { border-collapse: collapse; width: 100%; margin: 16px 0; }
  th, td { border: 1px solid #ccc; padding: 8px; text-align: left; }
  th { background: #f4f4f4; }
  .totals td { border: none; }
  .totals .label { text-align: right; font-weight: bold; }
  .due { font-size: 1.2em; font-weight: bold; }
</style>
</head>
<body>
<h1>Invoice - Repair #{{.Order.ID}}</h1>

{{if .User}}<p><strong>Customer:</strong> {{.User.FirstName}} {{.User.LastName}} ({{.User.Email}})</p>{{end}}
<p><strong>Device:</strong> {{.Order.DeviceType}} {{.Order.Brand}} {{.Order.Model}}</p>
<p><strong>Issue:</strong> {{.Order.IssueDescription}}</p>
<p><strong>Status:</strong> {{.Order.Status}}</p>

<h2>Parts</h2>
{{if .Parts}}
<table>
<tr><th>Part</th><th>Qty</th><th>Unit price</th><th>Subtotal</th></tr>
{{range .Parts}}
<tr>
  <td>{{if .Item}}{{.Item.Name}} ({{.Item.PartNumber}}){{else}}#{{.InventoryID}}{{end}}</td>
  <td>{{.Quantity}}</td>
  <td>{{printf "%.2f" .UnitPrice}}</td>
  <td>{{printf "%.2f" (subtotal .)}}</td>
</tr>
{{end}}
</table>
{{else}}<p>No parts used.</p>{{end}}

<h2>Payments</h2>
{{if .Payments}}
<table>
<tr><th>Date</th><th>Method</th><th>Amount</th></tr>
{{range .Payments}}
<tr><td>{{.PaidAt.Format "2006-01-02"}}</td><td>{{.Method}}</td><td>{{printf "%.2f" .Amount}}</td></tr>
{{end}}
</table>
{{else}}<p>No payments recorded.</p>{{end}}

<table class="totals">
<tr><td class="label">Repair cost:</td><td>{{printf "%.2f" .RepairCost}}</td></tr>
<tr><td class="label">Parts total:</td><td>{{printf "%.2f" .PartsTotal}}</td></tr>
<tr><td class="label">Grand total:</td><td>{{printf "%.2f" .GrandTotal}}</td></tr>
<tr><td class="label">Paid:</td><td>{{printf "%.2f" .PaymentsTotal}}</td></tr>
<tr><td class="label due">Balance due:</td><td class="due">{{printf "%.2f" .BalanceDue}}</td></tr>
</table>

<p><small>Generated {{.GeneratedAt.Format "2006-01-02 15:04"}}</small></p>
</body>
</html>
`))
