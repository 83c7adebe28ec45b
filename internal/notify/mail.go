package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"storefront/internal/models"
	"storefront/pkg/mailer"
)

// Mailer sends a single email.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": models.FormatCents,
	"opt": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}).Parse(`<div style="font-family:sans-serif">
<h2>Thanks for your order!</h2>
<p>We'll email pickup details soon.</p>
<table cellpadding="4">
<tr><th align="left">Item</th><th align="left">Size</th><th align="left">Color</th><th align="right">Qty</th><th align="right">Total</th></tr>
{{range .Order.Items}}<tr><td>{{.ProductName}}</td><td>{{opt .Size}}</td><td>{{opt .Color}}</td><td align="right">{{.Quantity}}</td><td align="right">${{money .LineTotalCents}}</td></tr>
{{end}}</table>
<p><strong>Order total: ${{money .Order.AmountTotalCents}} {{.Currency}}</strong></p>
{{if .SiteURL}}<p><a href="{{.SiteURL}}">{{.StoreName}}</a></p>{{end}}
</div>`))

// MailNotifier emails a receipt when an order is paid.
type MailNotifier struct {
	mailer    Mailer
	from      string
	storeName string
	siteURL   string
}

// NewMailNotifier creates a MailNotifier. An empty from address disables sending.
func NewMailNotifier(m Mailer, from, storeName, siteURL string) *MailNotifier {
	return &MailNotifier{mailer: m, from: from, storeName: storeName, siteURL: siteURL}
}

// OrderPaid sends the receipt for order. It is a no-op without a sender or recipient.
func (n *MailNotifier) OrderPaid(ctx context.Context, order *models.Order) error {
	if n.mailer == nil || n.from == "" || order.Email == "" {
		return nil
	}
	html, err := n.RenderReceipt(order)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, mailer.Message{
		From:    n.from,
		To:      order.Email,
		Subject: fmt.Sprintf("%s Order Confirmation", n.storeName),
		HTML:    html,
	})
}

// RenderReceipt renders the HTML receipt body.
func (n *MailNotifier) RenderReceipt(order *models.Order) (string, error) {
	var buf bytes.Buffer
	err := receiptTemplate.Execute(&buf, map[string]interface{}{
		"Order":     order,
		"Currency":  strings.ToUpper(order.Currency),
		"StoreName": n.storeName,
		"SiteURL":   n.siteURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.String(), nil
}
