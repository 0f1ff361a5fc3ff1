package email

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"net/mail"
	texttemplate "text/template"
	"time"

	"github.com/gitshopapp/merchconfig/internal/catalog"
	"github.com/gitshopapp/merchconfig/internal/models"
)

const TemplateNewOrder = "new_order"

// OrderNotification is the data behind the manager's new-order email.
type OrderNotification struct {
	OrderID         string
	CustomerName    string
	CustomerContact string
	CustomerComment string
	Lines           []catalog.ConfigLine
	Quantity        int
	UnitPrice       string
	Total           string
	CreatedAt       time.Time
}

// NewOrderNotification prepares notification data for order, resolving
// configuration ids against snapshot.
func NewOrderNotification(snapshot *catalog.Snapshot, order *models.Order, currencySymbol string) *OrderNotification {
	return &OrderNotification{
		OrderID:         order.ID.String(),
		CustomerName:    order.CustomerName,
		CustomerContact: order.CustomerContact,
		CustomerComment: order.CustomerComment,
		Lines:           catalog.DescribeConfiguration(snapshot, order.Configuration),
		Quantity:        order.Quantity,
		UnitPrice:       FormatMoney(order.Configuration.UnitPrice, currencySymbol),
		Total:           FormatMoney(order.CalculatedPrice, currencySymbol),
		CreatedAt:       order.CreatedAt,
	}
}

// Renderer renders the notification templates.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := map[string]any{
		"formatDate": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04 UTC")
		},
	}

	html, err := htmltemplate.New(TemplateNewOrder).Funcs(funcs).Parse(newOrderHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML template %s: %w", TemplateNewOrder, err)
	}
	text, err := texttemplate.New(TemplateNewOrder).Funcs(funcs).Parse(newOrderText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template %s: %w", TemplateNewOrder, err)
	}

	return &Renderer{html: html, text: text}, nil
}

// RenderNewOrder renders the new-order email addressed to the manager at to.
func (r *Renderer) RenderNewOrder(_ context.Context, to string, data *OrderNotification) (*Email, error) {
	if data == nil {
		return nil, fmt.Errorf("notification data is required")
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := r.html.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}
	if err := r.text.Execute(&textBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render text template: %w", err)
	}

	return &Email{
		To:      to,
		ReplyTo: replyAddress(data.CustomerContact),
		Subject: fmt.Sprintf("New order %s from %s", shortID(data.OrderID), data.CustomerName),
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}

// SendNewOrder renders and sends the new-order notification. A nil provider is a no-op.
func SendNewOrder(ctx context.Context, p Provider, renderer *Renderer, to string, data *OrderNotification) error {
	if p == nil {
		return nil
	}
	if renderer == nil {
		var err error
		if renderer, err = NewRenderer(); err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
	}

	msg, err := renderer.RenderNewOrder(ctx, to, data)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	return p.SendEmail(ctx, msg)
}

// replyAddress returns contact when it is an email address. Contacts are
// free text and are often a phone number or messenger handle.
func replyAddress(contact string) string {
	addr, err := mail.ParseAddress(contact)
	if err != nil {
		return ""
	}
	return addr.Address
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

const newOrderText = `New order received

Order: {{.OrderID}}
Date: {{formatDate .CreatedAt}}

Customer: {{.CustomerName}}
Contact: {{.CustomerContact}}
{{if .CustomerComment}}Comment: {{.CustomerComment}}
{{end}}
Configuration:
{{range .Lines}}- {{.Label}}: {{.Value}}
{{end}}
Quantity: {{.Quantity}}
Unit price: {{.UnitPrice}}
Total: {{.Total}}
`

const newOrderHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>New order</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #2563eb; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .order-info { background: white; padding: 15px; border-radius: 6px; margin: 15px 0; }
    .items-table { width: 100%; border-collapse: collapse; margin: 15px 0; }
    .items-table td { padding: 8px 10px; border-bottom: 1px solid #e5e7eb; }
    .total { font-size: 18px; font-weight: bold; text-align: right; padding: 15px 0; }
  </style>
</head>
<body>
  <div class="header">
    <h1>New order</h1>
    <p>{{.OrderID}}</p>
  </div>
  <div class="content">
    <div class="order-info">
      <strong>Customer:</strong> {{.CustomerName}}<br>
      <strong>Contact:</strong> {{.CustomerContact}}<br>
      <strong>Date:</strong> {{formatDate .CreatedAt}}
      {{if .CustomerComment}}<p><strong>Comment:</strong> {{.CustomerComment}}</p>{{end}}
    </div>

    <h3>Configuration</h3>
    <table class="items-table">
      <tbody>
        {{range .Lines}}
        <tr>
          <td>{{.Label}}</td>
          <td>{{.Value}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="total">
      <p>Quantity: {{.Quantity}}</p>
      <p>Unit price: {{.UnitPrice}}</p>
      <p>Total: {{.Total}}</p>
    </div>
  </div>
</body>
</html>
`
