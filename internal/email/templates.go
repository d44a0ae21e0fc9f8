package email

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/marketplace/internal/domain/order"
)

var statusMessages = map[order.Status]string{
	order.StatusConfirmed: "Your order has been confirmed by the seller.",
	order.StatusPreparing: "Your order is being prepared.",
	order.StatusShipped:   "Your order is on its way.",
	order.StatusDelivered: "Your order has been delivered. Thank you for shopping with us!",
	order.StatusCancelled: "Your order has been cancelled.",
}

// BuildOrderConfirmationBody builds the HTML body for the order
// confirmation email.
func BuildOrderConfirmationBody(orderID string, totalAmount float64, items []order.OrderItem) string {
	var itemsHTML strings.Builder
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.ProductID
		}
		itemsHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s SLE</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s SLE</td>
			</tr>`,
			name,
			item.Quantity,
			formatAmount(item.UnitPrice),
			formatAmount(item.TotalPrice),
		))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Thank you for your order</h1>
	<p>We have received your order and the seller will confirm it shortly. Payment is collected in cash on delivery.</p>

	<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
		<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
		<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
	</div>

	<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
		<thead>
			<tr style="background: #f8f9fa;">
				<th style="padding: 12px; text-align: left;">Item</th>
				<th style="padding: 12px; text-align: center;">Qty</th>
				<th style="padding: 12px; text-align: right;">Unit price</th>
				<th style="padding: 12px; text-align: right;">Total</th>
			</tr>
		</thead>
		<tbody>
			%s
		</tbody>
		<tfoot>
			<tr>
				<td colspan="3" style="padding: 12px; text-align: right; font-weight: bold;">Order total</td>
				<td style="padding: 12px; text-align: right; font-weight: bold;">%s SLE</td>
			</tr>
		</tfoot>
	</table>
</body>
</html>`, orderID, itemsHTML.String(), formatAmount(totalAmount))
}

// BuildStatusUpdateBody builds the HTML body for a status update email.
func BuildStatusUpdateBody(orderID string, status order.Status) string {
	message, ok := statusMessages[status]
	if !ok {
		message = fmt.Sprintf("Your order status changed to %s.", status)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Order update</h1>
	<p>%s</p>
	<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
		<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
		<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
	</div>
</body>
</html>`, message, orderID)
}

// formatAmount renders an amount with thousands separators, keeping any
// fractional part as entered.
func formatAmount(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', -1, 64)
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	negative := strings.HasPrefix(intPart, "-")
	if negative {
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String()
	if negative {
		out = "-" + out
	}
	if hasFrac {
		out += "." + fracPart
	}
	return out
}
