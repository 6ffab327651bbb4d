package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-bot/internal/cart"
	"github.com/angelmondragon/storefront-bot/internal/settings"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/enums"
)

// formatPrice renders an amount with space-grouped thousands, e.g. "12 500 UZS".
func formatPrice(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var sb strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sign + sb.String() + " " + currency)
}

func shortID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}

func productText(p *models.Product, currency string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n", html.EscapeString(p.Name))
	if p.Description != "" {
		fmt.Fprintf(&sb, "%s\n", html.EscapeString(p.Description))
	}
	fmt.Fprintf(&sb, "\nPrice: %s", formatPrice(p.Price, currency))
	if !p.Available() {
		sb.WriteString("\nOut of stock")
	}
	return sb.String()
}

func cartText(view *cart.View, currency string) string {
	if len(view.Items) == 0 {
		return "Your cart is empty."
	}
	var sb strings.Builder
	sb.WriteString("<b>Your cart</b>\n\n")
	for _, line := range view.Items {
		name := line.Name
		if name == "" {
			name = "Unknown product"
		}
		fmt.Fprintf(&sb, "%s x%d = %s", html.EscapeString(name), line.Quantity, formatPrice(line.Total, currency))
		if !line.Available {
			sb.WriteString(" (unavailable)")
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "\nTotal: <b>%s</b>", formatPrice(view.TotalPrice, currency))
	return sb.String()
}

func quoteText(q *settings.Quote, d *dialog, currency string) string {
	var sb strings.Builder
	sb.WriteString("<b>Confirm your order</b>\n\n")
	if d.Zone != "" {
		fmt.Fprintf(&sb, "Zone: %s\n", html.EscapeString(d.Zone))
	}
	fmt.Fprintf(&sb, "Address: %s\nPhone: %s\n\n", html.EscapeString(d.Address), html.EscapeString(d.Phone))
	fmt.Fprintf(&sb, "Items: %s\n", formatPrice(q.OrderAmount, currency))
	if q.FreeDelivery {
		sb.WriteString("Delivery: free\n")
	} else {
		fmt.Fprintf(&sb, "Delivery: %s\n", formatPrice(q.DeliveryPrice, currency))
	}
	fmt.Fprintf(&sb, "Total: <b>%s</b>\nEstimated time: %d min", formatPrice(q.Total, currency), q.EstimatedMinutes)
	return sb.String()
}

func orderText(o *models.Order, currency string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Order #%s</b> (%s)\n", shortID(o.ID), statusLabel(o.Status))
	for _, line := range o.Items {
		fmt.Fprintf(&sb, "%s x%d\n", html.EscapeString(line.Name), line.Quantity)
	}
	fmt.Fprintf(&sb, "Address: %s\nPhone: %s\n", html.EscapeString(o.Address), html.EscapeString(o.Phone))
	if o.Comment != "" {
		fmt.Fprintf(&sb, "Comment: %s\n", html.EscapeString(o.Comment))
	}
	fmt.Fprintf(&sb, "Total: %s", formatPrice(o.Total, currency))
	return sb.String()
}

func statusLabel(s enums.OrderStatus) string {
	switch s {
	case enums.OrderStatusPending:
		return "waiting for a courier"
	case enums.OrderStatusAssigned:
		return "courier assigned"
	case enums.OrderStatusDelivering:
		return "on the way"
	case enums.OrderStatusDelivered:
		return "delivered"
	case enums.OrderStatusCancelled:
		return "cancelled"
	default:
		return s.String()
	}
}
