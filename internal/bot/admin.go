package bot

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/angelmondragon/storefront-bot/internal/delivery"
	"github.com/angelmondragon/storefront-bot/internal/orders"
	"github.com/angelmondragon/storefront-bot/internal/settings"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	"github.com/angelmondragon/storefront-bot/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
)

const adminPageSize = 10

func (b *Bot) showDashboard(ctx context.Context, chatID int64) error {
	userCount, err := b.users.Count(ctx)
	if err != nil {
		return err
	}
	counts, err := b.orders.CountByStatus(ctx)
	if err != nil {
		return err
	}
	online, err := b.delivery.ListOnline(ctx)
	if err != nil {
		return err
	}
	cfg, err := b.settings.Get(ctx)
	if err != nil {
		return err
	}

	deliveryState := "on"
	toggleLabel := "Turn delivery off"
	if !cfg.IsDeliveryEnabled {
		deliveryState = "off"
		toggleLabel = "Turn delivery on"
	}

	var sb strings.Builder
	sb.WriteString("<b>Dashboard</b>\n\n")
	fmt.Fprintf(&sb, "Users: %d\n", userCount)
	fmt.Fprintf(&sb, "Couriers online: %d\n", len(online))
	fmt.Fprintf(&sb, "Delivery: %s (%s–%s)\n\n", deliveryState, cfg.WorkingHours.Start, cfg.WorkingHours.End)
	for _, status := range enums.OrderStatuses() {
		fmt.Fprintf(&sb, "%s: %d\n", status, counts[status])
	}

	return b.send(chatID, sb.String(), keyboard(
		tgbotapi.NewInlineKeyboardRow(button("Pending orders", actAdminPending), button("Couriers online", actAdminOnline)),
		tgbotapi.NewInlineKeyboardRow(button(toggleLabel, actAdminToggle)),
	))
}

func adminOrderKeyboard(order *models.Order) *tgbotapi.InlineKeyboardMarkup {
	if order.Status.IsTerminal() {
		return nil
	}
	return keyboard(tgbotapi.NewInlineKeyboardRow(
		button("Assign courier", actAdminAssign, order.ID.String()),
		button("Cancel order", actAdminCancel, order.ID.String()),
	))
}

func (b *Bot) handleAdminCallback(ctx context.Context, chatID, adminID int64, action string, args []string) (string, error) {
	switch action {
	case actAdminPending:
		return "", b.showPending(ctx, chatID)
	case actAdminOnline:
		return "", b.showOnlineCouriers(ctx, chatID)
	case actAdminToggle:
		cfg, err := b.settings.Get(ctx)
		if err != nil {
			return "", err
		}
		enabled := !cfg.IsDeliveryEnabled
		if _, err := b.settings.Update(ctx, settings.UpdateInput{IsDeliveryEnabled: &enabled, UpdatedBy: adminID}); err != nil {
			return "", err
		}
		if enabled {
			return "Delivery enabled.", nil
		}
		return "Delivery disabled.", nil
	case actAdminAssign:
		return b.assignOrder(ctx, firstArg(args))
	case actAdminCancel:
		return b.cancelOrder(ctx, firstArg(args))
	}
	return "", nil
}

func (b *Bot) showPending(ctx context.Context, chatID int64) error {
	status := enums.OrderStatusPending
	query := orders.ListQuery{Status: &status}
	query.Pagination.Limit = adminPageSize
	page, err := b.orders.List(ctx, query)
	if err != nil {
		return err
	}
	if len(page.Orders) == 0 {
		return b.send(chatID, "No pending orders.", nil)
	}
	for i := range page.Orders {
		order := &page.Orders[i]
		if err := b.send(chatID, orderText(order, b.currency), adminOrderKeyboard(order)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) showOnlineCouriers(ctx context.Context, chatID int64) error {
	online, err := b.delivery.ListOnline(ctx)
	if err != nil {
		return err
	}
	if len(online) == 0 {
		return b.send(chatID, "No couriers online.", nil)
	}
	var sb strings.Builder
	sb.WriteString("<b>Couriers online</b>\n\n")
	for _, candidate := range delivery.Rank(online) {
		p := candidate.Person
		fmt.Fprintf(&sb, "%s · ★%.1f · %d delivered · score %.2f\n",
			html.EscapeString(p.Name), p.Rating, p.CompletedDeliveries, candidate.Score)
	}
	return b.send(chatID, sb.String(), nil)
}

func (b *Bot) assignOrder(ctx context.Context, rawID string) (string, error) {
	id, err := parseID(rawID)
	if err != nil {
		return "", err
	}
	order, err := b.orders.Assign(ctx, id)
	if err != nil {
		return "", err
	}
	b.notifyCourier(ctx, order)
	return "Courier assigned.", nil
}

func (b *Bot) cancelOrder(ctx context.Context, rawID string) (string, error) {
	id, err := parseID(rawID)
	if err != nil {
		return "", err
	}
	order, err := b.orders.Cancel(ctx, id)
	if err != nil {
		return "", err
	}
	b.notify(ctx, order.UserID, fmt.Sprintf("Your order #%s was cancelled. Contact us if you have questions.", shortID(order.ID)), nil)
	return "Order cancelled.", nil
}

// addCourier handles "/addcourier <telegram_id> <name...>".
func (b *Bot) addCourier(ctx context.Context, chatID, adminID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return b.send(chatID, "Usage: /addcourier <telegram_id> <name>", nil)
	}
	externalID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || externalID <= 0 {
		return b.send(chatID, "Telegram id must be a positive number.", nil)
	}

	person, err := b.delivery.Create(ctx, delivery.CreateInput{
		ExternalID: externalID,
		Name:       strings.Join(fields[1:], " "),
		AddedBy:    adminID,
	})
	if err != nil {
		return err
	}
	if err := SetCommands(b.api, externalID, CourierCommands()); err != nil {
		b.logg.Error(ctx, "failed to publish courier commands", err)
	}
	b.notify(ctx, externalID, "You were added as a delivery person. Use /online when you are ready to take orders.", nil)
	return b.send(chatID, fmt.Sprintf("Delivery person %s added.", html.EscapeString(person.Name)), nil)
}

// removeCourier handles "/removecourier <telegram_id>".
func (b *Bot) removeCourier(ctx context.Context, chatID int64, args string) error {
	externalID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return b.send(chatID, "Usage: /removecourier <telegram_id>", nil)
	}
	person, err := b.delivery.GetByExternalID(ctx, externalID)
	if err != nil {
		return err
	}
	if err := b.delivery.SoftDelete(ctx, person.ID); err != nil {
		return err
	}
	if err := DeleteCommands(b.api, externalID); err != nil {
		b.logg.Error(ctx, "failed to drop courier commands", err)
	}
	return b.send(chatID, fmt.Sprintf("Delivery person %s removed.", html.EscapeString(person.Name)), nil)
}

// setDeliveryEnabled handles "/delivery on|off".
func (b *Bot) setDeliveryEnabled(ctx context.Context, chatID, adminID int64, args string) error {
	var enabled bool
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: /delivery on|off")
	}
	if _, err := b.settings.Update(ctx, settings.UpdateInput{IsDeliveryEnabled: &enabled, UpdatedBy: adminID}); err != nil {
		return err
	}
	if enabled {
		return b.send(chatID, "Delivery is on.", nil)
	}
	return b.send(chatID, "Delivery is off.", nil)
}
