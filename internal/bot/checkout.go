package bot

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/angelmondragon/storefront-bot/internal/orders"
	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
)

const maxAddressLength = 300

// startCheckout checks that an order could be accepted right now and opens
// the zone/address/phone conversation.
func (b *Bot) startCheckout(ctx context.Context, chatID, userID int64) error {
	view, err := b.carts.View(ctx, userID)
	if err != nil {
		return err
	}
	if len(view.Items) == 0 {
		return b.send(chatID, "Your cart is empty. Add something from /catalog first.", nil)
	}

	quote, err := b.settings.Quote(ctx, view.TotalPrice, "")
	if err != nil {
		return err
	}
	if !quote.DeliveryEnabled {
		return b.send(chatID, "Delivery is switched off at the moment. Please try again later.", nil)
	}
	cfg, err := b.settings.Get(ctx)
	if err != nil {
		return err
	}
	if !quote.WithinHours {
		return b.send(chatID, fmt.Sprintf("We deliver from %s to %s. Please come back then.",
			cfg.WorkingHours.Start, cfg.WorkingHours.End), nil)
	}

	if len(cfg.Zones) == 0 {
		if err := b.saveDialog(ctx, userID, &dialog{Step: stepAddress}); err != nil {
			return err
		}
		return b.send(chatID, "Send the delivery address.", nil)
	}

	if err := b.saveDialog(ctx, userID, &dialog{Step: stepZone}); err != nil {
		return err
	}
	return b.send(chatID, "Where should we deliver?", zoneKeyboard(cfg, b.currency))
}

func zoneKeyboard(cfg *models.DeliverySettings, currency string) *tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cfg.Zones)+1)
	for _, zone := range cfg.Zones {
		label := fmt.Sprintf("%s · %s · ~%d min", zone.Name, formatPrice(zone.Price, currency), zone.EstimatedTime)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(label, actZone, zone.Name)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("Cancel", actAbort)))
	return keyboard(rows...)
}

func (b *Bot) pickZone(ctx context.Context, chatID, userID int64, zone string) error {
	d, err := b.loadDialog(ctx, userID)
	if err != nil {
		return err
	}
	if d == nil || d.Step != stepZone {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "this checkout has expired, start again with /checkout")
	}
	d.Zone = zone
	d.Step = stepAddress
	if err := b.saveDialog(ctx, userID, d); err != nil {
		return err
	}
	return b.send(chatID, fmt.Sprintf("Zone: <b>%s</b>\nNow send the delivery address.", html.EscapeString(zone)), nil)
}

func (b *Bot) continueCheckout(ctx context.Context, msg *tgbotapi.Message, d *dialog) error {
	chatID, userID := msg.Chat.ID, msg.From.ID
	text := strings.TrimSpace(msg.Text)

	switch d.Step {
	case stepZone:
		return b.send(chatID, "Please pick a zone using the buttons above, or /cancel.", nil)

	case stepAddress:
		if text == "" || len(text) > maxAddressLength {
			return b.send(chatID, "Please send the address as a text message.", nil)
		}
		d.Address = text
		d.Step = stepPhone
		if err := b.saveDialog(ctx, userID, d); err != nil {
			return err
		}
		contact := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("Share my phone number"),
		))
		contact.OneTimeKeyboard = true
		contact.ResizeKeyboard = true
		return b.sendWithReplyKeyboard(chatID, "Send your phone number or tap the button below.", contact)

	case stepPhone:
		phone := text
		if msg.Contact != nil {
			phone = strings.TrimSpace(msg.Contact.PhoneNumber)
		}
		if phone == "" {
			return b.send(chatID, "Please send a phone number.", nil)
		}
		if _, err := b.users.SetPhone(ctx, userID, phone); err != nil {
			return err
		}
		d.Phone = phone
		d.Step = stepConfirm
		if err := b.saveDialog(ctx, userID, d); err != nil {
			return err
		}
		if err := b.sendWithReplyKeyboard(chatID, "Thanks!", tgbotapi.NewRemoveKeyboard(true)); err != nil {
			return err
		}
		return b.sendConfirmation(ctx, chatID, userID, d)

	case stepConfirm:
		if text != "" {
			d.Comment = text
			if err := b.saveDialog(ctx, userID, d); err != nil {
				return err
			}
			return b.send(chatID, "Comment saved. Tap Confirm to place the order.", nil)
		}
		return b.sendConfirmation(ctx, chatID, userID, d)
	}

	_ = b.dialogs.ClearDialog(ctx, userID)
	return b.send(chatID, "Let's start over: /checkout", nil)
}

func (b *Bot) sendConfirmation(ctx context.Context, chatID, userID int64, d *dialog) error {
	view, err := b.carts.View(ctx, userID)
	if err != nil {
		return err
	}
	quote, err := b.settings.Quote(ctx, view.TotalPrice, d.Zone)
	if err != nil {
		return err
	}
	text := quoteText(quote, d, b.currency) + "\n\nYou can send a comment for the courier before confirming."
	return b.send(chatID, text, keyboard(tgbotapi.NewInlineKeyboardRow(
		button("Confirm", actConfirm),
		button("Cancel", actAbort),
	)))
}

func (b *Bot) confirmCheckout(ctx context.Context, chatID, userID int64) (string, error) {
	d, err := b.loadDialog(ctx, userID)
	if err != nil {
		return "", err
	}
	if d == nil || d.Step != stepConfirm {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "this checkout has expired, start again with /checkout")
	}

	order, err := b.orders.Checkout(ctx, orders.CheckoutInput{
		UserID:  userID,
		Zone:    d.Zone,
		Address: d.Address,
		Phone:   d.Phone,
		Comment: d.Comment,
	})
	if err != nil {
		return "", err
	}
	if err := b.dialogs.ClearDialog(ctx, userID); err != nil {
		b.logg.Error(ctx, "failed to clear checkout dialog", err)
	}

	text := orderText(order, b.currency) + fmt.Sprintf("\n\nEstimated delivery: ~%d min", order.EstimatedMinutes)
	if err := b.send(chatID, text, nil); err != nil {
		return "", err
	}
	b.notify(ctx, b.adminID, "New order\n\n"+orderText(order, b.currency), adminOrderKeyboard(order))
	if order.DeliveryPersonID != nil {
		b.notifyCourier(ctx, order)
	}
	return "Order placed!", nil
}

func (b *Bot) abortCheckout(ctx context.Context, chatID, userID int64) error {
	if err := b.dialogs.ClearDialog(ctx, userID); err != nil {
		return err
	}
	return b.sendWithReplyKeyboard(chatID, "Checkout cancelled. Your cart is kept.", tgbotapi.NewRemoveKeyboard(true))
}
