package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/angelmondragon/storefront-bot/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/types"
)

// courierFor resolves the delivery person behind a Telegram user.
func (b *Bot) courierFor(ctx context.Context, userID int64) (*models.DeliveryPerson, error) {
	person, err := b.delivery.GetByExternalID(ctx, userID)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "you are not registered as a delivery person")
		}
		return nil, err
	}
	if !person.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "your delivery account is disabled")
	}
	return person, nil
}

func (b *Bot) setOnline(ctx context.Context, chatID, userID int64, online bool) error {
	person, err := b.courierFor(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := b.delivery.SetOnlineStatus(ctx, person.ID, online); err != nil {
		return err
	}
	if !online {
		return b.sendWithReplyKeyboard(chatID, "You are offline. No new orders will be assigned to you.", tgbotapi.NewRemoveKeyboard(true))
	}
	share := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButtonLocation("Share my location"),
	))
	share.ResizeKeyboard = true
	return b.sendWithReplyKeyboard(chatID, "You are online and can receive orders. Share your location to help dispatch.", share)
}

func (b *Bot) handleLocation(ctx context.Context, msg *tgbotapi.Message) error {
	person, err := b.courierFor(ctx, msg.From.ID)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeForbidden) {
			return b.send(msg.Chat.ID, "Thanks, but we only need locations from couriers.", nil)
		}
		return err
	}
	location := types.Location{Lat: msg.Location.Latitude, Lng: msg.Location.Longitude}
	if _, err := b.delivery.UpdateLocation(ctx, person.ID, location); err != nil {
		return err
	}
	return b.send(msg.Chat.ID, "Location updated.", nil)
}

func courierOrderKeyboard(order *models.Order) *tgbotapi.InlineKeyboardMarkup {
	return keyboard(tgbotapi.NewInlineKeyboardRow(
		button("Picked up", actDelivering, order.ID.String()),
		button("Delivered", actDelivered, order.ID.String()),
	))
}

// notifyCourier tells the assigned delivery person about a new order.
func (b *Bot) notifyCourier(ctx context.Context, order *models.Order) {
	if order.DeliveryPersonID == nil {
		return
	}
	person, err := b.delivery.Get(ctx, *order.DeliveryPersonID)
	if err != nil {
		b.logg.Error(ctx, "failed to load assigned delivery person", err)
		return
	}
	b.notify(ctx, person.ExternalID, "New delivery for you\n\n"+orderText(order, b.currency), courierOrderKeyboard(order))
	b.notify(ctx, order.UserID, fmt.Sprintf("Courier %s is on your order #%s.", person.Name, shortID(order.ID)), nil)
}

// ownedOrder loads an order and checks it is assigned to the calling courier.
func (b *Bot) ownedOrder(ctx context.Context, userID int64, rawID string) (*models.Order, error) {
	person, err := b.courierFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	order, err := b.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.DeliveryPersonID == nil || *order.DeliveryPersonID != person.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "this order is assigned to someone else")
	}
	return order, nil
}

func (b *Bot) markDelivering(ctx context.Context, userID int64, rawID string) (string, error) {
	order, err := b.ownedOrder(ctx, userID, rawID)
	if err != nil {
		return "", err
	}
	if _, err := b.orders.MarkDelivering(ctx, order.ID); err != nil {
		return "", err
	}
	b.notify(ctx, order.UserID, fmt.Sprintf("Your order #%s is on the way.", shortID(order.ID)), nil)
	return "Marked as picked up.", nil
}

func (b *Bot) markDelivered(ctx context.Context, userID int64, rawID string) (string, error) {
	order, err := b.ownedOrder(ctx, userID, rawID)
	if err != nil {
		return "", err
	}
	if _, err := b.orders.Complete(ctx, order.ID); err != nil {
		return "", err
	}
	b.notify(ctx, order.UserID, fmt.Sprintf("Your order #%s was delivered. How was it?", shortID(order.ID)), ratingKeyboard(order.ID))
	return "Delivery completed. Thank you!", nil
}
