package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		return b.handleCommand(ctx, msg)
	}
	if msg.Location != nil {
		return b.handleLocation(ctx, msg)
	}

	d, err := b.loadDialog(ctx, msg.From.ID)
	if err != nil {
		return err
	}
	if d != nil {
		return b.continueCheckout(ctx, msg, d)
	}
	return b.send(msg.Chat.ID, "Use /catalog to browse products or /cart to see your cart.", nil)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID, userID := msg.Chat.ID, msg.From.ID
	switch msg.Command() {
	case cmdStart:
		return b.showMenu(chatID, msg.From.FirstName)
	case cmdCatalog:
		return b.showCategories(ctx, chatID)
	case cmdCart:
		return b.showCart(ctx, chatID, userID)
	case cmdClear:
		if _, err := b.carts.Clear(ctx, userID); err != nil && !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return err
		}
		return b.send(chatID, "Your cart is now empty.", nil)
	case cmdCheckout:
		return b.startCheckout(ctx, chatID, userID)
	case cmdOrders:
		return b.showOrders(ctx, chatID, userID)
	case cmdCancel:
		return b.abortCheckout(ctx, chatID, userID)
	case cmdOnline:
		return b.setOnline(ctx, chatID, userID, true)
	case cmdOffline:
		return b.setOnline(ctx, chatID, userID, false)
	}

	if !b.isAdmin(userID) {
		return b.send(chatID, "Unknown command. Try /start.", nil)
	}
	switch msg.Command() {
	case cmdAdmin:
		return b.showDashboard(ctx, chatID)
	case cmdAddCourier:
		return b.addCourier(ctx, chatID, userID, msg.CommandArguments())
	case cmdRemoveCourier:
		return b.removeCourier(ctx, chatID, msg.CommandArguments())
	case cmdDeliveryToggle:
		return b.setDeliveryEnabled(ctx, chatID, userID, msg.CommandArguments())
	}
	return b.send(chatID, "Unknown command. Try /start.", nil)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil {
		b.answer(ctx, cb, "", false)
		return nil
	}
	chatID, userID := cb.Message.Chat.ID, cb.From.ID
	action, args := parseCallback(cb.Data)

	var (
		popup string
		err   error
	)
	switch action {
	case actCategory:
		err = b.showProducts(ctx, chatID, firstArg(args))
	case actProduct:
		err = b.showProduct(ctx, chatID, firstArg(args))
	case actAdd:
		popup, err = b.addToCart(ctx, userID, firstArg(args))
	case actRemove:
		popup, err = b.removeFromCart(ctx, chatID, userID, firstArg(args))
	case actCart:
		err = b.showCart(ctx, chatID, userID)
	case actClear:
		popup, err = b.clearCart(ctx, chatID, userID)
	case actOrders:
		err = b.showOrders(ctx, chatID, userID)
	case actCheckout:
		err = b.startCheckout(ctx, chatID, userID)
	case actZone:
		err = b.pickZone(ctx, chatID, userID, firstArg(args))
	case actConfirm:
		popup, err = b.confirmCheckout(ctx, chatID, userID)
	case actAbort:
		err = b.abortCheckout(ctx, chatID, userID)
	case actRate:
		popup, err = b.rateOrder(ctx, userID, args)
	case actDelivering:
		popup, err = b.markDelivering(ctx, userID, firstArg(args))
	case actDelivered:
		popup, err = b.markDelivered(ctx, userID, firstArg(args))
	case actAdminPending, actAdminAssign, actAdminCancel, actAdminToggle, actAdminOnline:
		if !b.isAdmin(userID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the shop admin can do that")
		}
		popup, err = b.handleAdminCallback(ctx, chatID, userID, action, args)
	default:
		popup = "This button is no longer supported."
	}
	if err != nil {
		return err
	}
	b.answer(ctx, cb, popup, false)
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
