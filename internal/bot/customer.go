package bot

import (
	"context"
	"fmt"
	"html"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-bot/internal/products"
	"github.com/angelmondragon/storefront-bot/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
)

const (
	catalogPageSize = 10
	ordersPageSize  = 5
	// Category names longer than this would overflow the callback payload.
	maxCategoryBytes = 48
)

func (b *Bot) showMenu(chatID int64, firstName string) error {
	text := "Welcome! Pick what you need below."
	if firstName != "" {
		text = fmt.Sprintf("Welcome, %s! Pick what you need below.", html.EscapeString(firstName))
	}
	return b.send(chatID, text, keyboard(
		tgbotapi.NewInlineKeyboardRow(button("Catalog", actCategory), button("Cart", actCart)),
		tgbotapi.NewInlineKeyboardRow(button("My orders", actOrders)),
	))
}

func (b *Bot) showCategories(ctx context.Context, chatID int64) error {
	categories, err := b.products.Categories(ctx)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		return b.showProducts(ctx, chatID, "*")
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories)+1)
	for _, category := range categories {
		if len(category) > maxCategoryBytes {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(category, actCategory, category)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("All products", actCategory, "*")))
	return b.send(chatID, "Choose a category:", keyboard(rows...))
}

func (b *Bot) showProducts(ctx context.Context, chatID int64, category string) error {
	if category == "" {
		return b.showCategories(ctx, chatID)
	}
	if category == "*" {
		category = ""
	}

	query := products.ListQuery{Category: category}
	query.Pagination.Limit = catalogPageSize
	page, err := b.products.List(ctx, query)
	if err != nil {
		return err
	}
	if len(page.Products) == 0 {
		return b.send(chatID, "Nothing here yet.", nil)
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(page.Products))
	for _, p := range page.Products {
		label := fmt.Sprintf("%s · %s", p.Name, formatPrice(p.Price, b.currency))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(label, actProduct, p.ID.String())))
	}
	title := "Products:"
	if category != "" {
		title = fmt.Sprintf("<b>%s</b>:", html.EscapeString(category))
	}
	return b.send(chatID, title, keyboard(rows...))
}

func (b *Bot) showProduct(ctx context.Context, chatID int64, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	p, err := b.products.Get(ctx, id)
	if err != nil {
		return err
	}

	markup := keyboard(tgbotapi.NewInlineKeyboardRow(
		button("Add to cart", actAdd, p.ID.String()),
		button("Cart", actCart),
	))
	if p.ImageURL == "" {
		return b.send(chatID, productText(p, b.currency), markup)
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(p.ImageURL))
	photo.Caption = productText(p, b.currency)
	photo.ParseMode = tgbotapi.ModeHTML
	photo.ReplyMarkup = markup
	_, err = b.api.Send(photo)
	return err
}

func (b *Bot) addToCart(ctx context.Context, userID int64, rawID string) (string, error) {
	id, err := parseID(rawID)
	if err != nil {
		return "", err
	}
	c, err := b.carts.AddItem(ctx, userID, id, 1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Added. Cart total: %s", formatPrice(c.TotalPrice, b.currency)), nil
}

func (b *Bot) removeFromCart(ctx context.Context, chatID, userID int64, rawID string) (string, error) {
	id, err := parseID(rawID)
	if err != nil {
		return "", err
	}
	if _, err := b.carts.RemoveItem(ctx, userID, id, nil); err != nil {
		return "", err
	}
	return "Removed.", b.showCart(ctx, chatID, userID)
}

func (b *Bot) clearCart(ctx context.Context, chatID, userID int64) (string, error) {
	if _, err := b.carts.Clear(ctx, userID); err != nil && !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		return "", err
	}
	return "Cart cleared.", b.send(chatID, "Your cart is now empty.", nil)
}

func (b *Bot) showCart(ctx context.Context, chatID, userID int64) error {
	view, err := b.carts.View(ctx, userID)
	if err != nil {
		return err
	}
	if len(view.Items) == 0 {
		return b.send(chatID, cartText(view, b.currency), keyboard(
			tgbotapi.NewInlineKeyboardRow(button("Catalog", actCategory)),
		))
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(view.Items)+1)
	for _, line := range view.Items {
		name := line.Name
		if name == "" {
			name = shortID(line.ProductID)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("Remove "+name, actRemove, line.ProductID.String())))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		button("Clear", actClear),
		button("Checkout", actCheckout),
	))
	return b.send(chatID, cartText(view, b.currency), keyboard(rows...))
}

func (b *Bot) showOrders(ctx context.Context, chatID, userID int64) error {
	page, err := b.orders.ListForUser(ctx, userID, ordersPageSize, "")
	if err != nil {
		return err
	}
	if len(page.Orders) == 0 {
		return b.send(chatID, "You have no orders yet.", nil)
	}
	for i := range page.Orders {
		order := &page.Orders[i]
		var markup *tgbotapi.InlineKeyboardMarkup
		if order.Status == enums.OrderStatusDelivered && order.Rating == nil {
			markup = ratingKeyboard(order.ID)
		}
		if err := b.send(chatID, orderText(order, b.currency), markup); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) rateOrder(ctx context.Context, userID int64, args []string) (string, error) {
	if len(args) != 2 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "malformed rating")
	}
	id, err := parseID(args[0])
	if err != nil {
		return "", err
	}
	score, err := strconv.Atoi(args[1])
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "malformed rating")
	}
	if _, err := b.orders.Rate(ctx, userID, id, score); err != nil {
		return "", err
	}
	return "Thanks for your rating!", nil
}

func ratingKeyboard(orderID uuid.UUID) *tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for score := 1; score <= 5; score++ {
		row = append(row, button(strconv.Itoa(score)+"★", actRate, orderID.String(), strconv.Itoa(score)))
	}
	return keyboard(row)
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown item")
	}
	return id, nil
}
