package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-bot/internal/cart"
	"github.com/angelmondragon/storefront-bot/internal/delivery"
	"github.com/angelmondragon/storefront-bot/internal/orders"
	"github.com/angelmondragon/storefront-bot/internal/products"
	"github.com/angelmondragon/storefront-bot/internal/settings"
	"github.com/angelmondragon/storefront-bot/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
	"github.com/angelmondragon/storefront-bot/pkg/metrics"
)

const (
	defaultPollTimeout = 60 * time.Second
	defaultDialogTTL   = 30 * time.Minute
	genericFailure     = "Something went wrong, please try again."
)

// Params wires the bot to the storefront services.
type Params struct {
	API      API
	Users    users.Service
	Products products.Service
	Carts    cart.Service
	Orders   orders.Service
	Delivery delivery.Service
	Settings settings.Service
	Dialogs  DialogStore
	// Limiter is optional; nil disables per-user throttling.
	Limiter     RateLimiter
	Logger      *logger.Logger
	Metrics     *metrics.BotMetrics
	AdminID     int64
	Currency    string
	PollTimeout time.Duration
	DialogTTL   time.Duration
	RateLimit   int64
	RateWindow  time.Duration
}

// Bot turns Telegram updates into storefront operations.
type Bot struct {
	api         API
	users       users.Service
	products    products.Service
	carts       cart.Service
	orders      orders.Service
	delivery    delivery.Service
	settings    settings.Service
	dialogs     DialogStore
	limiter     RateLimiter
	logg        *logger.Logger
	metrics     *metrics.BotMetrics
	adminID     int64
	currency    string
	pollTimeout time.Duration
	dialogTTL   time.Duration
	rateLimit   int64
	rateWindow  time.Duration
	now         func() time.Time
}

func New(p Params) (*Bot, error) {
	switch {
	case p.API == nil:
		return nil, fmt.Errorf("telegram api required")
	case p.Users == nil:
		return nil, fmt.Errorf("users service required")
	case p.Products == nil:
		return nil, fmt.Errorf("products service required")
	case p.Carts == nil:
		return nil, fmt.Errorf("cart service required")
	case p.Orders == nil:
		return nil, fmt.Errorf("orders service required")
	case p.Delivery == nil:
		return nil, fmt.Errorf("delivery service required")
	case p.Settings == nil:
		return nil, fmt.Errorf("settings service required")
	case p.Dialogs == nil:
		return nil, fmt.Errorf("dialog store required")
	case p.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	b := &Bot{
		api:         p.API,
		users:       p.Users,
		products:    p.Products,
		carts:       p.Carts,
		orders:      p.Orders,
		delivery:    p.Delivery,
		settings:    p.Settings,
		dialogs:     p.Dialogs,
		limiter:     p.Limiter,
		logg:        p.Logger,
		metrics:     p.Metrics,
		adminID:     p.AdminID,
		currency:    p.Currency,
		pollTimeout: p.PollTimeout,
		dialogTTL:   p.DialogTTL,
		rateLimit:   p.RateLimit,
		rateWindow:  p.RateWindow,
		now:         time.Now,
	}
	if b.pollTimeout <= 0 {
		b.pollTimeout = defaultPollTimeout
	}
	if b.dialogTTL <= 0 {
		b.dialogTTL = defaultDialogTTL
	}
	return b, nil
}

// PublishCommands installs the command menus: the customer menu for all
// private chats, the admin menu for the admin chat and the courier menu for
// every active delivery person.
func (b *Bot) PublishCommands(ctx context.Context) error {
	err := SetCommands(b.api, 0, CustomerCommands())
	if b.adminID != 0 {
		err = multierr.Append(err, SetCommands(b.api, b.adminID, AdminCommands()))
	}
	couriers, listErr := b.delivery.ListActive(ctx)
	if listErr != nil {
		return multierr.Append(err, listErr)
	}
	for _, person := range couriers {
		if person.ExternalID == b.adminID {
			continue
		}
		err = multierr.Append(err, SetCommands(b.api, person.ExternalID, CourierCommands()))
	}
	return err
}

// Run long-polls Telegram until ctx is cancelled. Updates are handled one at
// a time so a user's messages are applied in order.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(b.pollTimeout.Seconds())
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(cfg)
	defer b.api.StopReceivingUpdates()

	b.logg.Info(ctx, "bot polling started")
	for {
		select {
		case <-ctx.Done():
			b.logg.Info(ctx, "bot polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.process(ctx, update)
		}
	}
}

func (b *Bot) process(ctx context.Context, update tgbotapi.Update) {
	from := update.SentFrom()
	chat := update.FromChat()
	if from == nil || chat == nil || !chat.IsPrivate() {
		return
	}

	start := b.now()
	command := commandName(update)
	ctx = b.logg.WithFields(ctx, map[string]any{
		"update_id": update.UpdateID,
		"command":   command,
	})
	ctx = b.logg.WithUserID(ctx, from.ID)
	ctx = b.logg.WithChatID(ctx, chat.ID)

	if !b.allow(ctx, from.ID) {
		if update.CallbackQuery != nil {
			b.answer(ctx, update.CallbackQuery, "Too many requests, slow down.", true)
		}
		return
	}

	err := b.handle(ctx, update)
	b.metrics.Observe(command, b.now().Sub(start), err)
	if err != nil {
		b.report(ctx, update, chat.ID, err)
	}
}

func (b *Bot) handle(ctx context.Context, update tgbotapi.Update) error {
	from := update.SentFrom()
	if _, err := b.users.Register(ctx, users.Profile{
		ID:           from.ID,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		Username:     from.UserName,
		LanguageCode: from.LanguageCode,
	}); err != nil {
		return err
	}

	switch {
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	}
	return nil
}

func (b *Bot) allow(ctx context.Context, userID int64) bool {
	if b.limiter == nil || b.rateLimit <= 0 {
		return true
	}
	allowed, _, err := b.limiter.FixedWindowAllow(ctx, fmt.Sprintf("bot:%d", userID), b.rateLimit, b.rateWindow)
	if err != nil {
		b.logg.Error(ctx, "rate limiter unavailable", err)
		return true
	}
	if !allowed {
		b.logg.Warn(ctx, "update throttled")
	}
	return allowed
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.adminID != 0 && userID == b.adminID
}

// report tells the user why their action failed. Domain errors carry a
// message safe to show; anything else gets a generic reply.
func (b *Bot) report(ctx context.Context, update tgbotapi.Update, chatID int64, err error) {
	text := userMessage(err)
	if typed := pkgerrors.As(err); typed == nil || pkgerrors.MetadataFor(typed.Code()).HTTPStatus >= 500 {
		b.logg.Error(ctx, "bot update failed", err)
	} else {
		b.logg.Warn(b.logg.WithField(ctx, "error", err.Error()), "bot update rejected")
	}

	if update.CallbackQuery != nil {
		b.answer(ctx, update.CallbackQuery, text, true)
		return
	}
	if sendErr := b.send(chatID, text, nil); sendErr != nil {
		b.logg.Error(ctx, "failed to send error reply", sendErr)
	}
}

func userMessage(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return genericFailure
	}
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeStateConflict,
		pkgerrors.CodeProductUnavailable,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeNoCandidate,
		pkgerrors.CodeForbidden:
		msg := typed.Message()
		if msg == "" {
			return genericFailure
		}
		return strings.ToUpper(msg[:1]) + msg[1:] + "."
	default:
		return genericFailure
	}
}

func commandName(update tgbotapi.Update) string {
	switch {
	case update.CallbackQuery != nil:
		action, _ := parseCallback(update.CallbackQuery.Data)
		return "callback_" + action
	case update.Message == nil:
		return "unknown"
	case update.Message.IsCommand():
		return update.Message.Command()
	case update.Message.Contact != nil:
		return "contact"
	case update.Message.Location != nil:
		return "location"
	default:
		return "text"
	}
}

func (b *Bot) send(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyKeyboard(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

// notify sends to another user's chat; failures are logged because the
// action that triggered it has already succeeded.
func (b *Bot) notify(ctx context.Context, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if chatID == 0 {
		return
	}
	if err := b.send(chatID, text, markup); err != nil {
		b.logg.Error(b.logg.WithField(ctx, "notify_chat_id", chatID), "failed to notify chat", err)
	}
}

// answer closes the callback spinner, optionally as a modal alert.
func (b *Bot) answer(ctx context.Context, cb *tgbotapi.CallbackQuery, text string, alert bool) {
	cfg := tgbotapi.NewCallback(cb.ID, text)
	if alert {
		cfg = tgbotapi.NewCallbackWithAlert(cb.ID, text)
	}
	if _, err := b.api.Request(cfg); err != nil {
		b.logg.Error(ctx, "failed to answer callback", err)
	}
}
