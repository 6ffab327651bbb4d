package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	cmdStart          = "start"
	cmdCatalog        = "catalog"
	cmdCart           = "cart"
	cmdClear          = "clear"
	cmdCheckout       = "checkout"
	cmdOrders         = "orders"
	cmdCancel         = "cancel"
	cmdOnline         = "online"
	cmdOffline        = "offline"
	cmdAdmin          = "admin"
	cmdAddCourier     = "addcourier"
	cmdRemoveCourier  = "removecourier"
	cmdDeliveryToggle = "delivery"
)

// CustomerCommands is the menu every private chat sees.
func CustomerCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: cmdStart, Description: "Main menu"},
		{Command: cmdCatalog, Description: "Browse products"},
		{Command: cmdCart, Description: "Show cart"},
		{Command: cmdClear, Description: "Empty cart"},
		{Command: cmdCheckout, Description: "Place an order"},
		{Command: cmdOrders, Description: "My orders"},
		{Command: cmdCancel, Description: "Abort the current step"},
	}
}

// CourierCommands extends the customer menu for delivery persons.
func CourierCommands() []tgbotapi.BotCommand {
	return append(CustomerCommands(),
		tgbotapi.BotCommand{Command: cmdOnline, Description: "Start accepting orders"},
		tgbotapi.BotCommand{Command: cmdOffline, Description: "Stop accepting orders"},
	)
}

// AdminCommands extends the customer menu for the shop admin.
func AdminCommands() []tgbotapi.BotCommand {
	return append(CustomerCommands(),
		tgbotapi.BotCommand{Command: cmdAdmin, Description: "Shop dashboard"},
		tgbotapi.BotCommand{Command: cmdAddCourier, Description: "Add delivery person: <telegram_id> <name>"},
		tgbotapi.BotCommand{Command: cmdRemoveCourier, Description: "Remove delivery person: <telegram_id>"},
		tgbotapi.BotCommand{Command: cmdDeliveryToggle, Description: "Delivery on|off"},
	)
}

// SetCommands publishes commands for every private chat, or for one chat
// when chatID is non-zero.
func SetCommands(api API, chatID int64, commands []tgbotapi.BotCommand) error {
	cfg := tgbotapi.NewSetMyCommandsWithScope(scopeFor(chatID), commands...)
	if _, err := api.Request(cfg); err != nil {
		return fmt.Errorf("set commands: %w", err)
	}
	return nil
}

// DeleteCommands drops the chat-scoped menu so the chat falls back to the
// private-chat default.
func DeleteCommands(api API, chatID int64) error {
	cfg := tgbotapi.NewDeleteMyCommandsWithScope(scopeFor(chatID))
	if _, err := api.Request(cfg); err != nil {
		return fmt.Errorf("delete commands: %w", err)
	}
	return nil
}

func scopeFor(chatID int64) tgbotapi.BotCommandScope {
	if chatID == 0 {
		return tgbotapi.NewBotCommandScopeAllPrivateChats()
	}
	return tgbotapi.NewBotCommandScopeChat(chatID)
}
