package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback actions. Payloads are "<action>:<arg>[:<arg>]" and stay within
// Telegram's 64 byte limit.
const (
	actCategory     = "cat"
	actProduct      = "prd"
	actAdd          = "add"
	actRemove       = "rm"
	actClear        = "clr"
	actCart         = "crt"
	actOrders       = "ord"
	actCheckout     = "chk"
	actZone         = "zone"
	actConfirm      = "ok"
	actAbort        = "no"
	actRate         = "rate"
	actDelivering   = "go"
	actDelivered    = "done"
	actAdminPending = "apend"
	actAdminAssign  = "aasgn"
	actAdminCancel  = "acncl"
	actAdminToggle  = "atgl"
	actAdminOnline  = "aonl"
)

func callbackData(action string, args ...string) string {
	return strings.Join(append([]string{action}, args...), ":")
}

func parseCallback(data string) (string, []string) {
	parts := strings.Split(data, ":")
	return parts[0], parts[1:]
}

func button(text, action string, args ...string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, callbackData(action, args...))
}

func keyboard(rows ...[]tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
