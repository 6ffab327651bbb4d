package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-bot/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
	"github.com/angelmondragon/storefront-bot/pkg/logger"
)

// TelegramUserHeader carries the caller's Telegram user id. The web app
// sets it after Telegram has identified the user.
const TelegramUserHeader = "X-Telegram-User-Id"

// AdminChecker reports whether a Telegram user is the shop admin.
type AdminChecker func(userID int64) bool

// TelegramUser requires a positive numeric user id header and stores it on
// the request context along with the admin flag.
func TelegramUser(isAdmin AdminChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(TelegramUserHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "telegram user header missing"))
				return
			}
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "telegram user header invalid"))
				return
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = withAdmin(ctx, isAdmin != nil && isAdmin(userID))
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers that TelegramUser did not mark as admin.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdminFromContext(r.Context()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
