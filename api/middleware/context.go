package middleware

import (
	"context"

	pkgerrors "github.com/angelmondragon/storefront-bot/pkg/errors"
)

type contextKey string

const (
	ctxUserID contextKey = "telegram_user_id"
	ctxAdmin  contextKey = "is_admin"
)

// UserIDFromContext returns the Telegram user id set by TelegramUser.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(ctxUserID).(int64)
	return v, ok && v != 0
}

func IsAdminFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(ctxAdmin).(bool)
	return v
}

// WithUserID injects the Telegram user identifier into the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

func withAdmin(ctx context.Context, admin bool) context.Context {
	return context.WithValue(ctx, ctxAdmin, admin)
}

// RequireUserID returns the caller id or an unauthorized error when the
// request did not pass through TelegramUser.
func RequireUserID(ctx context.Context) (int64, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return userID, nil
}
