package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-bot/api/middleware"
	"github.com/angelmondragon/storefront-bot/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"scope": "admin", "status": "ok"}
		if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
			payload["user_id"] = userID
		}
		responses.WriteSuccess(w, payload)
	}
}
