package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"https://web.telegram.org",
}

// CORS returns middleware that applies the API's allowed origin policy.
// Extra origins, usually the web app URL, are added to the defaults.
func CORS(origins ...string) func(http.Handler) http.Handler {
	allowed := append(append([]string{}, defaultCORSOrigins...), origins...)
	return cors.New(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", TelegramUserHeader, "Idempotency-Key", "X-Requested-With"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
