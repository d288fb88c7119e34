package middleware

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	initdata "github.com/telegram-mini-apps/init-data-golang"

	"podify/internal/db"
)

type contextKey string

// UserContextKey is the key for the authenticated user in the request context.
const UserContextKey = contextKey("user")

var telegramBotToken string

// SetTestToken overrides the bot token. Only used from tests.
func SetTestToken(token string) {
	telegramBotToken = token
}

// botToken is read lazily so that a token loaded from .env in main is seen.
func botToken() string {
	if telegramBotToken != "" {
		return telegramBotToken
	}
	return os.Getenv("TELEGRAM_BOT_TOKEN")
}

// AuthMiddleware validates the Telegram Mini App initData and upserts the user.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "tma" {
			http.Error(w, "Authorization header format must be 'tma <initData>'", http.StatusUnauthorized)
			return
		}

		rawInitData := parts[1]
		token := botToken()
		if token == "" {
			log.Println("TELEGRAM_BOT_TOKEN is not set")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := initdata.Validate(rawInitData, token, 0); err != nil {
			log.Printf("Invalid init data: %v", err)
			http.Error(w, "Invalid init data", http.StatusUnauthorized)
			return
		}

		data, err := initdata.Parse(rawInitData)
		if err != nil {
			log.Printf("Error parsing init data: %v", err)
			http.Error(w, "Error parsing init data", http.StatusBadRequest)
			return
		}

		user, err := db.UpsertUser(data.User.ID, data.User.Username)
		if err != nil {
			http.Error(w, "Failed to authenticate user", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
