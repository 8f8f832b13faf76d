// Файл: internal/api/middleware.go
package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// UserContextKey - ключ для сохранения данных пользователя в контексте запроса.
var UserContextKey = &contextKey{"User"}

type contextKey struct {
	name string
}

// TelegramUser - пользователь из initData Telegram WebApp.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// UserFromContext возвращает пользователя, сохранённого AuthMiddleware.
func UserFromContext(ctx context.Context) (TelegramUser, bool) {
	u, ok := ctx.Value(UserContextKey).(TelegramUser)
	return u, ok
}

// RequestIDMiddleware подставляет UUID в X-Request-Id, если клиент его не передал,
// и возвращает его в ответе. Должен стоять перед middleware.RequestID.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(middleware.RequestIDHeader, id)
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware проверяет заголовок X-Telegram-Auth с initData.
func AuthMiddleware(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("X-Telegram-Auth")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized: Missing X-Telegram-Auth header")
				return
			}

			isValid, userData, err := validateInitData(authHeader, secretKey)
			if err != nil || !isValid {
				log.Printf("AuthMiddleware: Invalid initData. Error: %v", err)
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized: Invalid initData")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, userData)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware пропускает только администраторов (ADMIN_USER_IDS).
func AdminMiddleware(isAdmin func(userID int64) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusForbidden, "Forbidden: User data not found in context")
				return
			}
			if !isAdmin(user.ID) {
				log.Printf("AdminMiddleware: Пользователь %d не администратор.", user.ID)
				writeJSONError(w, http.StatusForbidden, "Forbidden: Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// validateInitData - функция для проверки подлинности данных от Telegram.
func validateInitData(initData, secret string) (bool, TelegramUser, error) {
	var userData TelegramUser

	q, err := url.ParseQuery(initData)
	if err != nil {
		return false, userData, fmt.Errorf("failed to parse initData: %w", err)
	}

	hash := q.Get("hash")
	if hash == "" {
		return false, userData, fmt.Errorf("hash is not present in initData")
	}

	userJSON := q.Get("user")
	if userJSON == "" {
		return false, userData, fmt.Errorf("user data is not present in initData")
	}
	if err := json.Unmarshal([]byte(userJSON), &userData); err != nil {
		return false, userData, fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	calculatedHash := signInitData(q, secret)
	return hmac.Equal([]byte(calculatedHash), []byte(hash)), userData, nil
}

// signInitData считает подпись initData: HMAC-SHA256 по data-check-string
// с ключом HMAC-SHA256("WebAppData", token).
func signInitData(q url.Values, secret string) string {
	var pairs []string
	for k, v := range q {
		if k != "hash" {
			pairs = append(pairs, fmt.Sprintf("%s=%s", k, v[0]))
		}
	}
	sort.Strings(pairs)
	dataCheckString := strings.Join(pairs, "\n")

	secretKey := hmac.New(sha256.New, []byte("WebAppData"))
	secretKey.Write([]byte(secret))

	h := hmac.New(sha256.New, secretKey.Sum(nil))
	h.Write([]byte(dataCheckString))
	return hex.EncodeToString(h.Sum(nil))
}
