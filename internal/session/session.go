package session

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobforge/internal/domain"
	"jobforge/internal/repository"
)

const (
	cookieName   = "app_session_id"
	cookieMaxAge = 365 * 24 * time.Hour
)

type contextKey struct{}

// Manager сопоставляет cookie сессии строке пользователя. Аутентификации
// нет: первый запрос без cookie создаёт нового пользователя.
type Manager struct {
	users *repository.UserRepository
}

func NewManager(users *repository.UserRepository) *Manager {
	return &Manager{users: users}
}

// Middleware кладёт id владельца в контекст запроса; все хранилища дальше
// работают только с явным owner id
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, created, err := m.resolve(r)
		if err != nil {
			log.Printf("Failed to resolve session: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    user.SessionID,
				Path:     "/",
				MaxAge:   int(cookieMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), contextKey{}, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Manager) resolve(r *http.Request) (*domain.User, bool, error) {
	if cookie, err := r.Cookie(cookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
		user, err := m.users.GetBySessionID(r.Context(), cookie.Value)
		if err == nil {
			return user, false, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, false, err
		}
		// Cookie есть, но строки нет — выдаём новую сессию
	}

	user, err := m.users.Create(r.Context(), uuid.NewString())
	if err != nil {
		return nil, false, err
	}

	return user, true, nil
}

// UserID достаёт id владельца, положенный Middleware
func UserID(ctx context.Context) int64 {
	id, _ := ctx.Value(contextKey{}).(int64)
	return id
}
