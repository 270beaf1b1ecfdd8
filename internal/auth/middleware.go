package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/todolist/internal/flash"
	"github.com/sakif/todolist/internal/model"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

// LoginMessage is flashed when an anonymous visitor hits a protected page.
const LoginMessage = "Please log in to access this page."

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. Using a package-private type
// means only THIS package can read or write the user stored in the context.
type contextKey string

const userKey contextKey = "user"

// UserLoader resolves the user a session token was issued for.
// service.AuthService implements it.
type UserLoader interface {
	CurrentUser(ctx context.Context, id int64) (*model.User, error)
}

// RequireSession is the gate in front of every non-public route.
//
// It reads the session cookie, validates the token and loads the user. If any
// step fails, the visitor is sent to the login page (303 See Other) with a
// flash message instead of reaching the handler. A cookie that was present
// but no longer valid (expired, signed before a restart, user gone) is
// cleared so the browser stops sending it.
//
// On success the *model.User is stored in the request context — handlers read
// it with UserFromContext.
func RequireSession(tokens *TokenService, users UserLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				// http.ErrNoCookie — an anonymous visitor.
				redirectToLogin(w, r)
				return
			}

			userID, err := tokens.Validate(cookie.Value)
			if err != nil {
				logger.Debug("rejecting session", slog.String("error", err.Error()))
				ClearSessionCookie(w)
				redirectToLogin(w, r)
				return
			}

			user, err := users.CurrentUser(r.Context(), userID)
			if err != nil {
				logger.Warn("session refers to unknown user",
					slog.Int64("userID", userID),
					slog.String("error", err.Error()),
				)
				ClearSessionCookie(w)
				redirectToLogin(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user RequireSession stored in the context.
// Returns (nil, false) on routes that aren't behind the gate.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// WithUser returns a copy of ctx carrying user. Used by tests that call
// handlers directly without going through RequireSession.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// SetSessionCookie stores a freshly issued token.
//
// No MaxAge: it is a browser-session cookie, gone when the browser closes.
// The token's own expiry still caps its lifetime at SessionLifetime.
// HttpOnly keeps it away from JavaScript; SameSite=Lax keeps it off
// cross-site POSTs.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // Uncomment in production (requires HTTPS)
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	flash.Set(w, LoginMessage)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
