// Package flash implements one-time notices shown after a redirect
// ("Password incorrect, please try again.").
//
// HOW IT WORKS:
// The handler that redirects calls Set, which stores the messages in a short
// cookie. The next page render calls Pop, which reads the messages and expires
// the cookie in the same response — so each message is shown exactly once.
//
// Messages are JSON-encoded then base64url-encoded, because cookie values may
// not contain spaces, commas or quotes.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// CookieName is the cookie that carries pending messages.
const CookieName = "flash"

// Set stores messages to be shown on the next rendered page.
// It replaces any messages still pending.
func Set(w http.ResponseWriter, messages ...string) {
	if len(messages) == 0 {
		return
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		// []string always marshals; nothing sensible to do otherwise.
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending messages and clears them.
// A missing or corrupt cookie yields no messages.
func Pop(w http.ResponseWriter, r *http.Request) []string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var messages []string
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil
	}
	return messages
}
