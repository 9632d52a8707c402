package web

import (
	"crypto/rand"
	"crypto/subtle"
	"net/http"
)

const (
	csrfCookieName = "cobjpanel_csrf"
	// Property names start with a letter, so the leading underscore keeps this
	// field from colliding with a configured property.
	csrfFormField = "_csrf"
)

// csrfToken returns the double-submit token for this browser, issuing a new
// cookie when the request carries none.
func csrfToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrfCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	token := rand.Text()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     formPath,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
	return token
}

// validateCSRF reports whether the posted form field matches the cookie.
// The form must already be parsed.
func validateCSRF(r *http.Request) bool {
	c, err := r.Cookie(csrfCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	posted := r.PostForm.Get(csrfFormField)
	return posted != "" && subtle.ConstantTimeCompare([]byte(posted), []byte(c.Value)) == 1
}
