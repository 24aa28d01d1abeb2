package console

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"bank-admin/pkg/admin"
)

const flashCookie = "bank_admin_flash"

// setFlash stores n for the next page render.
func setFlash(w http.ResponseWriter, n *admin.Notice) {
	if n == nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns the pending notice, if any, and clears the cookie.
func takeFlash(w http.ResponseWriter, r *http.Request) *admin.Notice {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var n admin.Notice
	if err := json.Unmarshal(data, &n); err != nil || n.Text == "" {
		return nil
	}
	return &n
}
