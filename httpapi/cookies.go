package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/token"
)

func (r *Router) setCookies(c *gin.Context, pair token.Pair) {
	http.SetCookie(c.Writer, r.cookie(r.settings.CookieNameAccess, pair.AccessToken, r.settings.CookieMaxAgeAccess))
	if pair.RefreshToken != "" {
		http.SetCookie(c.Writer, r.cookie(r.settings.CookieNameRefresh, pair.RefreshToken, r.settings.CookieMaxAgeRefresh))
	}
}

// clearCookies expires both token cookies with the attributes they were set with.
func (r *Router) clearCookies(c *gin.Context) {
	http.SetCookie(c.Writer, r.cookie(r.settings.CookieNameAccess, "", -1))
	http.SetCookie(c.Writer, r.cookie(r.settings.CookieNameRefresh, "", -1))
}

func (r *Router) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     r.settings.CookiePath,
		Domain:   r.settings.CookieDomain,
		MaxAge:   maxAge,
		Secure:   r.settings.CookieSecure,
		HttpOnly: true,
		SameSite: r.settings.CookieSameSite.HTTP(),
	}
}
