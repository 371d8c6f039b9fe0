package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/MulubahzumuKSipor/zynk-cart/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// sessionCookieName carries the guest session token identifying an
// anonymous cart before login.
const sessionCookieName = "zynk_cart_session"

// identityResolver produces the owner key for a request: a verified user
// when a valid bearer token is present, otherwise the guest session from
// the cookie. It never trusts a client-supplied identity for writes; the
// user id always comes from token validation.
type identityResolver struct {
	auth      AuthService
	cookieTTL time.Duration
}

// resolveOwner returns the owner key for the request. When mint is true
// and no guest cookie exists, a fresh token is generated and set on the
// response as an HTTP-only cookie.
func (ir *identityResolver) resolveOwner(c *gin.Context, mint bool) (domain.Owner, bool) {
	if token := bearerToken(c); token != "" {
		if u, err := ir.auth.LookupByToken(c.Request.Context(), token); err == nil {
			return domain.UserOwner(u.ID), true
		}
	}
	if v, err := c.Cookie(sessionCookieName); err == nil && v != "" {
		return domain.GuestOwner(v), true
	}
	if !mint {
		return domain.Owner{}, false
	}
	token := uuid.NewString()
	ir.setGuestCookie(c, token)
	return domain.GuestOwner(token), true
}

func (ir *identityResolver) setGuestCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, int(ir.cookieTTL.Seconds()), "/", "", false, true)
}

func clearGuestCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
