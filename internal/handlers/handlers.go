package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greencart/greencart-golang/internal/auth"
	"github.com/greencart/greencart-golang/internal/orders"
	"github.com/greencart/greencart-golang/internal/payment"
)

// Handlers holds all dependencies for the HTTP layer. Everything is injected
// from main at startup; nothing here lazily initializes itself.
type Handlers struct {
	DB      *sql.DB
	Orders  *orders.Service
	Keys    auth.Keys
	Gateway *payment.Client

	// Seller credentials, checked on seller login. There is exactly one
	// seller account and it lives in the environment, not the database.
	SellerEmail    string
	SellerPassword string

	// Production toggles Secure + SameSite=None on auth cookies so the
	// hosted frontend on another origin can send them.
	Production bool
}

// Cookie lifetimes in seconds.
const (
	accessCookieMaxAge  = 15 * 60
	refreshCookieMaxAge = 7 * 24 * 60 * 60
)

// setAuthCookie writes an httpOnly auth cookie with environment-appropriate
// SameSite and Secure flags.
func (h *Handlers) setAuthCookie(c *gin.Context, name, value string, maxAge int) {
	if h.Production {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(name, value, maxAge, "/", "", h.Production, true)
}

// clearAuthCookie expires a previously set auth cookie.
func (h *Handlers) clearAuthCookie(c *gin.Context, name string) {
	h.setAuthCookie(c, name, "", -1)
}

// userID pulls the authenticated buyer id set by middleware.AuthUser.
func userID(c *gin.Context) int64 {
	raw, _ := c.Get("userID")
	id, _ := raw.(int64)
	return id
}
