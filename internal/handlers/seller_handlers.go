package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Seller (Admin Panel) Handlers ---
//

type SellerLoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SellerLogin is the handler for POST /api/seller/login.
// There is a single seller account whose credentials live in the environment.
func (h *Handlers) SellerLogin(c *gin.Context) {
	var input SellerLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password are required"})
		return
	}

	emailOK := subtle.ConstantTimeCompare([]byte(input.Email), []byte(h.SellerEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(input.Password), []byte(h.SellerPassword)) == 1
	if !emailOK || !passwordOK {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
		return
	}

	token, err := h.Keys.GenerateSellerToken("seller_" + input.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error generating authentication token"})
		return
	}

	// The seller cookie lives as long as a refresh token; there is no refresh
	// flow for the admin panel.
	h.setAuthCookie(c, "sellerToken", token, refreshCookieMaxAge)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user": gin.H{
			"email": input.Email,
			"role":  "seller",
		},
	})
}

// SellerCheckAuth is the handler for GET /api/seller/is-auth
func (h *Handlers) SellerCheckAuth(c *gin.Context) {
	email, _ := c.Get("sellerEmail")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"email": email,
			"role":  "seller",
		},
	})
}

// SellerLogout is the handler for POST /api/seller/logout
func (h *Handlers) SellerLogout(c *gin.Context) {
	h.clearAuthCookie(c, "sellerToken")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}
