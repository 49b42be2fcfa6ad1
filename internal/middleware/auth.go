package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greencart/greencart-golang/internal/auth"
)

// AuthUser guards buyer routes. The access token is read from the accessToken
// cookie first, falling back to a Bearer Authorization header for non-browser
// clients. On success the buyer's id is stored in the context as "userID".
func AuthUser(keys auth.Keys) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("accessToken")
		if token == "" {
			authHeader := c.GetHeader("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required. Please login.",
			})
			c.Abort()
			return
		}

		subject, err := keys.ValidateAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Your session has expired. Please login again.",
			})
			c.Abort()
			return
		}

		userID, err := strconv.ParseInt(subject, 10, 64)
		if err != nil {
			// A seller token on a buyer route lands here.
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid authentication token. Please login again.",
			})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// AuthSeller guards the admin panel routes. The seller is a single account
// configured by environment, so the check is: valid access token, subject of
// the form seller_<email>, email matching the configured one.
func AuthSeller(keys auth.Keys, sellerEmail string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("sellerToken")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized. Seller token required.",
			})
			c.Abort()
			return
		}

		subject, err := keys.ValidateAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Seller token expired. Please login again.",
			})
			c.Abort()
			return
		}

		email, ok := strings.CutPrefix(subject, "seller_")
		if !ok || email != sellerEmail {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Forbidden. Invalid seller credentials.",
			})
			c.Abort()
			return
		}

		c.Set("sellerEmail", email)
		c.Next()
	}
}
