package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greencart/greencart-golang/internal/models"
	"golang.org/x/crypto/bcrypt"
)

//
// --- User Account Handlers ---
//

type RegisterUserInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterUser is the handler for POST /api/user/register
func (h *Handlers) RegisterUser(c *gin.Context) {
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please fill all the fields"})
		return
	}

	// Duplicate email check
	var existingID int64
	err := h.DB.QueryRow("SELECT id FROM users WHERE email = ?", input.Email).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already exists"})
		return
	}
	if err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to hash password"})
		return
	}

	now := time.Now()
	_, err = h.DB.Exec(
		"INSERT INTO users (name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		input.Name, input.Email, password.Hash, now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	// No tokens on registration; the user logs in afterwards.
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully. Please login to continue.",
	})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /api/user/login
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide both email and password"})
		return
	}

	var user models.User
	err := h.DB.QueryRow(
		"SELECT id, name, email, password_hash FROM users WHERE email = ?", input.Email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
		return
	}

	if err := h.issueTokenPair(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error generating authentication tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged in successfully",
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

// issueTokenPair generates both tokens, stores a bcrypt hash of the refresh
// token on the user row and sets both cookies.
func (h *Handlers) issueTokenPair(c *gin.Context, uid int64) error {
	subject := strconv.FormatInt(uid, 10)
	accessToken, err := h.Keys.GenerateAccessToken(subject)
	if err != nil {
		return err
	}
	refreshToken, err := h.Keys.GenerateRefreshToken(subject)
	if err != nil {
		return err
	}

	// Hash the refresh token before storing it; the row is useless to anyone
	// who only reads the database.
	refreshHash, err := bcrypt.GenerateFromPassword([]byte(refreshToken), 10)
	if err != nil {
		return err
	}
	_, err = h.DB.Exec(
		"UPDATE users SET refresh_token_hash = ?, last_login = ?, updated_at = ? WHERE id = ?",
		string(refreshHash), time.Now(), time.Now(), uid,
	)
	if err != nil {
		return err
	}

	h.setAuthCookie(c, "accessToken", accessToken, accessCookieMaxAge)
	h.setAuthCookie(c, "refreshToken", refreshToken, refreshCookieMaxAge)
	return nil
}

// RefreshToken is the handler for POST /api/user/refresh-token.
// It rotates the pair: the presented refresh token must match the stored hash,
// and a fresh refresh token replaces it.
func (h *Handlers) RefreshToken(c *gin.Context) {
	refreshToken, _ := c.Cookie("refreshToken")
	if refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Refresh token not found"})
		return
	}

	subject, err := h.Keys.ValidateRefreshToken(refreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid refresh token"})
		return
	}
	uid, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid refresh token"})
		return
	}

	var storedHash sql.NullString
	err = h.DB.QueryRow("SELECT refresh_token_hash FROM users WHERE id = ?", uid).Scan(&storedHash)
	if err != nil || !storedHash.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid refresh token"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(storedHash.String), []byte(refreshToken)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid refresh token"})
		return
	}

	if err := h.issueTokenPair(c, uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error generating authentication tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token refreshed successfully"})
}

// Logout is the handler for POST /api/user/logout
func (h *Handlers) Logout(c *gin.Context) {
	// Best effort: invalidate the stored refresh token if we know who this is.
	if refreshToken, _ := c.Cookie("refreshToken"); refreshToken != "" {
		if subject, err := h.Keys.ValidateRefreshToken(refreshToken); err == nil {
			if uid, err := strconv.ParseInt(subject, 10, 64); err == nil {
				_, _ = h.DB.Exec("UPDATE users SET refresh_token_hash = NULL WHERE id = ?", uid)
			}
		}
	}

	h.clearAuthCookie(c, "accessToken")
	h.clearAuthCookie(c, "refreshToken")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// CheckAuth is the handler for GET /api/user/is-auth
func (h *Handlers) CheckAuth(c *gin.Context) {
	uid := userID(c)

	var user models.User
	err := h.DB.QueryRow(
		"SELECT id, name, email, created_at FROM users WHERE id = ?", uid,
	).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"createdAt": user.CreatedAt,
		},
	})
}
