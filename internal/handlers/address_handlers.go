package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greencart/greencart-golang/internal/models"
)

//
// --- Address Handlers ---
//

type AddAddressInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Street    string `json:"street" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	Zipcode   string `json:"zipcode" binding:"required"`
	Country   string `json:"country" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
}

// AddAddress is the handler for POST /api/address/add
func (h *Handlers) AddAddress(c *gin.Context) {
	uid := userID(c)

	var input AddAddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please fill all the fields"})
		return
	}

	result, err := h.DB.Exec(`
		INSERT INTO addresses
			(user_id, first_name, last_name, email, street, city, state, zipcode, country, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uid, input.FirstName, input.LastName, input.Email, input.Street,
		input.City, input.State, input.Zipcode, input.Country, input.Phone, time.Now(),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save address"})
		return
	}
	addressID, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Address added successfully",
		"addressId": addressID,
	})
}

// ListAddresses is the handler for GET /api/address/list
func (h *Handlers) ListAddresses(c *gin.Context) {
	uid := userID(c)

	rows, err := h.DB.Query(`
		SELECT id, user_id, first_name, last_name, email, street, city, state, zipcode, country, phone, created_at
		FROM addresses
		WHERE user_id = ?
		ORDER BY created_at DESC`, uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch addresses"})
		return
	}
	defer rows.Close()

	var addresses []models.Address
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.Email,
			&a.Street, &a.City, &a.State, &a.Zipcode, &a.Country, &a.Phone, &a.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to scan address"})
			return
		}
		addresses = append(addresses, a)
	}
	if addresses == nil {
		addresses = []models.Address{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "addresses": addresses})
}
