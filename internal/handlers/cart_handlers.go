package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greencart/greencart-golang/internal/models"
)

//
// --- Cart Handlers ---
//

type UpdateCartInput struct {
	// An empty items list is valid: that is how the client clears the cart.
	Items []struct {
		ProductID int64 `json:"product" binding:"required"`
		Quantity  int   `json:"quantity" binding:"required,gt=0"`
	} `json:"items" binding:"dive"`
}

// UpdateCart is the handler for POST /api/cart/update.
// The client sends its whole cart; we replace the stored one. Replacing is
// simpler than diffing and the cart is small.
func (h *Handlers) UpdateCart(c *gin.Context) {
	uid := userID(c)

	var input UpdateCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid cart data"})
		return
	}

	tx, err := h.DB.BeginTx(c, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to start transaction"})
		return
	}
	defer tx.Rollback() // Safety net

	if _, err := tx.Exec("DELETE FROM cart_items WHERE user_id = ?", uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update cart"})
		return
	}

	now := time.Now()
	for _, item := range input.Items {
		_, err := tx.Exec(
			"INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			uid, item.ProductID, item.Quantity, now, now,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update cart"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to commit cart update"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart updated"})
}

// GetCart is the handler for GET /api/cart
func (h *Handlers) GetCart(c *gin.Context) {
	uid := userID(c)

	rows, err := h.DB.Query(`
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = ?
		ORDER BY created_at ASC`, uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch cart"})
		return
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to scan cart item"})
			return
		}
		items = append(items, item)
	}
	if items == nil {
		items = []models.CartItem{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cartItems": items})
}
