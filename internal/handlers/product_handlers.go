package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greencart/greencart-golang/internal/models"
)

//
// --- Product Handlers ---
//

// ListProducts is the handler for GET /api/product/list (public)
func (h *Handlers) ListProducts(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT id, name, description, category, price, offer_price, image_url, in_stock,
		       created_at, updated_at
		FROM products
		ORDER BY created_at DESC`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch products"})
		return
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var imageURL sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price,
			&p.OfferPrice, &imageURL, &p.InStock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to scan product"})
			return
		}
		if imageURL.Valid {
			p.ImageURL = &imageURL.String
		}
		products = append(products, p)
	}

	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

// GetProduct is the handler for GET /api/product/:id (public)
func (h *Handlers) GetProduct(c *gin.Context) {
	id := c.Param("id")

	var p models.Product
	var imageURL sql.NullString
	err := h.DB.QueryRow(`
		SELECT id, name, description, category, price, offer_price, image_url, in_stock,
		       created_at, updated_at
		FROM products WHERE id = ?`, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.OfferPrice,
		&imageURL, &p.InStock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch product"})
		return
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

type CreateProductInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	OfferPrice  float64 `json:"offerPrice" binding:"required,gt=0"`
	ImageURL    *string `json:"imageUrl"`
}

// CreateProduct is the handler for POST /api/product/add (seller only).
// The image is a URL: uploading to the CDN happens on the client.
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO products (name, description, category, price, offer_price, image_url, in_stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		input.Name, input.Description, input.Category, input.Price, input.OfferPrice,
		input.ImageURL, now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create product"})
		return
	}
	productID, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Product added successfully",
		"productId": productID,
	})
}

type ChangeStockInput struct {
	ID      int64 `json:"id" binding:"required"`
	InStock *bool `json:"inStock" binding:"required"`
}

// ChangeStock is the handler for POST /api/product/stock (seller only)
func (h *Handlers) ChangeStock(c *gin.Context) {
	var input ChangeStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	result, err := h.DB.Exec(
		"UPDATE products SET in_stock = ?, updated_at = ? WHERE id = ?",
		*input.InStock, time.Now(), input.ID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update stock"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Stock updated"})
}
