package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/greencart/greencart-golang/internal/models"
)

//
// --- Category Handlers ---
//

func scanCategory(row interface{ Scan(...interface{}) error }) (models.Category, error) {
	var cat models.Category
	var imageURL sql.NullString
	err := row.Scan(&cat.ID, &cat.Text, &cat.Path, &imageURL, &cat.BgColor,
		&cat.IsActive, &cat.CreatedAt, &cat.UpdatedAt)
	if imageURL.Valid {
		cat.ImageURL = &imageURL.String
	}
	return cat, err
}

const categoryColumns = "id, text, path, image_url, bg_color, is_active, created_at, updated_at"

// ListCategories is the handler for GET /api/category/list (public, active only)
func (h *Handlers) ListCategories(c *gin.Context) {
	rows, err := h.DB.Query(
		"SELECT " + categoryColumns + " FROM categories WHERE is_active = 1 ORDER BY created_at DESC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch categories"})
		return
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to scan category"})
			return
		}
		categories = append(categories, cat)
	}
	if categories == nil {
		categories = []models.Category{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}

// GetCategory is the handler for GET /api/category/:id
func (h *Handlers) GetCategory(c *gin.Context) {
	id := c.Param("id")
	cat, err := scanCategory(h.DB.QueryRow(
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "category": cat})
}

type CategoryInput struct {
	Text     string  `json:"text" binding:"required"`
	Path     string  `json:"path"`
	ImageURL *string `json:"imageUrl"`
	BgColor  string  `json:"bgColor"`
}

// CreateCategory is the handler for POST /api/category/create (seller only).
// The path slug is derived from the display text when not given explicitly.
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "All fields are required"})
		return
	}

	path := input.Path
	if path == "" {
		path = slug.Make(input.Text)
	}
	bgColor := input.BgColor
	if bgColor == "" {
		bgColor = "#F0F5DE"
	}

	// Path must be unique; it is what the storefront routes on.
	var existingID int64
	err := h.DB.QueryRow("SELECT id FROM categories WHERE path = ?", path).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Category path already exists"})
		return
	}
	if err != sql.ErrNoRows {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	now := time.Now()
	result, err := h.DB.Exec(`
		INSERT INTO categories (text, path, image_url, bg_color, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)`,
		input.Text, path, input.ImageURL, bgColor, now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create category"})
		return
	}
	categoryID, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Category created successfully",
		"categoryId": categoryID,
	})
}

// UpdateCategory is the handler for PUT /api/category/update/:id (seller only)
func (h *Handlers) UpdateCategory(c *gin.Context) {
	id := c.Param("id")

	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "All fields are required"})
		return
	}

	path := input.Path
	if path == "" {
		path = slug.Make(input.Text)
	}

	result, err := h.DB.Exec(`
		UPDATE categories
		SET text = ?, path = ?, image_url = COALESCE(?, image_url), bg_color = COALESCE(NULLIF(?, ''), bg_color), updated_at = ?
		WHERE id = ?`,
		input.Text, path, input.ImageURL, input.BgColor, time.Now(), id,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update category"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category updated successfully"})
}

// DeleteCategory is the handler for DELETE /api/category/delete/:id (seller only)
func (h *Handlers) DeleteCategory(c *gin.Context) {
	id := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete category"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted successfully"})
}

// ToggleCategory is the handler for PATCH /api/category/toggle/:id (seller only)
func (h *Handlers) ToggleCategory(c *gin.Context) {
	id := c.Param("id")

	result, err := h.DB.Exec(
		"UPDATE categories SET is_active = NOT is_active, updated_at = ? WHERE id = ?",
		time.Now(), id,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to toggle category"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category status toggled"})
}
