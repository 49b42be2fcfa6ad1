package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/orders"
)

//
// --- Order Handlers ---
//

type OrderItemInput struct {
	ProductID int64 `json:"product" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type PlaceOrderInput struct {
	Items   []OrderItemInput `json:"items" binding:"required"`
	Address int64            `json:"address" binding:"required"`
}

func toOrderItems(in []OrderItemInput) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(in))
	for _, item := range in {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return items
}

// PlaceOrderCOD is the handler for POST /api/order/cod
func (h *Handlers) PlaceOrderCOD(c *gin.Context) {
	uid := userID(c)

	var input PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order details"})
		return
	}

	order, err := h.Orders.PlaceOrderCOD(c, uid, input.Address, toOrderItems(input.Items))
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrInvalidOrder):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order details"})
		case errors.Is(err, orders.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
		default:
			log.Printf("Error placing COD order: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"message":        "Order placed successfully",
		"orderId":        order.ID,
		"trackingNumber": order.TrackingNumber,
	})
}

// GetUserOrders is the handler for GET /api/order/user
func (h *Handlers) GetUserOrders(c *gin.Context) {
	uid := userID(c)

	list, total, err := h.Orders.ListOrdersForBuyer(c, uid)
	if err != nil {
		log.Printf("Error fetching user orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if list == nil {
		list = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": list, "total": total})
}

// GetSellerOrders is the handler for GET /api/order/seller.
// The retention cleanup runs inside ListAllOrders, so delivered orders past
// the window disappear before the dashboard renders.
func (h *Handlers) GetSellerOrders(c *gin.Context) {
	list, err := h.Orders.ListAllOrders(c)
	if err != nil {
		log.Printf("Error fetching seller orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if list == nil {
		list = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orders":  list,
		"message": "Orders fetched successfully",
	})
}

type UpdateOrderStatusInput struct {
	OrderID int64  `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Note    string `json:"note"`
}

// UpdateOrderStatus is the handler for POST /api/order/update-status (seller only)
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status"})
		return
	}

	order, err := h.Orders.UpdateStatus(c, input.OrderID, input.Status, input.Note)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status"})
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		case errors.Is(err, orders.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Order was updated concurrently, please retry"})
		default:
			log.Printf("Error updating order status: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// GetOrderByID is the handler for GET /api/order/:id
func (h *Handlers) GetOrderByID(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		return
	}

	order, err := h.Orders.GetOrder(c, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
			return
		}
		log.Printf("Error fetching order: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

type CancelOrderInput struct {
	OrderID int64  `json:"orderId" binding:"required"`
	Reason  string `json:"reason"`
}

// CancelOrder is the handler for POST /api/order/cancel (buyer)
func (h *Handlers) CancelOrder(c *gin.Context) {
	uid := userID(c)

	var input CancelOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	err := h.Orders.CancelOrder(c, input.OrderID, uid, input.Reason)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		case errors.Is(err, orders.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Unauthorized"})
		case errors.Is(err, orders.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Cannot cancel order that is already shipped"})
		default:
			log.Printf("Error cancelling order: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order cancelled successfully"})
}
