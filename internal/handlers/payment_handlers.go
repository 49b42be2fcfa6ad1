package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greencart/greencart-golang/internal/orders"
	"github.com/greencart/greencart-golang/internal/payment"
)

//
// --- Payment Handlers (Razorpay) ---
//

// CreateRazorpayOrder is the handler for POST /api/payment/create-order.
// It creates the gateway-side order plus a local pending order, and returns
// everything the checkout page needs to open the Razorpay UI.
func (h *Handlers) CreateRazorpayOrder(c *gin.Context) {
	uid := userID(c)

	var input PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order details"})
		return
	}

	result, err := h.Orders.CreateOnlineOrder(c, uid, input.Address, toOrderItems(input.Items))
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrInvalidOrder):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order details"})
		case errors.Is(err, orders.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
		default:
			// Includes gateway failures (network, credentials). Log and
			// surface; the client shows a generic error and may retry.
			log.Printf("Error creating Razorpay order: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Razorpay order created successfully",
		"orderId":   result.GatewayOrderID,
		"amount":    result.AmountPaise,
		"currency":  result.Currency,
		"key":       h.Gateway.KeyID(),
		"orderDbId": result.Order.ID,
	})
}

type VerifyPaymentInput struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderDbID         int64  `json:"orderDbId" binding:"required"`
}

// VerifyPayment is the handler for POST /api/payment/verify.
// The signature binding is deliberately not required: an empty signature must
// reach the verifier and be rejected there, not bounce as a validation error.
func (h *Handlers) VerifyPayment(c *gin.Context) {
	var input VerifyPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	err := h.Orders.VerifyPayment(c, input.RazorpayOrderID, input.RazorpayPaymentID,
		input.RazorpaySignature, input.OrderDbID)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid payment signature"})
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		default:
			log.Printf("Error verifying payment: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment verified successfully",
		"orderId": input.OrderDbID,
	})
}

type PaymentFailureInput struct {
	OrderDbID int64  `json:"orderDbId" binding:"required"`
	Reason    string `json:"reason"`
}

// PaymentFailure is the handler for POST /api/payment/failure.
// Fire-and-forget from the client: the response is success whether or not the
// order still existed.
func (h *Handlers) PaymentFailure(c *gin.Context) {
	var input PaymentFailureInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	if err := h.Orders.RecordPaymentFailure(c, input.OrderDbID, input.Reason); err != nil {
		log.Printf("Error handling payment failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment failure recorded"})
}
