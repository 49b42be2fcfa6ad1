package models

import "time"

// Recognized order statuses. These are wire-level strings: the seller dashboard
// and the client both match on the exact text, so they must never be renamed.
const (
	StatusOrderPlaced    = "Order Placed"
	StatusProcessing     = "Processing"
	StatusShipped        = "Shipped"
	StatusOutForDelivery = "Out for Delivery"
	StatusDelivered      = "Delivered"
	StatusCancelled      = "Cancelled"
)

// Payment types for an order.
const (
	PaymentCOD    = "COD"
	PaymentOnline = "Online"
)

// ValidStatus reports whether s is one of the recognized status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusOrderPlaced, StatusProcessing, StatusShipped,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is the model for the 'orders' table.
// Amount is fixed at creation time and never recomputed afterwards.
type Order struct {
	ID        int64   `json:"id" db:"id"`
	UserID    int64   `json:"userId" db:"user_id"` // The buyer
	AddressID int64   `json:"addressId" db:"address_id"`
	Amount    float64 `json:"amount" db:"amount"`
	Status    string  `json:"status" db:"status"`

	PaymentType string `json:"paymentType" db:"payment_type"` // COD or Online
	IsPaid      bool   `json:"isPaid" db:"is_paid"`

	// Razorpay details (Online orders only, filled in as the payment progresses)
	RazorpayOrderID   *string `json:"razorpayOrderId,omitempty" db:"razorpay_order_id"`
	RazorpayPaymentID *string `json:"razorpayPaymentId,omitempty" db:"razorpay_payment_id"`
	RazorpaySignature *string `json:"razorpaySignature,omitempty" db:"razorpay_signature"`

	// Delivery tracking
	TrackingNumber    *string    `json:"trackingNumber,omitempty" db:"tracking_number"`
	EstimatedDelivery time.Time  `json:"estimatedDelivery" db:"estimated_delivery"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty" db:"delivered_at"`

	// Cancellation
	CancelledAt        *time.Time `json:"cancelledAt,omitempty" db:"cancelled_at"`
	CancellationReason *string    `json:"cancellationReason,omitempty" db:"cancellation_reason"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	Version   int       `json:"-" db:"version"`

	// Joins (not in the orders table, populated manually)
	Items         []OrderItem   `json:"items,omitempty" db:"-"`
	StatusHistory []StatusEntry `json:"statusHistory,omitempty" db:"-"`
}

// OrderItem is the model for the 'order_items' table
type OrderItem struct {
	ID        int64 `json:"id" db:"id"`
	OrderID   int64 `json:"orderId" db:"order_id"`
	ProductID int64 `json:"productId" db:"product_id"`
	Quantity  int   `json:"quantity" db:"quantity"`

	// Flattened product fields for UI convenience (populated manually)
	ProductName string  `json:"productName,omitempty" db:"-"`
	OfferPrice  float64 `json:"offerPrice,omitempty" db:"-"`
}

// StatusEntry is one row of the append-only 'order_status_history' table.
// History rows are only ever inserted; the sole exception is the retention
// cleanup, which removes them together with the whole order.
type StatusEntry struct {
	ID        int64     `json:"-" db:"id"`
	OrderID   int64     `json:"-" db:"order_id"`
	Status    string    `json:"status" db:"status"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
	Note      string    `json:"note" db:"note"`
}
