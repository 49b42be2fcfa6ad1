package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/payment"
	"golang.org/x/sync/errgroup"
)

// How long a delivered order is kept before the retention cleanup purges it,
// and how far out the estimated delivery date is set. Both happen to be a week.
const (
	retentionWindow  = 7 * 24 * time.Hour
	deliveryEstimate = 7 * 24 * time.Hour
)

// Service is the order lifecycle manager. It owns the status state machine,
// the status history, payment reconciliation (COD vs. gateway-verified) and the
// retention cleanup. Everything else — HTTP, auth, the catalog CRUD — lives
// outside and talks to it through these methods.
type Service struct {
	store     Store
	catalog   Catalog
	gateway   payment.Gateway
	keySecret string

	// now is injectable so tests can pin the clock.
	now func() time.Time
}

// NewService wires the lifecycle manager to its collaborators. keySecret is the
// Razorpay key secret used to verify checkout signatures locally.
func NewService(store Store, catalog Catalog, gateway payment.Gateway, keySecret string) *Service {
	return &Service{
		store:     store,
		catalog:   catalog,
		gateway:   gateway,
		keySecret: keySecret,
		now:       time.Now,
	}
}

// computeAmount prices the line items: sum of offerPrice×quantity over every
// item, then a 2% tax charge floored and added to the already-summed total.
// The floor-after-sum order is load-bearing — the client recomputes the same
// number, so changing it would break displayed totals.
func (s *Service) computeAmount(ctx context.Context, items []models.OrderItem) (float64, error) {
	if len(items) == 0 {
		return 0, ErrInvalidOrder
	}

	var amount float64
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return 0, ErrInvalidOrder
		}
		product, err := s.catalog.Resolve(ctx, item.ProductID)
		if err != nil {
			return 0, err
		}
		amount += product.OfferPrice * float64(item.Quantity)
	}

	// Add tax charge 2%
	amount += math.Floor(amount * 2 / 100)
	return amount, nil
}

// newTrackingNumber derives a best-effort-unique tracking number from the
// creation time plus a random suffix. Not cryptographic, and not meant to be.
func (s *Service) newTrackingNumber() string {
	return fmt.Sprintf("TRK%d%d", s.now().UnixMilli(), rand.Intn(1000))
}

// PlaceOrderCOD creates a cash-on-delivery order. The order is visible to the
// seller immediately; payment is confirmed when the courier hands it over.
func (s *Service) PlaceOrderCOD(ctx context.Context, userID, addressID int64, items []models.OrderItem) (*models.Order, error) {
	if addressID == 0 || len(items) == 0 {
		return nil, ErrInvalidOrder
	}

	amount, err := s.computeAmount(ctx, items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tracking := s.newTrackingNumber()
	order := &models.Order{
		UserID:            userID,
		AddressID:         addressID,
		Amount:            amount,
		Status:            models.StatusOrderPlaced,
		PaymentType:       models.PaymentCOD,
		IsPaid:            false,
		TrackingNumber:    &tracking,
		EstimatedDelivery: now.Add(deliveryEstimate),
		CreatedAt:         now,
		UpdatedAt:         now,
		Items:             items,
		StatusHistory: []models.StatusEntry{{
			Status:    models.StatusOrderPlaced,
			Timestamp: now,
			Note:      "Order placed successfully via COD",
		}},
	}

	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// OnlineOrder is what CreateOnlineOrder hands back to the client: everything
// the checkout page needs to open the Razorpay UI, plus our own order id so the
// follow-up verify call can find the record.
type OnlineOrder struct {
	Order          *models.Order
	GatewayOrderID string
	AmountPaise    int64
	Currency       string
}

// CreateOnlineOrder is phase A of the online payment flow: price the items,
// create the gateway-side order, then persist a local order that references it.
// The client still has to drive the actual payment UI against the gateway and
// come back through VerifyPayment.
func (s *Service) CreateOnlineOrder(ctx context.Context, userID, addressID int64, items []models.OrderItem) (*OnlineOrder, error) {
	if addressID == 0 || len(items) == 0 {
		return nil, ErrInvalidOrder
	}

	amount, err := s.computeAmount(ctx, items)
	if err != nil {
		return nil, err
	}

	// Razorpay takes the amount in the smallest currency unit. Note this
	// rounds where the tax charge floors; the two rules are not the same and
	// both are deliberate.
	amountPaise := int64(math.Round(amount * 100))

	gatewayOrder, err := s.gateway.CreateOrder(ctx, payment.CreateOrderRequest{
		Amount:   amountPaise,
		Currency: "INR",
		Receipt:  payment.NewReceipt(),
		Notes: map[string]string{
			"userId":    strconv.FormatInt(userID, 10),
			"itemCount": strconv.Itoa(len(items)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	now := s.now()
	gatewayOrderID := gatewayOrder.ID
	order := &models.Order{
		UserID:            userID,
		AddressID:         addressID,
		Amount:            amount,
		Status:            models.StatusOrderPlaced,
		PaymentType:       models.PaymentOnline,
		IsPaid:            false,
		RazorpayOrderID:   &gatewayOrderID,
		EstimatedDelivery: now.Add(deliveryEstimate),
		CreatedAt:         now,
		UpdatedAt:         now,
		Items:             items,
		StatusHistory: []models.StatusEntry{{
			Status:    models.StatusOrderPlaced,
			Timestamp: now,
			Note:      "Order created, awaiting payment",
		}},
	}

	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}

	return &OnlineOrder{
		Order:          order,
		GatewayOrderID: gatewayOrderID,
		AmountPaise:    amountPaise,
		Currency:       "INR",
	}, nil
}

// VerifyPayment is phase B: check the signature the checkout page brought back,
// then confirm the payment at most once. A mismatched signature mutates
// nothing. A second valid call on an already-paid order is a quiet success —
// the conditional confirm makes sure no duplicate Processing entry appears.
func (s *Service) VerifyPayment(ctx context.Context, gatewayOrderID, paymentID, signature string, orderID int64) error {
	if !payment.VerifySignature(gatewayOrderID, paymentID, signature, s.keySecret) {
		return payment.ErrInvalidSignature
	}

	// Existence check first so a bad order id surfaces as NotFound rather
	// than a silent no-op from the guarded update.
	if _, err := s.store.FindByID(ctx, orderID); err != nil {
		return err
	}

	confirmed, err := s.store.ConfirmPayment(ctx, orderID, paymentID, signature, models.StatusEntry{
		OrderID:   orderID,
		Status:    models.StatusProcessing,
		Timestamp: s.now(),
		Note:      "Payment received successfully",
	})
	if err != nil {
		return err
	}
	if !confirmed {
		log.Printf("payment for order %d already confirmed, verify is a no-op", orderID)
	}
	return nil
}

// RecordPaymentFailure is phase C: the checkout UI reported a failed or
// abandoned payment. If the order exists and is not already cancelled it is
// forced to Cancelled. A missing order is a no-op, matching the fire-and-forget
// way the client calls this.
func (s *Service) RecordPaymentFailure(ctx context.Context, orderID int64, reason string) error {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil
		}
		return err
	}

	// Already cancelled: nothing to record, and re-appending history would
	// just duplicate the entry.
	if order.Status == models.StatusCancelled {
		return nil
	}

	if reason == "" {
		reason = "Payment failed"
	}
	now := s.now()
	order.Status = models.StatusCancelled
	order.CancelledAt = &now
	order.CancellationReason = &reason
	order.UpdatedAt = now

	return s.store.Save(ctx, order, models.StatusEntry{
		OrderID:   order.ID,
		Status:    models.StatusCancelled,
		Timestamp: now,
		Note:      reason,
	})
}

// UpdateStatus is the seller-driven transition. Any recognized status can be
// set, in any direction — the dashboard is trusted to know what it is doing,
// and guarding the graph here would break its manual corrections. Every call
// appends exactly one history entry.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status, note string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	explicitNote := note
	if note == "" {
		note = fmt.Sprintf("Order status updated to %s", status)
	}

	order.Status = status
	order.UpdatedAt = now

	switch status {
	case models.StatusDelivered:
		order.DeliveredAt = &now
		// Delivery confirms a cash payment. Online orders were already paid
		// at verification time and stay that way.
		if order.PaymentType == models.PaymentCOD {
			order.IsPaid = true
		}
	case models.StatusCancelled:
		order.CancelledAt = &now
		reason := explicitNote
		if reason == "" {
			reason = "Cancelled by seller"
		}
		order.CancellationReason = &reason
	}

	entry := models.StatusEntry{
		OrderID:   order.ID,
		Status:    status,
		Timestamp: now,
		Note:      note,
	}
	if err := s.store.Save(ctx, order, entry); err != nil {
		return nil, err
	}
	order.StatusHistory = append(order.StatusHistory, entry)
	return order, nil
}

// CancelOrder is the buyer-driven cancellation. Buyers may only self-cancel
// before shipment; after that the package is on the road and only the seller
// can intervene.
func (s *Service) CancelOrder(ctx context.Context, orderID, userID int64, reason string) error {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.UserID != userID {
		return ErrForbidden
	}

	switch order.Status {
	case models.StatusShipped, models.StatusOutForDelivery, models.StatusDelivered:
		return ErrInvalidTransition
	}

	if reason == "" {
		reason = "Cancelled by customer"
	}
	now := s.now()
	order.Status = models.StatusCancelled
	order.CancelledAt = &now
	order.CancellationReason = &reason
	order.UpdatedAt = now

	return s.store.Save(ctx, order, models.StatusEntry{
		OrderID:   order.ID,
		Status:    models.StatusCancelled,
		Timestamp: now,
		Note:      reason,
	})
}

// GetOrder loads one order with its items and full status history.
func (s *Service) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.store.FindByID(ctx, orderID)
}

// ListOrdersForBuyer returns the buyer's orders (COD or paid — unpaid online
// orders are invisible until verified) together with the total count.
func (s *Service) ListOrdersForBuyer(ctx context.Context, buyerID int64) ([]models.Order, int64, error) {
	var (
		eg    errgroup.Group
		list  []models.Order
		total int64
	)
	eg.Go(func() error {
		var err error
		list, err = s.store.ListByBuyer(ctx, buyerID)
		return err
	})
	eg.Go(func() error {
		var err error
		total, err = s.store.CountByBuyer(ctx, buyerID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListAllOrders is the seller view. The retention cleanup runs first, so
// delivered orders past their window never show up in the dashboard.
func (s *Service) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	if _, err := s.CleanupDelivered(ctx); err != nil {
		// A failed cleanup should not block the seller from seeing orders.
		log.Printf("order cleanup failed: %v", err)
	}
	return s.store.ListAll(ctx)
}

// CleanupDelivered purges every order that has been in Delivered for longer
// than the retention window. There is no soft delete and no archive: the rows
// are gone. Returns the number of orders removed.
func (s *Service) CleanupDelivered(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-retentionWindow)
	deleted, err := s.store.DeleteDeliveredBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Printf("Auto-cleanup: deleted %d delivered orders older than 1 week", deleted)
	}
	return deleted, nil
}
