package orders

import (
	"context"
	"time"

	"github.com/greencart/greencart-golang/internal/models"
)

// Store is the persistence the lifecycle manager runs against. The MySQL
// implementation lives in mysql.go; tests use an in-memory fake.
type Store interface {
	// Create persists a new order together with its items and the seeded
	// status history entry, atomically. It sets o.ID on success.
	Create(ctx context.Context, o *models.Order) error

	// FindByID loads an order with its items and status history.
	// Returns ErrOrderNotFound when the id does not resolve.
	FindByID(ctx context.Context, id int64) (*models.Order, error)

	// Save writes the order's mutable fields and appends one status history
	// entry in the same transaction. The write is guarded on the version the
	// order was read at; a mismatch returns ErrConflict.
	Save(ctx context.Context, o *models.Order, entry models.StatusEntry) error

	// ConfirmPayment marks an order paid, records the gateway payment id and
	// signature, moves it to Processing and appends the history entry — but
	// only if the order is still unpaid. It reports whether the update
	// actually happened, so a second verification of the same payment is a
	// visible no-op instead of a duplicate history entry.
	ConfirmPayment(ctx context.Context, orderID int64, paymentID, signature string, entry models.StatusEntry) (bool, error)

	// DeleteDeliveredBefore purges every order delivered before the cutoff,
	// including its items and history, and returns the number of orders
	// removed. This is destructive and unrecoverable.
	DeleteDeliveredBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// ListByBuyer returns the buyer's visible orders (COD or paid), newest
	// first.
	ListByBuyer(ctx context.Context, buyerID int64) ([]models.Order, error)

	// CountByBuyer returns how many orders ListByBuyer would yield.
	CountByBuyer(ctx context.Context, buyerID int64) (int64, error)

	// ListAll returns every order, newest first. Seller-only.
	ListAll(ctx context.Context) ([]models.Order, error)
}

// Catalog is the read-only slice of the product catalog checkout needs.
type Catalog interface {
	// Resolve returns the product for a given id, or ErrProductNotFound.
	Resolve(ctx context.Context, productID int64) (models.Product, error)
}
