package orders

import "errors"

// Failure kinds surfaced by the lifecycle manager. Handlers map these to HTTP
// status codes with errors.Is; none of them should ever crash the process.
var (
	// ErrInvalidOrder covers missing/empty required fields (address, items).
	ErrInvalidOrder = errors.New("invalid order details")

	// ErrOrderNotFound means the order id does not resolve.
	ErrOrderNotFound = errors.New("order not found")

	// ErrProductNotFound means a referenced product id does not resolve.
	ErrProductNotFound = errors.New("product not found")

	// ErrForbidden means the caller does not own the order being cancelled.
	ErrForbidden = errors.New("order does not belong to this user")

	// ErrInvalidStatus means the target status is not one of the six
	// recognized values.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidTransition means a buyer tried to cancel an order that has
	// already left the warehouse.
	ErrInvalidTransition = errors.New("cannot cancel order that is already shipped")

	// ErrConflict means a concurrent write bumped the order's version between
	// our read and our save. The caller should re-read and retry.
	ErrConflict = errors.New("order was modified concurrently")
)
