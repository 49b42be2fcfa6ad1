package orders

import (
	"context"
	"database/sql"
	"time"

	"github.com/greencart/greencart-golang/internal/models"
)

// MySQLStore implements Store and Catalog on top of the shared *sql.DB pool.
type MySQLStore struct {
	DB *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{DB: db}
}

const orderColumns = `
	id, user_id, address_id, amount, status, payment_type, is_paid,
	razorpay_order_id, razorpay_payment_id, razorpay_signature,
	tracking_number, estimated_delivery, delivered_at,
	cancelled_at, cancellation_reason, created_at, updated_at, version
`

// rowScanner lets scanOrder work for both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o                  models.Order
		razorpayOrderID    sql.NullString
		razorpayPaymentID  sql.NullString
		razorpaySignature  sql.NullString
		trackingNumber     sql.NullString
		deliveredAt        sql.NullTime
		cancelledAt        sql.NullTime
		cancellationReason sql.NullString
	)

	err := row.Scan(
		&o.ID, &o.UserID, &o.AddressID, &o.Amount, &o.Status, &o.PaymentType, &o.IsPaid,
		&razorpayOrderID, &razorpayPaymentID, &razorpaySignature,
		&trackingNumber, &o.EstimatedDelivery, &deliveredAt,
		&cancelledAt, &cancellationReason, &o.CreatedAt, &o.UpdatedAt, &o.Version,
	)
	if err != nil {
		return nil, err
	}

	if razorpayOrderID.Valid {
		o.RazorpayOrderID = &razorpayOrderID.String
	}
	if razorpayPaymentID.Valid {
		o.RazorpayPaymentID = &razorpayPaymentID.String
	}
	if razorpaySignature.Valid {
		o.RazorpaySignature = &razorpaySignature.String
	}
	if trackingNumber.Valid {
		o.TrackingNumber = &trackingNumber.String
	}
	if deliveredAt.Valid {
		o.DeliveredAt = &deliveredAt.Time
	}
	if cancelledAt.Valid {
		o.CancelledAt = &cancelledAt.Time
	}
	if cancellationReason.Valid {
		o.CancellationReason = &cancellationReason.String
	}
	return &o, nil
}

// Create inserts the order, its line items and the seeded history entry in one
// transaction.
func (m *MySQLStore) Create(ctx context.Context, o *models.Order) error {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Safety net

	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders
			(user_id, address_id, amount, status, payment_type, is_paid,
			 razorpay_order_id, tracking_number, estimated_delivery,
			 created_at, updated_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		o.UserID, o.AddressID, o.Amount, o.Status, o.PaymentType, o.IsPaid,
		o.RazorpayOrderID, o.TrackingNumber, o.EstimatedDelivery,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = orderID
	o.Version = 1

	for i := range o.Items {
		o.Items[i].OrderID = orderID
		res, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, quantity) VALUES (?, ?, ?)",
			orderID, o.Items[i].ProductID, o.Items[i].Quantity,
		)
		if err != nil {
			return err
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		o.Items[i].ID = itemID
	}

	for i := range o.StatusHistory {
		o.StatusHistory[i].OrderID = orderID
		_, err := tx.ExecContext(ctx,
			"INSERT INTO order_status_history (order_id, status, note, created_at) VALUES (?, ?, ?, ?)",
			orderID, o.StatusHistory[i].Status, o.StatusHistory[i].Note, o.StatusHistory[i].Timestamp,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindByID loads one order with items and status history.
func (m *MySQLStore) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	row := m.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = ?", id)

	o, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if err := m.loadItems(ctx, o); err != nil {
		return nil, err
	}
	if err := m.loadHistory(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (m *MySQLStore) loadItems(ctx context.Context, o *models.Order) error {
	rows, err := m.DB.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, p.name, p.offer_price
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.ProductName, &item.OfferPrice); err != nil {
			return err
		}
		items = append(items, item)
	}
	o.Items = items
	return rows.Err()
}

func (m *MySQLStore) loadHistory(ctx context.Context, o *models.Order) error {
	rows, err := m.DB.QueryContext(ctx, `
		SELECT id, order_id, status, note, created_at
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY id ASC`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var history []models.StatusEntry
	for rows.Next() {
		var entry models.StatusEntry
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.Status, &entry.Note, &entry.Timestamp); err != nil {
			return err
		}
		history = append(history, entry)
	}
	o.StatusHistory = history
	return rows.Err()
}

// Save writes the mutable order fields and appends the history entry, guarded
// on the version the caller read. A version mismatch means someone else wrote
// in between; the caller gets ErrConflict instead of silently losing a write.
func (m *MySQLStore) Save(ctx context.Context, o *models.Order, entry models.StatusEntry) error {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = ?, is_paid = ?, delivered_at = ?, cancelled_at = ?,
		    cancellation_reason = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		o.Status, o.IsPaid, o.DeliveredAt, o.CancelledAt,
		o.CancellationReason, o.UpdatedAt, o.ID, o.Version,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrConflict
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO order_status_history (order_id, status, note, created_at) VALUES (?, ?, ?, ?)",
		entry.OrderID, entry.Status, entry.Note, entry.Timestamp,
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	o.Version++
	return nil
}

// ConfirmPayment is the at-most-once payment confirmation: the update is
// conditioned on is_paid = 0, so the second verification of the same order
// changes nothing and appends nothing.
func (m *MySQLStore) ConfirmPayment(ctx context.Context, orderID int64, paymentID, signature string, entry models.StatusEntry) (bool, error) {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET is_paid = 1, razorpay_payment_id = ?, razorpay_signature = ?,
		    status = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND is_paid = 0`,
		paymentID, signature, entry.Status, entry.Timestamp, orderID,
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		// Already paid; nothing to do.
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO order_status_history (order_id, status, note, created_at) VALUES (?, ?, ?, ?)",
		entry.OrderID, entry.Status, entry.Note, entry.Timestamp,
	)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// DeleteDeliveredBefore purges delivered orders past the cutoff along with
// their items and history. Children go first to keep foreign keys happy.
func (m *MySQLStore) DeleteDeliveredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE oi FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE o.status = ? AND o.delivered_at < ?`,
		models.StatusDelivered, cutoff,
	)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `
		DELETE h FROM order_status_history h
		JOIN orders o ON h.order_id = o.id
		WHERE o.status = ? AND o.delivered_at < ?`,
		models.StatusDelivered, cutoff,
	)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx,
		"DELETE FROM orders WHERE status = ? AND delivered_at < ?",
		models.StatusDelivered, cutoff,
	)
	if err != nil {
		return 0, err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return deleted, tx.Commit()
}

// ListByBuyer returns the buyer's visible orders: COD orders always, online
// orders only once paid.
func (m *MySQLStore) ListByBuyer(ctx context.Context, buyerID int64) ([]models.Order, error) {
	rows, err := m.DB.QueryContext(ctx,
		"SELECT "+orderColumns+` FROM orders
		WHERE user_id = ? AND (payment_type = ? OR is_paid = 1)
		ORDER BY created_at DESC`,
		buyerID, models.PaymentCOD)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return m.collectOrders(ctx, rows)
}

func (m *MySQLStore) CountByBuyer(ctx context.Context, buyerID int64) (int64, error) {
	var total int64
	err := m.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE user_id = ? AND (payment_type = ? OR is_paid = 1)`,
		buyerID, models.PaymentCOD).Scan(&total)
	return total, err
}

// ListAll returns every order for the seller dashboard, newest first.
func (m *MySQLStore) ListAll(ctx context.Context) ([]models.Order, error) {
	rows, err := m.DB.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return m.collectOrders(ctx, rows)
}

func (m *MySQLStore) collectOrders(ctx context.Context, rows *sql.Rows) ([]models.Order, error) {
	var list []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range list {
		if err := m.loadItems(ctx, &list[i]); err != nil {
			return nil, err
		}
		if err := m.loadHistory(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Resolve implements Catalog against the products table.
func (m *MySQLStore) Resolve(ctx context.Context, productID int64) (models.Product, error) {
	var p models.Product
	var imageURL sql.NullString
	err := m.DB.QueryRowContext(ctx, `
		SELECT id, name, description, category, price, offer_price, image_url, in_stock,
		       created_at, updated_at
		FROM products WHERE id = ?`, productID).Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.OfferPrice,
		&imageURL, &p.InStock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	return p, nil
}
