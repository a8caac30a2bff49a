package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/coffeeshop-api/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (customer_id, status, payment_status, total_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	getOrderSQL = `SELECT id, customer_id, status, payment_status, total_amount, created_at, completed_at
		FROM orders WHERE id = $1`

	listOrdersSQL = `SELECT id, customer_id, status, payment_status, total_amount, created_at, completed_at
		FROM orders ORDER BY id`

	listOrdersByCustomerSQL = `SELECT id, customer_id, status, payment_status, total_amount, created_at, completed_at
		FROM orders WHERE customer_id = $1 ORDER BY id`

	countOrdersByCustomerSQL = `SELECT count(*) FROM orders WHERE customer_id = $1`

	// Guarded transitions: the WHERE clause makes the state check and the
	// write one atomic statement, so two concurrent calls cannot both win.
	markPaidSQL = `UPDATE orders
		SET payment_status = 'PAID',
		    status = CASE WHEN status = 'CREATED' THEN 'PAID' ELSE status END
		WHERE id = $1 AND payment_status = 'PENDING'
		RETURNING id, customer_id, status, payment_status, total_amount, created_at, completed_at`

	markCompletedSQL = `UPDATE orders
		SET status = 'COMPLETED', completed_at = $2
		WHERE id = $1 AND status <> 'COMPLETED'
		RETURNING id, customer_id, status, payment_status, total_amount, created_at, completed_at`

	// lockOrderSQL pins the parent row for the rest of the transaction.
	// Concurrent mutations of the same order queue up here; other orders
	// are untouched.
	lockOrderSQL = `SELECT id FROM orders WHERE id = $1 FOR UPDATE`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, menu_item_id, quantity, price, customizations)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	getOrderItemSQL = `SELECT id, order_id, menu_item_id, quantity, price, customizations
		FROM order_items WHERE id = $1`

	listOrderItemsSQL = `SELECT id, order_id, menu_item_id, quantity, price, customizations
		FROM order_items WHERE order_id = $1 ORDER BY id`

	countItemsByMenuItemSQL = `SELECT count(*) FROM order_items WHERE menu_item_id = $1`

	deleteOrderItemSQL = `DELETE FROM order_items WHERE id = $1`

	deleteOrderItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	// recomputeTotalSQL re-reads the authoritative item set and stores the
	// sum on the parent. Always run inside the same transaction as the item
	// write it follows.
	recomputeTotalSQL = `UPDATE orders
		SET total_amount = (
			SELECT COALESCE(SUM(price), 0) FROM order_items WHERE order_id = $1
		)
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
// Composite mutations (item add/remove, cascade delete) run in a single
// transaction with the parent order row locked.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new order and fills in the assigned id and timestamp.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := r.pool.QueryRow(ctx, createOrderSQL,
		o.CustomerID, o.Status, o.PaymentStatus, o.TotalAmount,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}
	return nil
}

// Get returns a single order by id.
func (r *OrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	return &o, nil
}

// List returns all orders ordered by id.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListByCustomer returns all orders placed by the given customer.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByCustomerSQL, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for customer %d: %w", customerID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// CountByCustomer reports how many orders reference the customer.
func (r *OrderRepository) CountByCustomer(ctx context.Context, customerID int64) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countOrdersByCustomerSQL, customerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting orders for customer %d: %w", customerID, err)
	}
	return n, nil
}

// MarkPaid flips payment_status to PAID, promoting status CREATED->PAID in
// the same statement. A second call finds no PENDING row and reports
// ErrAlreadyPaid.
func (r *OrderRepository) MarkPaid(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, markPaidSQL, id)
	if err != nil {
		return nil, fmt.Errorf("paying order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrAlreadyPaid
		}
		return nil, fmt.Errorf("paying order %d: %w", id, err)
	}
	return &o, nil
}

// MarkCompleted sets status COMPLETED and the completion timestamp. A
// second call finds no non-COMPLETED row and reports ErrAlreadyCompleted.
func (r *OrderRepository) MarkCompleted(ctx context.Context, id int64, completedAt time.Time) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, markCompletedSQL, id, completedAt)
	if err != nil {
		return nil, fmt.Errorf("completing order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrAlreadyCompleted
		}
		return nil, fmt.Errorf("completing order %d: %w", id, err)
	}
	return &o, nil
}

// Delete removes the order and all of its items in one transaction and
// returns the cascaded item count.
func (r *OrderRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var cascaded int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockOrder(ctx, tx, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, deleteOrderItemsSQL, id)
		if err != nil {
			return errors.Wrap(err, "delete order items")
		}
		cascaded = tag.RowsAffected()

		if _, err := tx.Exec(ctx, deleteOrderSQL, id); err != nil {
			return errors.Wrap(err, "delete order")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return 0, order.ErrNotFound
		}
		return 0, fmt.Errorf("deleting order %d: %w", id, err)
	}
	return cascaded, nil
}

// AddItem inserts the line and recomputes the parent total atomically. The
// total is re-read from the stored items, never accumulated in memory, so
// interleaved additions and removals on the same order stay consistent.
func (r *OrderRepository) AddItem(ctx context.Context, it *order.Item) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockOrder(ctx, tx, it.OrderID); err != nil {
			return err
		}

		err := tx.QueryRow(ctx, insertOrderItemSQL,
			it.OrderID, it.MenuItemID, it.Quantity, it.Price, it.Customizations,
		).Scan(&it.ID)
		if err != nil {
			return errors.Wrap(err, "insert order item")
		}

		if _, err := tx.Exec(ctx, recomputeTotalSQL, it.OrderID); err != nil {
			return errors.Wrap(err, "recompute order total")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.ErrNotFound
		}
		return fmt.Errorf("adding item to order %d: %w", it.OrderID, err)
	}
	return nil
}

// RemoveItem deletes the line and recomputes the parent total atomically.
func (r *OrderRepository) RemoveItem(ctx context.Context, itemID int64) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var orderID int64
		err := tx.QueryRow(ctx, `SELECT order_id FROM order_items WHERE id = $1`, itemID).Scan(&orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return order.ErrItemNotFound
			}
			return errors.Wrap(err, "resolve order item")
		}

		if err := lockOrder(ctx, tx, orderID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, deleteOrderItemSQL, itemID)
		if err != nil {
			return errors.Wrap(err, "delete order item")
		}
		if tag.RowsAffected() == 0 {
			return order.ErrItemNotFound
		}

		if _, err := tx.Exec(ctx, recomputeTotalSQL, orderID); err != nil {
			return errors.Wrap(err, "recompute order total")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, order.ErrItemNotFound) {
			return order.ErrItemNotFound
		}
		return fmt.Errorf("removing order item %d: %w", itemID, err)
	}
	return nil
}

// GetItem returns a single order item by id.
func (r *OrderRepository) GetItem(ctx context.Context, itemID int64) (*order.Item, error) {
	rows, err := r.pool.Query(ctx, getOrderItemSQL, itemID)
	if err != nil {
		return nil, fmt.Errorf("getting order item %d: %w", itemID, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanOrderItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrItemNotFound
		}
		return nil, fmt.Errorf("getting order item %d: %w", itemID, err)
	}
	return &it, nil
}

// ListItems returns the items of one order, ordered by id.
func (r *OrderRepository) ListItems(ctx context.Context, orderID int64) ([]order.Item, error) {
	rows, err := r.pool.Query(ctx, listOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing items of order %d: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanOrderItem)
}

// CountByMenuItem reports how many order items reference the menu item.
func (r *OrderRepository) CountByMenuItem(ctx context.Context, menuItemID int64) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countItemsByMenuItemSQL, menuItemID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items for menu item %d: %w", menuItemID, err)
	}
	return n, nil
}

func lockOrder(ctx context.Context, tx pgx.Tx, orderID int64) error {
	var id int64
	if err := tx.QueryRow(ctx, lockOrderSQL, orderID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.ErrNotFound
		}
		return errors.Wrap(err, "lock order row")
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.PaymentStatus,
		&o.TotalAmount, &o.CreatedAt, &o.CompletedAt,
	)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(
		&it.ID, &it.OrderID, &it.MenuItemID,
		&it.Quantity, &it.Price, &it.Customizations,
	)
	return it, err
}
