package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/coffeeshop-api/internal/domain/customer"
)

const (
	createCustomerSQL = `INSERT INTO customers (name, phone, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	getCustomerSQL = `SELECT id, name, phone, email, created_at
		FROM customers WHERE id = $1`

	listCustomersSQL = `SELECT id, name, phone, email, created_at
		FROM customers ORDER BY id`

	updateCustomerSQL = `UPDATE customers
		SET name = COALESCE($2, name),
		    phone = COALESCE($3, phone),
		    email = COALESCE($4, email)
		WHERE id = $1
		RETURNING id, name, phone, email, created_at`

	deleteCustomerSQL = `DELETE FROM customers WHERE id = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create inserts a new customer and fills in the assigned id and timestamp.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	err := r.pool.QueryRow(ctx, createCustomerSQL, c.Name, c.Phone, c.Email).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating customer: %w", err)
	}
	return nil
}

// Get returns a single customer by id.
func (r *CustomerRepository) Get(ctx context.Context, id int64) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, getCustomerSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}
	return &c, nil
}

// List returns all customers ordered by id.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// Update applies the non-nil fields of upd and returns the updated row.
func (r *CustomerRepository) Update(ctx context.Context, id int64, upd customer.Update) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, updateCustomerSQL, id, upd.Name, upd.Phone, upd.Email)
	if err != nil {
		return nil, fmt.Errorf("updating customer %d: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("updating customer %d: %w", id, err)
	}
	return &c, nil
}

// Delete removes a customer row. Referential checks happen in the service.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteCustomerSQL, id)
	if err != nil {
		return fmt.Errorf("deleting customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt)
	return c, err
}
