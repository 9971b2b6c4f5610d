package order

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davilamx/comandas/internal/cart"
)

var (
	ErrNotFound = errors.New("order not found")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id string) (bool, error)
	CountCreatedToday(ctx context.Context) (int, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO orders (id, order_number, customer_name, lines, total, status, payment_method, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.OrderNumber, o.CustomerName, lines, o.Total, o.Status, o.PaymentMethod).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

const selectOrder = `
	SELECT id, order_number, customer_name, lines, total::text, status, payment_method, created_at, updated_at
	FROM orders
`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var (
		o     Order
		lines []byte
		total string
	)
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &lines, &total,
		&o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return nil, err
	}
	if o.Lines == nil {
		o.Lines = []cart.Line{}
	}
	if err := o.Total.Scan(total); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, selectOrder+`ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, selectOrder+`WHERE id=$1`, id))
	if err != nil {
		return nil, ErrNotFound
	}
	return o, nil
}

func (r *PGRepo) Update(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET customer_name = $2,
		    lines = $3,
		    total = $4,
		    status = $5,
		    payment_method = $6,
		    updated_at = NOW()
		WHERE id = $1
	`, o.ID, o.CustomerName, lines, o.Total, o.Status, o.PaymentMethod)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// CountCreatedToday backs the daily sequence number: the next order gets
// count+1. Two orders created in the same instant can race this count and
// receive the same number; that is the observed behavior of the system and
// is kept as-is rather than replaced with an atomic per-day counter.
func (r *PGRepo) CountCreatedToday(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM orders WHERE created_at::date = CURRENT_DATE
	`).Scan(&n)
	return n, err
}
