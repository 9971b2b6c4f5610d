// Package product provides the repository interface and PostgreSQL
// implementation for the catalog.
package product

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) (bool, error)
	CountInCategory(ctx context.Context, category string) (int, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// variants bundles the document-shaped product fields stored as one JSONB
// column.
type variants struct {
	Sizes   []SizeVariant  `json:"sizes,omitempty"`
	Extras  []ExtraOption  `json:"extras,omitempty"`
	Flavors []FlavorOption `json:"flavors,omitempty"`
	Options *Options       `json:"options,omitempty"`
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc, err := json.Marshal(variants{p.Sizes, p.Extras, p.Flavors, p.Options})
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, category, description, price, variants, available, image, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Category, p.Description, p.Price, doc, p.Available, p.Image).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

const selectProduct = `
	SELECT id, name, category, description, price::text, variants, available, image, created_at, updated_at
	FROM products
`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var (
		p     Product
		price *string
		doc   []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &price,
		&doc, &p.Available, &p.Image, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if price != nil {
		var dec decimal.Decimal
		if err := dec.Scan(*price); err != nil {
			return nil, err
		}
		p.Price = &dec
	}
	var v variants
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, err
	}
	p.Sizes, p.Extras, p.Flavors, p.Options = v.Sizes, v.Extras, v.Flavors, v.Options
	return &p, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, selectProduct+`WHERE id=$1`, id))
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, selectProduct+`ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc, err := json.Marshal(variants{p.Sizes, p.Extras, p.Flavors, p.Options})
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $2, category = $3, description = $4, price = $5,
		    variants = $6, available = $7, image = $8, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.Category, p.Description, p.Price, doc, p.Available, p.Image)
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

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// CountInCategory backs the category-deletion guard. Products reference
// categories by name, not id; renaming a category would orphan this check,
// which is why categories cannot be renamed.
func (r *PGRepo) CountInCategory(ctx context.Context, category string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM products WHERE category=$1`, category).Scan(&n)
	return n, err
}
