package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the single additive table creation run at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
	id          SERIAL PRIMARY KEY,
	name        VARCHAR(255) NOT NULL,
	description TEXT NULL,
	price       DOUBLE PRECISION NOT NULL,
	stock       INTEGER NOT NULL
)`

// DB is the part of *pgxpool.Pool the repo uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct{ DB DB }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

func (r *Repo) Create(ctx context.Context, in NewProduct) (Product, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO products(name, description, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING `+productColumns,
		in.Name, in.Description, in.Price, in.Stock,
	)
	p, err := scanProduct(row)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// Search counts every match first, then fetches one page of them.
func (r *Repo) Search(ctx context.Context, f Filter) (Page, error) {
	out := Page{Items: []Product{}, Page: f.Page, PageSize: f.PageSize}

	q, args := countQuery(f)
	if err := r.DB.QueryRow(ctx, q, args...).Scan(&out.Total); err != nil {
		return Page{}, fmt.Errorf("count products: %w", err)
	}

	q, args = pageQuery(f)
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return Page{}, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return Page{}, err
		}
		out.Items = append(out.Items, p)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("search products: %w", err)
	}
	return out, nil
}

func (r *Repo) Update(ctx context.Context, id int64, patch Patch) (Product, error) {
	q, args, ok := updateQuery(id, patch)
	if !ok {
		return r.Get(ctx, id)
	}
	p, err := scanProduct(r.DB.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock)
	return p, err
}
