package postgres

import (
	"context"
	"fmt"

	"github.com/egannguyen/sales-orders/internal/database"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/repository"
)

const (
	productColumns = `id, name, stock, price, created_at`

	sqlInsertProduct = `
		INSERT INTO products (id, name, stock, price, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	// The stock guard makes the decrement safe against concurrent orders.
	sqlDecrementStock = `
		UPDATE products SET stock = stock - $1
		WHERE  id = $2 AND stock >= $1`
)

type productRepository struct {
	q database.Querier
}

// NewProductRepository creates a ProductRepository over q.
func NewProductRepository(q database.Querier) repository.ProductRepository {
	return &productRepository{q: q}
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name, id`)
	if err != nil {
		return nil, mapErr(err, "query products")
	}
	defer rows.Close()

	products := []entity.Product{}
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Stock, &p.Price, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Stock, &p.Price, &p.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "find product")
	}
	return &p, nil
}

func (r *productRepository) Insert(ctx context.Context, p entity.Product) (*entity.Product, error) {
	if _, err := r.q.Exec(ctx, sqlInsertProduct, p.ID, p.Name, p.Stock, p.Price, p.CreatedAt); err != nil {
		return nil, mapErr(err, "insert product")
	}
	return &p, nil
}

func (r *productRepository) Update(ctx context.Context, id string, upd repository.ProductUpdate) (*entity.Product, error) {
	var set setClauses
	if upd.Name != nil {
		set.add("name", *upd.Name)
	}
	if upd.Stock != nil {
		set.add("stock", *upd.Stock)
	}
	if upd.Price != nil {
		set.add("price", *upd.Price)
	}
	if set.empty() {
		return r.FindByID(ctx, id)
	}

	clauses, idx := set.build()
	res, err := r.q.Exec(ctx, fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d`, clauses, idx), append(set.args, id)...)
	if err != nil {
		return nil, mapErr(err, "update product")
	}
	if err := expectOne(res, "update product"); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "delete product")
	}
	return expectOne(res, "delete product")
}

func (r *productRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	res, err := r.q.Exec(ctx, sqlDecrementStock, qty, id)
	if err != nil {
		return mapErr(err, "update product stock")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update product stock: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("decrement %d of product %s: %w", qty, id, repository.ErrStockConflict)
	}
	return nil
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	var count int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return mapErr(err, "count products")
	}
	if count > 0 {
		return nil
	}

	for _, p := range products {
		if _, err := r.Insert(ctx, p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.Name, err)
		}
	}
	return nil
}
