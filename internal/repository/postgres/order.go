package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/egannguyen/sales-orders/internal/database"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/repository"
)

const (
	orderColumns = `id, client_id, seller_id, total, status, created_at`

	sqlInsertOrder = `
		INSERT INTO orders (id, client_id, seller_id, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	sqlInsertOrderItem = `
		INSERT INTO order_items (order_id, line_no, product_id, quantity)
		VALUES ($1, $2, $3, $4)`

	sqlSelectOrderItems = `
		SELECT product_id, quantity
		FROM   order_items
		WHERE  order_id = $1
		ORDER  BY line_no`
)

type orderRepository struct {
	q database.Querier
}

// NewOrderRepository creates an OrderRepository over q. Multi-statement
// writes should run on a transaction-bound Querier.
func NewOrderRepository(q database.Querier) repository.OrderRepository {
	return &orderRepository{q: q}
}

func (r *orderRepository) Find(ctx context.Context, filter repository.OrderFilter) ([]entity.Order, error) {
	var (
		where []string
		args  []any
	)
	if filter.SellerID != "" {
		args = append(args, filter.SellerID)
		where = append(where, fmt.Sprintf("seller_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "query orders")
	}

	orders := []entity.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	// Fetch items for each order
	for i := range orders {
		if orders[i].Items, err = r.items(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "find order")
	}
	if o.Items, err = r.items(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) Insert(ctx context.Context, o entity.Order) (*entity.Order, error) {
	_, err := r.q.Exec(ctx, sqlInsertOrder, o.ID, o.ClientID, o.SellerID, o.Total, string(o.Status), o.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "insert order")
	}
	if err := r.insertItems(ctx, o.ID, o.Items); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Update(ctx context.Context, id string, upd repository.OrderUpdate) (*entity.Order, error) {
	var set setClauses
	if upd.ClientID != nil {
		set.add("client_id", *upd.ClientID)
	}
	if upd.Total != nil {
		set.add("total", *upd.Total)
	}
	if upd.Status != nil {
		set.add("status", string(*upd.Status))
	}

	if !set.empty() {
		clauses, idx := set.build()
		res, err := r.q.Exec(ctx, fmt.Sprintf(`UPDATE orders SET %s WHERE id = $%d`, clauses, idx), append(set.args, id)...)
		if err != nil {
			return nil, mapErr(err, "update order")
		}
		if err := expectOne(res, "update order"); err != nil {
			return nil, err
		}
	}

	if upd.Items != nil {
		if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
			return nil, mapErr(err, "replace order items")
		}
		if err := r.insertItems(ctx, id, upd.Items); err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "delete order")
	}
	if err := expectOne(res, "delete order"); err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return mapErr(err, "delete order items")
	}
	return nil
}

func (r *orderRepository) insertItems(ctx context.Context, orderID string, items []entity.LineItem) error {
	for i, item := range items {
		if _, err := r.q.Exec(ctx, sqlInsertOrderItem, orderID, i, item.ProductID, item.Quantity); err != nil {
			return mapErr(err, "insert order item")
		}
	}
	return nil
}

func (r *orderRepository) items(ctx context.Context, orderID string) ([]entity.LineItem, error) {
	rows, err := r.q.Query(ctx, sqlSelectOrderItems, orderID)
	if err != nil {
		return nil, mapErr(err, "query order items")
	}
	defer rows.Close()

	items := []entity.LineItem{}
	for rows.Next() {
		var item entity.LineItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order item rows: %w", err)
	}
	return items, nil
}

func scanOrder(s scanner) (*entity.Order, error) {
	var (
		o      entity.Order
		status string
	)
	if err := s.Scan(&o.ID, &o.ClientID, &o.SellerID, &o.Total, &status, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	return &o, nil
}
