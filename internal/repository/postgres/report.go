package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/egannguyen/sales-orders/internal/database"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/repository"
)

const (
	sqlClientRevenue = `
		SELECT t.total, c.id, c.name, c.surname, c.company, c.email, c.phone, c.seller_id, c.created_at
		FROM   (SELECT client_id, SUM(total) AS total
		        FROM   orders
		        WHERE  status = 'COMPLETED'
		        GROUP  BY client_id) t
		JOIN   clients c ON c.id = t.client_id
		ORDER  BY t.total DESC, c.id`

	sqlSellerRevenue = `
		SELECT t.total, u.id, u.name, u.surname, u.email, u.created_at
		FROM   (SELECT seller_id, SUM(total) AS total
		        FROM   orders
		        WHERE  status = 'COMPLETED'
		        GROUP  BY seller_id) t
		JOIN   users u ON u.id = t.seller_id
		ORDER  BY t.seller_id`
)

type reportRepository struct {
	q database.Querier
}

// NewReportRepository creates a ReportRepository over q.
func NewReportRepository(q database.Querier) repository.ReportRepository {
	return &reportRepository{q: q}
}

func (r *reportRepository) ClientRevenue(ctx context.Context) ([]entity.ClientRevenue, error) {
	rows, err := r.q.Query(ctx, sqlClientRevenue)
	if err != nil {
		return nil, mapErr(err, "query client revenue")
	}
	defer rows.Close()

	result := []entity.ClientRevenue{}
	for rows.Next() {
		var (
			row   entity.ClientRevenue
			phone sql.NullString
			c     = &row.Client
		)
		if err := rows.Scan(&row.Total, &c.ID, &c.Name, &c.Surname, &c.Company, &c.Email, &phone, &c.SellerID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client revenue: %w", err)
		}
		if phone.Valid {
			c.Phone = &phone.String
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client revenue rows: %w", err)
	}
	return result, nil
}

func (r *reportRepository) SellerRevenue(ctx context.Context) ([]entity.SellerRevenue, error) {
	rows, err := r.q.Query(ctx, sqlSellerRevenue)
	if err != nil {
		return nil, mapErr(err, "query seller revenue")
	}
	defer rows.Close()

	result := []entity.SellerRevenue{}
	for rows.Next() {
		var (
			row entity.SellerRevenue
			u   = &row.Seller
		)
		if err := rows.Scan(&row.Total, &u.ID, &u.Name, &u.Surname, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan seller revenue: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seller revenue rows: %w", err)
	}
	return result, nil
}
