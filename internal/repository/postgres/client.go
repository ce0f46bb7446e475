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
	clientColumns = `id, name, surname, company, email, phone, seller_id, created_at`

	sqlInsertClient = `
		INSERT INTO clients (id, name, surname, company, email, phone, seller_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

type clientRepository struct {
	q database.Querier
}

// NewClientRepository creates a ClientRepository over q.
func NewClientRepository(q database.Querier) repository.ClientRepository {
	return &clientRepository{q: q}
}

func (r *clientRepository) FindAll(ctx context.Context) ([]entity.Client, error) {
	return r.list(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at, id`)
}

func (r *clientRepository) FindBySeller(ctx context.Context, sellerID string) ([]entity.Client, error) {
	return r.list(ctx, `SELECT `+clientColumns+` FROM clients WHERE seller_id = $1 ORDER BY created_at, id`, sellerID)
}

func (r *clientRepository) list(ctx context.Context, query string, args ...any) ([]entity.Client, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "query clients")
	}
	defer rows.Close()

	clients := []entity.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client rows: %w", err)
	}
	return clients, nil
}

func (r *clientRepository) FindByID(ctx context.Context, id string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "find client")
	}
	return c, nil
}

func (r *clientRepository) Insert(ctx context.Context, c entity.Client) (*entity.Client, error) {
	_, err := r.q.Exec(ctx, sqlInsertClient,
		c.ID, c.Name, c.Surname, c.Company, c.Email, nullString(c.Phone), c.SellerID, c.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "insert client")
	}
	return &c, nil
}

func (r *clientRepository) Update(ctx context.Context, id string, upd repository.ClientUpdate) (*entity.Client, error) {
	var set setClauses
	if upd.Name != nil {
		set.add("name", *upd.Name)
	}
	if upd.Surname != nil {
		set.add("surname", *upd.Surname)
	}
	if upd.Company != nil {
		set.add("company", *upd.Company)
	}
	if upd.Email != nil {
		set.add("email", *upd.Email)
	}
	if upd.Phone != nil {
		set.add("phone", nullString(upd.Phone))
	}
	if set.empty() {
		return r.FindByID(ctx, id)
	}

	clauses, idx := set.build()
	res, err := r.q.Exec(ctx, fmt.Sprintf(`UPDATE clients SET %s WHERE id = $%d`, clauses, idx), append(set.args, id)...)
	if err != nil {
		return nil, mapErr(err, "update client")
	}
	if err := expectOne(res, "update client"); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "delete client")
	}
	return expectOne(res, "delete client")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(s scanner) (*entity.Client, error) {
	var (
		c     entity.Client
		phone sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Surname, &c.Company, &c.Email, &phone, &c.SellerID, &c.CreatedAt); err != nil {
		return nil, err
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	return &c, nil
}

// nullString stores a nil or empty phone as NULL.
func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
