package postgres

import (
	"context"

	"github.com/egannguyen/sales-orders/internal/database"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/repository"
)

const (
	sqlInsertUser = `
		INSERT INTO users (id, name, surname, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	sqlSelectUser = `
		SELECT id, name, surname, email, password_hash, created_at
		FROM   users`
)

type userRepository struct {
	q database.Querier
}

// NewUserRepository creates a UserRepository over q.
func NewUserRepository(q database.Querier) repository.UserRepository {
	return &userRepository{q: q}
}

func (r *userRepository) Insert(ctx context.Context, u entity.User) (*entity.User, error) {
	_, err := r.q.Exec(ctx, sqlInsertUser, u.ID, u.Name, u.Surname, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "insert user")
	}
	return &u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.q.QueryRow(ctx, sqlSelectUser+` WHERE id = $1`, id), "find user")
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.q.QueryRow(ctx, sqlSelectUser+` WHERE email = $1`, email), "find user by email")
}

func scanUser(row *database.Row, op string) (*entity.User, error) {
	var u entity.User
	if err := row.Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, mapErr(err, op)
	}
	return &u, nil
}
