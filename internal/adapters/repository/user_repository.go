package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/ports"
)

type UserRepository struct {
	q querier
}

var _ ports.UserRepository = (*UserRepository)(nil)

const userColumns = `id, subject, first_name, last_name, email, role, is_active, created_at, updated_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Subject, &u.FirstName, &u.LastName, &u.Email, &role,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.LastLoginAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "user")
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *UserRepository) FindBySubject(ctx context.Context, subject string) (*domain.User, error) {
	return r.findOne(ctx, "subject = $1", subject)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "lower(email) = $1", strings.ToLower(email))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.Subject, u.FirstName, u.LastName, u.Email, string(u.Role),
		u.IsActive, u.CreatedAt, u.UpdatedAt, u.LastLoginAt,
	)
	return mapError(err, "user")
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET subject = $2, first_name = $3, last_name = $4, email = $5, role = $6,
		        is_active = $7, updated_at = $8, last_login_at = $9
		 WHERE id = $1`,
		u.ID, u.Subject, u.FirstName, u.LastName, u.Email, string(u.Role),
		u.IsActive, u.UpdatedAt, u.LastLoginAt,
	)
	if err != nil {
		return mapError(err, "user")
	}
	return requireAffected(res, "user")
}

func (r *UserRepository) List(ctx context.Context, f domain.UserFilter) ([]domain.User, error) {
	var (
		where []string
		args  []any
	)
	if f.Role != nil {
		args = append(args, string(*f.Role))
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.ActiveOnly {
		where = append(where, "is_active")
	}
	query := "SELECT " + userColumns + " FROM users"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY last_name, first_name, email LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "user")
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func requireAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundf("%s not found", entity)
	}
	return nil
}
