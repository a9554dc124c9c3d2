package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

// CreateUser сохраняет пользователя и возвращает его с присвоенным идентификатором.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is nil")
	}

	const q = `
	INSERT INTO users (name, image)
	VALUES ($1, $2)
	RETURNING id, created_at
	`
	var created time.Time
	if err := s.pool.QueryRow(ctx, q, user.Name, user.Image).Scan(&user.ID, &created); err != nil {
		return fmt.Errorf("insert user: %w", translate(err, "user"))
	}
	user.CreatedAt = &created
	return nil
}

// GetUser возвращает пользователя по идентификатору.
func (s *Storage) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	const q = `
	SELECT id, name, image, created_at
	FROM users
	WHERE id = $1
	`
	var (
		u       models.User
		created *time.Time
	)
	err := s.pool.QueryRow(ctx, q, userID).Scan(&u.ID, &u.Name, &u.Image, &created)
	if err != nil {
		return nil, fmt.Errorf("query GetUser: %w", notFoundOnNoRows(err, fmt.Sprintf("user %d", userID)))
	}
	u.CreatedAt = created
	return &u, nil
}

// ListUsers возвращает всех пользователей по возрастанию идентификатора.
func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	const q = `
	SELECT id, name, image, created_at
	FROM users
	ORDER BY id
	`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query ListUsers: %w", err)
	}
	defer rows.Close()

	result := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Image, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ListUsers: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error ListUsers: %w", err)
	}
	return result, nil
}
