package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/domain"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

// CreateComment сохраняет комментарий к задаче.
func (s *Storage) CreateComment(ctx context.Context, c *models.Comment) error {
	if c == nil {
		return fmt.Errorf("comment is nil")
	}
	const q = `
	INSERT INTO comments (issue_id, user_id, content)
	VALUES ($1, $2, $3)
	RETURNING id, created_at, updated_at
	`
	var created, updated time.Time
	if err := s.pool.QueryRow(ctx, q, c.IssueID, c.UserID, c.Content).Scan(&c.ID, &created, &updated); err != nil {
		return fmt.Errorf("insert comment: %w", translate(err, "comment"))
	}
	c.CreatedAt = &created
	c.UpdatedAt = &updated
	return nil
}

// GetComment возвращает комментарий по идентификатору.
func (s *Storage) GetComment(ctx context.Context, commentID int64) (*models.Comment, error) {
	const q = `
	SELECT id, issue_id, user_id, content, created_at, updated_at
	FROM comments
	WHERE id = $1
	`
	var c models.Comment
	err := s.pool.QueryRow(ctx, q, commentID).Scan(&c.ID, &c.IssueID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("query GetComment: %w", notFoundOnNoRows(err, fmt.Sprintf("comment %d", commentID)))
	}
	return &c, nil
}

// UpdateComment меняет текст комментария.
func (s *Storage) UpdateComment(ctx context.Context, commentID int64, content string) (*models.Comment, error) {
	const q = `
	UPDATE comments
	SET content = $2, updated_at = NOW()
	WHERE id = $1
	RETURNING id, issue_id, user_id, content, created_at, updated_at
	`
	var c models.Comment
	err := s.pool.QueryRow(ctx, q, commentID, content).Scan(&c.ID, &c.IssueID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", notFoundOnNoRows(err, fmt.Sprintf("comment %d", commentID)))
	}
	return &c, nil
}

// DeleteComment удаляет комментарий.
func (s *Storage) DeleteComment(ctx context.Context, commentID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("comment %d", commentID))
	}
	return nil
}

// ListComments возвращает комментарии задачи в порядке создания.
func (s *Storage) ListComments(ctx context.Context, issueID int64) ([]models.Comment, error) {
	const q = `
	SELECT id, issue_id, user_id, content, created_at, updated_at
	FROM comments
	WHERE issue_id = $1
	ORDER BY created_at, id
	`
	rows, err := s.pool.Query(ctx, q, issueID)
	if err != nil {
		return nil, fmt.Errorf("query ListComments: %w", err)
	}
	defer rows.Close()

	result := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.IssueID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ListComments: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error ListComments: %w", err)
	}
	return result, nil
}
