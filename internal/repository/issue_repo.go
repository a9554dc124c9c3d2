package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/domain"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

// selectIssues выбирает задачи вместе с агрегированными исполнителями и метками.
const selectIssues = `
SELECT
    i.id, i.title, i.content, i.user_id, i.milestone_id, i.is_open,
    i.created_at, i.updated_at, i.closed_at,
    COALESCE(array_agg(DISTINCT a.user_id) FILTER (WHERE a.user_id IS NOT NULL), '{}') AS assignees,
    COALESCE(array_agg(DISTINCT l.label_id) FILTER (WHERE l.label_id IS NOT NULL), '{}') AS labels
FROM issues i
LEFT JOIN assignee_issues a ON a.issue_id = i.id
LEFT JOIN issue_labels l ON l.issue_id = i.id
`

// CreateIssue сохраняет задачу, её исполнителей и метки в одной транзакции.
func (s *Storage) CreateIssue(ctx context.Context, issue *models.Issue) error {
	if issue == nil {
		return fmt.Errorf("issue is nil")
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		const insertIssue = `
		INSERT INTO issues (title, content, user_id, milestone_id, is_open)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, created_at, updated_at
		`
		var created, updated time.Time
		err := tx.QueryRow(ctx, insertIssue, issue.Title, issue.Content, issue.UserID, issue.MilestoneID).
			Scan(&issue.ID, &created, &updated)
		if err != nil {
			return fmt.Errorf("insert issue: %w", translate(err, "issue"))
		}
		issue.IsOpen = true
		issue.CreatedAt = &created
		issue.UpdatedAt = &updated

		issue.Assignees, err = insertLinksTx(ctx, tx, assigneeLinks, issue.ID, issue.Assignees)
		if err != nil {
			return err
		}
		issue.Labels, err = insertLinksTx(ctx, tx, labelLinks, issue.ID, issue.Labels)
		return err
	})
}

// GetIssue возвращает задачу по идентификатору.
func (s *Storage) GetIssue(ctx context.Context, issueID int64) (*models.Issue, error) {
	q := selectIssues + `WHERE i.id = $1 GROUP BY i.id`
	rows, err := s.pool.Query(ctx, q, issueID)
	if err != nil {
		return nil, fmt.Errorf("query GetIssue: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows error GetIssue: %w", err)
		}
		return nil, domain.NewNotFoundError(fmt.Sprintf("issue %d", issueID))
	}
	issue, err := scanIssue(rows)
	if err != nil {
		return nil, fmt.Errorf("scan GetIssue: %w", err)
	}
	return issue, nil
}

// ListIssues возвращает задачи с учётом фильтра состояния.
func (s *Storage) ListIssues(ctx context.Context, state models.IssueState) ([]models.Issue, error) {
	q := selectIssues + `
	WHERE $1 = 'all' OR i.is_open = ($1 = 'open')
	GROUP BY i.id
	ORDER BY i.id
	`
	rows, err := s.pool.Query(ctx, q, string(state))
	if err != nil {
		return nil, fmt.Errorf("query ListIssues: %w", err)
	}
	defer rows.Close()

	result := make([]models.Issue, 0)
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ListIssues: %w", err)
		}
		result = append(result, *issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error ListIssues: %w", err)
	}
	return result, nil
}

// UpdateIssue меняет заголовок, текст и веху задачи.
func (s *Storage) UpdateIssue(ctx context.Context, issue *models.Issue) error {
	if issue == nil {
		return fmt.Errorf("issue is nil")
	}
	const q = `
	UPDATE issues
	SET title = $2, content = $3, milestone_id = $4, updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	var updated time.Time
	err := s.pool.QueryRow(ctx, q, issue.ID, issue.Title, issue.Content, issue.MilestoneID).Scan(&updated)
	if err != nil {
		err = notFoundOnNoRows(err, fmt.Sprintf("issue %d", issue.ID))
		return fmt.Errorf("update issue: %w", translate(err, "issue"))
	}
	issue.UpdatedAt = &updated
	return nil
}

// SetIssueState открывает или закрывает задачу.
func (s *Storage) SetIssueState(ctx context.Context, issueID int64, isOpen bool) error {
	const q = `
	UPDATE issues
	SET is_open = $2,
	    closed_at = CASE WHEN $2 THEN NULL ELSE NOW() END,
	    updated_at = NOW()
	WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, q, issueID, isOpen)
	if err != nil {
		return fmt.Errorf("update issue state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("issue %d", issueID))
	}
	return nil
}

// DeleteIssue удаляет задачу; комментарии и связи удаляются каскадно.
func (s *Storage) DeleteIssue(ctx context.Context, issueID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM issues WHERE id = $1`, issueID)
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("issue %d", issueID))
	}
	return nil
}

// ReplaceAssignees заменяет набор исполнителей задачи.
func (s *Storage) ReplaceAssignees(ctx context.Context, issueID int64, userIDs []int64) ([]int64, error) {
	return s.replaceLinks(ctx, assigneeLinks, issueID, userIDs)
}

// ReplaceIssueLabels заменяет набор меток задачи.
func (s *Storage) ReplaceIssueLabels(ctx context.Context, issueID int64, labelIDs []int64) ([]int64, error) {
	return s.replaceLinks(ctx, labelLinks, issueID, labelIDs)
}

// ListAssignees возвращает пользователей, назначенных на задачу.
func (s *Storage) ListAssignees(ctx context.Context, issueID int64) ([]models.User, error) {
	const q = `
	SELECT u.id, u.name, u.image, u.created_at
	FROM assignee_issues a
	JOIN users u ON u.id = a.user_id
	WHERE a.issue_id = $1
	ORDER BY u.id
	`
	rows, err := s.pool.Query(ctx, q, issueID)
	if err != nil {
		return nil, fmt.Errorf("query ListAssignees: %w", err)
	}
	defer rows.Close()

	result := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Image, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ListAssignees: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error ListAssignees: %w", err)
	}
	return result, nil
}

// linkTable описывает таблицу связей задачи с пользователями или метками.
type linkTable struct {
	name   string
	column string
}

var (
	assigneeLinks = linkTable{name: "assignee_issues", column: "user_id"}
	labelLinks    = linkTable{name: "issue_labels", column: "label_id"}
)

func (s *Storage) replaceLinks(ctx context.Context, table linkTable, issueID int64, ids []int64) ([]int64, error) {
	var stored []int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		// Блокируем задачу, чтобы параллельные замены не перемешали наборы.
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM issues WHERE id = $1 FOR UPDATE`, issueID).Scan(&locked)
		if err != nil {
			return fmt.Errorf("lock issue: %w", notFoundOnNoRows(err, fmt.Sprintf("issue %d", issueID)))
		}

		deleteQ := fmt.Sprintf(`DELETE FROM %s WHERE issue_id = $1`, table.name)
		if _, err := tx.Exec(ctx, deleteQ, issueID); err != nil {
			return fmt.Errorf("delete %s: %w", table.name, err)
		}

		stored, err = insertLinksTx(ctx, tx, table, issueID, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func insertLinksTx(ctx context.Context, tx pgx.Tx, table linkTable, issueID int64, ids []int64) ([]int64, error) {
	insertQ := fmt.Sprintf(`INSERT INTO %s (issue_id, %s) VALUES ($1, $2)`, table.name, table.column)

	// Дедуплицируем и пропускаем пустые идентификаторы.
	stored := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, err := tx.Exec(ctx, insertQ, issueID, id); err != nil {
			return nil, fmt.Errorf("insert %s (%d): %w", table.name, id, translate(err, table.column))
		}
		stored = append(stored, id)
	}
	return stored, nil
}

func scanIssue(row pgx.Row) (*models.Issue, error) {
	var issue models.Issue
	err := row.Scan(
		&issue.ID,
		&issue.Title,
		&issue.Content,
		&issue.UserID,
		&issue.MilestoneID,
		&issue.IsOpen,
		&issue.CreatedAt,
		&issue.UpdatedAt,
		&issue.ClosedAt,
		&issue.Assignees,
		&issue.Labels,
	)
	if err != nil {
		return nil, err
	}
	return &issue, nil
}
