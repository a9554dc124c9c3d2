package repository

import (
	"context"
	"fmt"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/domain"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

// CreateLabel сохраняет метку и проставляет её идентификатор.
func (s *Storage) CreateLabel(ctx context.Context, label *models.Label) error {
	if label == nil {
		return fmt.Errorf("label is nil")
	}
	const q = `
	INSERT INTO labels (title, description, color)
	VALUES ($1, $2, $3)
	RETURNING id
	`
	if err := s.pool.QueryRow(ctx, q, label.Title, label.Description, label.Color).Scan(&label.ID); err != nil {
		return fmt.Errorf("insert label: %w", translate(err, "label"))
	}
	return nil
}

// UpdateLabel перезаписывает поля метки.
func (s *Storage) UpdateLabel(ctx context.Context, label *models.Label) error {
	if label == nil {
		return fmt.Errorf("label is nil")
	}
	const q = `
	UPDATE labels
	SET title = $2, description = $3, color = $4
	WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, q, label.ID, label.Title, label.Description, label.Color)
	if err != nil {
		return fmt.Errorf("update label: %w", translate(err, "label"))
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("label %d", label.ID))
	}
	return nil
}

// DeleteLabel удаляет метку; связи с задачами удаляются каскадно.
func (s *Storage) DeleteLabel(ctx context.Context, labelID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM labels WHERE id = $1`, labelID)
	if err != nil {
		return fmt.Errorf("delete label: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("label %d", labelID))
	}
	return nil
}

// ListLabels возвращает все метки.
func (s *Storage) ListLabels(ctx context.Context) ([]models.Label, error) {
	const q = `SELECT id, title, description, color FROM labels ORDER BY id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query ListLabels: %w", err)
	}
	defer rows.Close()

	result := make([]models.Label, 0)
	for rows.Next() {
		var l models.Label
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.Color); err != nil {
			return nil, fmt.Errorf("scan ListLabels: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error ListLabels: %w", err)
	}
	return result, nil
}

// CreateMilestone сохраняет веху и проставляет её идентификатор.
func (s *Storage) CreateMilestone(ctx context.Context, m *models.Milestone) error {
	if m == nil {
		return fmt.Errorf("milestone is nil")
	}
	const q = `
	INSERT INTO milestones (title, description, due_date, is_open)
	VALUES ($1, $2, $3, $4)
	RETURNING id
	`
	if err := s.pool.QueryRow(ctx, q, m.Title, m.Description, m.DueDate, m.IsOpen).Scan(&m.ID); err != nil {
		return fmt.Errorf("insert milestone: %w", translate(err, "milestone"))
	}
	return nil
}

// UpdateMilestone перезаписывает поля вехи.
func (s *Storage) UpdateMilestone(ctx context.Context, m *models.Milestone) error {
	if m == nil {
		return fmt.Errorf("milestone is nil")
	}
	const q = `
	UPDATE milestones
	SET title = $2, description = $3, due_date = $4, is_open = $5
	WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, q, m.ID, m.Title, m.Description, m.DueDate, m.IsOpen)
	if err != nil {
		return fmt.Errorf("update milestone: %w", translate(err, "milestone"))
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("milestone %d", m.ID))
	}
	return nil
}

// DeleteMilestone удаляет веху; у задач ссылка обнуляется на стороне БД.
func (s *Storage) DeleteMilestone(ctx context.Context, milestoneID int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM milestones WHERE id = $1`, milestoneID)
	if err != nil {
		return fmt.Errorf("delete milestone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("milestone %d", milestoneID))
	}
	return nil
}

// ListMilestones возвращает все вехи.
func (s *Storage) ListMilestones(ctx context.Context) ([]models.Milestone, error) {
	const q = `SELECT id, title, description, due_date, is_open FROM milestones ORDER BY id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query ListMilestones: %w", err)
	}
	defer rows.Close()

	result := make([]models.Milestone, 0)
	for rows.Next() {
		var m models.Milestone
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.DueDate, &m.IsOpen); err != nil {
			return nil, fmt.Errorf("scan ListMilestones: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error ListMilestones: %w", err)
	}
	return result, nil
}
