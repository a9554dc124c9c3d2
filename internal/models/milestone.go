package models

import "time"

// Milestone описывает веху проекта.
type Milestone struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	IsOpen      bool       `json:"is_open"`
}

// PostMilestoneJSONBody описывает тело запроса создания или изменения вехи.
type PostMilestoneJSONBody struct {
	Title       string     `json:"title" validate:"required,max=100"`
	Description string     `json:"description" validate:"max=255"`
	DueDate     *time.Time `json:"due_date"`
	IsOpen      *bool      `json:"is_open"`
}
