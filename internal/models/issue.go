package models

import "time"

// Issue описывает задачу трекера.
type Issue struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	UserID      int64      `json:"user_id"`
	MilestoneID *int64     `json:"milestone_id"`
	IsOpen      bool       `json:"is_open"`
	Assignees   []int64    `json:"assignees"`
	Labels      []int64    `json:"labels"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	ClosedAt    *time.Time `json:"closedAt"`
}

// IssueState задаёт фильтр списка задач.
type IssueState string

// Возможные значения IssueState.
const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
	IssueStateAll    IssueState = "all"
)

// PostIssueJSONBody описывает тело запроса создания задачи.
type PostIssueJSONBody struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Content     string  `json:"content"`
	UserID      int64   `json:"user_id" validate:"required,gt=0"`
	MilestoneID *int64  `json:"milestone_id" validate:"omitempty,gt=0"`
	Assignees   []int64 `json:"assignees" validate:"dive,gt=0"`
	Labels      []int64 `json:"labels" validate:"dive,gt=0"`
}

// PutIssueJSONBody описывает изменяемые поля задачи.
type PutIssueJSONBody struct {
	Title       string `json:"title" validate:"required,max=255"`
	Content     string `json:"content"`
	MilestoneID *int64 `json:"milestone_id" validate:"omitempty,gt=0"`
}

// PatchIssueStateJSONBody открывает или закрывает задачу.
type PatchIssueStateJSONBody struct {
	IsOpen bool `json:"is_open"`
}

// PutIDsJSONBody заменяет набор связанных идентификаторов (исполнители, метки).
type PutIDsJSONBody struct {
	IDs []int64 `json:"ids" validate:"dive,gt=0"`
}
