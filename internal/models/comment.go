package models

import "time"

// Comment описывает комментарий к задаче.
type Comment struct {
	ID        int64      `json:"id"`
	IssueID   int64      `json:"issue_id"`
	UserID    int64      `json:"user_id"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// PostCommentJSONBody описывает тело запроса создания комментария.
type PostCommentJSONBody struct {
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
	Content string `json:"content" validate:"required"`
}

// PutCommentJSONBody описывает тело запроса изменения комментария.
type PutCommentJSONBody struct {
	Content string `json:"content" validate:"required"`
}
