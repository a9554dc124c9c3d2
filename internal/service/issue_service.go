package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/domain"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

type IssueRepository interface {
	CreateIssue(ctx context.Context, issue *models.Issue) error
	GetIssue(ctx context.Context, issueID int64) (*models.Issue, error)
	ListIssues(ctx context.Context, state models.IssueState) ([]models.Issue, error)
	UpdateIssue(ctx context.Context, issue *models.Issue) error
	SetIssueState(ctx context.Context, issueID int64, isOpen bool) error
	DeleteIssue(ctx context.Context, issueID int64) error
	ReplaceAssignees(ctx context.Context, issueID int64, userIDs []int64) ([]int64, error)
	ReplaceIssueLabels(ctx context.Context, issueID int64, labelIDs []int64) ([]int64, error)
	ListAssignees(ctx context.Context, issueID int64) ([]models.User, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, commentID int64) (*models.Comment, error)
	UpdateComment(ctx context.Context, commentID int64, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
	ListComments(ctx context.Context, issueID int64) ([]models.Comment, error)
}

type IssueStore interface {
	IssueRepository
	CommentRepository
}

type IssueManager struct {
	repo IssueStore
}

// NewIssueManager связывает менеджер задач с хранилищем.
func NewIssueManager(repo IssueStore) *IssueManager {
	return &IssueManager{repo: repo}
}

// CreateIssue создаёт открытую задачу вместе с исполнителями и метками.
func (im *IssueManager) CreateIssue(ctx context.Context, payload models.PostIssueJSONBody) (*models.Issue, error) {
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return nil, domain.NewInvalidInputError("issue title is empty")
	}

	issue := &models.Issue{
		Title:       title,
		Content:     payload.Content,
		UserID:      payload.UserID,
		MilestoneID: payload.MilestoneID,
		IsOpen:      true,
		Assignees:   payload.Assignees,
		Labels:      payload.Labels,
	}
	if err := im.repo.CreateIssue(ctx, issue); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	return issue, nil
}

// GetIssue возвращает задачу по идентификатору.
func (im *IssueManager) GetIssue(ctx context.Context, issueID int64) (*models.Issue, error) {
	issue, err := im.repo.GetIssue(ctx, issueID)
	if err != nil {
		return nil, wrapNotFound(err, "issue", issueID)
	}
	return issue, nil
}

// ListIssues фильтрует задачи по состоянию; пустое состояние означает open.
func (im *IssueManager) ListIssues(ctx context.Context, state models.IssueState) ([]models.Issue, error) {
	switch state {
	case "":
		state = models.IssueStateOpen
	case models.IssueStateOpen, models.IssueStateClosed, models.IssueStateAll:
	default:
		return nil, domain.NewInvalidInputError(fmt.Sprintf("unknown issue state %q", state))
	}

	issues, err := im.repo.ListIssues(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	return issues, nil
}

// UpdateIssue меняет заголовок, текст и веху задачи.
func (im *IssueManager) UpdateIssue(ctx context.Context, issueID int64, payload models.PutIssueJSONBody) (*models.Issue, error) {
	issue, err := im.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return nil, domain.NewInvalidInputError("issue title is empty")
	}
	issue.Title = title
	issue.Content = payload.Content
	issue.MilestoneID = payload.MilestoneID

	if err := im.repo.UpdateIssue(ctx, issue); err != nil {
		return nil, fmt.Errorf("failed to update issue %d: %w", issueID, err)
	}
	return issue, nil
}

// SetState открывает или закрывает задачу. Повторная установка того же состояния ничего не меняет.
func (im *IssueManager) SetState(ctx context.Context, issueID int64, isOpen bool) (*models.Issue, error) {
	issue, err := im.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue.IsOpen == isOpen {
		return issue, nil
	}

	if err := im.repo.SetIssueState(ctx, issueID, isOpen); err != nil {
		return nil, fmt.Errorf("failed to change state of issue %d: %w", issueID, err)
	}
	return im.GetIssue(ctx, issueID)
}

// DeleteIssue удаляет задачу вместе с комментариями и связями.
func (im *IssueManager) DeleteIssue(ctx context.Context, issueID int64) error {
	if err := im.repo.DeleteIssue(ctx, issueID); err != nil {
		return wrapNotFound(err, "issue", issueID)
	}
	return nil
}

// SetAssignees заменяет набор исполнителей.
func (im *IssueManager) SetAssignees(ctx context.Context, issueID int64, userIDs []int64) ([]int64, error) {
	ids, err := im.repo.ReplaceAssignees(ctx, issueID, userIDs)
	if err != nil {
		return nil, wrapNotFound(err, "issue", issueID)
	}
	return ids, nil
}

// ListAssignees возвращает исполнителей задачи.
func (im *IssueManager) ListAssignees(ctx context.Context, issueID int64) ([]models.User, error) {
	if _, err := im.GetIssue(ctx, issueID); err != nil {
		return nil, err
	}
	users, err := im.repo.ListAssignees(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignees of issue %d: %w", issueID, err)
	}
	return users, nil
}

// SetLabels заменяет набор меток задачи.
func (im *IssueManager) SetLabels(ctx context.Context, issueID int64, labelIDs []int64) ([]int64, error) {
	ids, err := im.repo.ReplaceIssueLabels(ctx, issueID, labelIDs)
	if err != nil {
		return nil, wrapNotFound(err, "issue", issueID)
	}
	return ids, nil
}

// AddComment добавляет комментарий к существующей задаче.
func (im *IssueManager) AddComment(ctx context.Context, issueID int64, payload models.PostCommentJSONBody) (*models.Comment, error) {
	content := strings.TrimSpace(payload.Content)
	if content == "" {
		return nil, domain.NewInvalidInputError("comment is empty")
	}
	if _, err := im.GetIssue(ctx, issueID); err != nil {
		return nil, err
	}

	comment := &models.Comment{IssueID: issueID, UserID: payload.UserID, Content: content}
	if err := im.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment to issue %d: %w", issueID, err)
	}
	return comment, nil
}

// ListComments возвращает комментарии задачи в порядке создания.
func (im *IssueManager) ListComments(ctx context.Context, issueID int64) ([]models.Comment, error) {
	if _, err := im.GetIssue(ctx, issueID); err != nil {
		return nil, err
	}
	comments, err := im.repo.ListComments(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of issue %d: %w", issueID, err)
	}
	return comments, nil
}

// EditComment меняет текст комментария.
func (im *IssueManager) EditComment(ctx context.Context, commentID int64, payload models.PutCommentJSONBody) (*models.Comment, error) {
	content := strings.TrimSpace(payload.Content)
	if content == "" {
		return nil, domain.NewInvalidInputError("comment is empty")
	}
	comment, err := im.repo.UpdateComment(ctx, commentID, content)
	if err != nil {
		return nil, wrapNotFound(err, "comment", commentID)
	}
	return comment, nil
}

// DeleteComment удаляет комментарий.
func (im *IssueManager) DeleteComment(ctx context.Context, commentID int64) error {
	if err := im.repo.DeleteComment(ctx, commentID); err != nil {
		return wrapNotFound(err, "comment", commentID)
	}
	return nil
}

func wrapNotFound(err error, resource string, id int64) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFoundError(fmt.Sprintf("%s %d", resource, id))
	}
	return fmt.Errorf("%s %d: %w", resource, id, err)
}
