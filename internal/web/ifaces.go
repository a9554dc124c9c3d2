package web

import (
	"context"
	"net/http"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

// IssueService описывает операции над задачами и комментариями, которые нужны HTTP-слою.
type IssueService interface {
	CreateIssue(ctx context.Context, payload models.PostIssueJSONBody) (*models.Issue, error)
	GetIssue(ctx context.Context, issueID int64) (*models.Issue, error)
	ListIssues(ctx context.Context, state models.IssueState) ([]models.Issue, error)
	UpdateIssue(ctx context.Context, issueID int64, payload models.PutIssueJSONBody) (*models.Issue, error)
	SetState(ctx context.Context, issueID int64, isOpen bool) (*models.Issue, error)
	DeleteIssue(ctx context.Context, issueID int64) error
	SetAssignees(ctx context.Context, issueID int64, userIDs []int64) ([]int64, error)
	ListAssignees(ctx context.Context, issueID int64) ([]models.User, error)
	SetLabels(ctx context.Context, issueID int64, labelIDs []int64) ([]int64, error)
	AddComment(ctx context.Context, issueID int64, payload models.PostCommentJSONBody) (*models.Comment, error)
	ListComments(ctx context.Context, issueID int64) ([]models.Comment, error)
	EditComment(ctx context.Context, commentID int64, payload models.PutCommentJSONBody) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
}

// CatalogService объединяет справочники: пользователей, метки и вехи.
type CatalogService interface {
	CreateUser(ctx context.Context, payload models.PostUserJSONBody) (*models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateLabel(ctx context.Context, payload models.PostLabelJSONBody) (*models.Label, error)
	UpdateLabel(ctx context.Context, labelID int64, payload models.PostLabelJSONBody) (*models.Label, error)
	DeleteLabel(ctx context.Context, labelID int64) error
	ListLabels(ctx context.Context) ([]models.Label, error)

	CreateMilestone(ctx context.Context, payload models.PostMilestoneJSONBody) (*models.Milestone, error)
	UpdateMilestone(ctx context.Context, milestoneID int64, payload models.PostMilestoneJSONBody) (*models.Milestone, error)
	DeleteMilestone(ctx context.Context, milestoneID int64) error
	ListMilestones(ctx context.Context) ([]models.Milestone, error)
}

// DetailService собирает карточку задачи.
type DetailService interface {
	GetDetail(ctx context.Context, issueID int64) (*models.IssueDetailResponse, error)
}

// MetricsCollector принимает счётчики запросов и отдаёт страницу метрик.
type MetricsCollector interface {
	ObserveRequest(method string, status int)
	Handler() http.Handler
}
