package service

import (
	"context"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/domain"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

type mockStore struct {
	createUserFn func(context.Context, *models.User) error
	getUserFn    func(context.Context, int64) (*models.User, error)
	listUsersFn  func(context.Context) ([]models.User, error)

	createLabelFn func(context.Context, *models.Label) error
	updateLabelFn func(context.Context, *models.Label) error
	deleteLabelFn func(context.Context, int64) error
	listLabelsFn  func(context.Context) ([]models.Label, error)

	createMilestoneFn func(context.Context, *models.Milestone) error
	updateMilestoneFn func(context.Context, *models.Milestone) error
	deleteMilestoneFn func(context.Context, int64) error
	listMilestonesFn  func(context.Context) ([]models.Milestone, error)

	createIssueFn   func(context.Context, *models.Issue) error
	getIssueFn      func(context.Context, int64) (*models.Issue, error)
	listIssuesFn    func(context.Context, models.IssueState) ([]models.Issue, error)
	updateIssueFn   func(context.Context, *models.Issue) error
	setIssueStateFn func(context.Context, int64, bool) error
	deleteIssueFn   func(context.Context, int64) error
	replaceAssignFn func(context.Context, int64, []int64) ([]int64, error)
	replaceLabelsFn func(context.Context, int64, []int64) ([]int64, error)
	listAssigneesFn func(context.Context, int64) ([]models.User, error)
	createCommentFn func(context.Context, *models.Comment) error
	getCommentFn    func(context.Context, int64) (*models.Comment, error)
	updateCommentFn func(context.Context, int64, string) (*models.Comment, error)
	deleteCommentFn func(context.Context, int64) error
	listCommentsFn  func(context.Context, int64) ([]models.Comment, error)
}

func (m *mockStore) CreateUser(ctx context.Context, u *models.User) error {
	if m.createUserFn == nil {
		return nil
	}
	return m.createUserFn(ctx, u)
}

func (m *mockStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if m.getUserFn == nil {
		return nil, domain.NewNotFoundError("user")
	}
	return m.getUserFn(ctx, id)
}

func (m *mockStore) ListUsers(ctx context.Context) ([]models.User, error) {
	if m.listUsersFn == nil {
		return nil, nil
	}
	return m.listUsersFn(ctx)
}

func (m *mockStore) CreateLabel(ctx context.Context, l *models.Label) error {
	if m.createLabelFn == nil {
		return nil
	}
	return m.createLabelFn(ctx, l)
}

func (m *mockStore) UpdateLabel(ctx context.Context, l *models.Label) error {
	if m.updateLabelFn == nil {
		return nil
	}
	return m.updateLabelFn(ctx, l)
}

func (m *mockStore) DeleteLabel(ctx context.Context, id int64) error {
	if m.deleteLabelFn == nil {
		return nil
	}
	return m.deleteLabelFn(ctx, id)
}

func (m *mockStore) ListLabels(ctx context.Context) ([]models.Label, error) {
	if m.listLabelsFn == nil {
		return nil, nil
	}
	return m.listLabelsFn(ctx)
}

func (m *mockStore) CreateMilestone(ctx context.Context, ms *models.Milestone) error {
	if m.createMilestoneFn == nil {
		return nil
	}
	return m.createMilestoneFn(ctx, ms)
}

func (m *mockStore) UpdateMilestone(ctx context.Context, ms *models.Milestone) error {
	if m.updateMilestoneFn == nil {
		return nil
	}
	return m.updateMilestoneFn(ctx, ms)
}

func (m *mockStore) DeleteMilestone(ctx context.Context, id int64) error {
	if m.deleteMilestoneFn == nil {
		return nil
	}
	return m.deleteMilestoneFn(ctx, id)
}

func (m *mockStore) ListMilestones(ctx context.Context) ([]models.Milestone, error) {
	if m.listMilestonesFn == nil {
		return nil, nil
	}
	return m.listMilestonesFn(ctx)
}

func (m *mockStore) CreateIssue(ctx context.Context, issue *models.Issue) error {
	if m.createIssueFn == nil {
		return nil
	}
	return m.createIssueFn(ctx, issue)
}

func (m *mockStore) GetIssue(ctx context.Context, id int64) (*models.Issue, error) {
	if m.getIssueFn == nil {
		return nil, domain.NewNotFoundError("issue")
	}
	return m.getIssueFn(ctx, id)
}

func (m *mockStore) ListIssues(ctx context.Context, state models.IssueState) ([]models.Issue, error) {
	if m.listIssuesFn == nil {
		return nil, nil
	}
	return m.listIssuesFn(ctx, state)
}

func (m *mockStore) UpdateIssue(ctx context.Context, issue *models.Issue) error {
	if m.updateIssueFn == nil {
		return nil
	}
	return m.updateIssueFn(ctx, issue)
}

func (m *mockStore) SetIssueState(ctx context.Context, id int64, isOpen bool) error {
	if m.setIssueStateFn == nil {
		return nil
	}
	return m.setIssueStateFn(ctx, id, isOpen)
}

func (m *mockStore) DeleteIssue(ctx context.Context, id int64) error {
	if m.deleteIssueFn == nil {
		return nil
	}
	return m.deleteIssueFn(ctx, id)
}

func (m *mockStore) ReplaceAssignees(ctx context.Context, id int64, ids []int64) ([]int64, error) {
	if m.replaceAssignFn == nil {
		return ids, nil
	}
	return m.replaceAssignFn(ctx, id, ids)
}

func (m *mockStore) ReplaceIssueLabels(ctx context.Context, id int64, ids []int64) ([]int64, error) {
	if m.replaceLabelsFn == nil {
		return ids, nil
	}
	return m.replaceLabelsFn(ctx, id, ids)
}

func (m *mockStore) ListAssignees(ctx context.Context, id int64) ([]models.User, error) {
	if m.listAssigneesFn == nil {
		return nil, nil
	}
	return m.listAssigneesFn(ctx, id)
}

func (m *mockStore) CreateComment(ctx context.Context, c *models.Comment) error {
	if m.createCommentFn == nil {
		return nil
	}
	return m.createCommentFn(ctx, c)
}

func (m *mockStore) GetComment(ctx context.Context, id int64) (*models.Comment, error) {
	if m.getCommentFn == nil {
		return nil, domain.NewNotFoundError("comment")
	}
	return m.getCommentFn(ctx, id)
}

func (m *mockStore) UpdateComment(ctx context.Context, id int64, content string) (*models.Comment, error) {
	if m.updateCommentFn == nil {
		return nil, domain.NewNotFoundError("comment")
	}
	return m.updateCommentFn(ctx, id, content)
}

func (m *mockStore) DeleteComment(ctx context.Context, id int64) error {
	if m.deleteCommentFn == nil {
		return nil
	}
	return m.deleteCommentFn(ctx, id)
}

func (m *mockStore) ListComments(ctx context.Context, id int64) ([]models.Comment, error) {
	if m.listCommentsFn == nil {
		return nil, nil
	}
	return m.listCommentsFn(ctx, id)
}

func existingIssue(issue models.Issue) func(context.Context, int64) (*models.Issue, error) {
	return func(_ context.Context, id int64) (*models.Issue, error) {
		if id != issue.ID {
			return nil, domain.NewNotFoundError("issue")
		}
		copied := issue
		return &copied, nil
	}
}
