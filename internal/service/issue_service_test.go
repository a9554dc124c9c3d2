package service

import (
	"context"
	"errors"
	"testing"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/domain"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

func TestIssueManager_CreateIssueIsOpen(t *testing.T) {
	var saved *models.Issue
	repo := &mockStore{
		createIssueFn: func(_ context.Context, issue *models.Issue) error {
			issue.ID = 11
			saved = issue
			return nil
		},
	}
	manager := NewIssueManager(repo)

	issue, err := manager.CreateIssue(context.Background(), models.PostIssueJSONBody{
		Title:     " crash on start ",
		UserID:    1,
		Assignees: []int64{2},
		Labels:    []int64{3},
	})
	if err != nil {
		t.Fatalf("CreateIssue returned unexpected error: %v", err)
	}
	if issue.ID != 11 || !saved.IsOpen || saved.Title != "crash on start" {
		t.Fatalf("unexpected saved issue: %+v", saved)
	}
}

func TestIssueManager_CreateIssueEmptyTitle(t *testing.T) {
	manager := NewIssueManager(&mockStore{
		createIssueFn: func(context.Context, *models.Issue) error {
			t.Fatalf("repository must not be called")
			return nil
		},
	})
	_, err := manager.CreateIssue(context.Background(), models.PostIssueJSONBody{Title: " ", UserID: 1})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIssueManager_ListIssuesState(t *testing.T) {
	var got models.IssueState
	manager := NewIssueManager(&mockStore{
		listIssuesFn: func(_ context.Context, state models.IssueState) ([]models.Issue, error) {
			got = state
			return nil, nil
		},
	})

	if _, err := manager.ListIssues(context.Background(), ""); err != nil {
		t.Fatalf("ListIssues returned unexpected error: %v", err)
	}
	if got != models.IssueStateOpen {
		t.Fatalf("empty state must default to open, got %q", got)
	}

	_, err := manager.ListIssues(context.Background(), "merged")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIssueManager_GetIssueNotFound(t *testing.T) {
	manager := NewIssueManager(&mockStore{})
	_, err := manager.GetIssue(context.Background(), 3)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIssueManager_SetStateIdempotent(t *testing.T) {
	manager := NewIssueManager(&mockStore{
		getIssueFn: existingIssue(models.Issue{ID: 1, IsOpen: false}),
		setIssueStateFn: func(context.Context, int64, bool) error {
			t.Fatalf("SetIssueState must not be called for unchanged state")
			return nil
		},
	})
	issue, err := manager.SetState(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("SetState returned unexpected error: %v", err)
	}
	if issue.IsOpen {
		t.Fatalf("issue must stay closed")
	}
}

func TestIssueManager_SetStateCloses(t *testing.T) {
	state := models.Issue{ID: 1, IsOpen: true}
	manager := NewIssueManager(&mockStore{
		getIssueFn: func(_ context.Context, id int64) (*models.Issue, error) {
			copied := state
			return &copied, nil
		},
		setIssueStateFn: func(_ context.Context, _ int64, isOpen bool) error {
			state.IsOpen = isOpen
			return nil
		},
	})
	issue, err := manager.SetState(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("SetState returned unexpected error: %v", err)
	}
	if issue.IsOpen {
		t.Fatalf("issue must be closed")
	}
}

func TestIssueManager_UpdateIssue(t *testing.T) {
	var saved *models.Issue
	manager := NewIssueManager(&mockStore{
		getIssueFn: existingIssue(models.Issue{ID: 2, Title: "old", UserID: 1, IsOpen: true}),
		updateIssueFn: func(_ context.Context, issue *models.Issue) error {
			saved = issue
			return nil
		},
	})
	milestone := int64(4)
	_, err := manager.UpdateIssue(context.Background(), 2, models.PutIssueJSONBody{Title: "new", MilestoneID: &milestone})
	if err != nil {
		t.Fatalf("UpdateIssue returned unexpected error: %v", err)
	}
	if saved.Title != "new" || saved.MilestoneID == nil || *saved.MilestoneID != 4 || saved.UserID != 1 {
		t.Fatalf("unexpected updated issue: %+v", saved)
	}
}

func TestIssueManager_SetAssigneesMissingIssue(t *testing.T) {
	manager := NewIssueManager(&mockStore{
		replaceAssignFn: func(context.Context, int64, []int64) ([]int64, error) {
			return nil, domain.NewNotFoundError("issue")
		},
	})
	_, err := manager.SetAssignees(context.Background(), 8, []int64{1})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIssueManager_SetLabelsConflict(t *testing.T) {
	manager := NewIssueManager(&mockStore{
		replaceLabelsFn: func(context.Context, int64, []int64) ([]int64, error) {
			return nil, domain.NewConflictError("label missing")
		},
	})
	_, err := manager.SetLabels(context.Background(), 8, []int64{100})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestIssueManager_AddCommentRequiresIssue(t *testing.T) {
	manager := NewIssueManager(&mockStore{})
	_, err := manager.AddComment(context.Background(), 5, models.PostCommentJSONBody{UserID: 1, Content: "hi"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIssueManager_AddComment(t *testing.T) {
	manager := NewIssueManager(&mockStore{
		getIssueFn: existingIssue(models.Issue{ID: 5}),
		createCommentFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 9
			return nil
		},
	})
	comment, err := manager.AddComment(context.Background(), 5, models.PostCommentJSONBody{UserID: 1, Content: " hi "})
	if err != nil {
		t.Fatalf("AddComment returned unexpected error: %v", err)
	}
	if comment.ID != 9 || comment.IssueID != 5 || comment.Content != "hi" {
		t.Fatalf("unexpected comment: %+v", comment)
	}
}

func TestIssueManager_EditCommentNotFound(t *testing.T) {
	manager := NewIssueManager(&mockStore{})
	_, err := manager.EditComment(context.Background(), 1, models.PutCommentJSONBody{Content: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIssueManager_ListCommentsWrapsError(t *testing.T) {
	manager := NewIssueManager(&mockStore{
		getIssueFn: existingIssue(models.Issue{ID: 5}),
		listCommentsFn: func(context.Context, int64) ([]models.Comment, error) {
			return nil, errors.New("db down")
		},
	})
	_, err := manager.ListComments(context.Background(), 5)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected plain repository error, got %v", err)
	}
}
