package service

import (
	"context"
	"errors"
	"testing"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/domain"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

func TestCatalogManager_CreateUserCaches(t *testing.T) {
	ctx := context.Background()
	repo := &mockStore{
		createUserFn: func(_ context.Context, u *models.User) error {
			u.ID = 7
			return nil
		},
		getUserFn: func(context.Context, int64) (*models.User, error) {
			t.Fatalf("GetUser must be served from cache")
			return nil, nil
		},
	}

	manager := NewCatalogManager(repo)
	created, err := manager.CreateUser(ctx, models.PostUserJSONBody{Name: "  alice "})
	if err != nil {
		t.Fatalf("CreateUser returned unexpected error: %v", err)
	}
	if created.Name != "alice" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}

	got, err := manager.GetUser(ctx, 7)
	if err != nil {
		t.Fatalf("GetUser returned unexpected error: %v", err)
	}
	if got.Name != "alice" {
		t.Fatalf("unexpected cached user: %+v", got)
	}
}

func TestCatalogManager_CreateUserRejectsBlankName(t *testing.T) {
	manager := NewCatalogManager(&mockStore{})
	_, err := manager.CreateUser(context.Background(), models.PostUserJSONBody{Name: "   "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCatalogManager_GetUserMissFillsCache(t *testing.T) {
	calls := 0
	repo := &mockStore{
		getUserFn: func(_ context.Context, id int64) (*models.User, error) {
			calls++
			return &models.User{ID: id, Name: "bob"}, nil
		},
	}
	manager := NewCatalogManager(repo)

	for i := 0; i < 3; i++ {
		if _, err := manager.GetUser(context.Background(), 3); err != nil {
			t.Fatalf("GetUser returned unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one repository call, got %d", calls)
	}
}

func TestCatalogManager_GetUserNotFound(t *testing.T) {
	manager := NewCatalogManager(&mockStore{})
	_, err := manager.GetUser(context.Background(), 99)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogManager_ListUsersWarmsCache(t *testing.T) {
	repo := &mockStore{
		listUsersFn: func(context.Context) ([]models.User, error) {
			return []models.User{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, nil
		},
	}
	manager := NewCatalogManager(repo)
	users, err := manager.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers returned unexpected error: %v", err)
	}
	if len(users) != 2 || len(manager.users) != 2 {
		t.Fatalf("expected two users listed and cached, got %d/%d", len(users), len(manager.users))
	}
}

func TestCatalogManager_LabelLowercasesColor(t *testing.T) {
	var saved *models.Label
	repo := &mockStore{
		createLabelFn: func(_ context.Context, l *models.Label) error {
			saved = l
			l.ID = 1
			return nil
		},
	}
	manager := NewCatalogManager(repo)
	label, err := manager.CreateLabel(context.Background(), models.PostLabelJSONBody{Title: "bug", Color: "#FF0000"})
	if err != nil {
		t.Fatalf("CreateLabel returned unexpected error: %v", err)
	}
	if saved == nil || saved.Color != "#ff0000" || label.ID != 1 {
		t.Fatalf("unexpected saved label: %+v", saved)
	}
}

func TestCatalogManager_UpdateLabelPropagatesConflict(t *testing.T) {
	repo := &mockStore{
		updateLabelFn: func(context.Context, *models.Label) error {
			return domain.NewConflictError("label already exists")
		},
	}
	manager := NewCatalogManager(repo)
	_, err := manager.UpdateLabel(context.Background(), 4, models.PostLabelJSONBody{Title: "dup", Color: "#000000"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCatalogManager_MilestoneDefaultsOpen(t *testing.T) {
	manager := NewCatalogManager(&mockStore{})
	m, err := manager.CreateMilestone(context.Background(), models.PostMilestoneJSONBody{Title: "v1"})
	if err != nil {
		t.Fatalf("CreateMilestone returned unexpected error: %v", err)
	}
	if !m.IsOpen {
		t.Fatalf("new milestone must be open by default")
	}

	closed := false
	m, err = manager.UpdateMilestone(context.Background(), 2, models.PostMilestoneJSONBody{Title: "v1", IsOpen: &closed})
	if err != nil {
		t.Fatalf("UpdateMilestone returned unexpected error: %v", err)
	}
	if m.IsOpen || m.ID != 2 {
		t.Fatalf("unexpected milestone after update: %+v", m)
	}
}

func TestCatalogManager_DeleteWrapsRepoError(t *testing.T) {
	repo := &mockStore{
		deleteMilestoneFn: func(context.Context, int64) error {
			return domain.NewNotFoundError("milestone")
		},
	}
	manager := NewCatalogManager(repo)
	if err := manager.DeleteMilestone(context.Background(), 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
