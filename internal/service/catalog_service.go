package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/domain"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

const UserNumber = 200

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type LabelRepository interface {
	CreateLabel(ctx context.Context, label *models.Label) error
	UpdateLabel(ctx context.Context, label *models.Label) error
	DeleteLabel(ctx context.Context, labelID int64) error
	ListLabels(ctx context.Context) ([]models.Label, error)
}

type MilestoneRepository interface {
	CreateMilestone(ctx context.Context, m *models.Milestone) error
	UpdateMilestone(ctx context.Context, m *models.Milestone) error
	DeleteMilestone(ctx context.Context, milestoneID int64) error
	ListMilestones(ctx context.Context) ([]models.Milestone, error)
}

type CatalogRepository interface {
	UserRepository
	LabelRepository
	MilestoneRepository
}

// CatalogManager обслуживает справочники: пользователей, метки и вехи.
type CatalogManager struct {
	repo  CatalogRepository
	users map[int64]models.User
	mu    sync.RWMutex
}

// NewCatalogManager создаёт менеджер справочников с кэшем пользователей в памяти.
func NewCatalogManager(repo CatalogRepository) *CatalogManager {
	return &CatalogManager{
		repo:  repo,
		users: make(map[int64]models.User, UserNumber),
	}
}

// CreateUser сохраняет пользователя и кладёт его в кэш.
func (cm *CatalogManager) CreateUser(ctx context.Context, payload models.PostUserJSONBody) (*models.User, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, domain.NewInvalidInputError("user name is empty")
	}

	user := &models.User{Name: name, Image: payload.Image}
	if err := cm.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	cm.mu.Lock()
	cm.users[user.ID] = *user
	cm.mu.Unlock()
	return user, nil
}

// GetUser возвращает пользователя из кэша, при промахе идёт в репозиторий.
func (cm *CatalogManager) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	cm.mu.RLock()
	user, ok := cm.users[userID]
	cm.mu.RUnlock()
	if ok {
		return &user, nil
	}

	fetched, err := cm.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("user %d", userID))
		}
		return nil, fmt.Errorf("failed to get user from repository: %w", err)
	}

	cm.mu.Lock()
	cm.users[fetched.ID] = *fetched
	cm.mu.Unlock()
	return fetched, nil
}

// ListUsers читает пользователей из репозитория и прогревает кэш.
func (cm *CatalogManager) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := cm.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	cm.mu.Lock()
	for _, u := range users {
		cm.users[u.ID] = u
	}
	cm.mu.Unlock()
	slog.Debug("user cache refreshed", "users", len(users))
	return users, nil
}

// CreateLabel создаёт метку.
func (cm *CatalogManager) CreateLabel(ctx context.Context, payload models.PostLabelJSONBody) (*models.Label, error) {
	label := &models.Label{
		Title:       strings.TrimSpace(payload.Title),
		Description: payload.Description,
		Color:       strings.ToLower(payload.Color),
	}
	if label.Title == "" {
		return nil, domain.NewInvalidInputError("label title is empty")
	}
	if err := cm.repo.CreateLabel(ctx, label); err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}
	return label, nil
}

// UpdateLabel перезаписывает метку.
func (cm *CatalogManager) UpdateLabel(ctx context.Context, labelID int64, payload models.PostLabelJSONBody) (*models.Label, error) {
	label := &models.Label{
		ID:          labelID,
		Title:       strings.TrimSpace(payload.Title),
		Description: payload.Description,
		Color:       strings.ToLower(payload.Color),
	}
	if label.Title == "" {
		return nil, domain.NewInvalidInputError("label title is empty")
	}
	if err := cm.repo.UpdateLabel(ctx, label); err != nil {
		return nil, fmt.Errorf("failed to update label %d: %w", labelID, err)
	}
	return label, nil
}

// DeleteLabel удаляет метку.
func (cm *CatalogManager) DeleteLabel(ctx context.Context, labelID int64) error {
	if err := cm.repo.DeleteLabel(ctx, labelID); err != nil {
		return fmt.Errorf("failed to delete label %d: %w", labelID, err)
	}
	return nil
}

// ListLabels возвращает все метки.
func (cm *CatalogManager) ListLabels(ctx context.Context) ([]models.Label, error) {
	labels, err := cm.repo.ListLabels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

// CreateMilestone создаёт веху; по умолчанию она открыта.
func (cm *CatalogManager) CreateMilestone(ctx context.Context, payload models.PostMilestoneJSONBody) (*models.Milestone, error) {
	m := milestoneFromPayload(payload)
	if m.Title == "" {
		return nil, domain.NewInvalidInputError("milestone title is empty")
	}
	if err := cm.repo.CreateMilestone(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}
	return m, nil
}

// UpdateMilestone перезаписывает веху.
func (cm *CatalogManager) UpdateMilestone(ctx context.Context, milestoneID int64, payload models.PostMilestoneJSONBody) (*models.Milestone, error) {
	m := milestoneFromPayload(payload)
	m.ID = milestoneID
	if m.Title == "" {
		return nil, domain.NewInvalidInputError("milestone title is empty")
	}
	if err := cm.repo.UpdateMilestone(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update milestone %d: %w", milestoneID, err)
	}
	return m, nil
}

// DeleteMilestone удаляет веху.
func (cm *CatalogManager) DeleteMilestone(ctx context.Context, milestoneID int64) error {
	if err := cm.repo.DeleteMilestone(ctx, milestoneID); err != nil {
		return fmt.Errorf("failed to delete milestone %d: %w", milestoneID, err)
	}
	return nil
}

// ListMilestones возвращает все вехи.
func (cm *CatalogManager) ListMilestones(ctx context.Context) ([]models.Milestone, error) {
	ms, err := cm.repo.ListMilestones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	return ms, nil
}

func milestoneFromPayload(payload models.PostMilestoneJSONBody) *models.Milestone {
	isOpen := true
	if payload.IsOpen != nil {
		isOpen = *payload.IsOpen
	}
	return &models.Milestone{
		Title:       strings.TrimSpace(payload.Title),
		Description: payload.Description,
		DueDate:     payload.DueDate,
		IsOpen:      isOpen,
	}
}
