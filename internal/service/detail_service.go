package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/detail"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/domain"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/join"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

type DetailRepository interface {
	GetIssue(ctx context.Context, issueID int64) (*models.Issue, error)
	ListComments(ctx context.Context, issueID int64) ([]models.Comment, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListLabels(ctx context.Context) ([]models.Label, error)
	ListMilestones(ctx context.Context) ([]models.Milestone, error)
}

// repoFetcher выполняет каждую загрузку в своей горутине.
type repoFetcher struct {
	repo DetailRepository
}

func (f repoFetcher) FetchComments(ctx context.Context, issueID int64, completion func([]models.Comment, error)) {
	go func() { completion(f.repo.ListComments(ctx, issueID)) }()
}

func (f repoFetcher) FetchUsers(ctx context.Context, completion func([]models.User, error)) {
	go func() { completion(f.repo.ListUsers(ctx)) }()
}

func (f repoFetcher) FetchLabels(ctx context.Context, completion func([]models.Label, error)) {
	go func() { completion(f.repo.ListLabels(ctx)) }()
}

func (f repoFetcher) FetchMilestones(ctx context.Context, completion func([]models.Milestone, error)) {
	go func() { completion(f.repo.ListMilestones(ctx)) }()
}

// DetailManager собирает карточку задачи одним циклом из четырёх параллельных загрузок.
type DetailManager struct {
	repo     DetailRepository
	fetcher  detail.Fetcher
	timeout  time.Duration
	observer join.Observer
}

type DetailOption func(*DetailManager)

// WithJoinTimeout ограничивает ожидание загрузок; по истечении карточка отдаётся частично.
func WithJoinTimeout(d time.Duration) DetailOption {
	return func(dm *DetailManager) { dm.timeout = d }
}

// WithCycleObserver подключает метрики циклов.
func WithCycleObserver(obs join.Observer) DetailOption {
	return func(dm *DetailManager) { dm.observer = obs }
}

// WithFetcher подменяет источник данных карточки.
func WithFetcher(f detail.Fetcher) DetailOption {
	return func(dm *DetailManager) { dm.fetcher = f }
}

func NewDetailManager(repo DetailRepository, opts ...DetailOption) *DetailManager {
	dm := &DetailManager{repo: repo, fetcher: repoFetcher{repo: repo}}
	for _, opt := range opts {
		opt(dm)
	}
	return dm
}

// GetDetail возвращает карточку задачи. Ошибки отдельных загрузок попадают в Warnings,
// а не в возвращаемую ошибку.
func (dm *DetailManager) GetDetail(ctx context.Context, issueID int64) (*models.IssueDetailResponse, error) {
	issue, err := dm.repo.GetIssue(ctx, issueID)
	if err != nil {
		return nil, wrapNotFound(err, "issue", issueID)
	}

	rendered := make(chan detail.Snapshot, 1)
	opts := []detail.Option{
		detail.WithTimeout(dm.timeout),
		detail.WithAlerter(detail.AlerterFunc(func(description string) {
			slog.Warn("issue detail fetch failed", "issue", issueID, "error", description)
		})),
	}
	if dm.observer != nil {
		opts = append(opts, detail.WithObserver(dm.observer))
	}

	view, err := detail.NewView(*issue, dm.fetcher, detail.RendererFunc(func(s detail.Snapshot) {
		rendered <- s
	}), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build detail view: %w", err)
	}
	if err := view.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh detail of issue %d: %w", issueID, err)
	}

	select {
	case snapshot := <-rendered:
		return toResponse(snapshot), nil
	case <-ctx.Done():
		return nil, domain.NewDetailTimeoutError(issueID)
	}
}

func toResponse(s detail.Snapshot) *models.IssueDetailResponse {
	resp := &models.IssueDetailResponse{
		Detail:   s.Detail,
		Warnings: make([]string, 0, len(s.Missing)+1),
		Partial:  s.Partial(),
	}
	if s.Expired {
		resp.Warnings = append(resp.Warnings, "detail fetch timed out")
	}
	for _, section := range s.Missing {
		resp.Warnings = append(resp.Warnings, section+" unavailable")
	}
	return resp
}
