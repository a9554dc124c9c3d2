// Package detail собирает карточку задачи из четырёх независимых загрузок:
// комментарии, пользователи, метки и вехи. Загрузки идут параллельно,
// карточка отрисовывается один раз, когда завершились все четыре.
package detail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/join"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

// fetchCount задаёт число загрузок в одном цикле обновления карточки.
const fetchCount = 4

// Fetcher загружает данные карточки. Колбэк может быть вызван в любой горутине, но ровно один раз.
type Fetcher interface {
	FetchComments(ctx context.Context, issueID int64, completion func([]models.Comment, error))
	FetchUsers(ctx context.Context, completion func([]models.User, error))
	FetchLabels(ctx context.Context, completion func([]models.Label, error))
	FetchMilestones(ctx context.Context, completion func([]models.Milestone, error))
}

// Renderer получает собранную карточку в контексте диспетчера.
type Renderer interface {
	Render(snapshot Snapshot)
}

// RendererFunc позволяет использовать функцию как Renderer.
type RendererFunc func(Snapshot)

func (f RendererFunc) Render(s Snapshot) { f(s) }

// Alerter показывает ошибку отдельной загрузки.
type Alerter interface {
	Alert(description string)
}

// AlerterFunc позволяет использовать функцию как Alerter.
type AlerterFunc func(description string)

func (f AlerterFunc) Alert(description string) { f(description) }

// Snapshot содержит карточку задачи на момент завершения цикла.
type Snapshot struct {
	Detail models.IssueDetail
	// Missing перечисляет разделы, которые не загрузились.
	Missing []string
	// Expired выставляется, если цикл закрылся по таймауту.
	Expired bool
	CycleID string
}

// Partial сообщает, что хотя бы один раздел отсутствует.
func (s Snapshot) Partial() bool {
	return len(s.Missing) > 0 || s.Expired
}

// Названия разделов карточки.
const (
	SectionComments   = "comments"
	SectionUsers      = "users"
	SectionLabels     = "labels"
	SectionMilestones = "milestones"
)

// View владеет слотами карточки одной задачи.
type View struct {
	mu    sync.RWMutex
	issue models.Issue

	fetcher  Fetcher
	renderer Renderer
	coord    *join.Coordinator
	logger   *slog.Logger

	comments   join.Slot[[]models.Comment]
	users      join.Slot[[]models.User]
	labels     join.Slot[[]models.Label]
	milestones join.Slot[[]models.Milestone]
}

type viewOptions struct {
	dispatcher join.Dispatcher
	alerter    Alerter
	observer   join.Observer
	timeout    time.Duration
	logger     *slog.Logger
}

// Option настраивает View.
type Option func(*viewOptions)

// WithDispatcher задаёт контекст, в котором вызывается Renderer.
func WithDispatcher(d join.Dispatcher) Option {
	return func(o *viewOptions) { o.dispatcher = d }
}

// WithAlerter задаёт получателя ошибок загрузок.
func WithAlerter(a Alerter) Option {
	return func(o *viewOptions) { o.alerter = a }
}

// WithObserver подключает метрики циклов.
func WithObserver(obs join.Observer) Option {
	return func(o *viewOptions) { o.observer = obs }
}

// WithTimeout ограничивает ожидание загрузок.
func WithTimeout(d time.Duration) Option {
	return func(o *viewOptions) { o.timeout = d }
}

// WithLogger задаёт логгер.
func WithLogger(l *slog.Logger) Option {
	return func(o *viewOptions) { o.logger = l }
}

// NewView создаёт карточку задачи. Renderer обязателен.
func NewView(issue models.Issue, fetcher Fetcher, renderer Renderer, opts ...Option) (*View, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is nil")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer is nil")
	}

	o := viewOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	v := &View{
		issue:    issue,
		fetcher:  fetcher,
		renderer: renderer,
		logger:   o.logger,
	}

	coordOpts := []join.Option{
		join.WithDispatcher(o.dispatcher),
		join.WithObserver(o.observer),
		join.WithTimeout(o.timeout),
		join.WithLogger(o.logger),
	}
	if o.alerter != nil {
		coordOpts = append(coordOpts, join.WithErrorReporter(join.ReporterFunc(o.alerter.Alert)))
	}
	v.coord = join.New(coordOpts...)
	if err := v.coord.OnFinished(v.finish); err != nil {
		return nil, fmt.Errorf("register finish handler: %w", err)
	}
	return v, nil
}

// SetIssue обновляет саму задачу, например после смены статуса.
func (v *View) SetIssue(issue models.Issue) {
	v.mu.Lock()
	v.issue = issue
	v.mu.Unlock()
}

// Loading сообщает, идёт ли сейчас цикл обновления.
func (v *View) Loading() bool {
	return v.coord.Active()
}

// Pending возвращает число ещё не завершившихся загрузок.
func (v *View) Pending() int {
	return v.coord.Pending()
}

// Refresh запускает четыре загрузки. Повторный вызов до завершения цикла возвращает join.ErrCycleInProgress.
func (v *View) Refresh(ctx context.Context) error {
	cycle, err := v.coord.Begin(fetchCount, &v.comments, &v.users, &v.labels, &v.milestones)
	if err != nil {
		return fmt.Errorf("refresh issue %d: %w", v.issueID(), err)
	}
	v.logger.Debug("issue detail refresh started", "issue", v.issueID(), "cycle", cycle.ID())

	v.fetcher.FetchComments(ctx, v.issueID(), func(comments []models.Comment, err error) {
		v.deliverErr(join.Deliver(cycle, &v.comments, comments, err), SectionComments)
	})
	v.fetcher.FetchUsers(ctx, func(users []models.User, err error) {
		v.deliverErr(join.Deliver(cycle, &v.users, users, err), SectionUsers)
	})
	v.fetcher.FetchLabels(ctx, func(labels []models.Label, err error) {
		v.deliverErr(join.Deliver(cycle, &v.labels, labels, err), SectionLabels)
	})
	v.fetcher.FetchMilestones(ctx, func(milestones []models.Milestone, err error) {
		v.deliverErr(join.Deliver(cycle, &v.milestones, milestones, err), SectionMilestones)
	})
	return nil
}

// deliverErr логирует опоздавшие результаты, которые цикл уже не принимает.
func (v *View) deliverErr(err error, section string) {
	if err != nil {
		v.logger.Warn("issue detail result dropped", "issue", v.issueID(), "section", section, "error", err)
	}
}

func (v *View) issueID() int64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.issue.ID
}

// finish собирает Snapshot из слотов; вызывается диспетчером координатора.
func (v *View) finish(summary join.Summary) {
	v.mu.RLock()
	issue := v.issue
	v.mu.RUnlock()

	snapshot := Snapshot{
		Detail:  models.IssueDetail{Issue: issue},
		Expired: summary.Expired,
		CycleID: summary.CycleID,
	}

	users, ok := v.users.Get()
	if ok {
		snapshot.Detail.Users = users
	} else {
		snapshot.Missing = append(snapshot.Missing, SectionUsers)
	}

	if comments, ok := v.comments.Get(); ok {
		snapshot.Detail.Comments = resolveAuthors(comments, users)
	} else {
		snapshot.Missing = append(snapshot.Missing, SectionComments)
	}
	if labels, ok := v.labels.Get(); ok {
		snapshot.Detail.Labels = labels
	} else {
		snapshot.Missing = append(snapshot.Missing, SectionLabels)
	}
	if milestones, ok := v.milestones.Get(); ok {
		snapshot.Detail.Milestones = milestones
	} else {
		snapshot.Missing = append(snapshot.Missing, SectionMilestones)
	}

	v.renderer.Render(snapshot)
}

// resolveAuthors сопоставляет комментариям их авторов.
func resolveAuthors(comments []models.Comment, users []models.User) []models.CommentView {
	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		view := models.CommentView{Comment: c}
		if u, ok := models.FindUser(users, c.UserID); ok {
			author := u
			view.Author = &author
		}
		views = append(views, view)
	}
	return views
}
