package detail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/join"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

// fakeFetcher откладывает колбэки, чтобы тест сам решал порядок завершения.
type fakeFetcher struct {
	mu         sync.Mutex
	comments   func([]models.Comment, error)
	users      func([]models.User, error)
	labels     func([]models.Label, error)
	milestones func([]models.Milestone, error)
	issueIDs   []int64
}

func (f *fakeFetcher) FetchComments(_ context.Context, issueID int64, completion func([]models.Comment, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issueIDs = append(f.issueIDs, issueID)
	f.comments = completion
}

func (f *fakeFetcher) FetchUsers(_ context.Context, completion func([]models.User, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = completion
}

func (f *fakeFetcher) FetchLabels(_ context.Context, completion func([]models.Label, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels = completion
}

func (f *fakeFetcher) FetchMilestones(_ context.Context, completion func([]models.Milestone, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.milestones = completion
}

// immediateFetcher сразу вызывает колбэки в отдельных горутинах.
type immediateFetcher struct {
	usersErr error
}

func (f immediateFetcher) FetchComments(_ context.Context, issueID int64, completion func([]models.Comment, error)) {
	go completion([]models.Comment{{ID: 1, IssueID: issueID, UserID: 2, Content: "hi"}}, nil)
}

func (f immediateFetcher) FetchUsers(_ context.Context, completion func([]models.User, error)) {
	if f.usersErr != nil {
		go completion(nil, f.usersErr)
		return
	}
	go completion([]models.User{{ID: 2, Name: "bob"}}, nil)
}

func (f immediateFetcher) FetchLabels(_ context.Context, completion func([]models.Label, error)) {
	go completion([]models.Label{{ID: 3, Title: "bug"}}, nil)
}

func (f immediateFetcher) FetchMilestones(_ context.Context, completion func([]models.Milestone, error)) {
	go completion([]models.Milestone{{ID: 4, Title: "v1"}}, nil)
}

type snapshotSink struct {
	mu        sync.Mutex
	snapshots []Snapshot
	ch        chan Snapshot
}

func newSink() *snapshotSink {
	return &snapshotSink{ch: make(chan Snapshot, 8)}
}

func (s *snapshotSink) Render(snapshot Snapshot) {
	s.mu.Lock()
	s.snapshots = append(s.snapshots, snapshot)
	s.mu.Unlock()
	s.ch <- snapshot
}

func (s *snapshotSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

func TestView_RendersOnceAfterAllFetches(t *testing.T) {
	fetcher := &fakeFetcher{}
	sink := newSink()
	var alerts []string
	view, err := NewView(models.Issue{ID: 10, Title: "crash"}, fetcher, sink,
		WithAlerter(AlerterFunc(func(d string) { alerts = append(alerts, d) })))
	require.NoError(t, err)

	require.NoError(t, view.Refresh(context.Background()))
	require.True(t, view.Loading())
	require.Equal(t, 4, view.Pending())
	require.Equal(t, []int64{10}, fetcher.issueIDs)

	fetcher.comments([]models.Comment{{ID: 1, UserID: 7, Content: "first"}}, nil)
	fetcher.users(nil, errors.New("network error"))
	fetcher.labels([]models.Label{{ID: 1, Title: "bug"}}, nil)
	require.Zero(t, sink.count())
	fetcher.milestones([]models.Milestone{{ID: 1, Title: "v1"}}, nil)

	require.Equal(t, 1, sink.count())
	snapshot := <-sink.ch
	require.Equal(t, []string{SectionUsers}, snapshot.Missing)
	require.True(t, snapshot.Partial())
	require.Len(t, snapshot.Detail.Comments, 1)
	require.Nil(t, snapshot.Detail.Comments[0].Author)
	require.Equal(t, "crash", snapshot.Detail.Issue.Title)
	require.Equal(t, []string{"network error"}, alerts)
	require.False(t, view.Loading())
}

func TestView_RefreshWhileLoadingRejected(t *testing.T) {
	fetcher := &fakeFetcher{}
	view, err := NewView(models.Issue{ID: 1}, fetcher, newSink())
	require.NoError(t, err)

	require.NoError(t, view.Refresh(context.Background()))
	require.ErrorIs(t, view.Refresh(context.Background()), join.ErrCycleInProgress)
}

func TestView_SecondRefreshStartsClean(t *testing.T) {
	fetcher := &fakeFetcher{}
	sink := newSink()
	view, err := NewView(models.Issue{ID: 1}, fetcher, sink)
	require.NoError(t, err)

	require.NoError(t, view.Refresh(context.Background()))
	fetcher.comments([]models.Comment{{ID: 1}}, nil)
	fetcher.users([]models.User{{ID: 1}}, nil)
	fetcher.labels([]models.Label{{ID: 1}}, nil)
	fetcher.milestones([]models.Milestone{{ID: 1}}, nil)
	first := <-sink.ch
	require.False(t, first.Partial())

	require.NoError(t, view.Refresh(context.Background()))
	fetcher.comments(nil, errors.New("down"))
	fetcher.users(nil, errors.New("down"))
	fetcher.labels(nil, errors.New("down"))
	fetcher.milestones(nil, errors.New("down"))
	second := <-sink.ch

	require.ElementsMatch(t, []string{SectionComments, SectionUsers, SectionLabels, SectionMilestones}, second.Missing)
	require.Empty(t, second.Detail.Comments)
	require.NotEqual(t, first.CycleID, second.CycleID)
}

func TestView_ResolvesAuthorsOnQueue(t *testing.T) {
	q := join.NewQueue(1)
	go func() { _ = q.Run(t.Context()) }()
	t.Cleanup(q.Close)

	sink := newSink()
	view, err := NewView(models.Issue{ID: 5}, immediateFetcher{}, sink, WithDispatcher(q))
	require.NoError(t, err)
	require.NoError(t, view.Refresh(context.Background()))

	select {
	case snapshot := <-sink.ch:
		require.Empty(t, snapshot.Missing)
		require.Equal(t, "bob", snapshot.Detail.Comments[0].Author.Name)
		require.Equal(t, "bug", snapshot.Detail.Labels[0].Title)
	case <-time.After(time.Second):
		t.Fatal("snapshot was not rendered")
	}
}

func TestView_TimeoutRendersPartial(t *testing.T) {
	fetcher := &fakeFetcher{}
	sink := newSink()
	view, err := NewView(models.Issue{ID: 1}, fetcher, sink, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, view.Refresh(context.Background()))
	fetcher.comments([]models.Comment{{ID: 1}}, nil)

	select {
	case snapshot := <-sink.ch:
		require.True(t, snapshot.Expired)
		require.ElementsMatch(t, []string{SectionUsers, SectionLabels, SectionMilestones}, snapshot.Missing)
	case <-time.After(time.Second):
		t.Fatal("expired snapshot was not rendered")
	}

	// Опоздавший результат не должен вызвать повторную отрисовку.
	fetcher.users([]models.User{{ID: 1}}, nil)
	require.Equal(t, 1, sink.count())
}

func TestNewView_Validation(t *testing.T) {
	_, err := NewView(models.Issue{}, nil, newSink())
	require.Error(t, err)
	_, err = NewView(models.Issue{}, &fakeFetcher{}, nil)
	require.Error(t, err)
}

func TestView_RefreshBeforeQueuedRenderRejected(t *testing.T) {
	q := join.NewQueue(4)
	fetcher := &fakeFetcher{}
	sink := newSink()
	view, err := NewView(models.Issue{ID: 3}, fetcher, sink, WithDispatcher(q))
	require.NoError(t, err)

	require.NoError(t, view.Refresh(context.Background()))
	fetcher.comments([]models.Comment{{ID: 1, UserID: 2}}, nil)
	fetcher.users([]models.User{{ID: 2, Name: "bob"}}, nil)
	fetcher.labels([]models.Label{{ID: 1}}, nil)
	fetcher.milestones([]models.Milestone{{ID: 1}}, nil)

	// Все загрузки завершились, но отрисовка ещё стоит в очереди.
	require.True(t, view.Loading())
	require.ErrorIs(t, view.Refresh(context.Background()), join.ErrCycleInProgress)

	q.Close()
	require.ErrorIs(t, q.Run(context.Background()), join.ErrQueueClosed)

	require.Equal(t, 1, sink.count())
	snapshot := <-sink.ch
	require.Empty(t, snapshot.Missing)
	require.Equal(t, "bob", snapshot.Detail.Comments[0].Author.Name)
	require.False(t, view.Loading())
}
