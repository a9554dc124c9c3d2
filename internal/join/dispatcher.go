package join

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed возвращает Queue.Run после Close.
var ErrQueueClosed = errors.New("join: queue closed")

// Dispatcher исполняет продолжение в выделенном контексте.
// Dispatch возвращает false, если задача отброшена и не будет выполнена.
type Dispatcher interface {
	Dispatch(fn func()) bool
}

// DispatcherFunc позволяет использовать функцию как Dispatcher.
type DispatcherFunc func(fn func()) bool

func (f DispatcherFunc) Dispatch(fn func()) bool { return f(fn) }

// Inline выполняет продолжение сразу, в горутине последнего завершения.
func Inline() Dispatcher {
	return DispatcherFunc(func(fn func()) bool {
		fn()
		return true
	})
}

// Queue выполняет задачи последовательно на одной горутине, как главный поток UI.
type Queue struct {
	tasks  chan func()
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewQueue создаёт очередь с буфером size.
func NewQueue(size int) *Queue {
	if size < 0 {
		size = 0
	}
	return &Queue{
		tasks: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Dispatch ставит задачу в очередь. После Close задачи отбрасываются.
// Принятая задача выполняется ровно один раз.
func (q *Queue) Dispatch(fn func()) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.tasks <- fn:
		return true
	case <-q.done:
		return false
	}
}

// Run выполняет задачи по порядку, пока очередь не закрыта или не отменён ctx.
// Отмена ctx закрывает очередь; уже принятые задачи Run дорабатывает перед выходом.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			q.Close()
			q.drain()
			return ctx.Err()
		case <-q.done:
			// Close дожидается Dispatch, которые успели взять RLock.
			q.Close()
			q.drain()
			return ErrQueueClosed
		case fn := <-q.tasks:
			fn()
		}
	}
}

// drain выполняет задачи, успевшие попасть в буфер до Close.
func (q *Queue) drain() {
	for {
		select {
		case fn := <-q.tasks:
			fn()
		default:
			return
		}
	}
}

// Close останавливает очередь; Run дорабатывает уже поставленные задачи.
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.done)
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
	})
}
