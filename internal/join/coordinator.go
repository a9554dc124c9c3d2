// Package join собирает результаты нескольких независимых асинхронных загрузок
// и один раз запускает продолжение, когда все они завершились.
//
// Цикл начинается с Begin(n) и заканчивается, когда n операций сообщили о
// завершении (успешно или с ошибкой) либо истёк необязательный таймаут.
// Ошибки отдельных операций уходят в ErrorReporter сразу и не прерывают цикл;
// продолжение не знает, какие именно операции упали, и смотрит на пустые слоты.
package join

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCycleInProgress = errors.New("join: cycle already in progress")
	ErrCycleClosed     = errors.New("join: cycle already finished")
	ErrNoActiveCycle   = errors.New("join: no active cycle")
	ErrNegativeCount   = errors.New("join: negative operation count")
	ErrHandlerSet      = errors.New("join: finish handler already registered")
	ErrNilHandler      = errors.New("join: finish handler is nil")
)

// ErrorReporter принимает описание ошибки отдельной операции.
type ErrorReporter interface {
	ReportError(description string)
}

// ReporterFunc позволяет использовать функцию как ErrorReporter.
type ReporterFunc func(description string)

func (f ReporterFunc) ReportError(description string) { f(description) }

// Observer получает события жизненного цикла; используется для метрик.
type Observer interface {
	CycleStarted(expected int)
	CycleFinished(elapsed time.Duration, expired bool)
	OperationFailed()
}

// Resetter очищается в начале каждого цикла. Его реализует Slot.
type Resetter interface {
	Reset()
}

// Summary передаётся продолжению.
type Summary struct {
	CycleID     string
	Expected    int
	Outstanding int
	Expired     bool
}

// Coordinator отслеживает операции текущего цикла. Одновременно открыт не больше одного цикла.
type Coordinator struct {
	mu       sync.Mutex
	current  *Cycle
	finished func(Summary)

	dispatcher Dispatcher
	reporter   ErrorReporter
	observer   Observer
	timeout    time.Duration
	logger     *slog.Logger
}

// Option настраивает Coordinator.
type Option func(*Coordinator)

// WithDispatcher задаёт контекст исполнения продолжения. По умолчанию Inline.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Coordinator) {
		if d != nil {
			c.dispatcher = d
		}
	}
}

// WithErrorReporter задаёт побочный канал для ошибок операций.
func WithErrorReporter(r ErrorReporter) Option {
	return func(c *Coordinator) { c.reporter = r }
}

// WithObserver подключает наблюдателя за циклами.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) { c.observer = o }
}

// WithTimeout ограничивает длительность цикла. Ноль отключает таймаут.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger задаёт логгер; по умолчанию slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// New создаёт координатор без открытого цикла.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		dispatcher: Inline(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnFinished регистрирует продолжение. Допускается только один обработчик.
func (c *Coordinator) OnFinished(handler func(Summary)) error {
	if handler == nil {
		return ErrNilHandler
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished != nil {
		return ErrHandlerSet
	}
	c.finished = handler
	return nil
}

// Begin открывает цикл на n операций и очищает переданные слоты.
// При n == 0 продолжение планируется сразу. Цикл считается открытым, пока
// продолжение не отработало, поэтому вызов Begin из самого продолжения
// возвращает ErrCycleInProgress.
func (c *Coordinator) Begin(n int, slots ...Resetter) (*Cycle, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeCount, n)
	}

	c.mu.Lock()
	if c.current != nil {
		id := c.current.id
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrCycleInProgress, id)
	}

	cycle := &Cycle{
		id:       uuid.NewString(),
		coord:    c,
		expected: n,
		pending:  n,
		started:  time.Now(),
	}
	for _, s := range slots {
		s.Reset()
	}
	c.current = cycle
	if c.observer != nil {
		c.observer.CycleStarted(n)
	}
	c.logger.Debug("join cycle started", "cycle", cycle.id, "operations", n)

	if n == 0 {
		c.finishLocked(cycle, false)
		return cycle, nil
	}
	if c.timeout > 0 {
		cycle.timer = time.AfterFunc(c.timeout, cycle.expire)
	}
	c.mu.Unlock()
	return cycle, nil
}

// Complete завершает одну операцию текущего цикла. nil означает успех.
func (c *Coordinator) Complete(err error) error {
	c.mu.Lock()
	cycle := c.current
	c.mu.Unlock()
	if cycle == nil {
		return ErrNoActiveCycle
	}
	return cycle.Complete(err)
}

// Pending возвращает число незавершённых операций открытого цикла.
// После таймаута и до конца продолжения это число просроченных операций.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return 0
	}
	return c.current.pending
}

// Active сообщает, открыт ли сейчас цикл или ещё выполняется его продолжение.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// finishLocked закрывает цикл и отпускает мьютекс до вызова диспетчера.
// Координатор освобождается только после того, как продолжение прочитало слоты.
func (c *Coordinator) finishLocked(cycle *Cycle, expired bool) {
	cycle.closed = true
	if cycle.timer != nil {
		cycle.timer.Stop()
	}
	summary := Summary{
		CycleID:     cycle.id,
		Expected:    cycle.expected,
		Outstanding: cycle.pending,
		Expired:     expired,
	}
	handler := c.finished
	elapsed := time.Since(cycle.started)
	c.mu.Unlock()

	if c.observer != nil {
		c.observer.CycleFinished(elapsed, expired)
	}
	if expired {
		c.logger.Warn("join cycle expired", "cycle", summary.CycleID, "outstanding", summary.Outstanding, "elapsed", elapsed)
	} else {
		c.logger.Debug("join cycle finished", "cycle", summary.CycleID, "elapsed", elapsed)
	}

	if handler == nil {
		c.release(cycle)
		return
	}
	accepted := c.dispatcher.Dispatch(func() {
		defer c.release(cycle)
		handler(summary)
	})
	if !accepted {
		c.logger.Warn("join continuation dropped", "cycle", summary.CycleID)
		c.release(cycle)
	}
}

// release снимает закрытый цикл с координатора.
func (c *Coordinator) release(cycle *Cycle) {
	c.mu.Lock()
	if c.current == cycle {
		c.current = nil
	}
	c.mu.Unlock()
}

// Cycle описывает один открытый цикл координатора.
type Cycle struct {
	id       string
	coord    *Coordinator
	expected int
	pending  int
	closed   bool
	started  time.Time
	timer    *time.Timer
}

// ID возвращает идентификатор цикла.
func (cy *Cycle) ID() string { return cy.id }

// Complete завершает одну операцию цикла.
func (cy *Cycle) Complete(err error) error {
	return cy.settle(err, nil)
}

// settle фиксирует результат операции: apply вызывается под мьютексом только при успехе.
func (cy *Cycle) settle(err error, apply func()) error {
	c := cy.coord
	c.mu.Lock()
	if cy.closed || cy.pending == 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrCycleClosed, cy.id)
	}

	if err == nil && apply != nil {
		apply()
	}
	cy.pending--
	last := cy.pending == 0
	reporter := c.reporter

	if err != nil {
		// Сообщаем об ошибке до продолжения, но вне мьютекса.
		c.mu.Unlock()
		c.reportFailure(cy, reporter, err)
		if !last {
			return nil
		}
		c.mu.Lock()
		if cy.closed {
			c.mu.Unlock()
			return nil
		}
	}

	if last {
		c.finishLocked(cy, false)
		return nil
	}
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) reportFailure(cy *Cycle, reporter ErrorReporter, err error) {
	if c.observer != nil {
		c.observer.OperationFailed()
	}
	c.logger.Warn("join operation failed", "cycle", cy.id, "error", err)
	if reporter != nil {
		reporter.ReportError(err.Error())
	}
}

// expire вызывается таймером: закрывает цикл с признаком Expired.
func (cy *Cycle) expire() {
	c := cy.coord
	c.mu.Lock()
	// pending == 0: последний settle уже закрывает цикл.
	if cy.closed || cy.pending == 0 {
		c.mu.Unlock()
		return
	}
	c.finishLocked(cy, true)
}
