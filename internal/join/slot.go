package join

import "sync"

// Slot хранит результат одной операции цикла: пусто, пока значение не пришло или операция упала.
type Slot[T any] struct {
	mu    sync.RWMutex
	value T
	set   bool
}

// Get возвращает значение и признак его наличия.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.set
}

// Filled сообщает, заполнен ли слот.
func (s *Slot[T]) Filled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

func (s *Slot[T]) store(v T) {
	s.mu.Lock()
	s.value = v
	s.set = true
	s.mu.Unlock()
}

// Reset очищает слот; Begin вызывает его для каждого переданного слота.
func (s *Slot[T]) Reset() {
	var zero T
	s.mu.Lock()
	s.value = zero
	s.set = false
	s.mu.Unlock()
}

// Deliver завершает операцию цикла: при успехе кладёт payload в slot, при ошибке оставляет его пустым.
// Запись в слот и уменьшение счётчика происходят под одним мьютексом,
// поэтому опоздавший результат закрытого цикла слот не трогает.
func Deliver[T any](cycle *Cycle, slot *Slot[T], payload T, err error) error {
	return cycle.settle(err, func() { slot.store(payload) })
}
