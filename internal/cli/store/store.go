// Package store — хранилища ресурсов клиента: список сущностей, флаг загрузки, ошибка и
// слот текущей сущности. Состояние меняется только через асинхронные операции Run*,
// каждая из которых проходит фазы pending → fulfilled | rejected.
package store

import (
	"context"
	"sync"

	"ArchiveDesk/internal/cli/api"
	"ArchiveDesk/internal/cli/metrics"
	"ArchiveDesk/internal/model"
)

// State is a read-only snapshot of a store. Error == "" means no error.
type State[T model.Entity] struct {
	Items   []T
	Loading bool
	Error   string
	Current *T
}

type slotKind int

const (
	slotList slotKind = iota
	slotCurrent
)

// slot — счётчики упорядочивания запросов для одного слота (список или текущая сущность).
type slot struct {
	issued  uint64
	applied uint64
}

type ticket struct {
	kind  slotKind
	seq   uint64
	fence bool
}

// Store holds the state of one resource type.
type Store[T model.Entity] struct {
	name string

	// dmu держится от изменения состояния до конца notify: подписчики видят
	// снимки в порядке применения. Подписчик не должен синхронно менять хранилище.
	dmu sync.Mutex

	mu       sync.Mutex
	state    State[T]
	inflight int
	slots    [2]slot

	lmu       sync.Mutex
	listeners map[uint64]func(State[T])
	nextID    uint64
}

// New создаёт пустое хранилище; name используется в метриках и логах.
func New[T model.Entity](name string) *Store[T] {
	return &Store[T]{name: name, listeners: map[uint64]func(State[T]){}}
}

// Name returns the store name.
func (s *Store[T]) Name() string { return s.name }

// Snapshot returns a copy of the current state.
func (s *Store[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Items returns a copy of the list.
func (s *Store[T]) Items() []T { return s.Snapshot().Items }

// Loading reports whether any operation is in flight.
func (s *Store[T]) Loading() bool { return s.Snapshot().Loading }

// Err returns the current error message, "" if none.
func (s *Store[T]) Err() string { return s.Snapshot().Error }

// Current returns the entity in the detail slot.
func (s *Store[T]) Current() (T, bool) {
	st := s.Snapshot()
	if st.Current == nil {
		var zero T
		return zero, false
	}
	return *st.Current, true
}

// ClearError resets Error without touching anything else.
func (s *Store[T]) ClearError() {
	s.dmu.Lock()
	defer s.dmu.Unlock()
	s.mu.Lock()
	if s.state.Error == "" {
		s.mu.Unlock()
		return
	}
	s.state.Error = ""
	snap := s.copyLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Subscribe registers fn to be called with a snapshot after every state change.
func (s *Store[T]) Subscribe(fn func(State[T])) (cancel func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()
	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

// OnError calls fn with the error message after every state change.
func (s *Store[T]) OnError(fn func(msg string)) (cancel func()) {
	return s.Subscribe(func(st State[T]) { fn(st.Error) })
}

// RunList заменяет Items целиком результатом fetch. Ответы устаревших запросов отбрасываются.
func (s *Store[T]) RunList(ctx context.Context, fallback string, fetch func(context.Context) ([]T, error)) error {
	t := s.begin(slotList, true)
	items, err := fetch(ctx)
	if err != nil {
		s.reject(t, "list", api.Message(err, fallback), false)
		return err
	}
	s.fulfill(t, "list", func(st *State[T]) {
		st.Items = cloneItems(items)
	})
	return nil
}

// RunCurrent кладёт результат fetch в слот Current. При ошибке слот очищается.
func (s *Store[T]) RunCurrent(ctx context.Context, fallback string, fetch func(context.Context) (T, error)) (T, error) {
	t := s.begin(slotCurrent, true)
	item, err := fetch(ctx)
	if err != nil {
		s.reject(t, "current", api.Message(err, fallback), true)
		var zero T
		return zero, err
	}
	s.fulfill(t, "current", func(st *State[T]) {
		it := item
		st.Current = &it
	})
	return item, nil
}

// RunCreate appends the created entity exactly once.
func (s *Store[T]) RunCreate(ctx context.Context, fallback string, create func(context.Context) (T, error)) (T, error) {
	t := s.begin(slotList, false)
	item, err := create(ctx)
	if err != nil {
		s.reject(t, "create", api.Message(err, fallback), false)
		var zero T
		return zero, err
	}
	s.fulfill(t, "create", func(st *State[T]) {
		st.Items = append(cloneItems(st.Items), item)
	})
	return item, nil
}

// RunUpdate заменяет элемент с тем же id. Если элемента нет (устаревший список), Items не меняется.
func (s *Store[T]) RunUpdate(ctx context.Context, id, fallback string, update func(context.Context) (T, error)) (T, error) {
	t := s.begin(slotList, false)
	item, err := update(ctx)
	if err != nil {
		s.reject(t, "update", api.Message(err, fallback), false)
		var zero T
		return zero, err
	}
	s.fulfill(t, "update", func(st *State[T]) {
		for i := range st.Items {
			if st.Items[i].GetID() == id {
				st.Items = cloneItems(st.Items)
				st.Items[i] = item
				break
			}
		}
		if st.Current != nil && (*st.Current).GetID() == id {
			it := item
			st.Current = &it
		}
	})
	return item, nil
}

// RunDelete удаляет элемент по id; отсутствующий id — не ошибка.
func (s *Store[T]) RunDelete(ctx context.Context, id, fallback string, del func(context.Context) error) error {
	t := s.begin(slotList, false)
	if err := del(ctx); err != nil {
		s.reject(t, "delete", api.Message(err, fallback), false)
		return err
	}
	s.fulfill(t, "delete", func(st *State[T]) {
		kept := make([]T, 0, len(st.Items))
		for _, it := range st.Items {
			if it.GetID() != id {
				kept = append(kept, it)
			}
		}
		if len(kept) != len(st.Items) {
			st.Items = kept
		}
		if st.Current != nil && (*st.Current).GetID() == id {
			st.Current = nil
		}
	})
	return nil
}

func (s *Store[T]) begin(kind slotKind, fence bool) ticket {
	s.dmu.Lock()
	defer s.dmu.Unlock()
	s.mu.Lock()
	t := ticket{kind: kind, fence: fence}
	if fence {
		s.slots[kind].issued++
		t.seq = s.slots[kind].issued
	}
	s.inflight++
	s.state.Loading = true
	s.state.Error = ""
	snap := s.copyLocked()
	s.mu.Unlock()
	s.notify(snap)
	return t
}

// settleLocked закрывает операцию и сообщает, нужно ли применять её результат.
func (s *Store[T]) settleLocked(t ticket) bool {
	s.inflight--
	s.state.Loading = s.inflight > 0
	if !t.fence {
		return true
	}
	sl := &s.slots[t.kind]
	if t.seq <= sl.applied {
		return false
	}
	sl.applied = t.seq
	return true
}

func (s *Store[T]) fulfill(t ticket, op string, apply func(*State[T])) {
	s.dmu.Lock()
	defer s.dmu.Unlock()
	s.mu.Lock()
	fresh := s.settleLocked(t)
	if fresh {
		apply(&s.state)
	}
	snap := s.copyLocked()
	s.mu.Unlock()
	metrics.ObserveStoreOp(s.name, op, outcome(fresh, metrics.OutcomeFulfilled))
	s.notify(snap)
}

func (s *Store[T]) reject(t ticket, op, msg string, clearCurrent bool) {
	s.dmu.Lock()
	defer s.dmu.Unlock()
	s.mu.Lock()
	fresh := s.settleLocked(t)
	if fresh {
		s.state.Error = msg
		if clearCurrent {
			s.state.Current = nil
		}
	}
	snap := s.copyLocked()
	s.mu.Unlock()
	metrics.ObserveStoreOp(s.name, op, outcome(fresh, metrics.OutcomeRejected))
	s.notify(snap)
}

func outcome(fresh bool, o string) string {
	if !fresh {
		return metrics.OutcomeStale
	}
	return o
}

func (s *Store[T]) copyLocked() State[T] {
	st := s.state
	st.Items = cloneItems(s.state.Items)
	if s.state.Current != nil {
		c := *s.state.Current
		st.Current = &c
	}
	return st
}

func (s *Store[T]) notify(snap State[T]) {
	s.lmu.Lock()
	fns := make([]func(State[T]), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func cloneItems[T any](items []T) []T {
	if items == nil {
		return nil
	}
	return append(make([]T, 0, len(items)), items...)
}
