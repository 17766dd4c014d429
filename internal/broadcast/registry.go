// Package broadcast реализует реестр подписчиков с безопасным удалением
// во время рассылки.
//
// Гарантия Remove: после возврата из Remove ни одна новая доставка этому
// подписчику не начнется, даже если рассылка уже идет по снимку списка.
// Вызов, который уже выполняется в момент Remove, завершается как есть.
// Подписчик может снять сам себя изнутри обработчика.
//
// Publish сериализован, поэтому один подписчик никогда не вызывается
// конкурентно сам с собой.
package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle - непрозрачный токен подписки
type Handle struct {
	id uuid.UUID
}

// IsZero сообщает, что хэндл не выдан реестром
func (h Handle) IsZero() bool {
	return h.id == uuid.Nil
}

func (h Handle) String() string {
	return h.id.String()
}

type entry[T any] struct {
	handle  Handle
	fn      func(T)
	removed atomic.Bool
}

// Registry - список подписчиков на значения типа T
type Registry[T any] struct {
	mu      sync.RWMutex
	entries []*entry[T]
	byID    map[uuid.UUID]*entry[T]

	deliverMu sync.Mutex
	active    atomic.Bool
}

// NewRegistry создает активный реестр
func NewRegistry[T any]() *Registry[T] {
	r := &Registry[T]{
		byID: make(map[uuid.UUID]*entry[T]),
	}
	r.active.Store(true)
	return r
}

// Add регистрирует подписчика; порядок доставки совпадает с порядком регистрации
func (r *Registry[T]) Add(fn func(T)) Handle {
	e := &entry[T]{handle: Handle{id: uuid.New()}, fn: fn}
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.byID[e.handle.id] = e
	r.mu.Unlock()
	return e.handle
}

// Remove снимает подписку. Возвращает false, если хэндл неизвестен.
func (r *Registry[T]) Remove(h Handle) bool {
	r.mu.Lock()
	e, ok := r.byID[h.id]
	if ok {
		delete(r.byID, h.id)
		for i, candidate := range r.entries {
			if candidate == e {
				r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	e.removed.Store(true)
	return true
}

// Len возвращает число подписчиков
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Pause останавливает доставку, не удаляя подписчиков
func (r *Registry[T]) Pause() {
	r.active.Store(false)
}

// Resume возобновляет доставку после Pause
func (r *Registry[T]) Resume() {
	r.active.Store(true)
}

// Active сообщает, идет ли доставка
func (r *Registry[T]) Active() bool {
	return r.active.Load()
}

// Publish доставляет значение всем подписчикам по порядку и возвращает число доставок
func (r *Registry[T]) Publish(v T) int {
	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()

	r.mu.RLock()
	snapshot := make([]*entry[T], len(r.entries))
	copy(snapshot, r.entries)
	r.mu.RUnlock()

	delivered := 0
	for _, e := range snapshot {
		// флаги проверяются непосредственно перед вызовом, а не при снятии снимка
		if !r.active.Load() || e.removed.Load() {
			continue
		}
		e.fn(v)
		delivered++
	}
	return delivered
}
