package events

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEvent - имя события не входит в словарь
	ErrUnknownEvent = errors.New("unknown event")
	// ErrUnknownCategory - категория не зарегистрирована в маршрутизаторе
	ErrUnknownCategory = errors.New("unknown category")
	// ErrRouterClosed - маршрутизатор остановлен
	ErrRouterClosed = errors.New("router closed")
)

// DecodeError - полезная нагрузка не соответствует схеме события
type DecodeError struct {
	Event string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Event, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
