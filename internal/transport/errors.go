package transport

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEndpoint  = errors.New("invalid endpoint")
	ErrAlreadyConnected = errors.New("channel already connected")
)

// ConnectionError - ошибка Connect с адресом, к которому шло подключение
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("transport: connect %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
