package models

import "time"

// LocationSample - одна координата устройства. Значение неизменяемо.
type LocationSample struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CapturedAt time.Time `json:"captured_at"`
}

// ConnectionState - состояние транспортного канала
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	Reconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// MarshalText позволяет отдавать состояние в JSON строкой
func (s ConnectionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
