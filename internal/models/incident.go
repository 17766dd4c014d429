package models

import (
	"fmt"
	"strings"
	"time"
)

// IncidentType - категория происшествия, выбираемая жителем при отправке сигнала
type IncidentType string

const (
	IncidentTypeFire     IncidentType = "Fire"
	IncidentTypePolice   IncidentType = "Police"
	IncidentTypeBarangay IncidentType = "Barangay"
	IncidentTypeHospital IncidentType = "Hospital"
)

// ParseIncidentType приводит строку к IncidentType без учета регистра
func ParseIncidentType(s string) (IncidentType, error) {
	for _, t := range []IncidentType{IncidentTypeFire, IncidentTypePolice, IncidentTypeBarangay, IncidentTypeHospital} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown incident type %q", s)
}

// IncidentStatus - этап жизненного цикла инцидента
type IncidentStatus int

const (
	StatusUnknown IncidentStatus = iota
	StatusPending
	StatusInProgress
	StatusResolved
	StatusRejected
	StatusCancelled
)

var statusNames = map[IncidentStatus]string{
	StatusPending:    "Pending",
	StatusInProgress: "In Progress",
	StatusResolved:   "Resolved",
	StatusRejected:   "Rejected",
	StatusCancelled:  "Cancelled",
}

// String возвращает имя статуса в том виде, в каком его передает бэкенд
func (s IncidentStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Terminal сообщает, является ли статус конечным
func (s IncidentStatus) Terminal() bool {
	return s == StatusResolved || s == StatusRejected || s == StatusCancelled
}

// ParseIncidentStatus сопоставляет строку статусу без учета регистра.
// "In Progress", "in_progress", "INPROGRESS" и "in-progress" считаются одним значением.
func ParseIncidentStatus(s string) (IncidentStatus, bool) {
	key := normalizeStatus(s)
	for status, name := range statusNames {
		if normalizeStatus(name) == key {
			return status, true
		}
	}
	// "Canceled" встречается в американском написании
	if key == "canceled" {
		return StatusCancelled, true
	}
	return StatusUnknown, false
}

func normalizeStatus(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// MarshalText кодирует статус в JSON как строку бэкенда
func (s IncidentStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText разбирает строку статуса; неизвестные значения считаются ошибкой
func (s *IncidentStatus) UnmarshalText(text []byte) error {
	status, ok := ParseIncidentStatus(string(text))
	if !ok {
		return fmt.Errorf("unknown incident status %q", string(text))
	}
	*s = status
	return nil
}

// IncidentRecord - инцидент, отслеживаемый клиентом.
// ID пуст, пока сервер не подтвердил создание.
type IncidentRecord struct {
	ID              string         `json:"id,omitempty"`
	Type            IncidentType   `json:"type"`
	Name            string         `json:"name"`
	ReporterName    string         `json:"reporter_name"`
	ReporterContact string         `json:"reporter_contact"`
	Location        LocationSample `json:"location"`
	Status          IncidentStatus `json:"status"`
	Description     *string        `json:"description,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// IncidentSummary - строка во входящих инцидентах спасателя
type IncidentSummary struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description string         `json:"description,omitempty"`
	Contact     string         `json:"contact,omitempty"`
	Location    LocationSample `json:"location"`
	Status      IncidentStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}
