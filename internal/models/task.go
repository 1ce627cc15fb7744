package models

import (
	"errors"
	"time"
)

var ErrInvalidStatus = errors.New("invalid task status")

// Status is the internal key of a task lifecycle state.
type Status string

const (
	StatusDone    Status = "done"
	StatusPending Status = "pending"
	StatusWorking Status = "working"
)

// Display labels shown to users. They are part of the wire contract
// and must not be translated.
var statusLabels = map[Status]string{
	StatusDone:    "завершено",
	StatusPending: "в ожидании",
	StatusWorking: "в работе",
}

// Statuses returns every known status key in a stable order.
func Statuses() []Status {
	return []Status{StatusDone, StatusPending, StatusWorking}
}

// ParseStatus accepts either an internal key or its display label
// and returns the internal key.
func ParseStatus(s string) (Status, error) {
	if _, ok := statusLabels[Status(s)]; ok {
		return Status(s), nil
	}
	for status, label := range statusLabels {
		if label == s {
			return status, nil
		}
	}
	return "", ErrInvalidStatus
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	return statusLabels[s]
}

type Task struct {
	ID           int64
	Title        string
	Description  string
	Status       Status
	CreationTime time.Time
}
