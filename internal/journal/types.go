package journal

import (
	"time"

	"github.com/augmented-finance/augmented-cli/internal/invoke"
	"github.com/google/uuid"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Entry records one dispatched command and every invocation it made.
type Entry struct {
	ID         string           `json:"id"`
	Command    string           `json:"command"`
	Network    string           `json:"network,omitempty"`
	Controller string           `json:"controller"`
	Roles      []string         `json:"roles,omitempty"`
	Args       []string         `json:"args"`
	Status     Status           `json:"status"`
	Outcomes   []invoke.Outcome `json:"outcomes"`
	Warnings   []string         `json:"warnings,omitempty"`
	Error      string           `json:"error,omitempty"`
	CreatedAt  string           `json:"created_at"`
	UpdatedAt  string           `json:"updated_at"`
}

func NewEntry(command, network, controller string, roles, args []string) Entry {
	now := time.Now().UTC().Format(time.RFC3339)
	if args == nil {
		args = []string{}
	}
	return Entry{
		ID:         uuid.NewString(),
		Command:    command,
		Network:    network,
		Controller: controller,
		Roles:      roles,
		Args:       args,
		Status:     StatusRunning,
		Outcomes:   []invoke.Outcome{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Finish sets the terminal status from err.
func (e *Entry) Finish(err error) {
	e.Status = StatusCompleted
	if err != nil {
		e.Status = StatusFailed
		e.Error = err.Error()
	}
	e.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}
