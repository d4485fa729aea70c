package models

import "errors"

// ErrTaskNotFound is returned when no task has the requested id.
var ErrTaskNotFound = errors.New("task not found")

// Task is a single to-do item. created_at lives in the table for ordering
// only and is never sent to clients.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// NewTask is the body of a create request. A nil field was either omitted or
// sent as null.
type NewTask struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// TaskUpdate is the body of an update request. Nil fields keep the stored
// value; anything else replaces it, including "" and false.
type TaskUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// DescriptionOrDefault returns the requested description or "".
func (n NewTask) DescriptionOrDefault() string {
	if n.Description == nil {
		return ""
	}
	return *n.Description
}

// HasTitle reports whether a usable title was supplied.
func (n NewTask) HasTitle() bool {
	return n.Title != nil && *n.Title != ""
}
