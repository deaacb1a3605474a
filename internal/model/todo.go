package model

import "time"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every valid priority in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) IsValid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

// TodoFilter narrows List and Count. Nil fields match every todo.
type TodoFilter struct {
	Completed *bool
	Priority  *Priority
}

func (f TodoFilter) Matches(t Todo) bool {
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	return true
}

// TodoPatch carries the fields of a partial update. Only non-nil fields are applied.
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
}

func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil && p.Priority == nil
}

// Apply returns a copy of t with the patch fields set.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		desc := *p.Description
		t.Description = &desc
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	return t
}

type PriorityCounts struct {
	High   int64 `json:"high"`
	Medium int64 `json:"medium"`
	Low    int64 `json:"low"`
}

type TodoStats struct {
	Total      int64          `json:"total"`
	Completed  int64          `json:"completed"`
	Pending    int64          `json:"pending"`
	ByPriority PriorityCounts `json:"by_priority"`
}
