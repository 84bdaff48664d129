package models

import (
	"net/url"
	"strings"
)

// Priority is a task's urgency, P0 being the most urgent.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"

	DefaultPriority = PriorityP2
)

var priorityRank = map[Priority]int{
	PriorityP0: 0,
	PriorityP1: 1,
	PriorityP2: 2,
	PriorityP3: 3,
}

// ParsePriority accepts P0..P3 in any case.
func ParsePriority(raw string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := priorityRank[p]
	return p, ok
}

// Rank returns a numeric value for sorting by priority.
// Lower numbers indicate higher priority.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return 99
}

// TaskType classifies a task.
type TaskType string

const (
	TypeTask     TaskType = "task"
	TypeDeadline TaskType = "deadline"
	TypeReminder TaskType = "reminder"
	TypePayment  TaskType = "payment"
)

// ParseTaskType accepts a known task type in any case.
func ParseTaskType(raw string) (TaskType, bool) {
	t := TaskType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case TypeTask, TypeDeadline, TypeReminder, TypePayment:
		return t, true
	}
	return TypeTask, false
}

// Currency is an ISO 4217 code from the supported set.
type Currency string

// BaseCurrency is used whenever a currency is missing or unsupported.
const BaseCurrency Currency = "USD"

// Currencies lists the supported currency codes.
var Currencies = []Currency{"USD", "EUR", "GBP", "CHF", "CAD", "AUD", "JPY", "INR"}

// ParseCurrency accepts a supported code in any case.
func ParseCurrency(raw string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range Currencies {
		if c == known {
			return c, true
		}
	}
	return BaseCurrency, false
}

// Status is a project's lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// ParseStatus accepts a known project status in any case.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusArchived:
		return s, true
	}
	return StatusActive, false
}

// NormalizeRepo keeps raw only when it is an absolute http(s) URL with a
// host. Anything else normalizes to "". An empty input is accepted.
func NormalizeRepo(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return raw, true
}
