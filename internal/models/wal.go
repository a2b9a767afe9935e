package models

import "time"

// WalEntry is one append-only record of a task's status transition.
type WalEntry struct {
	Timestamp      time.Time  `json:"timestamp"`
	TaskID         string     `json:"taskId"`
	PreviousStatus PlanStatus `json:"previousStatus"`
	NewStatus      PlanStatus `json:"newStatus"`
	AssignedAgent  string     `json:"assignedAgent,omitempty"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
}
