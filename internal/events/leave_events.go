package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

const (
	EventLeaveSubmitted     = "leave.submitted"
	EventLeaveStatusChanged = "leave.status_changed"
)

// LeaveEvent is the payload published for every leave request change.
// PreviousStatus and ReviewedBy are only set for status changes.
type LeaveEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	LeaveID        int64     `json:"leave_id"`
	EmployeeID     int64     `json:"employee_id"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	Reason         string    `json:"reason,omitempty"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	ReviewedBy     string    `json:"reviewed_by,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
