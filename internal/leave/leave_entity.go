package leave

import (
	"strings"
	"time"
)

// Status is the closed set of states a leave request can be in.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus accepts the three known values, case-insensitively.
func ParseStatus(v string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	return s, s.Valid()
}

type LeaveRequest struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	EmployeeID int64     `gorm:"not null;index"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	Reason     string    `gorm:"type:text"`
	Status     Status    `gorm:"type:varchar(20);not null;default:pending"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// RequestRow is a leave request joined with its employee's name.
type RequestRow struct {
	ID         int64
	EmployeeID int64
	FirstName  string
	LastName   string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Status     Status
}

func (r RequestRow) EmployeeName() string {
	return r.FirstName + " " + r.LastName
}
