package employee

import (
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleEmployee = "employee"
)

// Employee is the identity anchor leave requests point at. The leave ledger
// only reads it.
type Employee struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	FirstName   string     `gorm:"type:varchar(50);not null"`
	LastName    string     `gorm:"type:varchar(50);not null"`
	Email       string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"`
	Position    string     `gorm:"type:varchar(50)"`
	Department  string     `gorm:"type:varchar(50)"`
	DateOfHire  *time.Time `gorm:"type:date"`
	PhoneNumber string     `gorm:"type:varchar(20)"`
	Role        string     `gorm:"type:varchar(20);not null;default:employee"`
}

func (Employee) TableName() string {
	return "employees"
}

// FullName is the display name used across leave listings.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
