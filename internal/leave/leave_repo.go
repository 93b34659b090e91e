package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Ali-shok/employee-management/internal/employee"
	leaveerrors "github.com/Ali-shok/employee-management/internal/leave/errors"
	"github.com/Ali-shok/employee-management/internal/shared/dbtx"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id int64) (*LeaveRequest, error)
	FindAll(ctx context.Context) ([]RequestRow, error)
	FindByEmployee(ctx context.Context, employeeID int64) ([]RequestRow, error)
	FindApprovedInRange(ctx context.Context, employeeIDs []int64, from, to time.Time) ([]LeaveRequest, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
	EmployeeExists(ctx context.Context, employeeID int64) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Conn(ctx, r.db, r.tx)
}

func withEmployeeName(db *gorm.DB) *gorm.DB {
	return db.Table("leave_requests AS lr").
		Select("lr.id, lr.employee_id, e.first_name, e.last_name, lr.start_date, lr.end_date, COALESCE(lr.reason, '') AS reason, lr.status").
		Joins("JOIN employees AS e ON e.id = lr.employee_id")
}

func ofEmployee(employeeID int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("lr.employee_id = ?", employeeID)
	}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.conn(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindAll(ctx context.Context) ([]RequestRow, error) {
	var rows []RequestRow
	err := r.conn(ctx).
		Scopes(withEmployeeName).
		Order("lr.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID int64) ([]RequestRow, error) {
	var rows []RequestRow
	err := r.conn(ctx).
		Scopes(withEmployeeName, ofEmployee(employeeID)).
		Order("lr.id DESC").
		Scan(&rows).Error
	return rows, err
}

// FindApprovedInRange returns approved requests lying entirely inside
// [from, to] for the given employees.
func (r *repository) FindApprovedInRange(ctx context.Context, employeeIDs []int64, from, to time.Time) ([]LeaveRequest, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	var leaves []LeaveRequest
	err := r.conn(ctx).
		Where("employee_id IN ?", employeeIDs).
		Where("status = ?", string(StatusApproved)).
		Where("start_date >= ? AND end_date <= ?", from, to).
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	return r.conn(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.conn(ctx).Where("id = ?", id).Delete(&LeaveRequest{}).Error
}

func (r *repository) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&employee.Employee{}).
		Where("id = ?", employeeID).
		Count(&count).Error
	return count > 0, err
}
