package leave_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Ali-shok/employee-management/internal/employee"
	"github.com/Ali-shok/employee-management/internal/leave"
	leaveerrors "github.com/Ali-shok/employee-management/internal/leave/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLeaveRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Repository Suite")
}

var _ = Describe("Leave Repository", func() {
	var (
		db    *gorm.DB
		sqlDB *sql.DB
		repo  leave.Repository
		ctx   context.Context
		salma *employee.Employee
		rawya *employee.Employee
	)

	submit := func(employeeID int64, start, end string, status leave.Status) *leave.LeaveRequest {
		GinkgoHelper()
		l := &leave.LeaveRequest{
			EmployeeID: employeeID,
			StartDate:  mustDate(start),
			EndDate:    mustDate(end),
			Reason:     "r",
			Status:     status,
		}
		Expect(repo.Create(ctx, l)).To(Succeed())
		return l
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err = db.DB()
		Expect(err).NotTo(HaveOccurred())
		// :memory: is per connection
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&employee.Employee{}, &leave.LeaveRequest{})).To(Succeed())

		salma = &employee.Employee{FirstName: "Salma", LastName: "Hassan", Email: "salma@example.com", Password: "x"}
		rawya = &employee.Employee{FirstName: "Rawya", LastName: "Ali", Email: "rawya@example.com", Password: "x"}
		Expect(db.Create(salma).Error).To(Succeed())
		Expect(db.Create(rawya).Error).To(Succeed())

		repo = leave.NewRepository(db)
	})

	Describe("Create and FindByID", func() {
		It("persists a pending request with a generated id", func() {
			l := submit(salma.ID, "2026-03-01", "2026-03-05", leave.StatusPending)
			Expect(l.ID).To(BeNumerically(">", 0))

			found, err := repo.FindByID(ctx, l.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(leave.StatusPending))
			Expect(leave.CalendarDate(found.StartDate)).To(Equal(mustDate("2026-03-01")))
		})

		It("returns ErrLeaveNotFound for an unknown id", func() {
			_, err := repo.FindByID(ctx, 999)
			Expect(err).To(MatchError(leaveerrors.ErrLeaveNotFound))
		})
	})

	Describe("listing", func() {
		BeforeEach(func() {
			submit(salma.ID, "2026-03-01", "2026-03-05", leave.StatusApproved)
			submit(rawya.ID, "2026-04-01", "2026-04-02", leave.StatusPending)
			submit(salma.ID, "2026-05-01", "2026-05-01", leave.StatusRejected)
		})

		It("joins the employee name and orders by id", func() {
			rows, err := repo.FindAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			Expect(rows[0].EmployeeName()).To(Equal("Salma Hassan"))
			Expect(rows[1].EmployeeName()).To(Equal("Rawya Ali"))
			Expect(rows[0].ID).To(BeNumerically("<", rows[2].ID))
		})

		It("filters one employee newest first", func() {
			rows, err := repo.FindByEmployee(ctx, salma.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].ID).To(BeNumerically(">", rows[1].ID))
			Expect(rows[0].Status).To(Equal(leave.StatusRejected))
		})

		It("returns nothing for an employee without requests", func() {
			rows, err := repo.FindByEmployee(ctx, 404)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeEmpty())
		})
	})

	Describe("FindApprovedInRange", func() {
		It("keeps approved requests entirely inside the range", func() {
			submit(salma.ID, "2026-03-01", "2026-03-05", leave.StatusApproved)
			submit(salma.ID, "2025-12-20", "2026-01-05", leave.StatusApproved)
			submit(salma.ID, "2026-06-01", "2026-06-02", leave.StatusPending)
			submit(rawya.ID, "2026-07-01", "2026-07-10", leave.StatusApproved)
			submit(rawya.ID, "2026-12-31", "2026-12-31", leave.StatusApproved)

			from, to := leave.YearBounds(mustDate("2026-10-16"))
			got, err := repo.FindApprovedInRange(ctx, []int64{salma.ID, rawya.ID}, from, to)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(3))

			got, err = repo.FindApprovedInRange(ctx, []int64{salma.ID}, from, to)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
		})

		It("skips the query for no employees", func() {
			got, err := repo.FindApprovedInRange(ctx, nil, mustDate("2026-01-01"), mustDate("2026-12-31"))
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeEmpty())
		})
	})

	Describe("UpdateStatus and Delete", func() {
		It("overwrites the status", func() {
			l := submit(salma.ID, "2026-03-01", "2026-03-05", leave.StatusPending)

			Expect(repo.UpdateStatus(ctx, l.ID, leave.StatusApproved)).To(Succeed())

			found, err := repo.FindByID(ctx, l.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(leave.StatusApproved))
		})

		It("deletes, and deleting again is not an error", func() {
			l := submit(salma.ID, "2026-03-01", "2026-03-05", leave.StatusPending)

			Expect(repo.Delete(ctx, l.ID)).To(Succeed())
			Expect(repo.Delete(ctx, l.ID)).To(Succeed())

			_, err := repo.FindByID(ctx, l.ID)
			Expect(err).To(MatchError(leaveerrors.ErrLeaveNotFound))
		})
	})

	Describe("transactions", func() {
		It("discards writes made through a rolled back tx", func() {
			tx, err := sqlDB.BeginTx(ctx, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.WithTx(tx).Create(ctx, &leave.LeaveRequest{
				EmployeeID: salma.ID,
				StartDate:  mustDate("2026-03-01"),
				EndDate:    mustDate("2026-03-02"),
				Status:     leave.StatusPending,
			})).To(Succeed())
			Expect(tx.Rollback()).To(Succeed())

			rows, err := repo.FindAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(BeEmpty())
		})
	})

	Describe("EmployeeExists", func() {
		It("reports known and unknown employees", func() {
			ok, err := repo.EmployeeExists(ctx, salma.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = repo.EmployeeExists(ctx, 404)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})
})
