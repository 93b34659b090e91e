// Package seed loads sample data for local development.
package seed

import (
	"context"
	"errors"

	"github.com/Ali-shok/employee-management/internal/employee"
	employeeerrors "github.com/Ali-shok/employee-management/internal/employee/errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HRContact is a row of the hr directory table.
type HRContact struct {
	ID    int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name  string `gorm:"column:name"`
	Email string `gorm:"column:email"`
}

func (HRContact) TableName() string {
	return "hr"
}

var HRContacts = []HRContact{
	{ID: 1234, Name: "Salma", Email: "Salma@gmail.com"},
	{ID: 1235, Name: "Rawya", Email: "rawya@gmail.com"},
	{ID: 1236, Name: "Heba", Email: "heba@gmail.com"},
	{ID: 1237, Name: "Shaimaa", Email: "shaimaa@gmail.com"},
}

// SampleEmployees all share DefaultPassword.
var SampleEmployees = []employee.Employee{
	{FirstName: "Salma", LastName: "Hassan", Email: "salma@example.com", Position: "Director", Department: "Management", Role: employee.RoleAdmin},
	{FirstName: "Rawya", LastName: "Ali", Email: "rawya@example.com", Position: "HR Specialist", Department: "Human Resources", Role: employee.RoleHR},
	{FirstName: "Heba", LastName: "Said", Email: "heba@example.com", Position: "Backend Engineer", Department: "Engineering", Role: employee.RoleEmployee},
	{FirstName: "Shaimaa", LastName: "Mostafa", Email: "shaimaa@example.com", Position: "Accountant", Department: "Finance", Role: employee.RoleEmployee},
}

const DefaultPassword = "password"

type Result struct {
	HRContacts int
	Employees  int
	Skipped    int
}

type Seeder struct {
	db        *gorm.DB
	employees employee.Repository
	cost      int
	logger    *zap.Logger
}

func NewSeeder(db *gorm.DB, employees employee.Repository, logger ...*zap.Logger) *Seeder {
	l := zap.L().Named("seed")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("seed")
	}
	return &Seeder{db: db, employees: employees, cost: bcrypt.DefaultCost, logger: l}
}

// Run is idempotent: existing hr rows and employees (matched by email) are kept.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&HRContacts)
	if tx.Error != nil {
		return res, tx.Error
	}
	res.HRContacts = int(tx.RowsAffected)

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.cost)
	if err != nil {
		return res, err
	}

	for _, sample := range SampleEmployees {
		_, err := s.employees.FindByEmail(ctx, sample.Email)
		if err == nil {
			res.Skipped++
			continue
		}
		if !errors.Is(err, employeeerrors.ErrEmployeeNotFound) {
			return res, err
		}

		e := sample
		e.Password = string(hash)
		if err := s.employees.Create(ctx, &e); err != nil {
			return res, err
		}
		res.Employees++
		s.logger.Info("seeded employee", zap.String("email", e.Email), zap.String("role", e.Role))
	}

	return res, nil
}
