package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/Ali-shok/employee-management/internal/events"
	leaveerrors "github.com/Ali-shok/employee-management/internal/leave/errors"
	"github.com/Ali-shok/employee-management/internal/messaging/kafka"
	"github.com/Ali-shok/employee-management/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	GetBalance(ctx context.Context, employeeID int64) (BalanceResponse, error)
	Submit(ctx context.Context, employeeID int64, req SubmitLeaveRequest) (LeaveResponse, error)
	ListAll(ctx context.Context) ([]LeaveWithBalanceResponse, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]EmployeeLeaveResponse, error)
	UpdateStatus(ctx context.Context, actorID string, id int64, req UpdateStatusRequest) (LeaveResponse, error)
	Delete(ctx context.Context, id int64) error
}

type Options struct {
	AnnualAllotment int
	Now             func() time.Time
}

type service struct {
	db        *sql.DB
	repo      Repository
	outbox    kafka.OutboxRepository
	allotment int
	now       func() time.Time
	balances  singleflight.Group
	logger    *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, Options{}, logger...)
}

// NewServiceWithOutbox records a lifecycle event in the same transaction as
// every submission and status change. A nil outbox disables events.
func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if opts.AnnualAllotment <= 0 {
		opts.AnnualAllotment = DefaultAnnualAllotment
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		db:        db,
		repo:      repo,
		outbox:    outbox,
		allotment: opts.AnnualAllotment,
		now:       opts.Now,
		logger:    l,
	}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

func (s *service) GetBalance(ctx context.Context, employeeID int64) (BalanceResponse, error) {
	if employeeID <= 0 {
		return BalanceResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	v, err, shared := s.balances.Do(strconv.FormatInt(employeeID, 10), func() (any, error) {
		return s.balanceFor(ctx, employeeID)
	})
	if err != nil {
		s.log(ctx).Error("get balance failed", zap.Int64("employee_id", employeeID), zap.Error(err))
		return BalanceResponse{}, err
	}
	if shared {
		s.log(ctx).Debug("get balance shared", zap.Int64("employee_id", employeeID))
	}

	return toBalanceResponse(v.(Balance)), nil
}

func (s *service) balanceFor(ctx context.Context, employeeID int64) (Balance, error) {
	now := s.now()
	yearStart, yearEnd := YearBounds(now)

	approved, err := s.repo.FindApprovedInRange(ctx, []int64{employeeID}, yearStart, yearEnd)
	if err != nil {
		return Balance{}, err
	}
	return ComputeBalance(employeeID, s.allotment, now, approved), nil
}

func (s *service) Submit(ctx context.Context, employeeID int64, req SubmitLeaveRequest) (LeaveResponse, error) {
	log := s.log(ctx)
	log.Debug("submit leave requested",
		zap.Int64("employee_id", employeeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if employeeID <= 0 {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		log.Warn("submit leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("submit leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.EmployeeExists(ctx, employeeID)
	if err != nil {
		log.Error("submit leave employee check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !exists {
		return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
	}

	l := &LeaveRequest{
		EmployeeID: employeeID,
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     strings.TrimSpace(req.Reason),
		Status:     StatusPending,
	}
	if err := qtx.Create(ctx, l); err != nil {
		log.Error("submit leave persist failed", zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := s.recordEvent(ctx, tx, events.LeaveEvent{
		EventType:  events.EventLeaveSubmitted,
		LeaveID:    l.ID,
		EmployeeID: l.EmployeeID,
		StartDate:  formatDate(l.StartDate),
		EndDate:    formatDate(l.EndDate),
		Reason:     l.Reason,
		Status:     l.Status.String(),
	}); err != nil {
		log.Error("submit leave outbox failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("submit leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	log.Info("submit leave success",
		zap.Int64("leave_id", l.ID),
		zap.Int64("employee_id", employeeID),
	)

	return toLeaveResponse(*l), nil
}

func (s *service) ListAll(ctx context.Context) ([]LeaveWithBalanceResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log(ctx).Error("list leave requests failed", zap.Error(err))
		return nil, err
	}

	balances, err := s.balancesFor(ctx, rows)
	if err != nil {
		s.log(ctx).Error("list leave balances failed", zap.Error(err))
		return nil, err
	}

	resp := make([]LeaveWithBalanceResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, LeaveWithBalanceResponse{
			ID:           r.ID,
			EmployeeID:   r.EmployeeID,
			EmployeeName: r.EmployeeName(),
			StartDate:    formatDate(r.StartDate),
			EndDate:      formatDate(r.EndDate),
			Reason:       r.Reason,
			Status:       r.Status.String(),
			Balance:      balances[r.EmployeeID],
		})
	}
	return resp, nil
}

// balancesFor loads the approved requests of every employee in rows with one
// query and computes each remaining balance once.
func (s *service) balancesFor(ctx context.Context, rows []RequestRow) (map[int64]int, error) {
	ids := make([]int64, 0)
	seen := make(map[int64]struct{})
	for _, r := range rows {
		if _, ok := seen[r.EmployeeID]; ok {
			continue
		}
		seen[r.EmployeeID] = struct{}{}
		ids = append(ids, r.EmployeeID)
	}

	out := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	now := s.now()
	yearStart, yearEnd := YearBounds(now)
	approved, err := s.repo.FindApprovedInRange(ctx, ids, yearStart, yearEnd)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		out[id] = ComputeBalance(id, s.allotment, now, approved).Remaining
	}
	return out, nil
}

func (s *service) ListByEmployee(ctx context.Context, employeeID int64) ([]EmployeeLeaveResponse, error) {
	if employeeID <= 0 {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}

	rows, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		s.log(ctx).Error("list employee leave requests failed",
			zap.Int64("employee_id", employeeID),
			zap.Error(err),
		)
		return nil, err
	}

	resp := make([]EmployeeLeaveResponse, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, EmployeeLeaveResponse{
			ID:           r.ID,
			EmployeeName: r.EmployeeName(),
			StartDate:    formatDate(r.StartDate),
			EndDate:      formatDate(r.EndDate),
			Reason:       r.Reason,
			Status:       r.Status.String(),
		})
	}
	return resp, nil
}

func (s *service) UpdateStatus(ctx context.Context, actorID string, id int64, req UpdateStatusRequest) (LeaveResponse, error) {
	log := s.log(ctx)
	log.Debug("update leave status requested",
		zap.Int64("leave_id", id),
		zap.String("actor_id", actorID),
		zap.String("status", req.Status),
	)

	if id <= 0 {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	status, ok := ParseStatus(req.Status)
	if !ok {
		log.Warn("update leave status rejected", zap.String("status", req.Status))
		return LeaveResponse{}, leaveerrors.ErrInvalidStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update leave status begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	previous := l.Status

	if err := qtx.UpdateStatus(ctx, id, status); err != nil {
		log.Error("update leave status persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	l.Status = status

	if err := s.recordEvent(ctx, tx, events.LeaveEvent{
		EventType:      events.EventLeaveStatusChanged,
		LeaveID:        l.ID,
		EmployeeID:     l.EmployeeID,
		StartDate:      formatDate(l.StartDate),
		EndDate:        formatDate(l.EndDate),
		Reason:         l.Reason,
		Status:         status.String(),
		PreviousStatus: previous.String(),
		ReviewedBy:     actorID,
	}); err != nil {
		log.Error("update leave status outbox failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("update leave status commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	log.Info("update leave status success",
		zap.Int64("leave_id", id),
		zap.String("from", previous.String()),
		zap.String("to", status.String()),
	)

	return toLeaveResponse(*l), nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return leaveerrors.ErrInvalidLeaveID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.log(ctx).Error("delete leave begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
		s.log(ctx).Error("delete leave persist failed", zap.Int64("leave_id", id), zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.log(ctx).Error("delete leave commit failed", zap.Error(err))
		return err
	}
	s.log(ctx).Info("delete leave success", zap.Int64("leave_id", id))
	return nil
}

func (s *service) recordEvent(ctx context.Context, tx *sql.Tx, evt events.LeaveEvent) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	evt.RequestID = rid
	evt.OccurredAt = s.now().UTC()

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave_request",
		AggregateID:   strconv.FormatInt(evt.LeaveID, 10),
		EventType:     evt.EventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(dateLayout, strings.TrimSpace(start))
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse(dateLayout, strings.TrimSpace(end))
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return startDate, endDate, nil
}

func formatDate(t time.Time) string {
	return CalendarDate(t).Format(dateLayout)
}

func toLeaveResponse(l LeaveRequest) LeaveResponse {
	return LeaveResponse{
		ID:         l.ID,
		EmployeeID: l.EmployeeID,
		StartDate:  formatDate(l.StartDate),
		EndDate:    formatDate(l.EndDate),
		Reason:     l.Reason,
		Status:     l.Status.String(),
	}
}

func toBalanceResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		EmployeeID: b.EmployeeID,
		Year:       b.Year,
		Allotment:  b.Allotment,
		Used:       b.Used,
		Balance:    b.Remaining,
	}
}
