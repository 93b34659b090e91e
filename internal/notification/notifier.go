// Package notification tells employees about changes to their leave requests.
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ali-shok/employee-management/internal/bootstrap"
	"github.com/Ali-shok/employee-management/internal/employee"
	employeeerrors "github.com/Ali-shok/employee-management/internal/employee/errors"
	"github.com/Ali-shok/employee-management/internal/events"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type EmployeeFinder interface {
	FindByID(ctx context.Context, id int64) (*employee.Employee, error)
}

// Message is one notification addressed to an employee.
type Message struct {
	To      string
	Name    string
	Subject string
	Body    string
	Event   events.LeaveEvent
}

// Sender delivers a message. Delivery channels (mail, chat) live outside this
// service; AuditSender only records what would be sent.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Notifier struct {
	employees EmployeeFinder
	sender    Sender
	title     cases.Caser
	logger    *zap.Logger
}

func NewNotifier(employees EmployeeFinder, sender Sender, logger ...*zap.Logger) *Notifier {
	l := zap.L().Named("notification.notifier")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.notifier")
	}
	return &Notifier{
		employees: employees,
		sender:    sender,
		title:     cases.Title(language.English),
		logger:    l,
	}
}

// HandleLeaveEvent satisfies consumer.LeaveEventHandler. Events for employees
// that no longer exist are dropped; lookup and delivery errors are returned
// so the message is redelivered.
func (n *Notifier) HandleLeaveEvent(ctx context.Context, evt events.LeaveEvent) error {
	emp, err := n.employees.FindByID(ctx, evt.EmployeeID)
	if errors.Is(err, employeeerrors.ErrEmployeeNotFound) {
		n.logger.Warn("notification skipped, employee gone",
			zap.Int64("employee_id", evt.EmployeeID),
			zap.Int64("leave_id", evt.LeaveID),
		)
		return nil
	}
	if err != nil {
		return err
	}

	msg, ok := n.compose(emp, evt)
	if !ok {
		n.logger.Debug("notification ignored", zap.String("event_type", evt.EventType))
		return nil
	}

	return n.sender.Send(ctx, msg)
}

func (n *Notifier) compose(emp *employee.Employee, evt events.LeaveEvent) (Message, bool) {
	msg := Message{To: emp.Email, Name: emp.FullName(), Event: evt}

	switch evt.EventType {
	case events.EventLeaveSubmitted:
		msg.Subject = fmt.Sprintf("Leave request #%d received", evt.LeaveID)
		msg.Body = fmt.Sprintf("Hi %s, your leave from %s to %s is waiting for review.",
			emp.FirstName, evt.StartDate, evt.EndDate)
	case events.EventLeaveStatusChanged:
		msg.Subject = fmt.Sprintf("Leave request #%d %s", evt.LeaveID, n.title.String(evt.Status))
		msg.Body = fmt.Sprintf("Hi %s, your leave from %s to %s changed from %s to %s.",
			emp.FirstName, evt.StartDate, evt.EndDate, evt.PreviousStatus, evt.Status)
	default:
		return Message{}, false
	}
	return msg, true
}

// AuditSender writes each notification to the audit log.
type AuditSender struct {
	audit bootstrap.AuditLogger
}

func NewAuditSender(audit bootstrap.AuditLogger) *AuditSender {
	return &AuditSender{audit: audit}
}

func (s *AuditSender) Send(ctx context.Context, msg Message) error {
	s.audit.Log(ctx, bootstrap.AuditLog{
		Action:  "LEAVE_NOTIFICATION",
		Message: msg.Subject,
		Meta: map[string]any{
			"to":          msg.To,
			"name":        msg.Name,
			"body":        msg.Body,
			"event_type":  msg.Event.EventType,
			"leave_id":    msg.Event.LeaveID,
			"reviewed_by": msg.Event.ReviewedBy,
			"request_id":  msg.Event.RequestID,
		},
	})
	return nil
}
