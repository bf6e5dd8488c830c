package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/barbearia-labs/barber-ai-platform/internal/booking"
	"github.com/barbearia-labs/barber-ai-platform/pkg/logging"
)

var appointmentsTracer = otel.Tracer("barber.internal.appointments")

// ErrSlotTaken means the requested interval was booked between the earlier
// availability read and the commit write.
var ErrSlotTaken = errors.New("appointments: slot taken")

// lister is the repository capability Commit depends on; split out so tests
// can drive the race re-check without a database.
type lister interface {
	ListBlockingForDay(ctx context.Context, employeeID uuid.UUID, date time.Time) ([]booking.Appointment, error)
	Insert(ctx context.Context, a booking.Appointment) error
}

// Service commits appointments after a final conflict re-check.
type Service struct {
	repo   lister
	logger *logging.Logger
}

// NewService constructs an appointments service.
func NewService(repo *Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func newServiceWithLister(repo lister, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// CommitRequest carries everything needed to insert one appointment.
type CommitRequest struct {
	BarbershopID    uuid.UUID
	EmployeeID      uuid.UUID
	ServiceID       uuid.UUID
	ClientName      string
	ClientPhone     string
	ClientProfileID *uuid.UUID
	Date            time.Time
	Start           string // "HH:MM"
	DurationMinutes int
}

// Commit inserts the appointment iff a re-check at commit time finds zero
// conflicting non-cancelled appointments for (employee, date, time). The
// re-check exists to close the window between the availability checker's
// earlier read and this write; it shrinks the race, it does not eliminate it.
// On conflict it returns ErrSlotTaken and inserts nothing.
func (s *Service) Commit(ctx context.Context, req CommitRequest) (*booking.Appointment, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.commit")
	defer span.End()
	span.SetAttributes(
		attribute.String("barber.shop_id", req.BarbershopID.String()),
		attribute.String("barber.employee_id", req.EmployeeID.String()),
		attribute.String("barber.start", req.Start),
	)

	start, err := booking.ParseClock(req.Start)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	end := start + req.DurationMinutes

	existing, err := s.repo.ListBlockingForDay(ctx, req.EmployeeID, req.Date)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	for _, a := range existing {
		if !a.Status.BlocksSlot() {
			continue
		}
		bs, err := booking.ParseClock(a.Start)
		if err != nil {
			continue
		}
		be, err := booking.ParseClock(a.End)
		if err != nil {
			continue
		}
		if booking.Overlaps(start, end, bs, be) {
			s.logger.Info("commit lost race for slot",
				"employee_id", req.EmployeeID,
				"date", req.Date.Format("2006-01-02"),
				"start", req.Start,
			)
			return nil, ErrSlotTaken
		}
	}

	appt := booking.Appointment{
		ID:              uuid.New(),
		BarbershopID:    req.BarbershopID,
		EmployeeID:      req.EmployeeID,
		ServiceID:       req.ServiceID,
		ClientName:      req.ClientName,
		ClientPhone:     req.ClientPhone,
		ClientProfileID: req.ClientProfileID,
		Date:            req.Date,
		Start:           req.Start,
		End:             booking.FormatClock(end),
		Status:          booking.StatusPending,
		PaymentStatus:   booking.PaymentPending,
	}
	if err := s.repo.Insert(ctx, appt); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("appointment committed",
		"appointment_id", appt.ID,
		"employee_id", appt.EmployeeID,
		"date", appt.Date.Format("2006-01-02"),
		"start", appt.Start,
	)
	return &appt, nil
}
