package booking

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle state of a booked slot.
type AppointmentStatus string

const (
	StatusPending       AppointmentStatus = "pending"
	StatusConfirmed     AppointmentStatus = "confirmed"
	StatusCompleted     AppointmentStatus = "completed"
	StatusCancelled     AppointmentStatus = "cancelled"
	StatusNoShow        AppointmentStatus = "no_show"
	StatusQueueReserved AppointmentStatus = "queue_reserved"
)

// BlocksSlot reports whether an appointment in this status still occupies its
// interval. Cancelled and no-show appointments free the slot.
func (s AppointmentStatus) BlocksSlot() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// PaymentStatus tracks the payment side of an appointment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Employee is a barber that can be booked.
type Employee struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Service is a bookable service; DurationMinutes determines how wide an
// interval an appointment occupies.
type Service struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PriceCents      int       `json:"price_cents"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Schedule is one contiguous working interval for an employee on a recurring
// weekday. An employee may have several rows per weekday (split shifts).
type Schedule struct {
	EmployeeID uuid.UUID    `json:"employee_id"`
	Weekday    time.Weekday `json:"weekday"`
	Start      string       `json:"start"` // "HH:MM"
	End        string       `json:"end"`
	Active     bool         `json:"active"`
}

// BreakKind distinguishes recurring weekday breaks from one-off date breaks.
type BreakKind string

const (
	BreakRecurring BreakKind = "recurring"
	BreakOneDate   BreakKind = "date"
)

// Break is a sub-interval excluded from an employee's working hours.
type Break struct {
	EmployeeID uuid.UUID     `json:"employee_id"`
	Kind       BreakKind     `json:"kind"`
	Title      string        `json:"title"`
	Start      string        `json:"start"`
	End        string        `json:"end"`
	Weekday    *time.Weekday `json:"weekday,omitempty"` // recurring breaks
	Date       *time.Time    `json:"date,omitempty"`    // one-off breaks
	Active     bool          `json:"active"`
}

// AppliesOn reports whether the break is in effect on the given calendar day.
func (b Break) AppliesOn(date time.Time) bool {
	if !b.Active {
		return false
	}
	switch b.Kind {
	case BreakRecurring:
		return b.Weekday != nil && *b.Weekday == date.Weekday()
	case BreakOneDate:
		return b.Date != nil && sameDay(*b.Date, date)
	}
	return false
}

// Appointment is the unit of booking.
type Appointment struct {
	ID              uuid.UUID         `json:"id"`
	BarbershopID    uuid.UUID         `json:"barbershop_id"`
	EmployeeID      uuid.UUID         `json:"employee_id"`
	ServiceID       uuid.UUID         `json:"service_id"`
	ClientName      string            `json:"client_name"`
	ClientPhone     string            `json:"client_phone"`
	ClientProfileID *uuid.UUID        `json:"client_profile_id,omitempty"`
	Date            time.Time         `json:"date"`
	Start           string            `json:"start"`
	End             string            `json:"end"`
	Status          AppointmentStatus `json:"status"`
	PaymentStatus   PaymentStatus     `json:"payment_status"`
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
