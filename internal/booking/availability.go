package booking

import (
	"time"

	"github.com/google/uuid"
)

// State classifies the outcome of an availability check.
type State int

const (
	// StateNotWorking means the employee has no active schedule row for the
	// requested weekday.
	StateNotWorking State = iota
	// StateOutOfHours means the requested interval falls outside every
	// working interval for that day.
	StateOutOfHours
	// StateConflict means the requested interval overlaps an existing
	// appointment; Alternatives carries up to MaxAlternatives free starts.
	StateConflict
	// StateAvailable means the slot is free.
	StateAvailable
)

// Result is the outcome of a single availability check. On StateAvailable it
// echoes back the resolved employee/date/time so callers can carry them
// forward; on StateConflict it carries alternative start times.
type Result struct {
	State        State
	Employee     Employee
	Date         time.Time
	Time         string
	Alternatives []string
}

// DaySheet is the read-only ground truth for one employee on one date:
// schedule rows for the weekday, breaks, and existing appointments.
type DaySheet struct {
	Schedules    []Schedule
	Breaks       []Break
	Appointments []Appointment
}

// Checker evaluates slot availability against schedules and appointments.
type Checker struct {
	// StepMinutes is the granularity used when scanning for alternative
	// starts after a conflict.
	StepMinutes int
	// MaxAlternatives caps how many alternative slots a Conflict result
	// carries.
	MaxAlternatives int
}

// NewChecker returns a Checker with the production defaults: 20-minute
// candidate steps, at most 3 alternatives.
func NewChecker() *Checker {
	return &Checker{StepMinutes: 20, MaxAlternatives: 3}
}

// Check validates (employee, date, clock, duration) against the day sheet.
// The clock value is "HH:MM"; duration is in minutes.
func (c *Checker) Check(emp Employee, date time.Time, clock string, durationMin int, sheet DaySheet) Result {
	res := Result{Employee: emp, Date: date, Time: clock}

	working := c.workingIntervals(emp, date, sheet)
	if len(working) == 0 {
		res.State = StateNotWorking
		return res
	}

	start, err := ParseClock(clock)
	if err != nil {
		res.State = StateOutOfHours
		return res
	}
	end := start + durationMin

	if !fitsAny(working, start, end) {
		res.State = StateOutOfHours
		return res
	}

	busy := c.busyIntervals(emp, date, sheet)
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			res.State = StateConflict
			res.Alternatives = c.alternatives(working, busy, durationMin)
			return res
		}
	}

	res.State = StateAvailable
	return res
}

// FirstAvailable checks each employee in the given order and returns the
// first Available result. With a single candidate that employee is used
// unconditionally; otherwise the last non-available result is returned when
// nobody has the slot free.
func (c *Checker) FirstAvailable(employees []Employee, date time.Time, clock string, durationMin int, sheets map[uuid.UUID]DaySheet) Result {
	if len(employees) == 1 {
		return c.Check(employees[0], date, clock, durationMin, sheets[employees[0].ID])
	}
	var last Result
	for i, emp := range employees {
		r := c.Check(emp, date, clock, durationMin, sheets[emp.ID])
		if r.State == StateAvailable {
			return r
		}
		if i == 0 || worseThan(last.State, r.State) {
			last = r
		}
	}
	return last
}

// worseThan keeps the most informative failure: a conflict with alternatives
// beats a bare not-working answer when summarizing across employees.
func worseThan(prev, next State) bool {
	return next > prev
}

// workingIntervals resolves the employee's net working hours for the date:
// active schedule rows for the weekday minus applicable active breaks.
func (c *Checker) workingIntervals(emp Employee, date time.Time, sheet DaySheet) []interval {
	var ivs []interval
	for _, s := range sheet.Schedules {
		if !s.Active || s.EmployeeID != emp.ID || s.Weekday != date.Weekday() {
			continue
		}
		start, err := ParseClock(s.Start)
		if err != nil {
			continue
		}
		end, err := ParseClock(s.End)
		if err != nil || end <= start {
			continue
		}
		ivs = append(ivs, interval{Start: start, End: end})
	}
	if len(ivs) == 0 {
		return nil
	}

	for _, b := range sheet.Breaks {
		if b.EmployeeID != emp.ID || !b.AppliesOn(date) {
			continue
		}
		bs, err := ParseClock(b.Start)
		if err != nil {
			continue
		}
		be, err := ParseClock(b.End)
		if err != nil {
			continue
		}
		ivs = subtract(ivs, interval{Start: bs, End: be})
	}

	sortIntervals(ivs)
	return ivs
}

// busyIntervals collects the intervals occupied by existing appointments that
// still block their slot (cancelled and no-show rows free the interval).
func (c *Checker) busyIntervals(emp Employee, date time.Time, sheet DaySheet) []interval {
	var busy []interval
	for _, a := range sheet.Appointments {
		if a.EmployeeID != emp.ID || !sameDay(a.Date, date) || !a.Status.BlocksSlot() {
			continue
		}
		s, err := ParseClock(a.Start)
		if err != nil {
			continue
		}
		e, err := ParseClock(a.End)
		if err != nil {
			continue
		}
		busy = append(busy, interval{Start: s, End: e})
	}
	return busy
}

// alternatives scans candidate starts across the working intervals at
// StepMinutes granularity, keeping starts whose [start, start+duration) does
// not overlap any busy interval, in chronological order.
func (c *Checker) alternatives(working, busy []interval, durationMin int) []string {
	step := c.StepMinutes
	if step <= 0 {
		step = 20
	}
	max := c.MaxAlternatives
	if max <= 0 {
		max = 3
	}

	var out []string
	for _, w := range working {
		start := w.Start
		for start+durationMin <= w.End {
			end := start + durationMin
			blockedUntil := -1
			for _, b := range busy {
				if Overlaps(start, end, b.Start, b.End) && b.End > blockedUntil {
					blockedUntil = b.End
				}
			}
			if blockedUntil >= 0 {
				// Snap to the end of the occupying appointment so the slot
				// right after it is offered even off the step grid.
				start = blockedUntil
				continue
			}
			out = append(out, FormatClock(start))
			if len(out) >= max {
				return out
			}
			start += step
		}
	}
	return out
}

func fitsAny(working []interval, start, end int) bool {
	for _, w := range working {
		if start >= w.Start && end <= w.End {
			return true
		}
	}
	return false
}
