package booking

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

var (
	carlosID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	brunoID  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

// monday is a fixed Monday used across availability tests.
var monday = time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC)

func mondaySheet(appts ...Appointment) DaySheet {
	return DaySheet{
		Schedules: []Schedule{
			{EmployeeID: carlosID, Weekday: time.Monday, Start: "09:00", End: "18:00", Active: true},
		},
		Appointments: appts,
	}
}

func appt(empID uuid.UUID, start, end string, status AppointmentStatus) Appointment {
	return Appointment{
		ID:         uuid.New(),
		EmployeeID: empID,
		Date:       monday,
		Start:      start,
		End:        end,
		Status:     status,
	}
}

func TestCheckAvailable(t *testing.T) {
	c := NewChecker()
	carlos := Employee{ID: carlosID, Name: "Carlos"}

	res := c.Check(carlos, monday, "10:00", 30, mondaySheet())
	if res.State != StateAvailable {
		t.Fatalf("State = %v, want StateAvailable", res.State)
	}
	if res.Employee.Name != "Carlos" || res.Time != "10:00" || !res.Date.Equal(monday) {
		t.Errorf("result does not echo resolved slot: %+v", res)
	}
}

func TestCheckNotWorking(t *testing.T) {
	c := NewChecker()
	carlos := Employee{ID: carlosID, Name: "Carlos"}
	sunday := monday.AddDate(0, 0, -1)

	res := c.Check(carlos, sunday, "10:00", 30, mondaySheet())
	if res.State != StateNotWorking {
		t.Fatalf("State = %v, want StateNotWorking", res.State)
	}

	// An inactive schedule row counts as not working.
	sheet := DaySheet{Schedules: []Schedule{
		{EmployeeID: carlosID, Weekday: time.Monday, Start: "09:00", End: "18:00", Active: false},
	}}
	res = c.Check(carlos, monday, "10:00", 30, sheet)
	if res.State != StateNotWorking {
		t.Fatalf("inactive schedule: State = %v, want StateNotWorking", res.State)
	}
}

func TestCheckOutOfHours(t *testing.T) {
	c := NewChecker()
	carlos := Employee{ID: carlosID, Name: "Carlos"}

	tests := []struct {
		name  string
		clock string
		dur   int
	}{
		{"before opening", "08:00", 30},
		{"after closing", "18:30", 30},
		{"starts inside but spills past closing", "17:50", 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Check(carlos, monday, tt.clock, tt.dur, mondaySheet())
			if res.State != StateOutOfHours {
				t.Fatalf("State = %v, want StateOutOfHours", res.State)
			}
		})
	}
}

func TestCheckConflictAndAlternatives(t *testing.T) {
	c := NewChecker()
	carlos := Employee{ID: carlosID, Name: "Carlos"}
	sheet := mondaySheet(appt(carlosID, "10:00", "10:30", StatusConfirmed))

	res := c.Check(carlos, monday, "10:15", 30, sheet)
	if res.State != StateConflict {
		t.Fatalf("State = %v, want StateConflict", res.State)
	}
	// 20-minute steps from 09:00: 09:00 and 09:20 fit before the busy block,
	// 09:40 collides and the scan snaps to the appointment end, offering 10:30.
	want := []string{"09:00", "09:20", "10:30"}
	if !reflect.DeepEqual(res.Alternatives, want) {
		t.Errorf("Alternatives = %v, want %v", res.Alternatives, want)
	}
	for _, alt := range res.Alternatives {
		if alt == "10:00" || alt == "10:15" {
			t.Errorf("alternatives include occupied start %s", alt)
		}
	}
}

func TestCancelledAppointmentFreesSlot(t *testing.T) {
	c := NewChecker()
	carlos := Employee{ID: carlosID, Name: "Carlos"}
	sheet := mondaySheet(
		appt(carlosID, "10:00", "10:30", StatusCancelled),
		appt(carlosID, "11:00", "11:30", StatusNoShow),
	)

	for _, clock := range []string{"10:00", "11:00"} {
		if res := c.Check(carlos, monday, clock, 30, sheet); res.State != StateAvailable {
			t.Errorf("Check(%s) = %v, want StateAvailable", clock, res.State)
		}
	}
}

func TestCheckIdempotent(t *testing.T) {
	c := NewChecker()
	carlos := Employee{ID: carlosID, Name: "Carlos"}
	sheet := mondaySheet(appt(carlosID, "10:00", "10:30", StatusPending))

	first := c.Check(carlos, monday, "10:15", 30, sheet)
	second := c.Check(carlos, monday, "10:15", 30, sheet)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated check diverged:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestBreaksSubtractedFromWorkingHours(t *testing.T) {
	c := NewChecker()
	carlos := Employee{ID: carlosID, Name: "Carlos"}
	wd := time.Monday
	sheet := mondaySheet()
	sheet.Breaks = []Break{
		{EmployeeID: carlosID, Kind: BreakRecurring, Title: "almoço", Start: "12:00", End: "13:00", Weekday: &wd, Active: true},
	}

	if res := c.Check(carlos, monday, "12:30", 30, sheet); res.State != StateOutOfHours {
		t.Errorf("slot inside break: State = %v, want StateOutOfHours", res.State)
	}
	// A slot that would spill into the break is also rejected.
	if res := c.Check(carlos, monday, "11:45", 30, sheet); res.State != StateOutOfHours {
		t.Errorf("slot spilling into break: State = %v, want StateOutOfHours", res.State)
	}
	if res := c.Check(carlos, monday, "13:00", 30, sheet); res.State != StateAvailable {
		t.Errorf("slot right after break: State = %v, want StateAvailable", res.State)
	}

	// Inactive breaks are ignored.
	sheet.Breaks[0].Active = false
	if res := c.Check(carlos, monday, "12:30", 30, sheet); res.State != StateAvailable {
		t.Errorf("inactive break: State = %v, want StateAvailable", res.State)
	}
}

func TestMultipleShiftsPerDay(t *testing.T) {
	c := NewChecker()
	carlos := Employee{ID: carlosID, Name: "Carlos"}
	sheet := DaySheet{Schedules: []Schedule{
		{EmployeeID: carlosID, Weekday: time.Monday, Start: "09:00", End: "12:00", Active: true},
		{EmployeeID: carlosID, Weekday: time.Monday, Start: "14:00", End: "18:00", Active: true},
	}}

	if res := c.Check(carlos, monday, "15:00", 30, sheet); res.State != StateAvailable {
		t.Errorf("afternoon shift: State = %v, want StateAvailable", res.State)
	}
	if res := c.Check(carlos, monday, "12:30", 30, sheet); res.State != StateOutOfHours {
		t.Errorf("between shifts: State = %v, want StateOutOfHours", res.State)
	}
}

func TestFirstAvailable(t *testing.T) {
	c := NewChecker()
	carlos := Employee{ID: carlosID, Name: "Carlos"}
	bruno := Employee{ID: brunoID, Name: "Bruno"}

	sheets := map[uuid.UUID]DaySheet{
		carlosID: mondaySheet(appt(carlosID, "10:00", "10:30", StatusPending)),
		brunoID: {
			Schedules: []Schedule{
				{EmployeeID: brunoID, Weekday: time.Monday, Start: "09:00", End: "18:00", Active: true},
			},
		},
	}

	res := c.FirstAvailable([]Employee{carlos, bruno}, monday, "10:00", 30, sheets)
	if res.State != StateAvailable {
		t.Fatalf("State = %v, want StateAvailable", res.State)
	}
	if res.Employee.Name != "Bruno" {
		t.Errorf("Employee = %s, want Bruno (first free in stable order)", res.Employee.Name)
	}

	// Single employee is used unconditionally, even when busy.
	res = c.FirstAvailable([]Employee{carlos}, monday, "10:00", 30, sheets)
	if res.State != StateConflict || res.Employee.Name != "Carlos" {
		t.Errorf("single employee: got %v/%s, want Conflict/Carlos", res.State, res.Employee.Name)
	}
}
