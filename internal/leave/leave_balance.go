package leave

import (
	"math"
	"time"
)

// DefaultAnnualAllotment is the number of leave days granted per calendar year.
const DefaultAnnualAllotment = 28

// Balance is derived on demand and never stored.
type Balance struct {
	EmployeeID int64
	Year       int
	Allotment  int
	Used       int
	Remaining  int
}

// CalendarDate drops the clock and zone, keeping the date as read.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// YearBounds returns Jan 1 and Dec 31 of the year containing now.
func YearBounds(now time.Time) (time.Time, time.Time) {
	y := now.Year()
	return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// InclusiveDays counts the calendar days between start and end, both ends
// included. Reversed ranges count by their absolute span.
func InclusiveDays(start, end time.Time) int {
	diff := CalendarDate(end).Sub(CalendarDate(start))
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours()/24)) + 1
}

// CountsTowardBalance reports whether l consumes allotment for the year
// [yearStart, yearEnd]. Both endpoints must fall inside the year, so a request
// crossing Dec 31 is not counted in either year.
func CountsTowardBalance(l LeaveRequest, yearStart, yearEnd time.Time) bool {
	if l.Status != StatusApproved {
		return false
	}
	start, end := CalendarDate(l.StartDate), CalendarDate(l.EndDate)
	return !start.Before(yearStart) && !end.After(yearEnd)
}

func RemainingBalance(allotment, used int) int {
	return max(allotment-used, 0)
}

// ComputeBalance applies the ledger rules to the requests of one employee.
func ComputeBalance(employeeID int64, allotment int, now time.Time, requests []LeaveRequest) Balance {
	yearStart, yearEnd := YearBounds(now)

	used := 0
	for _, l := range requests {
		if l.EmployeeID != employeeID || !CountsTowardBalance(l, yearStart, yearEnd) {
			continue
		}
		used += InclusiveDays(l.StartDate, l.EndDate)
	}

	return Balance{
		EmployeeID: employeeID,
		Year:       yearStart.Year(),
		Allotment:  allotment,
		Used:       used,
		Remaining:  RemainingBalance(allotment, used),
	}
}
