// Package timeutil converts the venue-local calendar dates manipulated by the
// stock form into UTC instants. The timezone is implied by the venue's
// department code.
package timeutil

import (
	"fmt"
	"time"
)

const (
	DayLayout  = "2006-01-02"
	HourLayout = "15:04"
)

const cayenneDepartmentCode = "973"

var (
	parisLocation   *time.Location
	cayenneLocation *time.Location
)

func init() {
	var err error

	parisLocation, err = time.LoadLocation("Europe/Paris")
	if err != nil {
		panic(err)
	}

	cayenneLocation, err = time.LoadLocation("America/Cayenne")
	if err != nil {
		panic(err)
	}
}

// LocationForDepartment maps a French department code to its timezone.
func LocationForDepartment(departmentCode string) *time.Location {
	if departmentCode == cayenneDepartmentCode {
		return cayenneLocation
	}
	return parisLocation
}

// EndOfLocalDayUTC returns the UTC instant of 23:59:59.000 on day in the
// department's timezone. An empty day yields nil.
func EndOfLocalDayUTC(day string, departmentCode string) (*time.Time, error) {
	if day == "" {
		return nil, nil
	}

	loc := LocationForDepartment(departmentCode)

	d, err := time.ParseInLocation(DayLayout, day, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", day, err)
	}

	t := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, loc).UTC()
	return &t, nil
}

// ExactUTC composes a local day and clock time into a UTC instant. Empty day
// or hour yields nil.
func ExactUTC(day string, hour string, departmentCode string) (*time.Time, error) {
	if day == "" || hour == "" {
		return nil, nil
	}

	loc := LocationForDepartment(departmentCode)

	d, err := time.ParseInLocation(DayLayout, day, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", day, err)
	}
	h, err := time.ParseInLocation(HourLayout, hour, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid hour %q: %w", hour, err)
	}

	t := time.Date(d.Year(), d.Month(), d.Day(), h.Hour(), h.Minute(), 0, 0, loc).UTC()
	return &t, nil
}

// BookingLimitUTC converts a booking-limit day to its UTC instant. A limit on
// the beginning's own local day uses the exact beginning instant so the limit
// can never land after the start; any earlier day uses its local end of day.
func BookingLimitUTC(day string, beginning *time.Time, departmentCode string) (*time.Time, error) {
	if day == "" {
		return nil, nil
	}

	if beginning != nil && LocalDay(*beginning, departmentCode) == day {
		t := *beginning
		return &t, nil
	}

	return EndOfLocalDayUTC(day, departmentCode)
}

// LocalDay renders an instant as a calendar date in the department's timezone.
func LocalDay(t time.Time, departmentCode string) string {
	return t.In(LocationForDepartment(departmentCode)).Format(DayLayout)
}

// LocalHour renders an instant's clock time in the department's timezone.
func LocalHour(t time.Time, departmentCode string) string {
	return t.In(LocationForDepartment(departmentCode)).Format(HourLayout)
}
