package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

type Punch struct {
	Timestamp string `json:"timestamp"`
}

type AttendanceRecord struct {
	ID                             string              `json:"id"`
	EmployeeNumber                 string              `json:"employeeNumber"`
	AttendanceDate                 string              `json:"attendanceDate"`
	ShiftStartTime                 string              `json:"shiftStartTime"`
	ShiftEndTime                   string              `json:"shiftEndTime"`
	FirstInOfTheDay                *Punch              `json:"firstInOfTheDay"`
	LastOutOfTheDay                *Punch              `json:"lastOutOfTheDay"`
	DayType                        Text                `json:"dayType"`
	ShiftDuration                  decimal.NullDecimal `json:"shiftDuration"`
	ShiftEffectiveDuration         decimal.NullDecimal `json:"shiftEffectiveDuration"`
	TotalGrossHours                decimal.NullDecimal `json:"totalGrossHours"`
	TotalEffectiveHours            decimal.NullDecimal `json:"totalEffectiveHours"`
	TotalBreakDuration             decimal.NullDecimal `json:"totalBreakDuration"`
	TotalEffectiveOvertimeDuration decimal.NullDecimal `json:"totalEffectiveOvertimeDuration"`
	TotalGrossOvertimeDuration     decimal.NullDecimal `json:"totalGrossOvertimeDuration"`
	Status                         Text                `json:"status"`
}

func (r *AttendanceRecord) FirstIn() string {
	if r.FirstInOfTheDay == nil {
		return ""
	}
	return r.FirstInOfTheDay.Timestamp
}

func (r *AttendanceRecord) LastOut() string {
	if r.LastOutOfTheDay == nil {
		return ""
	}
	return r.LastOutOfTheDay.Timestamp
}

// MissingEntry marks an attendance day without a clock-in or clock-out.
type MissingEntry struct {
	EmployeeNumber string
	Date           string
	Status         string
}

// FetchDiagnostic records a per-employee attendance fetch that was skipped.
type FetchDiagnostic struct {
	EmployeeID     string
	EmployeeNumber string
	Err            error
}

type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("date range requires both from and to")
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("date range end %s is before start %s", r.To.Format(DateLayout), r.From.Format(DateLayout))
	}
	return nil
}

func (r DateRange) FromText() string { return r.From.Format(DateLayout) }
func (r DateRange) ToText() string   { return r.To.Format(DateLayout) }

// ParseDateRange reads YYYY-MM-DD bounds in loc. An empty bound defaults to
// the calendar day before now.
func ParseDateRange(from, to string, now time.Time, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := now.In(loc).Date()
	yesterday := time.Date(y, m, d-1, 0, 0, 0, 0, loc)

	parse := func(name, v string) (time.Time, error) {
		if v == "" {
			return yesterday, nil
		}
		t, err := time.ParseInLocation(DateLayout, v, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD, got %q", name, v)
		}
		return t, nil
	}
	f, err := parse("from", from)
	if err != nil {
		return DateRange{}, err
	}
	t, err := parse("to", to)
	if err != nil {
		return DateRange{}, err
	}
	r := DateRange{From: f, To: t}
	return r, r.Validate()
}
