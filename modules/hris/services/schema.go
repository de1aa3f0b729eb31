package services

import (
	"fmt"
	"strings"

	"github.com/iota-uz/hrsync/modules/hris/domain"
)

type Kind string

const (
	KindDirectory  Kind = "directory"
	KindRoster     Kind = "roster"
	KindAttendance Kind = "attendance"
)

func ParseKind(v string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(v))); k {
	case KindDirectory, KindRoster, KindAttendance:
		return k, nil
	default:
		return "", fmt.Errorf("unknown export %q (expected directory|roster|attendance)", v)
	}
}

// Column is one output position. Value may be nil for constant columns;
// an empty Value result falls back to Default.
type Column[T any] struct {
	Name    string
	Default string
	Value   func(T) string
}

// Schema is the fixed-width layout of one export. Every column's default is
// declared here and nowhere else.
type Schema[T any] struct {
	Name    string
	Columns []Column[T]
}

func (s *Schema[T]) Width() int { return len(s.Columns) }

func (s *Schema[T]) Header() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Row renders item into exactly Width() cells.
func (s *Schema[T]) Row(item T) domain.OutputRow {
	row := make(domain.OutputRow, len(s.Columns))
	for i, c := range s.Columns {
		var v string
		if c.Value != nil {
			v = c.Value(item)
		}
		if v == "" {
			v = c.Default
		}
		row[i] = v
	}
	return row
}

// EmployeeView is an employee together with its resolved hierarchy.
type EmployeeView struct {
	Employee *domain.Employee
	Resolution
}

// AttendanceView is one attendance day and, when known, its owning employee.
type AttendanceView struct {
	Record   *domain.AttendanceRecord
	Employee *domain.Employee
}

func (v AttendanceView) employee() *domain.Employee {
	if v.Employee == nil {
		return &domain.Employee{}
	}
	return v.Employee
}

func gender(v EmployeeView) string {
	g, _, _ := Gender(v.Employee.Gender)
	return g
}

func prefix(v EmployeeView) string {
	_, p, _ := Gender(v.Employee.Gender)
	return p
}

// DirectorySchema is the 27-column identity provisioning layout.
func DirectorySchema(s ExportSettings) *Schema[EmployeeView] {
	return &Schema[EmployeeView]{
		Name: string(KindDirectory),
		Columns: []Column[EmployeeView]{
			{Name: "Action"},
			{Name: "Email", Value: func(v EmployeeView) string { return v.Employee.Email }},
			{Name: "EmployeeID", Value: func(v EmployeeView) string { return v.Employee.EmployeeNumber }},
			{Name: "Prefix", Value: prefix},
			{Name: "FirstName", Value: func(v EmployeeView) string { return v.Employee.FirstName }},
			{Name: "MiddleName", Value: func(v EmployeeView) string { return v.Employee.MiddleName }},
			{Name: "LastName", Value: func(v EmployeeView) string { return v.Employee.LastName }},
			{Name: "Suffix"},
			{Name: "Gender", Value: gender},
			{Name: "Title", Value: func(v EmployeeView) string { return v.Employee.JobTitleText() }},
			{Name: "ApproverEmail", Value: func(v EmployeeView) string { return v.Employee.ReportsToEmail() }},
			{Name: "ApproverEmployeeID", Value: func(v EmployeeView) string { return v.Approver.Number }},
			{Name: "Reporting1Data", Value: func(v EmployeeView) string { return v.Employee.EmployeeNumber }},
			{Name: "Reporting2Data", Value: func(v EmployeeView) string { return v.Employee.JobTitleText() }},
			{Name: "Reporting3Data", Default: "Ops"},
			{Name: "Reporting4Data", Value: func(v EmployeeView) string { return v.GroupTitle }},
			{Name: "Reporting5Data"},
			{Name: "Reporting6Data", Value: func(v EmployeeView) string { return v.BandValue }},
			{Name: "GroupIdentifier", Default: s.GroupIdentifier},
			{Name: "Email2Type", Default: "P"},
			{Name: "Email2", Default: s.Placeholder.Email, Value: func(v EmployeeView) string { return v.Employee.Email }},
			{Name: "ApproverName", Default: s.Placeholder.Name, Value: func(v EmployeeView) string { return v.Approver.Name }},
			{Name: "DefaultApprover1Email", Value: func(v EmployeeView) string { return v.DefaultApprover.Email }},
			{Name: "DefaultApprover1Name", Value: func(v EmployeeView) string { return v.DefaultApprover.Name }},
			{Name: "DefaultApprover1EmployeeID", Value: func(v EmployeeView) string { return v.DefaultApprover.Number }},
			{Name: "CellPhone", Value: func(v EmployeeView) string { return v.Employee.MobilePhone }},
			{Name: "OnlineEnabled", Default: "TRUE"},
		},
	}
}

// RosterSchema is the 16-column center and cluster manager roster.
func RosterSchema(s ExportSettings) *Schema[EmployeeView] {
	return &Schema[EmployeeView]{
		Name: string(KindRoster),
		Columns: []Column[EmployeeView]{
			{Name: "employeeNumber", Value: func(v EmployeeView) string { return v.Employee.EmployeeNumber }},
			{Name: "firstName", Value: func(v EmployeeView) string { return v.Employee.FirstName }},
			{Name: "middleName", Value: func(v EmployeeView) string { return v.Employee.MiddleName }},
			{Name: "lastName", Value: func(v EmployeeView) string { return v.Employee.LastName }},
			{Name: "gender", Value: gender},
			{Name: "active", Value: func(v EmployeeView) string { return formatBool(v.Employee.HasStatus(s.ActiveStatus)) }},
			{Name: "mobilePhone", Value: func(v EmployeeView) string { return v.Employee.MobilePhone }},
			{Name: "zone", Value: func(v EmployeeView) string { return v.Zone }},
			{Name: "group", Value: func(v EmployeeView) string { return v.GroupTitle }},
			{Name: "email", Value: func(v EmployeeView) string { return v.Employee.Email }},
			{Name: "jobTitle", Value: func(v EmployeeView) string { return v.Employee.JobTitleText() }},
			{Name: "secondaryJobTitle", Value: func(v EmployeeView) string { return v.Employee.SecondaryJobTitle.String() }},
			{Name: "reportsTo", Value: func(v EmployeeView) string { return v.Employee.ReportsToEmail() }},
			{Name: "approverEmployeeNumber", Value: func(v EmployeeView) string { return v.Approver.Number }},
			{Name: "defaultApproverEmail", Value: func(v EmployeeView) string { return v.DefaultApprover.Email }},
			{Name: "defaultApproverEmployeeNumber", Value: func(v EmployeeView) string { return v.DefaultApprover.Number }},
		},
	}
}

// AttendanceSchema is the 17-column attendance layout, or 19 columns with
// the record status and display name appended.
func AttendanceSchema(columns int) *Schema[AttendanceView] {
	cols := []Column[AttendanceView]{
		{Name: "id", Value: func(v AttendanceView) string { return v.Record.ID }},
		{Name: "employeeNumber", Value: func(v AttendanceView) string { return v.Record.EmployeeNumber }},
		{Name: "group", Value: func(v AttendanceView) string { return GroupTitle(v.employee()) }},
		{Name: "jobTitle", Value: func(v AttendanceView) string { return v.employee().JobTitleText() }},
		{Name: "attendanceDate", Value: func(v AttendanceView) string { return v.Record.AttendanceDate }},
		{Name: "shiftStartTime", Value: func(v AttendanceView) string { return v.Record.ShiftStartTime }},
		{Name: "shiftEndTime", Value: func(v AttendanceView) string { return v.Record.ShiftEndTime }},
		{Name: "firstInOfTheDay", Value: func(v AttendanceView) string { return FormatPunch(v.Record.FirstIn()) }},
		{Name: "lastOutOfTheDay", Value: func(v AttendanceView) string { return FormatPunch(v.Record.LastOut()) }},
		{Name: "dayType", Value: func(v AttendanceView) string { return v.Record.DayType.String() }},
		{Name: "shiftDuration", Value: func(v AttendanceView) string { return formatDecimal(v.Record.ShiftDuration) }},
		{Name: "shiftEffectiveDuration", Value: func(v AttendanceView) string { return formatDecimal(v.Record.ShiftEffectiveDuration) }},
		{Name: "totalGrossHours", Value: func(v AttendanceView) string { return formatDecimal(v.Record.TotalGrossHours) }},
		{Name: "totalEffectiveHours", Value: func(v AttendanceView) string { return formatDecimal(v.Record.TotalEffectiveHours) }},
		{Name: "totalBreakDuration", Value: func(v AttendanceView) string { return formatDecimal(v.Record.TotalBreakDuration) }},
		{Name: "totalEffectiveOvertimeDuration", Value: func(v AttendanceView) string { return formatDecimal(v.Record.TotalEffectiveOvertimeDuration) }},
		{Name: "totalGrossOvertimeDuration", Value: func(v AttendanceView) string { return formatDecimal(v.Record.TotalGrossOvertimeDuration) }},
	}
	if columns == 19 {
		cols = append(cols,
			Column[AttendanceView]{Name: "AttendanceStatus", Value: func(v AttendanceView) string { return v.Record.Status.String() }},
			Column[AttendanceView]{Name: "DisplayName", Value: func(v AttendanceView) string { return v.employee().DisplayName }},
		)
	}
	return &Schema[AttendanceView]{Name: string(KindAttendance), Columns: cols}
}
