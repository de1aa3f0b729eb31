package services

import (
	"sort"
	"strings"

	"github.com/iota-uz/hrsync/modules/hris/domain"
)

// ExportSettings carries the business constants of every export.
type ExportSettings struct {
	ActiveStatus    int
	ExcludeNumbers  []string
	EmailDomains    []string
	DirectoryGroups []string
	GroupIdentifier string
	// Placeholder substitutes for a missing approver in the directory export.
	Placeholder Contact

	RosterTitles        []string
	RosterNumbers       []string
	RosterRequireActive bool

	AttendanceColumns int
	SkipStatuses      []string
}

// Filter returns the inclusion predicate of kind.
func (s ExportSettings) Filter(kind Kind) EmployeeFilter {
	f := EmployeeFilter{
		ActiveStatus:   s.ActiveStatus,
		RequireActive:  true,
		ExcludeNumbers: s.ExcludeNumbers,
	}
	switch kind {
	case KindDirectory:
		f.RequireBand = true
		f.RequireEmail = true
		f.EmailDomains = s.EmailDomains
		f.Groups = s.DirectoryGroups
	case KindRoster:
		f.RequireActive = s.RosterRequireActive
		f.SecondaryTitles = s.RosterTitles
		f.IncludeNumbers = s.RosterNumbers
		// An empty allowlist and title set would admit everyone.
		if len(f.SecondaryTitles) == 0 && len(f.IncludeNumbers) == 0 {
			f.SecondaryTitles = []string{"center manager", "cluster manager"}
		}
	}
	return f
}

// EmployeeExport maps employees to rows of one schema.
type EmployeeExport struct {
	Schema      *Schema[EmployeeView]
	Filter      EmployeeFilter
	Placeholder Contact
}

// NewEmployeeExport builds the directory or roster export.
func NewEmployeeExport(kind Kind, s ExportSettings) *EmployeeExport {
	if kind == KindRoster {
		return &EmployeeExport{Schema: RosterSchema(s), Filter: s.Filter(kind)}
	}
	return &EmployeeExport{Schema: DirectorySchema(s), Filter: s.Filter(KindDirectory), Placeholder: s.Placeholder}
}

// Transform renders e, or reports false when the filter skips it.
func (x *EmployeeExport) Transform(e *domain.Employee, idx *Index) (domain.OutputRow, bool) {
	if !x.Filter.Allows(e) {
		return nil, false
	}
	return x.Schema.Row(EmployeeView{Employee: e, Resolution: idx.Resolve(e, x.Placeholder)}), true
}

// Rows renders every indexed employee the filter allows, in employee-number order.
func (x *EmployeeExport) Rows(idx *Index) ([]domain.OutputRow, int) {
	employees := idx.Employees()
	rows := make([]domain.OutputRow, 0, len(employees))
	skipped := 0
	for i := range employees {
		row, ok := x.Transform(&employees[i], idx)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped
}

// AttendanceExport maps attendance days to rows.
type AttendanceExport struct {
	Schema       *Schema[AttendanceView]
	SkipStatuses []string
}

func NewAttendanceExport(s ExportSettings) *AttendanceExport {
	skip := s.SkipStatuses
	if len(skip) == 0 {
		skip = []string{"pending"}
	}
	return &AttendanceExport{Schema: AttendanceSchema(s.AttendanceColumns), SkipStatuses: skip}
}

func (x *AttendanceExport) skipped(r *domain.AttendanceRecord) bool {
	return containsFold(x.SkipStatuses, r.Status.String(), true)
}

// Transform renders records ordered by employee number and date. Records in
// a skipped status are dropped; the rest lacking a clock-in or clock-out are
// still exported and also reported as missing entries.
func (x *AttendanceExport) Transform(records []domain.AttendanceRecord, idx *Index) ([]domain.OutputRow, []domain.MissingEntry) {
	ordered := append([]domain.AttendanceRecord(nil), records...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].EmployeeNumber != ordered[j].EmployeeNumber {
			return ordered[i].EmployeeNumber < ordered[j].EmployeeNumber
		}
		return ordered[i].AttendanceDate < ordered[j].AttendanceDate
	})

	var (
		rows    []domain.OutputRow
		missing []domain.MissingEntry
	)
	for i := range ordered {
		r := &ordered[i]
		if x.skipped(r) {
			continue
		}
		if strings.TrimSpace(r.FirstIn()) == "" || strings.TrimSpace(r.LastOut()) == "" {
			missing = append(missing, domain.MissingEntry{
				EmployeeNumber: r.EmployeeNumber,
				Date:           r.AttendanceDate,
				Status:         r.Status.String(),
			})
		}
		view := AttendanceView{Record: r}
		if e, ok := idx.ByNumber(r.EmployeeNumber); ok {
			view.Employee = e
		}
		rows = append(rows, x.Schema.Row(view))
	}
	return rows, missing
}

// MissingEntryTable lays missing entries out for the side file.
func MissingEntryTable(entries []domain.MissingEntry) *domain.Table {
	t := &domain.Table{Header: []string{"employeeNumber", "date", "status"}}
	for _, m := range entries {
		t.Rows = append(t.Rows, []string{m.EmployeeNumber, m.Date, m.Status})
	}
	return t
}
