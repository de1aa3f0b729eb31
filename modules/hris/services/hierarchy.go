package services

import (
	"sort"
	"strings"

	"github.com/iota-uz/hrsync/modules/hris/domain"
)

// Contact is the slice of an employee that approval routing columns need.
type Contact struct {
	Email  string
	Name   string
	Number string
}

func contactOf(e *domain.Employee) Contact {
	if e == nil {
		return Contact{}
	}
	return Contact{
		Email:  strings.TrimSpace(e.Email),
		Name:   strings.TrimSpace(e.DisplayName),
		Number: strings.TrimSpace(e.EmployeeNumber),
	}
}

// Index is the read-only lookup built once per run.
// Duplicate keys keep the first employee in employee-number order.
type Index struct {
	byEmail  map[string]*domain.Employee
	byNumber map[string]*domain.Employee
	sorted   []domain.Employee
}

// BuildIndex copies and sorts employees by employee number, then indexes the copy.
// The caller's slice is never modified.
func BuildIndex(employees []domain.Employee) *Index {
	sorted := SortByNumber(employees)
	idx := &Index{
		byEmail:  make(map[string]*domain.Employee, len(sorted)),
		byNumber: make(map[string]*domain.Employee, len(sorted)),
		sorted:   sorted,
	}
	for i := range sorted {
		e := &sorted[i]
		if key := emailKey(e.Email); key != "" {
			if _, ok := idx.byEmail[key]; !ok {
				idx.byEmail[key] = e
			}
		}
		if num := strings.TrimSpace(e.EmployeeNumber); num != "" {
			if _, ok := idx.byNumber[num]; !ok {
				idx.byNumber[num] = e
			}
		}
	}
	return idx
}

// SortByNumber returns a copy of employees ordered by employee number.
// Ties keep their input order relative to each other only when the ids match too.
func SortByNumber(employees []domain.Employee) []domain.Employee {
	out := append([]domain.Employee(nil), employees...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].EmployeeNumber != out[j].EmployeeNumber {
			return out[i].EmployeeNumber < out[j].EmployeeNumber
		}
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Email < out[j].Email
	})
	return out
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (i *Index) ByEmail(email string) (*domain.Employee, bool) {
	key := emailKey(email)
	if key == "" {
		return nil, false
	}
	e, ok := i.byEmail[key]
	return e, ok
}

func (i *Index) ByNumber(number string) (*domain.Employee, bool) {
	e, ok := i.byNumber[strings.TrimSpace(number)]
	return e, ok
}

// Employees returns the indexed employees in employee-number order.
func (i *Index) Employees() []domain.Employee {
	return i.sorted
}

func (i *Index) Len() int { return len(i.sorted) }

// Resolution is everything the row mappers derive from the index for one employee.
// Empty strings mean the value is absent.
type Resolution struct {
	Approver        Contact
	HasApprover     bool
	L2Manager       Contact
	HasL2Manager    bool
	DefaultApprover Contact

	GroupTitle string
	Zone       string
	BandValue  string
	HasBand    bool
}

// Resolve looks up the approver and second-level manager of e. The default
// approver takes each field from the L2 manager, then the approver, then the
// placeholder, independently per field.
func (i *Index) Resolve(e *domain.Employee, placeholder Contact) Resolution {
	var res Resolution
	if approver, ok := i.ByEmail(e.ReportsToEmail()); ok {
		res.Approver, res.HasApprover = contactOf(approver), true
	}
	if l2, ok := i.ByEmail(e.L2ManagerEmail()); ok {
		res.L2Manager, res.HasL2Manager = contactOf(l2), true
	}
	res.DefaultApprover = Contact{
		Email:  firstNonEmpty(res.L2Manager.Email, res.Approver.Email, placeholder.Email),
		Name:   firstNonEmpty(res.L2Manager.Name, res.Approver.Name, placeholder.Name),
		Number: firstNonEmpty(res.L2Manager.Number, res.Approver.Number, placeholder.Number),
	}
	res.GroupTitle = GroupTitle(e)
	res.Zone = Zone(e)
	res.BandValue, res.HasBand = BandValue(e.BandLabel())
	return res
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
