package services

import (
	"strings"

	"github.com/iota-uz/hrsync/modules/hris/domain"
)

// EmployeeFilter is the inclusion predicate of one export. Zero-valued
// optional fields disable their check.
type EmployeeFilter struct {
	ActiveStatus   int
	RequireActive  bool
	ExcludeNumbers []string

	// Directory checks.
	RequireBand  bool
	RequireEmail bool
	EmailDomains []string
	Groups       []string

	// Roster checks: secondary job title in the set, or employee number in the allowlist.
	SecondaryTitles []string
	IncludeNumbers  []string
}

func (f EmployeeFilter) Allows(e *domain.Employee) bool {
	if f.RequireActive && !e.HasStatus(f.ActiveStatus) {
		return false
	}
	if containsFold(f.ExcludeNumbers, e.EmployeeNumber, false) {
		return false
	}
	if f.RequireBand && (e.BandInfo == nil || strings.TrimSpace(e.BandInfo.Title) == "") {
		return false
	}
	if f.RequireEmail && strings.TrimSpace(e.Email) == "" {
		return false
	}
	if len(f.EmailDomains) > 0 && !hasDomain(e.Email, f.EmailDomains) {
		return false
	}
	if len(f.Groups) > 0 && !inGroups(e, f.Groups) {
		return false
	}
	if len(f.SecondaryTitles) > 0 || len(f.IncludeNumbers) > 0 {
		if !containsFold(f.SecondaryTitles, e.SecondaryJobTitle.String(), true) &&
			!containsFold(f.IncludeNumbers, e.EmployeeNumber, true) {
			return false
		}
	}
	return true
}

// Apply keeps the employees the filter allows, preserving order.
func (f EmployeeFilter) Apply(employees []domain.Employee) []domain.Employee {
	out := make([]domain.Employee, 0, len(employees))
	for i := range employees {
		if f.Allows(&employees[i]) {
			out = append(out, employees[i])
		}
	}
	return out
}

func hasDomain(email string, domains []string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" && strings.Contains(email, d) {
			return true
		}
	}
	return false
}

func inGroups(e *domain.Employee, groups []string) bool {
	for _, g := range e.Groups {
		for _, want := range groups {
			if g.Title == strings.TrimSpace(want) {
				return true
			}
		}
	}
	return false
}

func containsFold(set []string, v string, fold bool) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	for _, s := range set {
		s = strings.TrimSpace(s)
		if s == v || (fold && strings.EqualFold(s, v)) {
			return true
		}
	}
	return false
}
