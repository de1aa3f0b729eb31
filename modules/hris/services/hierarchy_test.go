package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/hrsync/modules/hris/domain"
)

func intPtr(v int) *int { return &v }

func employee(number, email string, opts ...func(*domain.Employee)) domain.Employee {
	e := domain.Employee{
		ID:               "id-" + number,
		EmployeeNumber:   number,
		Email:            email,
		FirstName:        "First" + number,
		LastName:         "Last" + number,
		DisplayName:      "Name " + number,
		EmploymentStatus: intPtr(0),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func reportsTo(email string) func(*domain.Employee) {
	return func(e *domain.Employee) { e.ReportsTo = &domain.Reference{Email: email} }
}

func l2(email string) func(*domain.Employee) {
	return func(e *domain.Employee) { e.L2Manager = &domain.Reference{Email: email} }
}

func orgChart() []domain.Employee {
	return []domain.Employee{
		employee("NP1", "ceo@example.com"),
		employee("NP2", "head@example.com", reportsTo("ceo@example.com")),
		employee("NP3", "lead@example.com", reportsTo("Head@Example.com "), l2("ceo@example.com")),
		employee("NP4", "dev@example.com", reportsTo("lead@example.com"), l2("head@example.com")),
		employee("NP5", "orphan@example.com", reportsTo("gone@example.com"), l2("gone2@example.com")),
	}
}

func TestIndex_Resolve(t *testing.T) {
	idx := BuildIndex(orgChart())
	placeholder := Contact{Email: "Test@example.com", Name: "Test"}

	ceo, _ := idx.ByNumber("NP1")
	res := idx.Resolve(ceo, placeholder)
	assert.False(t, res.HasApprover)
	assert.False(t, res.HasL2Manager)
	assert.Equal(t, placeholder, res.DefaultApprover)

	head, _ := idx.ByNumber("NP2")
	res = idx.Resolve(head, placeholder)
	assert.True(t, res.HasApprover)
	assert.Equal(t, "NP1", res.Approver.Number)
	assert.Equal(t, Contact{Email: "ceo@example.com", Name: "Name NP1", Number: "NP1"}, res.DefaultApprover)

	lead, _ := idx.ByNumber("NP3")
	res = idx.Resolve(lead, placeholder)
	assert.Equal(t, "NP2", res.Approver.Number, "email lookup ignores case and surrounding space")
	assert.Equal(t, "NP1", res.L2Manager.Number)
	assert.Equal(t, "NP1", res.DefaultApprover.Number, "l2 manager wins over the approver")

	orphan, _ := idx.ByNumber("NP5")
	res = idx.Resolve(orphan, Contact{})
	assert.False(t, res.HasApprover)
	assert.Equal(t, Contact{}, res.DefaultApprover)
}

func TestIndex_DefaultApproverFallsBackPerField(t *testing.T) {
	employees := []domain.Employee{
		employee("NP1", "boss@example.com"),
		// L2 manager without a display name.
		employee("NP2", "l2@example.com", func(e *domain.Employee) { e.DisplayName = "" }),
		employee("NP3", "me@example.com", reportsTo("boss@example.com"), l2("l2@example.com")),
	}
	idx := BuildIndex(employees)
	me, _ := idx.ByNumber("NP3")

	res := idx.Resolve(me, Contact{Email: "Test@example.com", Name: "Test"})
	assert.Equal(t, "l2@example.com", res.DefaultApprover.Email)
	assert.Equal(t, "Name NP1", res.DefaultApprover.Name)
	assert.Equal(t, "NP2", res.DefaultApprover.Number)
}

func TestIndex_FirstOccurrenceWins(t *testing.T) {
	employees := []domain.Employee{
		employee("NP9", "shared@example.com"),
		employee("NP2", "SHARED@example.com"),
		employee("NP7", ""),
	}
	idx := BuildIndex(employees)

	e, ok := idx.ByEmail("shared@example.com")
	require.True(t, ok)
	assert.Equal(t, "NP2", e.EmployeeNumber, "lowest employee number owns a duplicate email")

	_, ok = idx.ByEmail("")
	assert.False(t, ok)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, "NP9", employees[0].EmployeeNumber, "input slice is not reordered")
}

func TestIndex_ResolutionIsOrderIndependent(t *testing.T) {
	base := orgChart()
	base = append(base, employee("NP6", "head@example.com"))
	placeholder := Contact{Email: "Test@example.com", Name: "Test"}

	resolveAll := func(employees []domain.Employee) map[string]Resolution {
		idx := BuildIndex(employees)
		out := make(map[string]Resolution, len(employees))
		for _, e := range idx.Employees() {
			e := e
			out[e.EmployeeNumber] = idx.Resolve(&e, placeholder)
		}
		return out
	}

	want := resolveAll(base)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]domain.Employee(nil), base...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, resolveAll(shuffled))
	}
}
