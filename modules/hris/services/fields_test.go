package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iota-uz/hrsync/modules/hris/domain"
)

func TestBandValue(t *testing.T) {
	cases := []struct {
		label string
		want  string
		ok    bool
	}{
		{label: "NP Band 7", want: "7", ok: true},
		{label: "NP Band", ok: false},
		{label: "", ok: false},
		{label: "Band 3", want: "3", ok: true},
		{label: "  np  band   12A ", want: "12A", ok: true},
		{label: "Grade 5", want: "5", ok: true},
		{label: "Grade 3 Band", want: "3", ok: true},
		{label: "band", ok: false},
		{label: "Executive", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			got, ok := BandValue(tc.label)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGender(t *testing.T) {
	g, p, ok := Gender(1)
	assert.True(t, ok)
	assert.Equal(t, "M", g)
	assert.Equal(t, "Mr", p)

	g, p, ok = Gender(2)
	assert.True(t, ok)
	assert.Equal(t, "F", g)
	assert.Equal(t, "Ms", p)

	for _, code := range []int{0, 3, -1, 99} {
		g, p, ok = Gender(code)
		assert.False(t, ok, "code %d", code)
		assert.Empty(t, g)
		assert.Empty(t, p)
	}
}

func TestFormatPunch(t *testing.T) {
	assert.Equal(t, "2025-09-21 09:03:15", FormatPunch("2025-09-21T09:03:15Z"))
	assert.Equal(t, "", FormatPunch(""))
	assert.Equal(t, "", FormatPunch("21/09/2025 09:03"))
	assert.Equal(t, "", FormatPunch("2025-09-21T09:03:15.123+05:30"))
}

func TestGroupTitleAndZone(t *testing.T) {
	e := &domain.Employee{
		Groups: []domain.Group{
			{Title: "Support Office", GroupType: 1},
			{Title: "Hyderabad Cluster", GroupType: 3},
			{Title: "Other", GroupType: 3},
		},
		CustomFields: []domain.CustomField{
			{Title: "Blood group", Value: "O+"},
			{Title: "Operating ZONE", Value: "South"},
			{Title: "zone 2", Value: "North"},
		},
	}
	assert.Equal(t, "Hyderabad Cluster", GroupTitle(e))
	assert.Equal(t, "South", Zone(e))

	empty := &domain.Employee{}
	assert.Empty(t, GroupTitle(empty))
	assert.Empty(t, Zone(empty))
}
