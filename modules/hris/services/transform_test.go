package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/hrsync/modules/hris/domain"
)

func testSettings() ExportSettings {
	return ExportSettings{
		ActiveStatus:    0,
		ExcludeNumbers:  []string{"TEST001", "TEST002", "TEST003", "TEST004", "TEST005"},
		EmailDomains:    []string{"example.com"},
		DirectoryGroups: []string{"Support Office", "Support Zones"},
		GroupIdentifier: "8A5FA38D-592E-4EE5-9DC2-1A984EFF6E68",
		Placeholder:     Contact{Email: "Test@example.com", Name: "Test"},
		RosterTitles:    []string{"center manager", "cluster manager"},
		RosterNumbers:   []string{"NP77"},

		AttendanceColumns: 17,
		SkipStatuses:      []string{"pending"},
	}
}

func directoryMember(e *domain.Employee) {
	e.BandInfo = &domain.Titled{Title: "NP Band 4"}
	e.Gender = 2
	e.JobTitle = &domain.Titled{Title: "Analyst"}
	e.MobilePhone = "+91 90000 00000"
	e.Groups = []domain.Group{{Title: "Support Office", GroupType: 1}, {Title: "Finance", GroupType: 3}}
}

func TestFilter_ActiveNonTest(t *testing.T) {
	employees := []domain.Employee{
		{EmployeeNumber: "NP1", EmploymentStatus: intPtr(0)},
		{EmployeeNumber: "NP2", EmploymentStatus: intPtr(1)},
		{EmployeeNumber: "TEST001", EmploymentStatus: intPtr(0)},
	}
	got := testSettings().Filter(KindAttendance).Apply(employees)

	numbers := make([]string, 0, len(got))
	for _, e := range got {
		numbers = append(numbers, e.EmployeeNumber)
	}
	assert.Equal(t, []string{"NP1"}, numbers)
}

func TestFilter_Directory(t *testing.T) {
	f := testSettings().Filter(KindDirectory)

	ok := employee("NP1", "a@Example.com", directoryMember)
	assert.True(t, f.Allows(&ok))

	noBand := employee("NP2", "b@example.com", directoryMember, func(e *domain.Employee) { e.BandInfo = nil })
	assert.False(t, f.Allows(&noBand))

	otherDomain := employee("NP3", "c@other.org", directoryMember)
	assert.False(t, f.Allows(&otherDomain))

	noGroup := employee("NP4", "d@example.com", directoryMember, func(e *domain.Employee) {
		e.Groups = []domain.Group{{Title: "Clinics", GroupType: 1}}
	})
	assert.False(t, f.Allows(&noGroup))

	missingStatus := employee("NP5", "e@example.com", directoryMember, func(e *domain.Employee) { e.EmploymentStatus = nil })
	assert.False(t, f.Allows(&missingStatus))

	blankBand := employee("NP6", "f@example.com", directoryMember, func(e *domain.Employee) { e.BandInfo = &domain.Titled{} })
	assert.False(t, f.Allows(&blankBand))
}

func TestFilter_DirectoryRequiresEmailWithoutDomains(t *testing.T) {
	s := testSettings()
	s.EmailDomains = nil
	f := s.Filter(KindDirectory)

	noEmail := employee("NP1", "", directoryMember)
	assert.False(t, f.Allows(&noEmail))

	blank := employee("NP2", "   ", directoryMember)
	assert.False(t, f.Allows(&blank))

	withEmail := employee("NP3", "c@anywhere.org", directoryMember)
	assert.True(t, f.Allows(&withEmail))
}

func TestFilter_Roster(t *testing.T) {
	s := testSettings()
	manager := employee("NP1", "m@example.com", func(e *domain.Employee) {
		e.SecondaryJobTitle = "Cluster Manager"
		e.EmploymentStatus = intPtr(1)
	})
	allowlisted := employee("NP77", "x@example.com")
	other := employee("NP3", "o@example.com", func(e *domain.Employee) { e.SecondaryJobTitle = "Nurse" })
	test := employee("TEST002", "t@example.com", func(e *domain.Employee) { e.SecondaryJobTitle = "center manager" })

	f := s.Filter(KindRoster)
	assert.True(t, f.Allows(&manager), "inactive managers pass unless the active check is enabled")
	assert.True(t, f.Allows(&allowlisted))
	assert.False(t, f.Allows(&other))
	assert.False(t, f.Allows(&test))

	s.RosterRequireActive = true
	assert.False(t, s.Filter(KindRoster).Allows(&manager))
}

func TestFilter_RosterAllowlistIgnoresCase(t *testing.T) {
	s := testSettings()
	s.RosterNumbers = []string{"Np28593"}
	f := s.Filter(KindRoster)

	listed := employee("NP28593", "x@example.com")
	assert.True(t, f.Allows(&listed))

	unlisted := employee("NP28594", "y@example.com")
	assert.False(t, f.Allows(&unlisted))
}

func TestEmployeeExport_DirectoryRow(t *testing.T) {
	employees := []domain.Employee{
		employee("NP1", "boss@example.com"),
		employee("NP2", "me@example.com", directoryMember, reportsTo("boss@example.com")),
		employee("NP3", "solo@example.com", directoryMember),
	}
	idx := BuildIndex(employees)
	export := NewEmployeeExport(KindDirectory, testSettings())
	require.Equal(t, 27, export.Schema.Width())

	rows, skipped := export.Rows(idx)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, skipped)

	assert.Equal(t, domain.OutputRow{
		"", "me@example.com", "NP2", "Ms", "FirstNP2", "", "LastNP2", "", "F", "Analyst",
		"boss@example.com", "NP1", "NP2", "Analyst", "Ops", "Finance", "", "4",
		"8A5FA38D-592E-4EE5-9DC2-1A984EFF6E68", "P", "me@example.com", "Name NP1",
		"boss@example.com", "Name NP1", "NP1", "+91 90000 00000", "TRUE",
	}, rows[0])

	solo := rows[1]
	assert.Equal(t, "", solo[10])
	assert.Equal(t, "", solo[11])
	assert.Equal(t, "Test", solo[21])
	assert.Equal(t, "Test@example.com", solo[22])
	assert.Equal(t, "Test", solo[23])
	assert.Equal(t, "", solo[24])
	for _, row := range rows {
		assert.Len(t, row, 27)
		assert.NotContains(t, row, "<nil>")
		assert.NotContains(t, row, "None")
	}
}

func TestEmployeeExport_RosterRow(t *testing.T) {
	employees := []domain.Employee{
		employee("NP1", "boss@example.com"),
		employee("NP2", "cm@example.com", reportsTo("boss@example.com"), func(e *domain.Employee) {
			e.Gender = 1
			e.SecondaryJobTitle = "Center Manager"
			e.CustomFields = []domain.CustomField{{Title: "Zone", Value: "West"}}
			e.Groups = []domain.Group{{Title: "Pune", GroupType: 3}}
		}),
		employee("NP3", "solo@example.com", func(e *domain.Employee) { e.SecondaryJobTitle = "cluster manager" }),
	}
	idx := BuildIndex(employees)
	export := NewEmployeeExport(KindRoster, testSettings())
	require.Equal(t, 16, export.Schema.Width())

	rows, _ := export.Rows(idx)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.OutputRow{
		"NP2", "FirstNP2", "", "LastNP2", "M", "True", "", "West", "Pune", "cm@example.com",
		"", "Center Manager", "boss@example.com", "NP1", "boss@example.com", "NP1",
	}, rows[0])
	assert.Equal(t, "", rows[1][14], "roster has no placeholder approver")
	assert.Equal(t, "", rows[1][15])
}

func attendanceRecord(number, date, status string, in, out string) domain.AttendanceRecord {
	r := domain.AttendanceRecord{
		ID:              "att-" + number + "-" + date,
		EmployeeNumber:  number,
		AttendanceDate:  date,
		ShiftStartTime:  "09:00",
		ShiftEndTime:    "18:00",
		DayType:         "0",
		TotalGrossHours: decimal.NewNullDecimal(decimal.RequireFromString("8.25")),
		Status:          domain.Text(status),
	}
	if in != "" {
		r.FirstInOfTheDay = &domain.Punch{Timestamp: in}
	}
	if out != "" {
		r.LastOutOfTheDay = &domain.Punch{Timestamp: out}
	}
	return r
}

func TestAttendanceExport_Transform(t *testing.T) {
	idx := BuildIndex([]domain.Employee{
		employee("NP1", "a@example.com", directoryMember, func(e *domain.Employee) {
			e.Groups = []domain.Group{{Title: "Pune", GroupType: 3}}
		}),
	})
	records := []domain.AttendanceRecord{
		attendanceRecord("NP1", "2025-09-22", "approved", "2025-09-22T09:01:00Z", "2025-09-22T18:02:00Z"),
		attendanceRecord("NP1", "2025-09-21", "approved", "", "2025-09-21T18:00:00Z"),
		attendanceRecord("NP1", "2025-09-20", "pending", "", ""),
		attendanceRecord("NP9", "2025-09-21", "approved", "garbage", "2025-09-21T18:00:00Z"),
	}

	export := NewAttendanceExport(testSettings())
	rows, missing := export.Transform(records, idx)
	require.Len(t, rows, 3, "pending records are excluded")

	assert.Equal(t, domain.OutputRow{
		"att-NP1-2025-09-21", "NP1", "Pune", "Analyst", "2025-09-21", "09:00", "18:00",
		"", "2025-09-21 18:00:00", "0", "", "", "8.25", "", "", "", "",
	}, rows[0])
	assert.Equal(t, "2025-09-22 09:01:00", rows[1][7])
	assert.Equal(t, "", rows[2][2], "unknown employee leaves hierarchy columns empty")
	assert.Equal(t, "", rows[2][7], "unparseable timestamp degrades to empty")

	require.Len(t, missing, 1)
	assert.Equal(t, domain.MissingEntry{EmployeeNumber: "NP1", Date: "2025-09-21", Status: "approved"}, missing[0])
}

func TestAttendanceExport_WideLayout(t *testing.T) {
	s := testSettings()
	s.AttendanceColumns = 19
	idx := BuildIndex([]domain.Employee{employee("NP1", "a@example.com")})

	rows, _ := NewAttendanceExport(s).Transform([]domain.AttendanceRecord{
		attendanceRecord("NP1", "2025-09-22", "approved", "2025-09-22T09:01:00Z", "2025-09-22T18:02:00Z"),
	}, idx)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 19)
	assert.Equal(t, "approved", rows[0][17])
	assert.Equal(t, "Name NP1", rows[0][18])
}
