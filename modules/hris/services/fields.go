package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/hrsync/modules/hris/domain"
)

const (
	primaryGroupType = 3

	punchLayout  = "2006-01-02T15:04:05Z"
	exportLayout = "2006-01-02 15:04:05"
)

// BandValue returns the second token of the label, "Grade 3 Band" -> "3".
// In the "X Band N" form the second token is the keyword itself, so the
// value is the token after it: "NP Band 7" -> "7", while "NP Band" has none.
func BandValue(label string) (string, bool) {
	parts := strings.Fields(label)
	if len(parts) < 2 {
		return "", false
	}
	if strings.EqualFold(parts[1], "band") {
		if len(parts) < 3 {
			return "", false
		}
		return parts[2], true
	}
	return parts[1], true
}

// Gender maps the HR gender code to the export letter and salutation.
func Gender(code int) (gender, prefix string, ok bool) {
	switch code {
	case 1:
		return "M", "Mr", true
	case 2:
		return "F", "Ms", true
	default:
		return "", "", false
	}
}

// GroupTitle is the title of the first group of the primary group type.
func GroupTitle(e *domain.Employee) string {
	for _, g := range e.Groups {
		if g.GroupType == primaryGroupType {
			return g.Title
		}
	}
	return ""
}

// Zone is the value of the first custom field whose title mentions a zone.
func Zone(e *domain.Employee) string {
	for _, f := range e.CustomFields {
		if strings.Contains(strings.ToLower(f.Title), "zone") {
			return f.Value.String()
		}
	}
	return ""
}

// FormatPunch rewrites an API timestamp into the export layout; unparseable input yields "".
func FormatPunch(ts string) string {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return ""
	}
	t, err := time.Parse(punchLayout, ts)
	if err != nil {
		return ""
	}
	return t.Format(exportLayout)
}

func formatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
