package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Text accepts JSON strings, numbers, booleans and null and keeps their textual form.
// The HR API is not consistent about the type of custom field values.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(b)
	return nil
}

func (t Text) String() string { return string(t) }

type Titled struct {
	ID    string `json:"identifier,omitempty"`
	Title string `json:"title"`
}

type Group struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title"`
	GroupType int    `json:"groupType"`
}

type CustomField struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Value Text   `json:"value"`
}

// Reference points at another employee. Only the email is used for lookups.
type Reference struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
}

type Employee struct {
	ID                string        `json:"id"`
	EmployeeNumber    string        `json:"employeeNumber"`
	Email             string        `json:"email"`
	FirstName         string        `json:"firstName"`
	MiddleName        string        `json:"middleName"`
	LastName          string        `json:"lastName"`
	DisplayName       string        `json:"displayName"`
	Gender            int           `json:"gender"`
	EmploymentStatus  *int          `json:"employmentStatus"`
	JobTitle          *Titled       `json:"jobTitle"`
	SecondaryJobTitle Text          `json:"secondaryJobTitle"`
	MobilePhone       string        `json:"mobilePhone"`
	Groups            []Group       `json:"groups"`
	CustomFields      []CustomField `json:"customFields"`
	ReportsTo         *Reference    `json:"reportsTo"`
	L2Manager         *Reference    `json:"l2Manager"`
	BandInfo          *Titled       `json:"bandInfo"`
}

func (e *Employee) JobTitleText() string {
	if e.JobTitle == nil {
		return ""
	}
	return e.JobTitle.Title
}

func (e *Employee) BandLabel() string {
	if e.BandInfo == nil {
		return ""
	}
	return e.BandInfo.Title
}

func (e *Employee) ReportsToEmail() string {
	if e.ReportsTo == nil {
		return ""
	}
	return strings.TrimSpace(e.ReportsTo.Email)
}

func (e *Employee) L2ManagerEmail() string {
	if e.L2Manager == nil {
		return ""
	}
	return strings.TrimSpace(e.L2Manager.Email)
}

// HasStatus reports whether the employment status is present and equal to code.
func (e *Employee) HasStatus(code int) bool {
	return e.EmploymentStatus != nil && *e.EmploymentStatus == code
}

func (e *Employee) StatusText() string {
	if e.EmploymentStatus == nil {
		return ""
	}
	return strconv.Itoa(*e.EmploymentStatus)
}
