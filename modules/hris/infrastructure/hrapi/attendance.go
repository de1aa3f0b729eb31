package hrapi

import (
	"context"
	"errors"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrsync/modules/hris/domain"
	"github.com/iota-uz/hrsync/pkg/backoff"
)

type attendanceResponse struct {
	Data []domain.AttendanceRecord `json:"data"`
}

// FetchAttendance requests the window for each employee in turn. A failing
// employee is logged, recorded as a diagnostic and skipped; only context
// cancellation aborts the loop.
func (c *Client) FetchAttendance(
	ctx context.Context,
	employees []domain.Employee,
	window domain.DateRange,
	onProgress func(done, total int),
) ([]domain.AttendanceRecord, []domain.FetchDiagnostic, error) {
	if c.attendanceURL == "" {
		return nil, nil, errors.New("attendance url is not configured")
	}
	if err := window.Validate(); err != nil {
		return nil, nil, err
	}

	var (
		records     []domain.AttendanceRecord
		diagnostics []domain.FetchDiagnostic
	)
	for i := range employees {
		e := &employees[i]
		if i > 0 {
			if err := backoff.Sleep(ctx, c.attendanceDelay); err != nil {
				return nil, nil, err
			}
		}

		q := url.Values{}
		q.Set("employeeIds", e.ID)
		q.Set(c.rangeParams[0], window.FromText())
		q.Set(c.rangeParams[1], window.ToText())

		var resp attendanceResponse
		if err := c.getJSON(ctx, c.attendanceURL, q, &resp); err != nil {
			if isFatal(err) {
				return nil, nil, err
			}
			recordPage("attendance", "error")
			c.log.WithError(err).WithFields(logrus.Fields{
				"employee_number": e.EmployeeNumber,
				"employee_id":     e.ID,
			}).Warn("attendance fetch failed, skipping employee")
			diagnostics = append(diagnostics, domain.FetchDiagnostic{
				EmployeeID:     e.ID,
				EmployeeNumber: e.EmployeeNumber,
				Err:            err,
			})
		} else {
			recordPage("attendance", "ok")
			records = append(records, resp.Data...)
		}

		if onProgress != nil {
			onProgress(i+1, len(employees))
		}
	}
	return records, diagnostics, nil
}
