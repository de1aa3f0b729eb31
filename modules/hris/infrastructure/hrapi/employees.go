package hrapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrsync/modules/hris/domain"
	"github.com/iota-uz/hrsync/pkg/backoff"
)

type employeePage struct {
	Data       []domain.Employee `json:"data"`
	PageNumber int               `json:"pageNumber"`
	TotalPages int               `json:"totalPages"`
	HasMore    *bool             `json:"hasMore"`
	NextPage   json.RawMessage   `json:"nextPage"`
}

// done reports whether page was the last one. An explicit hasMore flag wins,
// then a nextPage link (null or empty ends the listing), then totalPages.
func (p *employeePage) done(page int) bool {
	if p.HasMore != nil {
		return !*p.HasMore
	}
	if len(p.NextPage) > 0 {
		next := strings.TrimSpace(string(p.NextPage))
		return next == "null" || next == `""` || next == "0"
	}
	return page >= p.TotalPages
}

// FetchEmployees walks the employee listing from page 1 until the server
// reports the last page. Any failure aborts the whole listing.
func (c *Client) FetchEmployees(ctx context.Context, pageSize int, onPage func(page, totalPages int)) ([]domain.Employee, error) {
	if c.employeesURL == "" {
		return nil, errors.New("employees url is not configured")
	}
	if pageSize <= 0 {
		pageSize = 200
	}

	var all []domain.Employee
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("pageNumber", strconv.Itoa(page))
		q.Set("pageSize", strconv.Itoa(pageSize))

		var resp employeePage
		if err := c.getJSON(ctx, c.employeesURL, q, &resp); err != nil {
			recordPage("employees", "error")
			return nil, err
		}
		recordPage("employees", "ok")
		all = append(all, resp.Data...)

		c.log.WithFields(logrus.Fields{
			"page":        page,
			"total_pages": resp.TotalPages,
			"records":     len(resp.Data),
		}).Debug("employee page fetched")
		if onPage != nil {
			onPage(page, resp.TotalPages)
		}

		if resp.done(page) {
			return all, nil
		}
		if err := backoff.Sleep(ctx, c.pageDelay); err != nil {
			return nil, err
		}
	}
}
