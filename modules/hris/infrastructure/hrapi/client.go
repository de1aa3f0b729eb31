package hrapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrsync/modules/hris/domain"
	"github.com/iota-uz/hrsync/pkg/backoff"
	"github.com/iota-uz/hrsync/pkg/logging"
)

type Options struct {
	EmployeesURL  string
	AttendanceURL string
	// Names of the attendance window parameters, e.g. from/to or startDate/endDate.
	RangeParams [2]string

	PageDelay       time.Duration
	AttendanceDelay time.Duration
	AuthRetries     int
	Retry           backoff.Policy

	RequestIDHeader string
	HTTPClient      *http.Client
	Logger          *logrus.Entry
}

// Client talks to the HR platform with one token manager.
type Client struct {
	employeesURL  string
	attendanceURL string
	rangeParams   [2]string

	pageDelay       time.Duration
	attendanceDelay time.Duration
	authRetries     int
	retry           backoff.Policy

	requestIDHeader string
	httpClient      *http.Client
	tokens          *TokenManager
	log             *logrus.Entry
}

func NewClient(tokens *TokenManager, opts Options) (*Client, error) {
	for name, raw := range map[string]string{"employees": opts.EmployeesURL, "attendance": opts.AttendanceURL} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid %s url: %q", name, raw)
		}
	}
	rangeParams := opts.RangeParams
	if rangeParams[0] == "" || rangeParams[1] == "" {
		rangeParams = [2]string{"from", "to"}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(30 * time.Second)
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		employeesURL:    strings.TrimSpace(opts.EmployeesURL),
		attendanceURL:   strings.TrimSpace(opts.AttendanceURL),
		rangeParams:     rangeParams,
		pageDelay:       opts.PageDelay,
		attendanceDelay: opts.AttendanceDelay,
		authRetries:     opts.AuthRetries,
		retry:           opts.Retry,
		requestIDHeader: opts.RequestIDHeader,
		httpClient:      httpClient,
		tokens:          tokens,
		log:             log,
	}, nil
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Authenticate acquires the run's first token.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.tokens.Acquire(ctx)
	return err
}

// getJSON issues a bearer GET and decodes a 200 body into out.
// 401 refreshes the token, 429 and transport failures back off; both are bounded.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	target := endpoint
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		target = endpoint + sep + query.Encode()
	}

	var authAttempts, rateAttempts, netAttempts int
	for {
		status, body, err := c.get(ctx, target)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			netAttempts++
			if !c.retry.Allows(netAttempts) {
				return &domain.NetworkError{Op: "GET " + endpoint, Err: err}
			}
			recordRetry("network")
			c.log.WithError(err).WithFields(logrus.Fields{"url": endpoint, "attempt": netAttempts}).Warn("request failed, retrying")
			if err := c.retry.Wait(ctx, netAttempts); err != nil {
				return err
			}
			continue
		}

		switch {
		case status >= 200 && status < 300:
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return gerrors.Wrap(err, "decode response")
			}
			return nil
		case status == http.StatusUnauthorized:
			authAttempts++
			if authAttempts > c.authRetries {
				return &domain.AuthError{Status: status, Body: string(body)}
			}
			recordRetry("unauthorized")
			c.log.WithField("url", endpoint).Info("token rejected, re-authenticating")
			if _, err := c.tokens.Refresh(ctx); err != nil {
				return err
			}
		case status == http.StatusTooManyRequests:
			rateAttempts++
			if !c.retry.Allows(rateAttempts) {
				return &domain.RateLimitError{URL: endpoint, Attempts: rateAttempts}
			}
			recordRetry("rate_limited")
			c.log.WithFields(logrus.Fields{"url": endpoint, "attempt": rateAttempts}).Warn("rate limited, backing off")
			if err := c.retry.Wait(ctx, rateAttempts); err != nil {
				return err
			}
		default:
			return &domain.FetchError{URL: endpoint, Status: status, Body: string(body)}
		}
	}
}

func (c *Client) get(ctx context.Context, target string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.tokens.Current())
	if c.requestIDHeader != "" {
		req.Header.Set(c.requestIDHeader, uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func isFatal(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
