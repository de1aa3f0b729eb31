package hrapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/iota-uz/hrsync/modules/hris/domain"
	"github.com/iota-uz/hrsync/pkg/backoff"
	"github.com/iota-uz/hrsync/pkg/logging"
)

type TokenOptions struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	GrantType    string
	Scope        string
	APIKey       string

	HTTPClient *http.Client
	Retry      backoff.Policy
	Logger     *logrus.Entry
}

// TokenManager holds the bearer token for one API key. Tokens live for a single run.
type TokenManager struct {
	conf       clientcredentials.Config
	httpClient *http.Client
	retry      backoff.Policy
	log        *logrus.Entry

	mu    sync.Mutex
	token string
}

func NewTokenManager(opts TokenOptions) *TokenManager {
	params := url.Values{}
	if opts.GrantType != "" {
		params.Set("grant_type", opts.GrantType)
	}
	if opts.APIKey != "" {
		params.Set("api_key", opts.APIKey)
	}
	var scopes []string
	if strings.TrimSpace(opts.Scope) != "" {
		scopes = []string{opts.Scope}
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenManager{
		conf: clientcredentials.Config{
			ClientID:       opts.ClientID,
			ClientSecret:   opts.ClientSecret,
			TokenURL:       opts.TokenURL,
			Scopes:         scopes,
			EndpointParams: params,
			AuthStyle:      oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
		retry:      opts.Retry,
		log:        log,
	}
}

func (m *TokenManager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Acquire performs a fresh client-credentials exchange.
func (m *TokenManager) Acquire(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquireLocked(ctx)
}

// Refresh is called after a 401; it is the same exchange as Acquire.
func (m *TokenManager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return m.acquireLocked(ctx)
}

func (m *TokenManager) acquireLocked(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", errors.New("context cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			if err := m.retry.Wait(ctx, attempt); err != nil {
				return "", err
			}
		}

		tok, err := m.conf.Token(ctx)
		if err == nil {
			m.token = tok.AccessToken
			recordToken("ok")
			return m.token, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		classified := classifyTokenError(err)
		var netErr *domain.NetworkError
		if !errors.As(classified, &netErr) || !m.retry.Allows(attempt+1) {
			recordToken("error")
			return "", classified
		}
		m.log.WithError(err).WithField("attempt", attempt+1).Warn("token request failed, retrying")
	}
}

func classifyTokenError(err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		status := 0
		if rErr.Response != nil {
			status = rErr.Response.StatusCode
		}
		return &domain.AuthError{Status: status, Body: string(rErr.Body)}
	}
	if strings.Contains(err.Error(), "missing access_token") {
		return &domain.AuthError{Status: http.StatusOK, Body: err.Error()}
	}
	return &domain.NetworkError{Op: "token request", Err: err}
}
