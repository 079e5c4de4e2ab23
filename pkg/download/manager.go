package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Rokon-556/recipe-gen/internal/logger"
	"github.com/Rokon-556/recipe-gen/pkg/auth"
	"github.com/Rokon-556/recipe-gen/pkg/errutils"
)

// StatusError is an attempt failure caused by a response outside the 2xx range.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Manager fetches remote images into memory with a per-attempt timeout and
// exponential backoff between attempts. It holds no per-fetch state and is safe
// for concurrent use.
type Manager struct {
	client    *http.Client
	userAgent string
	policy    Policy
	sleeper   func(time.Duration)
	auth      auth.Authenticator
}

// Option customizes a Manager.
type Option func(*Manager)

// WithHTTPClient replaces the HTTP client. Deadlines come from the policy, so the
// client should not set its own Timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		m.client = client
	}
}

// WithAuthenticator applies credentials to every image request.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(m *Manager) {
		m.auth = a
	}
}

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(m *Manager) {
		m.sleeper = sleeper
	}
}

// NewManager creates a download manager for the given policy and user agent.
func NewManager(policy Policy, userAgent string, opts ...Option) (*Manager, error) {
	if policy.MaxAttempts < 1 {
		return nil, errutils.NewValidationError("max_attempts", "must be at least 1")
	}
	if policy.AttemptTimeout <= 0 {
		return nil, errutils.NewValidationError("attempt_timeout", "must be positive")
	}
	if policy.BackoffUnit < 0 {
		return nil, errutils.NewValidationError("backoff_unit", "cannot be negative")
	}
	if policy.MaxBytes <= 0 {
		policy.MaxBytes = DefaultMaxBytes
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	m := &Manager{
		client:    &http.Client{},
		userAgent: userAgent,
		policy:    policy,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.client == nil {
		m.client = &http.Client{}
	}
	return m, nil
}

// Policy returns the manager's retry policy.
func (m *Manager) Policy() Policy {
	return m.policy
}

// BackoffDelay is the wait before the attempt that follows failed attempt
// number attempt (1-indexed): 2^attempt units.
func BackoffDelay(unit time.Duration, attempt int) time.Duration {
	return unit * time.Duration(int64(1)<<attempt)
}

// Fetch downloads locator, making at most Policy.MaxAttempts network attempts.
func (m *Manager) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := m.validateLocator(locator); err != nil {
		return nil, err
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= m.policy.MaxAttempts; attempt++ {
		attempts = attempt
		data, err := m.fetchOnce(ctx, locator)
		if err == nil {
			return data, nil
		}
		lastErr = err
		logger.DebugfWithFields(logger.Fields{
			"locator": locator,
			"attempt": attempt,
			"error":   err.Error(),
		}, "fetch attempt %d/%d failed", attempt, m.policy.MaxAttempts)

		if attempt == m.policy.MaxAttempts || ctx.Err() != nil {
			break
		}
		if err := m.sleep(ctx, BackoffDelay(m.policy.BackoffUnit, attempt)); err != nil {
			lastErr = errors.Join(lastErr, err)
			break
		}
	}

	return nil, &errutils.FetchError{Locator: locator, Attempts: attempts, Cause: lastErr}
}

func (m *Manager) validateLocator(locator string) error {
	if strings.TrimSpace(locator) == "" {
		return errutils.NewValidationError("locator", "invalid image URL")
	}
	u, err := url.Parse(locator)
	if err != nil {
		return errutils.NewValidationError("locator", err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errutils.NewValidationError("locator", fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return errutils.NewValidationError("locator", "missing host")
	}
	if !m.hostAllowed(u.Hostname()) {
		return errutils.NewValidationError("locator", fmt.Sprintf("host %q is not in allowed_hosts", u.Hostname()))
	}
	return nil
}

func (m *Manager) hostAllowed(host string) bool {
	if len(m.policy.AllowedHosts) == 0 {
		return true
	}
	for _, allowed := range m.policy.AllowedHosts {
		if strings.EqualFold(strings.TrimSpace(allowed), host) {
			return true
		}
	}
	return false
}

func (m *Manager) fetchOnce(ctx context.Context, locator string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, m.policy.AttemptTimeout)
	defer cancel()

	resp, err := m.doRequest(attemptCtx, locator)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	return readBody(resp.Body, m.policy.MaxBytes)
}

func (m *Manager) doRequest(ctx context.Context, locator string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, http.NoBody)
	if err != nil {
		return nil, errutils.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", m.userAgent)
	req.Header.Set("Accept", "image/*")
	if m.auth != nil {
		if err := m.auth.Apply(req); err != nil {
			return nil, errutils.Wrap(err, "failed to authenticate request")
		}
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errutils.Wrap(err, "download failed")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func readBody(body io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxBytes+1))
	if err != nil {
		return nil, errutils.Wrap(err, "could not read response body")
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	return data, nil
}

func (m *Manager) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if m.sleeper != nil {
		m.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ Fetcher = (*Manager)(nil)
