package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "churchbilling-notify/1.0"
	maxErrorBody     = 512
)

// Sender posts JSON payloads to a single receiver.
// Each Send is one attempt: callers that need retries own that policy.
type Sender struct {
	url       string
	client    *http.Client
	breaker   *CircuitBreaker
	secret    string
	headers   http.Header
	timeout   time.Duration
	userAgent string
	now       func() time.Time
}

// NewSender creates a sender for the given http or https URL.
func NewSender(target string, opts ...Option) (*Sender, error) {
	if err := validateURL(target); err != nil {
		return nil, err
	}
	s := &Sender{
		url:       target,
		client:    &http.Client{},
		headers:   make(http.Header),
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// URL returns the receiver address.
func (s *Sender) URL() string {
	return s.url
}

// Send marshals data to JSON and posts it.
// Network errors, timeouts and 5xx responses count against the circuit breaker;
// 4xx responses return ErrRejected without tripping it.
func (s *Sender) Send(ctx context.Context, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Join(ErrInvalidPayload, err)
	}
	if len(payload) == 0 || string(payload) == "null" {
		return fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}

	if s.breaker != nil && !s.breaker.Allow() {
		return ErrCircuitOpen
	}

	status, err := s.post(ctx, payload)
	if s.breaker != nil {
		if err != nil && (status == 0 || status >= http.StatusInternalServerError) {
			s.breaker.RecordFailure()
		} else {
			s.breaker.RecordSuccess()
		}
	}
	return err
}

func (s *Sender) post(ctx context.Context, payload []byte) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return 0, errors.Join(ErrDeliveryFailed, err)
	}
	for k, v := range s.headers {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	if s.secret != "" {
		sig, err := Sign(s.secret, payload, s.now())
		if err != nil {
			return 0, err
		}
		sig.Apply(req.Header)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, errors.Join(ErrTimeout, err)
		}
		return 0, errors.Join(ErrDeliveryFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(strings.ReplaceAll(string(body), "\n", " "))
	kind := ErrDeliveryFailed
	if resp.StatusCode < http.StatusInternalServerError {
		kind = ErrRejected
	}
	if detail != "" {
		return resp.StatusCode, fmt.Errorf("%w: status %d: %s", kind, resp.StatusCode, detail)
	}
	return resp.StatusCode, fmt.Errorf("%w: status %d", kind, resp.StatusCode)
}

func validateURL(target string) error {
	if target == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(target)
	if err != nil {
		return errors.Join(ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}
