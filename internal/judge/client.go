package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abhisek/adaptutor/internal/logger"
)

// ErrPollTimeout is attached to a state whose poll budget ran out.
var ErrPollTimeout = errors.New("judge: poll budget exhausted")

// Config configures a Judge0 client.
type Config struct {
	URL            string
	APIKey         string
	APIHost        string
	Base64         bool
	PollInterval   time.Duration
	Timeout        time.Duration
	RequestTimeout time.Duration
	RatePerSecond  float64
}

// Client talks to a Judge0-compatible code execution service.
// It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client. Zero durations fall back to the package defaults.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("judge: URL is required")
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(limit, max(1, int(cfg.RatePerSecond))),
		log:     logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Submit sends a program and returns its token. Failures are returned as
// *SubmissionError and are not retried.
func (c *Client) Submit(ctx context.Context, sub Submission) (string, error) {
	if sub.LanguageID == 0 {
		sub.LanguageID = DefaultLanguageID
	}
	body := submitRequest{
		SourceCode: c.encode(sub.SourceCode),
		LanguageID: sub.LanguageID,
		Stdin:      c.encode(sub.Stdin),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", &SubmissionError{Err: err}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", &SubmissionError{Err: err}
	}

	q := url.Values{}
	q.Set("base64_encoded", fmt.Sprint(c.cfg.Base64))
	q.Set("wait", "false")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/submissions?"+q.Encode(), bytes.NewReader(payload))
	if err != nil {
		return "", &SubmissionError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out submitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.Token == "" {
		return "", &SubmissionError{StatusCode: resp.StatusCode, Body: "response has no token"}
	}
	return out.Token, nil
}

// Poll fetches the submission until it is terminal or budget runs out.
// Transport and decode errors are retried. On exhaustion it returns a
// state with Status timeout and Err set instead of failing.
func (c *Client) Poll(ctx context.Context, token string, interval, budget time.Duration) SubmissionState {
	if interval <= 0 {
		interval = c.cfg.PollInterval
	}
	if budget <= 0 {
		budget = c.cfg.Timeout
	}

	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	state := SubmissionState{Token: token, Status: StatusQueued}
	var lastErr error
	for {
		state.Attempts++
		next, err := c.fetch(ctx, token)
		if err == nil {
			next.Attempts = state.Attempts
			state = next
			if state.Status.Terminal() {
				return state
			}
		} else {
			lastErr = err
			c.log.Debug("judge poll retry", "token", token, "attempt", state.Attempts, "error", err)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			state.Status = StatusTimeout
			state.Err = ErrPollTimeout
			if lastErr != nil {
				state.Err = fmt.Errorf("%w: last error: %v", ErrPollTimeout, lastErr)
			}
			return state
		case <-timer.C:
		}
	}
}

// Run submits one program and polls it with the configured budget.
func (c *Client) Run(ctx context.Context, sub Submission) (SubmissionState, error) {
	token, err := c.Submit(ctx, sub)
	if err != nil {
		return SubmissionState{}, err
	}
	return c.Poll(ctx, token, c.cfg.PollInterval, c.cfg.Timeout), nil
}

func (c *Client) fetch(ctx context.Context, token string) (SubmissionState, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return SubmissionState{}, err
	}

	q := url.Values{}
	q.Set("base64_encoded", fmt.Sprint(c.cfg.Base64))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"/submissions/"+url.PathEscape(token)+"?"+q.Encode(), nil)
	if err != nil {
		return SubmissionState{}, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return SubmissionState{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return SubmissionState{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var sr statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return SubmissionState{}, fmt.Errorf("decode status: %w", err)
	}

	st := SubmissionState{
		Token:             token,
		Status:            statusFromID(sr.Status.ID),
		StatusID:          sr.Status.ID,
		StatusDescription: sr.Status.Description,
		Stdout:            c.decode(sr.Stdout),
		Stderr:            c.decode(sr.Stderr),
		CompileOutput:     c.decode(sr.CompileOutput),
		Message:           c.decode(sr.Message),
	}
	if sr.Time != nil {
		st.Time = *sr.Time
	}
	if sr.Memory != nil {
		st.Memory = *sr.Memory
	}
	return st, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.cfg.APIKey)
		req.Header.Set("X-Auth-Token", c.cfg.APIKey)
	}
	if c.cfg.APIHost != "" {
		req.Header.Set("X-RapidAPI-Host", c.cfg.APIHost)
	}
}

func (c *Client) encode(s string) string {
	if !c.cfg.Base64 {
		return s
	}
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func (c *Client) decode(p *string) string {
	if p == nil {
		return ""
	}
	if !c.cfg.Base64 {
		return *p
	}
	b, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(*p, "\n", ""))
	if err != nil {
		return *p
	}
	return string(b)
}
