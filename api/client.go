// Package api implements the typed client for the Brevity API. It is the
// consuming boundary of the resilience layer: every call runs through a
// circuit breaker with classification-aware retries inside it, failures are
// shaped so apperr.Classify can map them, and each request carries a
// correlation ID.
//
// The transport is supplied by the caller (any *http.Client compatible
// Doer); the client owns no network behavior beyond building requests and
// decoding replies.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/brevity-app/brevity-go/apperr"
	"github.com/brevity-app/brevity-go/breaker"
	"github.com/brevity-app/brevity-go/metrics"
	"github.com/brevity-app/brevity-go/retry"
	"github.com/brevity-app/brevity-go/validate"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Brevity API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    Doer
	logger  *slog.Logger
	breaker *breaker.Breaker
	retry   retry.Config
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient injects the transport. Defaults to an *http.Client with a
// 30s timeout.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

// WithLogger attaches a structured logger. Nil keeps the client silent.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithBreaker injects the circuit breaker guarding the API. The breaker is
// per-dependency state: construct it once where the dependency is owned and
// share it across clients of the same API.
func WithBreaker(b *breaker.Breaker) Option {
	return func(c *Client) {
		if b != nil {
			c.breaker = b
		}
	}
}

// WithRetryConfig sets the retry policy for API calls.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// NewClient creates a Client for the given API endpoint.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		breaker: breaker.New("brevity-api"),
		retry:   retry.DefaultConfig,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// profileRules validates profile updates before any request is dispatched.
var profileRules = map[string]validate.Rule{
	"name":    {Required: true, MaxLength: 100},
	"email":   {Required: true, Email: true},
	"phone":   {Phone: true},
	"website": {URL: true},
}

// CreateSummary submits text or a source URL for summarization.
func (c *Client) CreateSummary(ctx context.Context, req SummaryRequest) (*Summary, error) {
	if req.Text == "" && req.SourceURL == "" {
		return nil, apperr.New(apperr.CodeValidation, "either text or source_url is required")
	}
	if req.SourceURL != "" {
		v := validate.New().AddRule("source_url", validate.Rule{URL: true})
		if fe := v.ValidateField("source_url", req.SourceURL); fe != nil {
			return nil, apperr.New(apperr.CodeValidation, fe.Message).WithDetails(fe)
		}
	}
	return call[Summary](ctx, c, "create_summary", http.MethodPost, "/v1/summaries", req)
}

// GetSummary fetches a summary by ID.
func (c *Client) GetSummary(ctx context.Context, id string) (*Summary, error) {
	return call[Summary](ctx, c, "get_summary", http.MethodGet, "/v1/summaries/"+id, nil)
}

// ListSummaries fetches a page of the caller's summaries.
func (c *Client) ListSummaries(ctx context.Context, page, perPage int) (*SummaryList, error) {
	path := fmt.Sprintf("/v1/summaries?page=%d&per_page=%d", page, perPage)
	return call[SummaryList](ctx, c, "list_summaries", http.MethodGet, path, nil)
}

// DeleteSummary removes a summary.
func (c *Client) DeleteSummary(ctx context.Context, id string) error {
	_, err := call[struct{}](ctx, c, "delete_summary", http.MethodDelete, "/v1/summaries/"+id, nil)
	return err
}

// UpdateProfile validates and saves the caller's profile. Invalid fields are
// rejected locally with the per-field failures attached as details.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	failures := validate.New().AddRules(profileRules).ValidateForm(map[string]string{
		"name":    update.Name,
		"email":   update.Email,
		"phone":   update.Phone,
		"website": update.Website,
	})
	if len(failures) > 0 {
		return nil, apperr.New(apperr.CodeValidation, "profile validation failed").WithDetails(failures)
	}
	return call[Profile](ctx, c, "update_profile", http.MethodPut, "/v1/profile", update)
}

// Breaker exposes the circuit breaker guarding this client, for status
// reporting.
func (c *Client) Breaker() *breaker.Breaker { return c.breaker }

// call runs one logical API operation. The breaker wraps the retry loop, so
// a whole retry sequence counts as a single success or failure against the
// circuit, and open-circuit rejections are never retried.
func call[T any](ctx context.Context, c *Client, op, method, path string, body any) (*T, error) {
	start := time.Now()

	result, err := breaker.Run(ctx, c.breaker, func(ctx context.Context) (*T, error) {
		return retry.Do(ctx, c.retry, func(ctx context.Context) (*T, error) {
			return do[T](ctx, c, method, path, body)
		})
	})

	code := "ok"
	if err != nil {
		typed := apperr.Classify(err)
		code = string(typed.Code)
		if c.logger != nil {
			c.logger.Error("api call failed",
				"operation", op,
				"code", typed.Code,
				"request_id", typed.RequestID,
				"error", err,
			)
		}
		metrics.APIRequestLatency.WithLabelValues(op, code).Observe(time.Since(start).Seconds())
		return nil, typed
	}

	metrics.APIRequestLatency.WithLabelValues(op, code).Observe(time.Since(start).Seconds())
	return result, nil
}

// do performs a single HTTP exchange and shapes failures for the classifier.
func do[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	requestID := uuid.NewString()
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The request left the client and no response arrived.
		return nil, &apperr.CallError{
			Request:   &apperr.Request{Method: method, URL: url},
			RequestID: requestID,
			Err:       err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &apperr.CallError{
			Response:  &apperr.Response{Status: resp.StatusCode, Body: decodeErrorBody(resp.Body)},
			Request:   &apperr.Request{Method: method, URL: url},
			RequestID: requestID,
		}
	}

	var result T
	if resp.StatusCode == http.StatusNoContent {
		return &result, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// decodeErrorBody captures whatever structure the server returned so it can
// travel in the classified error's details.
func decodeErrorBody(r io.Reader) any {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return nil
	}
	var decoded any
	if json.Unmarshal(data, &decoded) == nil {
		return decoded
	}
	return string(data)
}
