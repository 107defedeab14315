package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brevity-app/brevity-go/apperr"
	"github.com/brevity-app/brevity-go/breaker"
	"github.com/brevity-app/brevity-go/retry"
)

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:       2,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := []Option{WithRetryConfig(fastRetry()), WithBreaker(breaker.New(t.Name()))}
	return NewClient(srv.URL, "test-key", append(base, opts...)...)
}

func TestCreateSummary(t *testing.T) {
	var gotAuth, gotRequestID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/summaries" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")

		var req SummaryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "a long article" {
			t.Errorf("request text = %q", req.Text)
		}

		json.NewEncoder(w).Encode(Summary{ID: "sum_1", Text: "short", Language: "en"})
	})

	c := newTestClient(t, handler)
	got, err := c.CreateSummary(context.Background(), SummaryRequest{Text: "a long article"})
	if err != nil {
		t.Fatalf("CreateSummary() error = %v", err)
	}

	if got.ID != "sum_1" {
		t.Errorf("ID = %q, want sum_1", got.ID)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestCreateSummaryRequiresInput(t *testing.T) {
	hits := int32(0)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))

	_, err := c.CreateSummary(context.Background(), SummaryRequest{})
	typed := apperr.Classify(err)
	if typed.Code != apperr.CodeValidation {
		t.Errorf("code = %s, want %s", typed.Code, apperr.CodeValidation)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("request was dispatched despite failing local validation")
	}
}

func TestRetriesServerErrorsThenSucceeds(t *testing.T) {
	hits := int32(0)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(Summary{ID: "sum_2"})
	})

	c := newTestClient(t, handler)
	got, err := c.GetSummary(context.Background(), "sum_2")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if got.ID != "sum_2" {
		t.Errorf("ID = %q", got.ID)
	}
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Errorf("server hit %d times, want 3", n)
	}
}

func TestClientErrorNotRetried(t *testing.T) {
	hits := int32(0)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	c := newTestClient(t, handler)
	_, err := c.GetSummary(context.Background(), "sum_3")

	typed := apperr.Classify(err)
	if typed.Code != apperr.CodeAuth {
		t.Errorf("code = %s, want %s", typed.Code, apperr.CodeAuth)
	}
	if typed.RequestID == "" {
		t.Error("classified error lost its request ID")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
}

func TestNotFoundMapsToValidationFamily(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	})

	c := newTestClient(t, handler)
	_, err := c.GetSummary(context.Background(), "missing")

	typed := apperr.Classify(err)
	if typed.Code != apperr.CodeValidation {
		t.Errorf("code = %s, want %s", typed.Code, apperr.CodeValidation)
	}
	if typed.Message != "Resource not found" {
		t.Errorf("message = %q", typed.Message)
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing is listening anymore

	c := NewClient(srv.URL, "test-key",
		WithRetryConfig(fastRetry()),
		WithBreaker(breaker.New(t.Name())),
	)

	_, err := c.GetSummary(context.Background(), "sum_4")
	typed := apperr.Classify(err)
	if typed.Code != apperr.CodeNetwork {
		t.Errorf("code = %s, want %s", typed.Code, apperr.CodeNetwork)
	}
}

func TestDeleteSummary(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/v1/summaries/sum_5" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	c := newTestClient(t, handler)
	if err := c.DeleteSummary(context.Background(), "sum_5"); err != nil {
		t.Fatalf("DeleteSummary() error = %v", err)
	}
}

func TestListSummaries(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("per_page") != "10" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(SummaryList{
			Items: []Summary{{ID: "a"}, {ID: "b"}},
			Page:  2, PerPage: 10, Total: 12,
		})
	})

	c := newTestClient(t, handler)
	got, err := c.ListSummaries(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("ListSummaries() error = %v", err)
	}
	if len(got.Items) != 2 || got.Total != 12 {
		t.Errorf("got %+v", got)
	}
}

func TestUpdateProfileValidatesLocally(t *testing.T) {
	hits := int32(0)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))

	_, err := c.UpdateProfile(context.Background(), ProfileUpdate{
		Name:    "",
		Email:   "not-an-email",
		Website: "https://ok.example.com",
	})

	var typed *apperr.Error
	if !errors.As(err, &typed) || typed.Code != apperr.CodeValidation {
		t.Fatalf("error = %v, want local validation failure", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("request was dispatched despite invalid profile")
	}
}

func TestUpdateProfile(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/v1/profile" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(Profile{ID: "u_1", Name: "Ada", Email: "ada@example.com"})
	})

	c := newTestClient(t, handler)
	got, err := c.UpdateProfile(context.Background(), ProfileUpdate{
		Name:  "Ada",
		Email: "ada@example.com",
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestBreakerShortCircuitsAfterRepeatedFailures(t *testing.T) {
	hits := int32(0)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	// One breaker failure per exhausted retry sequence; threshold 2 means the
	// third logical call is rejected without touching the server.
	c := newTestClient(t, handler, WithBreaker(breaker.New(t.Name(), breaker.WithFailureThreshold(2))))

	for i := 0; i < 2; i++ {
		if _, err := c.GetSummary(context.Background(), "x"); err == nil {
			t.Fatal("expected failure")
		}
	}
	hitsBefore := atomic.LoadInt32(&hits)

	_, err := c.GetSummary(context.Background(), "x")
	if !breaker.IsOpen(err) {
		t.Fatalf("error = %v, want open-circuit rejection", err)
	}
	if atomic.LoadInt32(&hits) != hitsBefore {
		t.Error("server was hit while the circuit was open")
	}
}
