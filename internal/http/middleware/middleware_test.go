package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		got := rec.Header().Get(RequestIDHeader)
		if _, err := uuid.Parse(got); err != nil {
			t.Errorf("generated id %q is not a UUID: %v", got, err)
		}
		if seen != got {
			t.Errorf("context id %q != header id %q", seen, got)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
			t.Errorf("header id = %q, want abc-123", got)
		}
		if seen != "abc-123" {
			t.Errorf("context id = %q, want abc-123", seen)
		}
	})
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("secret detail")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "secret detail") {
		t.Error("panic value leaked to client")
	}
	if !strings.Contains(body, `"success":false`) {
		t.Errorf("expected failure envelope, got %s", body)
	}
}

func TestRateLimiter(t *testing.T) {
	t.Run("limits per client", func(t *testing.T) {
		h := NewRateLimiter(0.001, 2).Middleware(ok)

		send := func(addr string) int {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec.Code
		}

		for i := 0; i < 2; i++ {
			if code := send("10.0.0.1:1000"); code != http.StatusNoContent {
				t.Fatalf("request %d: status = %d", i, code)
			}
		}
		if code := send("10.0.0.1:2000"); code != http.StatusTooManyRequests {
			t.Errorf("third request: status = %d, want 429", code)
		}
		if code := send("10.0.0.2:1000"); code != http.StatusNoContent {
			t.Errorf("other client: status = %d, want 204", code)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		h := NewRateLimiter(0, 0).Middleware(ok)
		for i := 0; i < 50; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusNoContent {
				t.Fatalf("request %d: status = %d", i, rec.Code)
			}
		}
	})
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := start

	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return clock }
	rl.lastSweep = start

	rl.limiter("10.0.0.1")
	rl.limiter("10.0.0.2")

	clock = start.Add(2 * time.Minute)
	rl.limiter("10.0.0.1")

	clock = start.Add(limiterIdleTTL + time.Second)
	rl.limiter("10.0.0.3")

	if len(rl.limiters) != 2 {
		t.Fatalf("tracked clients = %d, want 2", len(rl.limiters))
	}
	if _, ok := rl.limiters["10.0.0.2"]; ok {
		t.Error("idle client was not evicted")
	}
	if _, ok := rl.limiters["10.0.0.1"]; !ok {
		t.Error("recently seen client was evicted")
	}

	// Many one-off clients do not accumulate across sweeps.
	for i := 0; i < 100; i++ {
		clock = clock.Add(limiterIdleTTL)
		rl.limiter(fmt.Sprintf("192.0.2.%d", i))
	}
	if len(rl.limiters) > 2 {
		t.Errorf("tracked clients = %d after churn, want at most 2", len(rl.limiters))
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	mux := http.NewServeMux()
	mux.Handle("GET /things/{id}", ok)
	h := m.Middleware(mux)

	for _, target := range []string{"/things/1", "/things/2", "/nowhere"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "GET /things/{id}", "204")); got != 2 {
		t.Errorf("matched route count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("unmatched count = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Error("exposition does not include http_requests_total")
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(ok, mark("outer"), mark("inner")).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}
