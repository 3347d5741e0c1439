package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIPForRateLimit(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		remoteAddr string
		want       string
	}{
		{
			name:       "single ip",
			header:     "203.0.113.1",
			remoteAddr: "198.51.100.10:1234",
			want:       "203.0.113.1",
		},
		{
			name:       "multiple ips use first",
			header:     " 203.0.113.1 , 198.51.100.2 ",
			remoteAddr: "198.51.100.10:1234",
			want:       "203.0.113.1",
		},
		{
			name:       "invalid forwarded falls back",
			header:     "invalid",
			remoteAddr: "198.51.100.10:1234",
			want:       "198.51.100.10",
		},
		{
			name:       "ipv6 forwarded",
			header:     "2001:db8::1",
			remoteAddr: net.JoinHostPort("2001:db8::2", "443"),
			want:       "2001:db8::1",
		},
		{
			name:       "remote without port",
			header:     "invalid",
			remoteAddr: "203.0.113.1",
			want:       "203.0.113.1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.header != "" {
				req.Header.Set("X-Forwarded-For", tc.header)
			}
			if got := clientIPForRateLimit(req); got != tc.want {
				t.Fatalf("clientIPForRateLimit() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRateLimitBlocksOverLimit(t *testing.T) {
	handler := RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.10:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, want)
		}
	}
}

func TestRateLimiterSweepsExpiredBuckets(t *testing.T) {
	l := newRateLimiter(2, time.Minute)
	start := time.Now()
	l.lastSweep = start

	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		if !l.allow(ip, start) {
			t.Fatalf("first request from %s denied", ip)
		}
	}
	if len(l.buckets) != 3 {
		t.Fatalf("bucket count = %d, want 3", len(l.buckets))
	}

	later := start.Add(2 * time.Minute)
	if !l.allow("203.0.113.9", later) {
		t.Fatal("request after window denied")
	}
	if len(l.buckets) != 1 {
		t.Fatalf("bucket count after sweep = %d, want 1", len(l.buckets))
	}

	if !l.allow("203.0.113.1", later) || !l.allow("203.0.113.1", later) {
		t.Fatal("swept client should get a fresh window")
	}
	if l.allow("203.0.113.1", later) {
		t.Fatal("third request in fresh window should be denied")
	}
}
