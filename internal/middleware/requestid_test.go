package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		echoed  bool
		wantNew bool
	}{
		{name: "missing id is generated", header: "", wantNew: true},
		{name: "sane id passes through", header: "req-abc-123", echoed: true},
		{name: "oversized id is replaced", header: strings.Repeat("x", 65), wantNew: true},
		{name: "control characters are replaced", header: "req\nabc", wantNew: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var fromCtx string
			handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				fromCtx = RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("X-Request-ID", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Request-ID")
			if got == "" || got != fromCtx {
				t.Fatalf("header id %q does not match context id %q", got, fromCtx)
			}
			if tc.echoed && got != tc.header {
				t.Fatalf("id = %q, want passthrough of %q", got, tc.header)
			}
			if tc.wantNew && got == tc.header {
				t.Fatalf("unsafe id %q was passed through", tc.header)
			}
		})
	}
}
