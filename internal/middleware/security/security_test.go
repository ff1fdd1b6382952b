package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()
	cases := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{"plain api call", http.MethodGet, "/api/transactions?period=all", "curl/8.0", false},
		{"path traversal", http.MethodGet, "/api/../etc/passwd", "", true},
		{"dotenv fetch", http.MethodGet, "/.env", "", true},
		{"scanner agent", http.MethodGet, "/api/me", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/api/me", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(tc.method, "http://example.com"+tc.target, nil)
			r.Header.Set("User-Agent", tc.agent)
			if got := d.DetectSuspiciousRequest(r); got != tc.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.5:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.5")
	if got := d.ExtractClientIP(r); got != "203.0.113.9" {
		t.Errorf("ExtractClientIP() via trusted proxy = %q, want 203.0.113.9", got)
	}

	r.RemoteAddr = "198.51.100.7:4321"
	if got := d.ExtractClientIP(r); got != "198.51.100.7" {
		t.Errorf("ExtractClientIP() from untrusted peer = %q, want 198.51.100.7", got)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}),
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Errorf("HSTS must not be sent over plain HTTP")
	}
}
