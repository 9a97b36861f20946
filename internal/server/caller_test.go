package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCallerKeys_Key(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:   "remote addr",
			remote: "192.168.1.100:12345",
			want:   "192.168.1.100",
		},
		{
			name:    "origin ignored",
			remote:  "192.168.1.100:12345",
			headers: map[string]string{"Origin": "chrome-extension://abc"},
			want:    "192.168.1.100",
		},
		{
			name:    "forwarded header ignored without trusted proxies",
			remote:  "192.168.1.100:12345",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.50"},
			want:    "192.168.1.100",
		},
		{
			name:    "forwarded header ignored from untrusted peer",
			trusted: []string{"10.0.0.0/8"},
			remote:  "192.168.1.100:12345",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.50"},
			want:    "192.168.1.100",
		},
		{
			name:    "trusted proxy",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:443",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.50"},
			want:    "203.0.113.50",
		},
		{
			name:    "spoofed leftmost hop skipped",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:443",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.50, 10.9.9.9"},
			want:    "203.0.113.50",
		},
		{
			name:    "single address entry",
			trusted: []string{"127.0.0.1"},
			remote:  "127.0.0.1:5000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.7"},
			want:    "198.51.100.7",
		},
		{
			name:    "malformed hop falls back to peer",
			trusted: []string{"127.0.0.1"},
			remote:  "127.0.0.1:5000",
			headers: map[string]string{"X-Forwarded-For": "not-an-ip"},
			want:    "127.0.0.1",
		},
		{
			name:    "all hops trusted",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:443",
			headers: map[string]string{"X-Forwarded-For": "10.4.4.4"},
			want:    "10.1.2.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := NewCallerKeys(tt.trusted)
			if err != nil {
				t.Fatalf("NewCallerKeys() error = %v", err)
			}
			req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := keys.Key(req); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCallerKeys_NilTrustsNothing(t *testing.T) {
	var keys *CallerKeys
	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	req.RemoteAddr = "192.168.1.100:12345"
	req.Header.Set("X-Forwarded-For", "203.0.113.50")
	if got := keys.Key(req); got != "192.168.1.100" {
		t.Errorf("Key() = %q, want peer address", got)
	}
}

func TestNewCallerKeys_Invalid(t *testing.T) {
	for _, entry := range []string{"10.0.0.0/99", "proxy.internal", "10.0.0"} {
		if _, err := NewCallerKeys([]string{entry}); err == nil {
			t.Errorf("NewCallerKeys(%q) error = nil", entry)
		}
	}
}

func TestCORSConfig_Allows(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://app.example"}, AllowExtensions: true}
	tests := []struct {
		origin string
		want   bool
	}{
		{"https://app.example", true},
		{"chrome-extension://abcdef", true},
		{"https://evil.example", false},
		{"chrome-extension://ABC/../x", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := cfg.Allows(tt.origin); got != tt.want {
			t.Errorf("Allows(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
	if (CORSConfig{}).Allows("chrome-extension://abcdef") {
		t.Error("extension origin allowed with extensions disabled")
	}
}
