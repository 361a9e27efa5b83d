package utils

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/curator/internal/logger"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", remote: "192.0.2.1:5555", want: "192.0.2.1"},
		{name: "proxy headers ignored when untrusted", remote: "192.0.2.1:5555", headers: map[string]string{"X-Forwarded-For": "203.0.113.9"}, want: "192.0.2.1"},
		{name: "forwarded for", remote: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": " 203.0.113.9 , 10.0.0.1"}, trustProxy: true, want: "203.0.113.9"},
		{name: "cloudflare wins", remote: "10.0.0.1:1", headers: map[string]string{"CF-Connecting-IP": "198.51.100.4", "X-Forwarded-For": "203.0.113.9"}, trustProxy: true, want: "198.51.100.4"},
		{name: "real ip", remote: "10.0.0.1:1", headers: map[string]string{"X-Real-IP": "198.51.100.5"}, trustProxy: true, want: "198.51.100.5"},
		{name: "ipv6", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "non-ip header skipped", remote: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "user-42", "X-Real-IP": "198.51.100.6"}, trustProxy: true, want: "198.51.100.6"},
		{name: "garbage headers fall back to remote", remote: "10.0.0.1:1", headers: map[string]string{"CF-Connecting-IP": "x", "X-Forwarded-For": "y"}, trustProxy: true, want: "10.0.0.1"},
		{name: "forwarded for with port", remote: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "203.0.113.9:4444"}, trustProxy: true, want: "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.0.2.7 ", "", "garbage"})
	if m.IsEmpty() {
		t.Fatal("expected rules to be parsed")
	}

	tests := map[string]bool{
		"10.20.30.40": true,
		"192.0.2.7":   true,
		"192.0.2.8":   false,
		"not-an-ip":   false,
		"2001:db8::1": false,
	}
	for ip, want := range tests {
		if got := m.Allow(ip); got != want {
			t.Errorf("Allow(%q) = %v, want %v", ip, got, want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("nil list should produce an empty matcher")
	}
}

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestCloseLogged(t *testing.T) {
	c := &closer{err: errors.New("boom")}
	CloseLogged(c, logger.Nop(), "test")
	if !c.closed {
		t.Error("CloseLogged did not close")
	}

	c = &closer{}
	Close(c)
	if !c.closed {
		t.Error("Close did not close")
	}
}
