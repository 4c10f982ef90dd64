package tools

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetIP(t *testing.T) {
	tests := []struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"x-real-ip wins", "203.0.113.7", "198.51.100.1", "192.0.2.1:1234", "203.0.113.7"},
		{"first forwarded entry", "", "198.51.100.1, 10.0.0.1", "192.0.2.1:1234", "198.51.100.1"},
		{"forwarded entry trimmed", "", "  198.51.100.1 ,10.0.0.1", "192.0.2.1:1234", "198.51.100.1"},
		{"remote addr fallback", "", "", "192.0.2.1:1234", "192.0.2.1"},
		{"remote addr without port", "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			require.Equal(t, tt.want, GetIP(r))
		})
	}
}

func TestContains(t *testing.T) {
	require.True(t, Contains([]string{"a", "b"}, "b"))
	require.False(t, Contains([]string{"a", "b"}, "c"))
	require.False(t, Contains(nil, "a"))
}

func TestIPCountActiveAndTotal(t *testing.T) {
	ic := NewIPCount()

	ic.Add("10.0.0.1")
	ic.Add("10.0.0.1")
	ic.Add("10.0.0.2")

	require.Equal(t, 2, ic.Len())
	require.Equal(t, 2, ic.IPConns("10.0.0.1"))
	require.Equal(t, 1, ic.IPConns("10.0.0.2"))

	ic.Remove("10.0.0.1")
	require.Equal(t, 1, ic.IPConns("10.0.0.1"))
	ic.Remove("10.0.0.1")
	require.Equal(t, 0, ic.IPConns("10.0.0.1"))
	require.Equal(t, 1, ic.Len())

	// the total counter keeps growing across disconnects
	require.Equal(t, 2, ic.IPConnsTotal("10.0.0.1"))

	ip, max := ic.TopIP()
	require.Equal(t, "10.0.0.1", ip)
	require.Equal(t, 2, max)
}
