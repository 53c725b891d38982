package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAddress(t *testing.T) {
	tests := []struct {
		name   string
		host   string
		header map[string]string
		want   string
	}{
		{"plain", "voice.example.com", nil, "http://voice.example.com"},
		{"port stripped", "voice.example.com:9736", nil, "http://voice.example.com"},
		{"ipv6", "[::1]:9736", nil, "http://::1"},
		{"forwarded proto", "voice.example.com:9736", map[string]string{"X-Forwarded-Proto": "https, http"}, "https://voice.example.com"},
		{"forwarded host", "10.0.0.5:9736", map[string]string{"X-Forwarded-Host": "voice.example.com:443"}, "http://voice.example.com"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Host = tt.host
		for k, v := range tt.header {
			req.Header.Set(k, v)
		}
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = req
		if got := address(c); got != tt.want {
			t.Errorf("%s: address=%q, want %q", tt.name, got, tt.want)
		}
	}
}
