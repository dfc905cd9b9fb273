package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		pageOrigin string
		want       string
	}{
		{
			"nothing configured falls back to origin",
			"",
			"http://maps.example.com",
			"http://maps.example.com",
		},
		{
			"explicit remote backend wins",
			"https://backend.example.com:4000",
			"http://maps.example.com",
			"https://backend.example.com:4000",
		},
		{
			"loopback backend from a remote origin is rewritten",
			"http://localhost:4000",
			"http://192.168.1.50:8080",
			"http://192.168.1.50:8080",
		},
		{
			"127.0.0.1 counts as loopback",
			"http://127.0.0.1:4000",
			"http://192.168.1.50:8080",
			"http://192.168.1.50:8080",
		},
		{
			"loopback backend from a loopback origin is kept",
			"http://localhost:4000",
			"http://127.0.0.1:8080",
			"http://localhost:4000",
		},
		{
			"unparseable configured URL is used verbatim",
			"://not-a-url",
			"http://maps.example.com",
			"://not-a-url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveEndpoint(tt.configured, tt.pageOrigin))
		})
	}
}

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"http://localhost:4000", "ws://localhost:4000/ws"},
		{"https://backend.example.com", "wss://backend.example.com/ws"},
		{"http://localhost:4000/", "ws://localhost:4000/ws"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, websocketURL(tt.endpoint))
	}
}
