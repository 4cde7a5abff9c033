package commands

import "testing"

func TestLocalURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":3600", "http://localhost:3600/"},
		{"0.0.0.0:8080", "http://localhost:8080/"},
		{"127.0.0.1:3600", "http://127.0.0.1:3600/"},
	}
	for _, tt := range tests {
		if got := localURL(tt.addr); got != tt.want {
			t.Errorf("localURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
