package parser

import (
	"errors"
	"testing"
)

func TestPublicOnly(t *testing.T) {
	tests := []struct {
		address string
		allowed bool
	}{
		{"93.184.216.34:443", true},
		{"[2606:2800:220:1:248:1893:25c8:1946]:443", true},
		{"127.0.0.1:80", false},
		{"10.1.2.3:80", false},
		{"172.16.0.9:80", false},
		{"192.168.1.1:80", false},
		{"169.254.169.254:80", false},
		{"100.64.0.1:80", false},
		{"0.0.0.0:80", false},
		{"[::1]:80", false},
		{"[fe80::1]:80", false},
		{"[fd00::1]:80", false},
		{"[::ffff:127.0.0.1]:80", false},
	}
	for _, tt := range tests {
		err := publicOnly("tcp", tt.address, nil)
		if tt.allowed && err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.address, err)
		}
		if !tt.allowed && !errors.Is(err, errBlockedAddress) {
			t.Fatalf("%s: expected errBlockedAddress, got %v", tt.address, err)
		}
	}
}
