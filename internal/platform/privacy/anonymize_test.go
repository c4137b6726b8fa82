package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ipv4", "192.168.1.47", "192.168.1.0"},
		{"ipv4 already masked", "10.0.0.0", "10.0.0.0"},
		{"ipv6", "2001:db8:85a3::8a2e:370:7334", "2001:0db8:85a3::"},
		{"empty", "", "unknown"},
		{"unknown passthrough", "unknown", "unknown"},
		{"garbage", "not-an-ip", "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnonymizeIP(tt.in))
		})
	}
}

func TestAnonymizeEmail(t *testing.T) {
	assert.Equal(t, "a***@example.com", AnonymizeEmail("alice@example.com"))
	assert.Equal(t, "x***@example.com", AnonymizeEmail("x@example.com"))
	assert.Equal(t, "***", AnonymizeEmail("not-an-email"))
	assert.Equal(t, "***", AnonymizeEmail("@example.com"))
	assert.Equal(t, "***", AnonymizeEmail("alice@"))
}
