package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"jane@acme.com", "acme.com"},
		{"jane@ACME.COM", "acme.com"},
		{"weird@local@acme.com", "acme.com"},
		{"no-at-sign", ""},
		{"trailing@", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EmailDomain(tt.email), tt.email)
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   string
	}{
		{"Acme.COM", "acme.com"},
		{"  acme.com  ", "acme.com"},
		{"acme.com.", "acme.com"},
		{"www.acme.com", "acme.com"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDomain(tt.domain), tt.domain)
	}
}

func TestContactSnapshotIsZero(t *testing.T) {
	assert.True(t, ContactSnapshot{}.IsZero())
	assert.False(t, ContactSnapshot{Company: "Acme"}.IsZero())
}
