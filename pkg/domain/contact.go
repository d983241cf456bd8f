package domain

import "strings"

// ContactSnapshot is the buyer contact block captured when a lead or RFQ is
// created. It is immutable once stored: later profile edits never rewrite
// historical records, and tier-based redaction happens at read time on a copy.
//
// This is the single normalized contact shape; boundary code must not carry
// alternative buyer-contact layouts.
type ContactSnapshot struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// IsZero reports whether no contact field is populated.
func (c ContactSnapshot) IsZero() bool {
	return c.Name == "" && c.Email == "" && c.Phone == "" && c.Company == ""
}

// EmailDomain extracts the lowercased domain part of an email address.
// Returns empty string when the address has no usable domain.
func EmailDomain(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

// NormalizeDomain lowercases and trims a claimed company domain, stripping a
// leading "www." so claims match email domains consistently.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimSuffix(d, ".")
	return strings.TrimPrefix(d, "www.")
}
