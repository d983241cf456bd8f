package domain

import dErrors "tradegate/pkg/domain-errors"

// VerificationState tracks where a buyer account stands in company-domain
// verification. Only the verification service may advance it.
type VerificationState string

const (
	VerificationUnverified VerificationState = "unverified"
	VerificationPending    VerificationState = "pending"
	VerificationVerified   VerificationState = "verified"
)

// validVerificationStates is the single source of truth for valid states.
var validVerificationStates = map[VerificationState]bool{
	VerificationUnverified: true,
	VerificationPending:    true,
	VerificationVerified:   true,
}

// ParseVerificationState constructs a VerificationState from external input.
func ParseVerificationState(s string) (VerificationState, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "verification state cannot be empty")
	}
	v := VerificationState(s)
	if !v.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid verification state")
	}
	return v, nil
}

// IsValid checks if the state is one of the supported enum values.
func (v VerificationState) IsValid() bool {
	return validVerificationStates[v]
}

// String returns the string representation.
func (v VerificationState) String() string {
	return string(v)
}
