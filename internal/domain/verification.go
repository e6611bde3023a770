package domain

import "time"

// PendingVerification is a code waiting to be confirmed for one identifier.
// Identifier is the normalized (lower-cased, trimmed) address.
type PendingVerification struct {
	ID         string    `json:"id"`
	Identifier string    `json:"identifier"`
	Code       string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the code is no longer valid at now.
func (p *PendingVerification) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// SendCodeRequest asks for a code to be delivered to Email.
type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyCodeRequest claims Code for Email.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}
