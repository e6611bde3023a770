package http

import (
	"github.com/go-verification-api/internal/application/verification"
	"github.com/go-verification-api/internal/transport/http/middleware"
)

// Deps holds what the router needs. Optional fields may be nil.
type Deps struct {
	Verification verification.Service
	// TokenVerifier protects the verification routes when set.
	TokenVerifier middleware.TokenVerifier
	// RateLimiter throttles code issuance per client IP when set.
	RateLimiter *middleware.RateLimiter
}
