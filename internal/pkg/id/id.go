package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID string. Verification IDs are sortable by issue time, which
// keeps log lines for one address easy to follow.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
