package verification

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"strconv"
)

// Codes are fixed-width: the lowest value already has five digits.
const (
	codeMin int64 = 10000
	codeMax int64 = 99999
)

// Random is the slice of *rand.Rand the service draws codes from.
type Random interface {
	Int64N(n int64) int64
}

type cryptoSource struct{}

func (cryptoSource) Uint64() uint64 {
	var b [8]byte
	_, _ = cryptorand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// NewCryptoRandom returns a generator backed by crypto/rand.
func NewCryptoRandom() *rand.Rand {
	return rand.New(cryptoSource{})
}

func generateCode(r Random) string {
	return strconv.FormatInt(codeMin+r.Int64N(codeMax-codeMin+1), 10)
}
