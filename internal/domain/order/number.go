package order

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	numberPrefix   = "ORD"
	suffixLen      = 5
	suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// MaxCreateAttempts bounds the regenerate-and-retry loop on order-number
	// collisions before the failure is surfaced to the caller.
	MaxCreateAttempts = 3
)

// NewNumber produces a human-readable order reference such as
// ORD-1756339200123-K4X9C: a fixed prefix, the current Unix time in
// milliseconds, and a short random alphanumeric suffix. It never touches the
// store; the unique constraint on the order_number column is the collision
// check, and an insert that trips it is retried with a fresh number.
func NewNumber() string {
	return NewNumberAt(time.Now())
}

// NewNumberAt is NewNumber with an explicit timestamp, for tests.
func NewNumberAt(t time.Time) string {
	var b strings.Builder
	b.Grow(len(numberPrefix) + 1 + 13 + 1 + suffixLen)
	b.WriteString(numberPrefix)
	b.WriteByte('-')
	b.WriteString(strconv.FormatInt(t.UnixMilli(), 10))
	b.WriteByte('-')
	b.WriteString(randomSuffix(suffixLen))
	return b.String()
}

// randomSuffix draws n characters from the alphanumeric alphabet using
// crypto/rand. Modulo bias over a 36-character alphabet is ~0.4% per
// character, irrelevant for collision resistance at this length.
func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform RNG is broken; nothing
		// sensible to degrade to.
		panic(fmt.Sprintf("order: read random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(buf)
}
