// Package refgen generates human-readable reference numbers for domain
// records (leads, sales, payment records, vendor orders, follow-ups).
// This is part of the platform layer and contains no business logic.
package refgen

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Alphabet for the random suffix. 0/O and 1/I are excluded so references
// survive being read over the phone.
const alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const suffixLen = 6

// NewRef returns a reference of the form PREFIX-YYYYMMDD-XXXXXX, where the
// suffix is random. References are unique with high probability but not
// strictly monotonic within a day.
func NewRef(prefix string) string {
	return newRefAt(prefix, time.Now().UTC())
}

func newRefAt(prefix string, at time.Time) string {
	buf := make([]byte, suffixLen)
	// rand.Read never fails on supported platforms; it panics internally on
	// a broken entropy source, which is preferable to issuing colliding refs.
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), string(buf))
}
