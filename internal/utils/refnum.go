package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const refSuffixLen = 4

// NewReferenceNumber builds a human-facing reference of the form
// EXP-YYYYMMDD-XXXX where XXXX is a random base-36 suffix. Uniqueness is
// collision-tolerant, not guaranteed; the internal expense ID is the real key.
func NewReferenceNumber(now time.Time) string {
	return fmt.Sprintf("EXP-%s-%s", now.Format("20060102"), randomBase36(refSuffixLen))
}

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomBase36(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(base36Alphabet[rand.Intn(len(base36Alphabet))])
	}
	return b.String()
}
