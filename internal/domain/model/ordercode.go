package model

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
)

const (
	orderCodePrefix   = "ORD"
	orderCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	orderCodeSegments = 2
	orderCodeSegment  = 4
)

// NewOrderCode returns a short display code such as ORD-7KQ2-MZ4P.
func NewOrderCode() (string, error) {
	return GenerateOrderCode(rand.Reader)
}

// GenerateOrderCode builds an order code from the supplied entropy source.
// The alphabet has 32 symbols so every byte maps uniformly via its low five bits.
func GenerateOrderCode(entropy io.Reader) (string, error) {
	buf := make([]byte, orderCodeSegments*orderCodeSegment)
	if _, err := io.ReadFull(entropy, buf); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}

	var b strings.Builder
	b.WriteString(orderCodePrefix)
	for i, v := range buf {
		if i%orderCodeSegment == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(orderCodeAlphabet[int(v)%len(orderCodeAlphabet)])
	}
	return b.String(), nil
}
