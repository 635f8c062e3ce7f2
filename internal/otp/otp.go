// Package otp generates one-time login codes.
package otp

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/dom/musikkhylla/internal/domain"
)

var ten = big.NewInt(10)

// Generator draws codes from a cryptographically secure source.
type Generator struct {
	rand io.Reader
}

func NewGenerator() *Generator {
	return &Generator{rand: rand.Reader}
}

// Generate returns a fixed-width numeric code. Each digit is drawn
// independently and uniformly from 0-9.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, domain.LoginCodeLength)
	for i := range buf {
		n, err := rand.Int(g.rand, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}
