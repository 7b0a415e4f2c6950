package crypto

import (
	"crypto/rand"
	"errors"
)

const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	idSize     = 22 // 22 * 6 = 132 bits of entropy

	minAlphabetSize = 8
	maxAlphabetSize = 255
)

var (
	ErrAlphabetTooShort = errors.New("alphabet must contain at least 8 characters")
	ErrAlphabetTooLong  = errors.New("alphabet must contain no more than 255 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
	ErrInvalidIDSize    = errors.New("id size must be positive")
)

// IDGenerator produces random URL-safe identifiers for accounts, memberships
// and sessions.
type IDGenerator struct {
	alphabet string
	mask     byte
	size     int
}

var defaultIDs = &IDGenerator{alphabet: idAlphabet, mask: maskFor(len(idAlphabet)), size: idSize}

// NewID returns a 22 character identifier from the default alphabet.
func NewID() (string, error) {
	return defaultIDs.Generate()
}

func NewIDGenerator(alphabet string, size int) (*IDGenerator, error) {
	if size <= 0 {
		return nil, ErrInvalidIDSize
	}
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}
	if len(alphabet) < minAlphabetSize {
		return nil, ErrAlphabetTooShort
	}
	if len(alphabet) > maxAlphabetSize {
		return nil, ErrAlphabetTooLong
	}
	return &IDGenerator{alphabet: alphabet, mask: maskFor(len(alphabet)), size: size}, nil
}

// maskFor returns the smallest all-ones bit mask covering every alphabet index.
func maskFor(n int) byte {
	mask := 1
	for mask < n-1 {
		mask = mask<<1 | 1
	}
	return byte(mask)
}

// Generate draws random bytes and rejects indexes outside the alphabet, so
// every character is equally likely.
func (g *IDGenerator) Generate() (string, error) {
	id := make([]byte, 0, g.size)
	buf := make([]byte, g.size*2)

	for len(id) < g.size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			idx := int(b & g.mask)
			if idx >= len(g.alphabet) {
				continue
			}
			id = append(id, g.alphabet[idx])
			if len(id) == g.size {
				break
			}
		}
	}

	return string(id), nil
}
