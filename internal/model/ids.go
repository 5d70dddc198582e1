package model

import "math/rand/v2"

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.IntN(len(base36))]
	}
	return string(b)
}

// NewOrderID returns "ORD-" followed by nine upper-case base36 characters.
func NewOrderID() string {
	b := []byte(randomBase36(9))
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		}
	}
	return "ORD-" + string(b)
}

// NewUserID returns "u-" followed by nine lower-case base36 characters.
func NewUserID() string { return "u-" + randomBase36(9) }

// NewProductID returns "p" followed by six lower-case base36 characters.
func NewProductID() string { return "p" + randomBase36(6) }
