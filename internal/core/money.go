// Package core holds the domain types shared by the ledger sources, the
// report aggregator and both artifact compilers.
//
// This file contains the whole-unit Rupiah money type and its display
// formatting.
package core

import "strconv"

// Money is an amount in whole Indonesian Rupiah. The backend deals in whole
// units only; there is no minor-unit scale and no multi-currency support.
type Money struct {
	Rupiah int64
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Rupiah == 0
}

// Format renders the amount in the Indonesian locale convention: a "Rp"
// prefix, "." as thousands separator and no decimal places.
//
// Examples:
//
//	Money{500000}.Format() -> "Rp500.000"
//	Money{0}.Format()      -> "Rp0"
//	Money{-1250}.Format()  -> "-Rp1.250"
func (m Money) Format() string {
	n := m.Rupiah
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b = append(b, '.')
		}
		b = append(b, d)
	}
	s := "Rp" + string(b)
	if neg {
		return "-" + s
	}
	return s
}

// FormatRupiah is a convenience wrapper for raw int64 amounts.
func FormatRupiah(amount int64) string {
	return Money{Rupiah: amount}.Format()
}
