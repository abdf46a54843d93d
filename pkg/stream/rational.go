// Package stream defines the immutable description of a HAP video stream:
// frame rate, duration, dimensions and the frame table.
package stream

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Rational is an exact fraction Num/Den.
// Frame rates such as 24000/1001 are kept as rationals so that
// time-to-frame mapping never accumulates float rounding drift.
type Rational struct {
	Num int64
	Den int64
}

// NewRational returns num/den reduced to lowest terms.
func NewRational(num, den int64) Rational {
	return Rational{Num: num, Den: den}.Reduce()
}

// Valid reports whether the rational is a positive, well-formed fraction.
func (r Rational) Valid() bool {
	return r.Den > 0 && r.Num > 0
}

// Reduce returns the fraction in lowest terms with a positive denominator.
func (r Rational) Reduce() Rational {
	if r.Den == 0 {
		return r
	}
	if r.Den < 0 {
		r.Num, r.Den = -r.Num, -r.Den
	}
	g := gcd(abs(r.Num), r.Den)
	if g > 1 {
		r.Num /= g
		r.Den /= g
	}
	return r
}

// Float64 returns the approximate value. Do not use it for frame mapping.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Inverse returns Den/Num.
func (r Rational) Inverse() Rational {
	return Rational{Num: r.Den, Den: r.Num}.Reduce()
}

// String formats the rational as "num/den", or "num" when den is 1.
func (r Rational) String() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// ParseRational parses "30000/1001", "25" or "29.97".
// Decimal input is converted exactly (29.97 -> 2997/100).
func ParseRational(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rational{}, fmt.Errorf("parse rational: empty string")
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
		if err != nil {
			return Rational{}, fmt.Errorf("parse rational %q: %w", s, err)
		}
		d, err := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
		if err != nil {
			return Rational{}, fmt.Errorf("parse rational %q: %w", s, err)
		}
		if d == 0 {
			return Rational{}, fmt.Errorf("parse rational %q: zero denominator", s)
		}
		return NewRational(n, d), nil
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Rational{}, fmt.Errorf("parse rational %q: invalid syntax", s)
	}
	if !r.Num().IsInt64() || !r.Denom().IsInt64() {
		return Rational{}, fmt.Errorf("parse rational %q: out of range", s)
	}
	return NewRational(r.Num().Int64(), r.Denom().Int64()), nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
