// Package keys derives the session-bound disclosure key from a client supplied count.
package keys

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ErrInvalidCount is returned when the count parameter is not an integer
var ErrInvalidCount = errors.New("count must be an integer")

// Derive computes trunc(count*10000 + (count+4.2)*1000 + (count+1.1)*100 + count*10 + count mod 10).
// The integer products are exact and rounded to float64 once, the sum is
// evaluated left to right in float64, and the result is truncated toward zero
// without an int64 bound. mod is floored.
func Derive(count int64) string {
	mod := count % 10
	if mod < 0 {
		mod += 10
	}

	sum := scaled(count, 10000)
	// float64() around each product stops the compiler fusing it into the add
	sum += float64((float64(count) + 4.2) * 1000)
	sum += float64((float64(count) + 1.1) * 100)
	sum += scaled(count, 10)
	sum += float64(mod)

	key, _ := big.NewFloat(sum).Int(nil)
	return key.String()
}

// scaled returns count*factor rounded to the nearest float64
func scaled(count, factor int64) float64 {
	product := new(big.Int).Mul(big.NewInt(count), big.NewInt(factor))
	f, _ := new(big.Float).SetInt(product).Float64()
	return f
}

// ParseCount validates the raw query value
func ParseCount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing", ErrInvalidCount)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, raw)
	}
	return n, nil
}
