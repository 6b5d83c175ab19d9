// Package amount converts between the token bridge's wire amounts and an asset's native precision.
//
// Amounts cross chains as fixed-point values with at most MaxDecimals fractional digits, whatever the
// asset's native decimals are. For an asset with D decimals a wire value v denormalizes to
//
//	v * 10^(D-8)   when D > 8
//	v / 10^(8-D)   when D <= 8 (floor)
//
// Native amounts are uint64. Results that don't fit fail with ErrOverflow; nothing wraps or truncates.
package amount

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// MaxDecimals is the precision of wire amounts.
const MaxDecimals = 8

var ErrOverflow = errors.New("amount overflows native precision")

// pow10 returns 10^exp, reporting overflow past 256 bits.
func pow10(exp uint8) (*uint256.Int, bool) {
	ten := uint256.NewInt(10)
	result := uint256.NewInt(1)
	for i := uint8(0); i < exp; i++ {
		if _, overflow := result.MulOverflow(result, ten); overflow {
			return nil, true
		}
	}
	return result, false
}

// Denormalize scales a wire amount to an asset with the given decimals. Division rounds toward zero,
// which is exact for amounts normalized on the sending side.
func Denormalize(v *uint256.Int, decimals uint8) (uint64, error) {
	if v == nil || v.IsZero() {
		return 0, nil
	}

	var native *uint256.Int
	if decimals > MaxDecimals {
		factor, overflow := pow10(decimals - MaxDecimals)
		if overflow {
			return 0, fmt.Errorf("%w: scale factor 10^%d", ErrOverflow, decimals-MaxDecimals)
		}
		var mulOverflow bool
		native, mulOverflow = new(uint256.Int).MulOverflow(v, factor)
		if mulOverflow {
			return 0, fmt.Errorf("%w: %s * 10^%d", ErrOverflow, v.ToBig(), decimals-MaxDecimals)
		}
	} else {
		factor, _ := pow10(MaxDecimals - decimals)
		native = new(uint256.Int).Div(v, factor)
	}

	if !native.IsUint64() {
		return 0, fmt.Errorf("%w: %s with %d decimals", ErrOverflow, v.ToBig(), decimals)
	}
	return native.Uint64(), nil
}

// Normalize is the inverse of Denormalize as the sending side applies it: a native amount is truncated
// to MaxDecimals of precision and expressed in wire units.
func Normalize(native uint64, decimals uint8) *uint256.Int {
	v := uint256.NewInt(native)
	if decimals > MaxDecimals {
		factor, overflow := pow10(decimals - MaxDecimals)
		if overflow {
			// Every uint64 is below the factor.
			return new(uint256.Int)
		}
		return v.Div(v, factor)
	}
	factor, _ := pow10(MaxDecimals - decimals)
	// 10^8 * (2^64-1) fits easily in 256 bits.
	return v.Mul(v, factor)
}

// Truncate drops the digits of a native amount that can't survive a round trip through the wire format.
func Truncate(native uint64, decimals uint8) uint64 {
	if decimals <= MaxDecimals {
		return native
	}
	factor, overflow := pow10(decimals - MaxDecimals)
	if overflow || !factor.IsUint64() {
		return 0
	}
	f := factor.Uint64()
	return native - native%f
}
