// SPDX-License-Identifier: MIT

// Package bitint provides power-of-two helpers for FFT and buffer sizing.
// All operations are O(1), allocation-free and safe for real-time paths.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size. Exact powers of 2
// are returned unchanged; zero and negative inputs return 1. Subtracting 1
// before taking the bit length is what keeps exact powers from doubling.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. Powers of 2 have
// exactly one bit set, so n&(n-1) clears to zero only for them.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
