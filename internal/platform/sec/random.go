// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// SixDigitCodeLength is the fixed length of numeric verification codes.
const SixDigitCodeLength = 6

// GenerateSixDigitCode returns a uniformly random numeric code of
// [SixDigitCodeLength] digits, leading zeros included.
func GenerateSixDigitCode() (string, error) {
	upperBound := big.NewInt(1_000_000)

	n, err := rand.Int(rand.Reader, upperBound)
	if err != nil {
		return "", fmt.Errorf("auth: failed to generate numeric code: %w", err)
	}

	return fmt.Sprintf("%0*d", SixDigitCodeLength, n.Int64()), nil
}

// IsSixDigitCode reports whether code has the shape produced by
// [GenerateSixDigitCode]: exactly [SixDigitCodeLength] ASCII digits.
func IsSixDigitCode(code string) bool {
	if len(code) != SixDigitCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
