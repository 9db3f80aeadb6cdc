package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter specifies the number of random bytes to generate before
// encoding them as a hexadecimal string, so the result is twice as long.
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {

	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// MakeVerificationCode returns a zero-padded numeric code of
// VerificationCodeLength digits that differs from previous.
func MakeVerificationCode(previous string) (string, error) {
	max := big.NewInt(1_000_000)

	for {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("%0*d", VerificationCodeLength, n.Int64())
		if code != previous {
			return code, nil
		}
	}
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
