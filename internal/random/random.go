// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package random generates unguessable opaque strings for verification
// codes and recovery tokens.
package random

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// String returns a cryptographically random string of length n drawn from
// an alphanumeric alphabet.
func String(n int) (string, error) {
	buf := make([]byte, n)
	maxIdx := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, maxIdx)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}
