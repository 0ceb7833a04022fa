// Package digest provides the hash functions used to fingerprint blocks.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Set of supported hash algorithm names.
const (
	AlgSHA256    = "sha256"
	AlgKeccak256 = "keccak256"
)

// Hasher takes a slice of bytes and returns the lowercase hex encoding of
// its 32 byte digest, without a 0x prefix.
type Hasher func(data []byte) string

// SHA256 hashes the data using sha256.
func SHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Keccak256 hashes the data using the Ethereum flavor of sha3.
func Keccak256(data []byte) string {
	return hex.EncodeToString(crypto.Keccak256(data))
}

// Parse returns the hasher for the specified algorithm name.
func Parse(alg string) (Hasher, error) {
	switch strings.ToLower(alg) {
	case "", AlgSHA256:
		return SHA256, nil
	case AlgKeccak256:
		return Keccak256, nil
	}

	return nil, fmt.Errorf("unknown hash algorithm %q", alg)
}

// IsHash reports if the string is a 32 byte hex encoded digest as produced
// by any of the hashers in this package.
func IsHash(s string) bool {
	b, err := hexutil.Decode("0x" + s)
	if err != nil {
		return false
	}

	return len(b) == 32 && strings.ToLower(s) == s
}
