package store

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// ChecksumAlgorithm names a supported digest algorithm.
type ChecksumAlgorithm string

const (
	ChecksumBlake3 ChecksumAlgorithm = "blake3"
	ChecksumSHA256 ChecksumAlgorithm = "sha256"
	ChecksumSHA512 ChecksumAlgorithm = "sha512"
)

// Checksum digests data with the named algorithm and returns the result
// as "algorithm:hexdigest".
func Checksum(algorithm ChecksumAlgorithm, data []byte) (string, error) {
	switch algorithm {
	case ChecksumBlake3:
		sum := blake3.Sum256(data)
		return format(algorithm, sum[:]), nil
	case ChecksumSHA256:
		sum := sha256.Sum256(data)
		return format(algorithm, sum[:]), nil
	case ChecksumSHA512:
		sum := sha512.Sum512(data)
		return format(algorithm, sum[:]), nil
	default:
		return "", fmt.Errorf("checksum: unknown algorithm %q", algorithm)
	}
}

func format(algorithm ChecksumAlgorithm, sum []byte) string {
	return string(algorithm) + ":" + hex.EncodeToString(sum)
}

// VerifyChecksum re-digests data with the algorithm named in expected
// ("algorithm:hexdigest") and fails if the digests differ.
func VerifyChecksum(expected string, data []byte) error {
	algorithm, _, ok := strings.Cut(expected, ":")
	if !ok {
		return fmt.Errorf("verify checksum: malformed checksum %q", expected)
	}
	actual, err := Checksum(ChecksumAlgorithm(algorithm), data)
	if err != nil {
		return fmt.Errorf("verify checksum: %w", err)
	}
	if actual != expected {
		return fmt.Errorf("verify checksum: mismatch: expected %s, computed %s", expected, actual)
	}
	return nil
}
