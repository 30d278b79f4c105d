package solana

import (
	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Address length bounds for base58-encoded 32-byte public keys.
const (
	MinAddressLen = 32
	MaxAddressLen = 44
)

// ValidAddress reports whether s is a well-formed Solana address:
// base58-decodable (Bitcoin alphabet) to exactly 32 bytes.
func ValidAddress(s string) bool {
	if len(s) < MinAddressLen || len(s) > MaxAddressLen {
		return false
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == 32
}

// IsOnCurve reports whether the address is a valid ed25519 curve point.
// User wallets are on-curve; program derived addresses are not.
func IsOnCurve(address string) bool {
	decoded, err := base58.Decode(address)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}
