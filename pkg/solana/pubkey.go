package solana

import (
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// PublicKey is a 32-byte account address, rendered base58 on the wire.
type PublicKey [32]byte

// ParsePublicKey decodes a base58 address.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, errors.Wrapf(err, "invalid public key %q", s)
	}
	if len(raw) != len(pk) {
		return pk, errors.Errorf("invalid public key %q: %d bytes", s, len(raw))
	}
	copy(pk[:], raw)
	return pk, nil
}

// String renders the address in base58.
func (p PublicKey) String() string {
	return base58.Encode(p[:])
}

// IsZero reports whether the key is the all-zero address.
func (p PublicKey) IsZero() bool {
	return p == PublicKey{}
}

// Equals compares two addresses.
func (p PublicKey) Equals(other PublicKey) bool {
	return p == other
}
