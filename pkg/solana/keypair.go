package solana

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// KeypairEnv is the environment variable checked first for key material.
const KeypairEnv = "MANGO_KEYPAIR"

// DefaultKeypairPath is the fallback location of the signer keypair,
// relative to the user's home directory.
const DefaultKeypairPath = ".config/solana/mango-mainnet.json"

// Keypair wraps an ed25519 signing key.
type Keypair struct {
	priv ed25519.PrivateKey
}

// LoadKeypair resolves the signer key material: the KeypairEnv environment
// variable when set, otherwise the well-known file under the home directory.
// Both hold the JSON byte-array encoding of the 64-byte secret key. Failure
// to find either is fatal for client construction.
func LoadKeypair() (*Keypair, error) {
	if raw := os.Getenv(KeypairEnv); raw != "" {
		kp, err := ParseKeypair([]byte(raw))
		return kp, errors.Wrapf(err, "parse %s", KeypairEnv)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "resolve home directory")
	}
	path := filepath.Join(home, DefaultKeypairPath)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "no %s set and keypair file unreadable", KeypairEnv)
	}
	kp, err := ParseKeypair(data)
	return kp, errors.Wrapf(err, "parse %s", path)
}

// ParseKeypair decodes the JSON byte-array keypair format.
func ParseKeypair(data []byte) (*Keypair, error) {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "keypair must be a JSON byte array")
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("keypair must be %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	priv := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	for i, b := range raw {
		if b < 0 || b > 255 {
			return nil, errors.Errorf("keypair byte %d out of range: %d", i, b)
		}
		priv[i] = byte(b)
	}
	return &Keypair{priv: priv}, nil
}

// GenerateKeypair creates a fresh random keypair. Useful for tests and
// throwaway identities; production signers come from LoadKeypair.
func GenerateKeypair() (*Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "generate keypair")
	}
	return &Keypair{priv: priv}, nil
}

// PublicKey returns the signer's address.
func (k *Keypair) PublicKey() PublicKey {
	var pk PublicKey
	copy(pk[:], k.priv.Public().(ed25519.PublicKey))
	return pk
}

// Sign signs a message with the secret key.
func (k *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(k.priv, message)
}
