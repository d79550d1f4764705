package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	sealSaltLen  = 16
	sealNonceLen = 24
	sealKeyLen   = 32
)

// Sealer encrypts the opaque credential before it reaches the durable
// store, so the token is not recoverable by reading the kv file alone.
// The key material lives in a mode-0600 file beside the database.
type Sealer struct {
	secret []byte
}

// NewSealer loads the key file at keyPath, creating it with fresh random
// key material on first run.
func NewSealer(keyPath string) (*Sealer, error) {
	secret, err := os.ReadFile(keyPath)
	if err == nil && len(secret) == sealKeyLen {
		return &Sealer{secret: secret}, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read seal key file: %w", err)
	}

	secret = make([]byte, sealKeyLen)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate seal key: %w", err)
	}
	if err := os.WriteFile(keyPath, secret, 0600); err != nil {
		return nil, fmt.Errorf("failed to write seal key file: %w", err)
	}
	return &Sealer{secret: secret}, nil
}

// Seal encrypts plaintext and returns a base64 blob of salt|nonce|box.
func (s *Sealer) Seal(plaintext string) (string, error) {
	var salt [sealSaltLen]byte
	var nonce [sealNonceLen]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return "", err
	}
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}

	key, err := s.deriveKey(salt[:])
	if err != nil {
		return "", err
	}

	sealed := secretbox.Seal(nil, []byte(plaintext), &nonce, key)
	blob := append(append(salt[:], nonce[:]...), sealed...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Open decrypts a blob produced by Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("malformed sealed credential: %w", err)
	}
	if len(blob) < sealSaltLen+sealNonceLen {
		return "", errors.New("sealed credential too short")
	}

	var nonce [sealNonceLen]byte
	salt := blob[:sealSaltLen]
	copy(nonce[:], blob[sealSaltLen:sealSaltLen+sealNonceLen])

	key, err := s.deriveKey(salt)
	if err != nil {
		return "", err
	}

	plaintext, ok := secretbox.Open(nil, blob[sealSaltLen+sealNonceLen:], &nonce, key)
	if !ok {
		return "", errors.New("failed to open sealed credential")
	}
	return string(plaintext), nil
}

func (s *Sealer) deriveKey(salt []byte) (*[sealKeyLen]byte, error) {
	derived, err := scrypt.Key(s.secret, salt, 1<<15, 8, 1, sealKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive seal key: %w", err)
	}
	var key [sealKeyLen]byte
	copy(key[:], derived)
	return &key, nil
}
