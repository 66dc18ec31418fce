package offload

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/dtncore/bpcore/pkg/bpe"
)

// sealer optionally encrypts bundle bytes at rest with AES-256-GCM,
// nonce prepended to the ciphertext, mirroring pkg/security/secrets.go's
// EncryptSecret/DecryptSecret convention.
type sealer struct {
	gcm cipher.AEAD
}

// newSealer builds a sealer from a 32-byte AES-256 key. A nil key yields
// a nil *sealer, meaning bundles are stored in plaintext.
func newSealer(key []byte) (*sealer, error) {
	if key == nil {
		return nil, nil
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("offload: encryption key must be 32 bytes for AES-256, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("offload: failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("offload: failed to create GCM: %w", err)
	}
	return &sealer{gcm: gcm}, nil
}

func (s *sealer) seal(plaintext []byte) ([]byte, error) {
	if s == nil {
		return plaintext, nil
	}

	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, bpe.Wrap(bpe.ErrGeneric, "offload: failed to generate nonce: %v", err)
	}
	return s.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *sealer) open(ciphertext []byte) ([]byte, error) {
	if s == nil {
		return ciphertext, nil
	}

	nonceSize := s.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, bpe.Wrap(bpe.ErrFailedIntegrityCheck, "offload: ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, bpe.Wrap(bpe.ErrFailedIntegrityCheck, "offload: failed to decrypt: %v", err)
	}
	return plaintext, nil
}
