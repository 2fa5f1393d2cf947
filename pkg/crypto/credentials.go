// Package crypto encrypts data source secrets at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	envelopePrefix = "ENC("
	envelopeSuffix = ")"
)

var (
	// ErrInvalidKey is returned when the encryption key is empty.
	ErrInvalidKey = errors.New("invalid encryption key: must not be empty")
	// ErrDecryptionFailed is returned when decryption fails due to invalid ciphertext or wrong key.
	ErrDecryptionFailed = errors.New("decryption failed: invalid ciphertext or wrong key")
)

// CredentialEncryptor provides AES-256-GCM encryption for secret config values.
type CredentialEncryptor struct {
	gcm cipher.AEAD
}

// NewCredentialEncryptor creates an encryptor from a key string: either a
// base64-encoded 32-byte key or any passphrase, which is hashed with SHA-256.
func NewCredentialEncryptor(keyInput string) (*CredentialEncryptor, error) {
	if keyInput == "" {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(deriveKey(keyInput))
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &CredentialEncryptor{gcm: gcm}, nil
}

func deriveKey(keyInput string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(keyInput); err == nil && len(decoded) == 32 {
		return decoded
	}
	hash := sha256.Sum256([]byte(keyInput))
	return hash[:]
}

// Encrypt returns base64(nonce || ciphertext || tag). Empty input stays empty.
func (e *CredentialEncryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := e.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Empty input stays empty.
func (e *CredentialEncryptor) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode failed", ErrDecryptionFailed)
	}

	nonceSize := e.gcm.NonceSize()
	if len(data) < nonceSize+e.gcm.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}

	plaintext, err := e.gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrDecryptionFailed)
	}

	return string(plaintext), nil
}

// Seal encrypts a config value into its stored form, ENC(<base64>).
// Values already sealed are returned unchanged.
func (e *CredentialEncryptor) Seal(value string) (string, error) {
	if value == "" || IsSealed(value) {
		return value, nil
	}
	ct, err := e.Encrypt(value)
	if err != nil {
		return "", err
	}
	return envelopePrefix + ct + envelopeSuffix, nil
}

// Open decrypts a sealed value. Plain values pass through.
func (e *CredentialEncryptor) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	return e.Decrypt(strings.TrimSuffix(strings.TrimPrefix(value, envelopePrefix), envelopeSuffix))
}

// IsSealed reports whether value is in the ENC(...) stored form.
func IsSealed(value string) bool {
	return len(value) > len(envelopePrefix)+len(envelopeSuffix) &&
		strings.HasPrefix(value, envelopePrefix) &&
		strings.HasSuffix(value, envelopeSuffix)
}
