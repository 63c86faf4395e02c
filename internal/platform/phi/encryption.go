// Package phi encrypts free-text health information before it reaches the
// profile store.
package phi

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// prefix marks values written by Encryptor so that rows stored before a key
// was configured still read back as plaintext.
const prefix = "enc:v1:"

// FieldCipher seals and opens single string fields.
type FieldCipher interface {
	Seal(plaintext string) (string, error)
	Open(stored string) (string, error)
}

// Encryptor provides AES-256-GCM field-level encryption.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor creates an Encryptor with the given 32-byte key.
func NewEncryptor(key []byte) (*Encryptor, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("phi encryptor: key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("phi encryptor: create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("phi encryptor: create GCM: %w", err)
	}

	return &Encryptor{aead: aead}, nil
}

// Seal encrypts plaintext and returns the prefixed base64 of nonce+ciphertext.
// The empty string is stored as is.
func (e *Encryptor) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("phi seal: generate nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Values without the prefix are returned unchanged.
func (e *Encryptor) Open(stored string) (string, error) {
	if !strings.HasPrefix(stored, prefix) {
		return stored, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, prefix))
	if err != nil {
		return "", fmt.Errorf("phi open: base64 decode: %w", err)
	}

	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("phi open: ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("phi open: %w", err)
	}
	return string(plaintext), nil
}

// Plaintext is the FieldCipher used when no key is configured.
type Plaintext struct{}

func (Plaintext) Seal(s string) (string, error) { return s, nil }

func (Plaintext) Open(s string) (string, error) {
	if strings.HasPrefix(s, prefix) {
		return "", fmt.Errorf("phi open: value is encrypted but no key is configured")
	}
	return s, nil
}

// NewFieldCipher returns an Encryptor for a non-empty key and Plaintext
// otherwise.
func NewFieldCipher(key []byte) (FieldCipher, error) {
	if len(key) == 0 {
		return Plaintext{}, nil
	}
	return NewEncryptor(key)
}
