package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const sealedPrefix = "sealed:"

// TokenSealer encrypts backend tokens before they are written to Redis,
// using AES-256 GCM with a key derived from the configured secret. The nonce
// is prepended to the ciphertext.
type TokenSealer struct {
	gcm cipher.AEAD
}

func NewTokenSealer(secret string) (*TokenSealer, error) {
	if secret == "" {
		return nil, errors.New("empty session encryption key")
	}
	keyHash := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(keyHash[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &TokenSealer{gcm: gcm}, nil
}

// Seal returns the encrypted form of plain. Empty input stays empty.
func (s *TokenSealer) Seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	ct := s.gcm.Seal(nonce, nonce, []byte(plain), nil)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(ct), nil
}

// Open reverses Seal. Values that were never sealed pass through unchanged.
func (s *TokenSealer) Open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return sealed, nil
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("malformed sealed token: %w", err)
	}
	n := s.gcm.NonceSize()
	if len(raw) < n {
		return "", errors.New("sealed token too short")
	}
	plain, err := s.gcm.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed token: %w", err)
	}
	return string(plain), nil
}
