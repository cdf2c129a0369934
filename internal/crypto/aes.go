// Package crypto encrypts the persisted settings blob so the SMTP password
// is never stored in the clear.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

// Crypter encrypts and decrypts data with AES-256-GCM.
type Crypter struct {
	key []byte
}

// NewFromKey derives a Crypter from a configured key string, which must be
// at least 32 bytes long; only the first 32 bytes are used.
func NewFromKey(key string) (*Crypter, error) {
	if len(key) < 32 {
		return nil, errors.New("crypto: key must be at least 32 bytes")
	}
	k := make([]byte, 32)
	copy(k, key[:32])
	return &Crypter{key: k}, nil
}

// Encrypt seals plaintext and returns the ciphertext with the nonce
// prepended.
func (c *Crypter) Encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens ciphertext produced by Encrypt.
func (c *Crypter) Decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("crypto: ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}

func (c *Crypter) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
