package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the AES-256 key length produced by DeriveKey.
const KeySize = 32

var (
	ErrInvalidKeySize = errors.New("invalid key size")
	ErrEmptySecret    = errors.New("empty secret")
	ErrEncryption     = errors.New("encryption failed")
	ErrDecryption     = errors.New("decryption failed")
)

// Encryptor seals and opens opaque payloads. aad is authenticated but not
// encrypted; Decrypt fails unless it gets the aad the payload was sealed with.
type Encryptor interface {
	Encrypt(data, aad []byte) ([]byte, error)
	Decrypt(data, aad []byte) ([]byte, error)
}

// DeriveKey stretches an operator-supplied secret of any length into an
// AES-256 key with HKDF-SHA256. info separates keys used for different
// purposes from the same secret.
func DeriveKey(secret, info string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// NewAESEncryptor creates a new AES-GCM encryptor
func NewAESEncryptor(key []byte) (Encryptor, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrInvalidKeySize
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrEncryption
	}

	return &aesEncryptor{gcm: gcm}, nil
}

type aesEncryptor struct {
	gcm cipher.AEAD
}

// Encrypt returns nonce||ciphertext.
func (a *aesEncryptor) Encrypt(data, aad []byte) ([]byte, error) {
	nonce := make([]byte, a.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, ErrEncryption
	}

	return a.gcm.Seal(nonce, nonce, data, aad), nil
}

func (a *aesEncryptor) Decrypt(data, aad []byte) ([]byte, error) {
	nonceSize := a.gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, ErrDecryption
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := a.gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecryption
	}

	return plaintext, nil
}

// noopEncryptor passes payloads through untouched.
type noopEncryptor struct{}

// NewNoopEncryptor is used when no session secret is configured.
func NewNoopEncryptor() Encryptor { return noopEncryptor{} }

func (noopEncryptor) Encrypt(data, _ []byte) ([]byte, error) { return data, nil }
func (noopEncryptor) Decrypt(data, _ []byte) ([]byte, error) { return data, nil }
