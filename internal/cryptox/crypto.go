// Package cryptox implements the authenticated-encryption stage of the
// payload pipeline: PBKDF2 key derivation plus AES-256-GCM.
//
// The derivation parameters (SHA-256, 100000 iterations, 32-byte key) are
// fixed and must be identical on the encode and decode sides; a locator
// encrypted with one parameter set cannot be opened with another.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/aethershare/aether/internal/common"
)

// Sealed is the result of encrypting a payload: a fresh random salt and
// nonce plus the authenticated ciphertext.
type Sealed struct {
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte
}

// DeriveKey stretches a password into an AES-256 key. Deterministic for a
// fixed (password, salt) pair.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, common.KDFIterations, common.KeySize, sha256.New)
}

// Encrypt seals plain under a key derived from password. A new random
// 16-byte salt and 12-byte nonce are generated per call.
func Encrypt(plain, password []byte) (*Sealed, error) {
	salt := common.GenerateRandByteArray(common.SaltSize)
	nonce := common.GenerateRandByteArray(common.NonceSize)

	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ciphertext := aesgcm.Seal(nil, nonce, plain, nil)

	return &Sealed{Salt: salt, Nonce: nonce, Ciphertext: ciphertext}, nil
}

// Decrypt opens a sealed payload. Every failure mode — wrong password,
// flipped ciphertext bit, mangled nonce — surfaces as the single
// common.ErrAuthentication, with no detail about the cause.
func Decrypt(ciphertext, password, salt, nonce []byte) ([]byte, error) {
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(nonce) != aesgcm.NonceSize() {
		return nil, common.ErrAuthentication
	}

	plain, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrAuthentication
	}

	return plain, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return aesgcm, nil
}
