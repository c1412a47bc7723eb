package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethershare/aether/internal/common"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt-16byt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != common.KeySize {
		t.Errorf("expected %d-byte key, got %d", common.KeySize, len(key1))
	}
}

func TestDeriveKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveKey(password, []byte("salt-1"))
	key2 := DeriveKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}

	key3 := DeriveKey([]byte("other-password"), []byte("salt-1"))
	if bytes.Equal(key1, key3) {
		t.Errorf("expected different results for different passwords, got same")
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		plain []byte
	}{
		{name: "empty", plain: []byte{}},
		{name: "text", plain: []byte("the payload")},
		{name: "binary", plain: bytes.Repeat([]byte{0x00, 0xff, 0x7f}, 1000)},
	}

	password := []byte("correct horse battery staple")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := Encrypt(tt.plain, password)
			require.NoError(t, err)
			require.Len(t, sealed.Salt, common.SaltSize)
			require.Len(t, sealed.Nonce, common.NonceSize)

			got, err := Decrypt(sealed.Ciphertext, password, sealed.Salt, sealed.Nonce)
			require.NoError(t, err)
			assert.Equal(t, tt.plain, got)
		})
	}
}

func TestEncrypt_FreshSaltAndNonce(t *testing.T) {
	password := []byte("pw")
	plain := []byte("same input")

	a, err := Encrypt(plain, password)
	require.NoError(t, err)
	b, err := Encrypt(plain, password)
	require.NoError(t, err)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestDecrypt_WrongPassword(t *testing.T) {
	sealed, err := Encrypt([]byte("payload"), []byte("right"))
	require.NoError(t, err)

	_, err = Decrypt(sealed.Ciphertext, []byte("wrong"), sealed.Salt, sealed.Nonce)
	assert.ErrorIs(t, err, common.ErrAuthentication)
}

func TestDecrypt_TamperDetection(t *testing.T) {
	password := []byte("pw")
	sealed, err := Encrypt([]byte("integrity matters"), password)
	require.NoError(t, err)

	// Flip a single bit in every byte position in turn; decryption must
	// fail with the same error each time.
	for i := range sealed.Ciphertext {
		tampered := make([]byte, len(sealed.Ciphertext))
		copy(tampered, sealed.Ciphertext)
		tampered[i] ^= 0x01

		_, err := Decrypt(tampered, password, sealed.Salt, sealed.Nonce)
		assert.ErrorIs(t, err, common.ErrAuthentication, "byte %d", i)
	}
}

func TestDecrypt_BadNonceLength(t *testing.T) {
	sealed, err := Encrypt([]byte("payload"), []byte("pw"))
	require.NoError(t, err)

	_, err = Decrypt(sealed.Ciphertext, []byte("pw"), sealed.Salt, sealed.Nonce[:8])
	assert.ErrorIs(t, err, common.ErrAuthentication)
}
