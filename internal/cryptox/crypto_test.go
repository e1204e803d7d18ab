package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Content string `json:"content"`
	Notes   string `json:"notes,omitempty"`
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	original := payload{Content: "binance: user@example.com", Notes: "2FA on phone"}
	ciphertext, iv, err := Encrypt(original, key)
	require.NoError(t, err)
	require.NotEmpty(t, ciphertext)
	require.Len(t, iv, 12)

	var decrypted payload
	require.NoError(t, Decrypt(ciphertext, iv, key, &decrypted))
	assert.Equal(t, original, decrypted)
}

func TestDecryptWrongKeyFails(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	other, err := GenerateKey()
	require.NoError(t, err)

	ciphertext, iv, err := Encrypt(payload{Content: "secret"}, key)
	require.NoError(t, err)

	var out payload
	err = Decrypt(ciphertext, iv, other, &out)
	assert.ErrorIs(t, err, ErrDecryption)
	assert.Empty(t, out.Content)
}

func TestDecryptTamperedCiphertextFails(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	ciphertext, iv, err := Encrypt(payload{Content: "secret"}, key)
	require.NoError(t, err)

	ciphertext[0] ^= 0x01

	var out payload
	err = Decrypt(ciphertext, iv, key, &out)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestDecryptMalformedIVFails(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	ciphertext, _, err := Encrypt(payload{Content: "secret"}, key)
	require.NoError(t, err)

	var out payload
	err = Decrypt(ciphertext, []byte("short"), key, &out)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestFreshIVPerCall(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	_, iv1, err := Encrypt(payload{Content: "same input"}, key)
	require.NoError(t, err)
	_, iv2, err := Encrypt(payload{Content: "same input"}, key)
	require.NoError(t, err)

	assert.NotEqual(t, iv1, iv2)
}

func TestGenerateKeyUnique(t *testing.T) {
	k1, err := GenerateKey()
	require.NoError(t, err)
	k2, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
	assert.Len(t, k1, KeySize)
}

func TestExportImportKey(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	exported := ExportKey(key)
	imported, err := ImportKey(exported)
	require.NoError(t, err)
	assert.Equal(t, key, imported)
}

func TestImportKeyRejectsGarbage(t *testing.T) {
	_, err := ImportKey("not base64 !!!")
	assert.Error(t, err)

	_, err = ImportKey("c2hvcnQ")
	assert.Error(t, err)
}
