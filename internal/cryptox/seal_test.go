package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sigrelay/internal/common"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	kp := mustKeyPair(t)

	sealed, err := SealPrivateKey(kp.PrivateKey, kp.PublicKey, []byte("correct horse"))
	require.NoError(t, err)
	assert.Len(t, sealed.Salt, SaltBytes)
	assert.NotContains(t, string(sealed.Ciphertext), kp.PrivateKey)

	got, err := OpenPrivateKey(sealed, kp.PublicKey, []byte("correct horse"))
	require.NoError(t, err)
	assert.Equal(t, kp.PrivateKey, got)
}

func TestOpen_Failures(t *testing.T) {
	kp := mustKeyPair(t)
	other := mustKeyPair(t)
	sealed, err := SealPrivateKey(kp.PrivateKey, kp.PublicKey, []byte("pw"))
	require.NoError(t, err)

	_, err = OpenPrivateKey(sealed, kp.PublicKey, []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrInvalidKey)

	_, err = OpenPrivateKey(sealed, other.PublicKey, []byte("pw"))
	assert.ErrorIs(t, err, common.ErrInvalidKey, "sealed blob is bound to its public key")

	_, err = OpenPrivateKey(nil, kp.PublicKey, []byte("pw"))
	assert.ErrorIs(t, err, common.ErrInvalidKey)
}

func TestSeal_RejectsMalformedKey(t *testing.T) {
	_, err := SealPrivateKey("nope", "", []byte("pw"))
	assert.ErrorIs(t, err, common.ErrInvalidKey)
}

func TestDeriveKEK_Deterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	k1 := DeriveKEK([]byte("secret-password"), salt)
	k2 := DeriveKEK([]byte("secret-password"), salt)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, KEKBytes)
	assert.NotEqual(t, k1, DeriveKEK([]byte("secret-password"), []byte("fedcba9876543210")))
}
