package cryptox

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sigrelay/internal/common"
)

func mustKeyPair(t *testing.T) KeyPair {
	t.Helper()
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	return kp
}

func TestGenerateKeyPair_Shape(t *testing.T) {
	kp := mustKeyPair(t)

	pub, err := hex.DecodeString(kp.PublicKey)
	require.NoError(t, err)
	assert.Len(t, pub, PublicKeySize)

	priv, err := hex.DecodeString(kp.PrivateKey)
	require.NoError(t, err)
	assert.Len(t, priv, PrivateKeySize)

	derived, err := PublicKeyOf(kp.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, derived)
	assert.NoError(t, ValidatePublicKey(kp.PublicKey))
}

func TestGenerateKeyPair_Fresh(t *testing.T) {
	a := mustKeyPair(t)
	b := mustKeyPair(t)
	assert.NotEqual(t, a.PrivateKey, b.PrivateKey)
	assert.NotEqual(t, a.PublicKey, b.PublicKey)
}

func TestPublicKeyOf_KnownPoints(t *testing.T) {
	tests := []struct {
		name string
		priv string
		pub  string
	}{
		{
			name: "generator",
			priv: strings.Repeat("00", 31) + "01",
			pub:  "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
		},
		{
			name: "three times generator",
			priv: strings.Repeat("00", 31) + "03",
			pub:  "f9308a019258c31049344f85f89d5229b531c845836f99b08601f113bce036f9",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PublicKeyOf(tt.priv)
			require.NoError(t, err)
			assert.Equal(t, tt.pub, got)
		})
	}
}

func TestPublicKeyOf_InvalidKey(t *testing.T) {
	tests := []struct {
		name string
		priv string
	}{
		{"not hex", "zz"},
		{"too short", "0102"},
		{"too long", strings.Repeat("11", 33)},
		{"zero scalar", strings.Repeat("00", 32)},
		{"above curve order", strings.Repeat("ff", 32)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PublicKeyOf(tt.priv)
			assert.ErrorIs(t, err, common.ErrInvalidKey)
		})
	}
}

func TestKeyPair_StringHidesPrivateKey(t *testing.T) {
	kp := mustKeyPair(t)
	assert.NotContains(t, kp.String(), kp.PrivateKey)
	assert.Contains(t, kp.String(), kp.PublicKey)
}

func TestSameKey(t *testing.T) {
	kp := mustKeyPair(t)
	other := mustKeyPair(t)

	assert.True(t, SameKey(kp.PublicKey, kp.PublicKey))
	assert.True(t, SameKey(kp.PublicKey, strings.ToUpper(kp.PublicKey)))
	assert.False(t, SameKey(kp.PublicKey, other.PublicKey))
	assert.False(t, SameKey(kp.PublicKey, "not-a-key"))
}

func TestValidatePublicKey(t *testing.T) {
	assert.ErrorIs(t, ValidatePublicKey("abc"), common.ErrInvalidKey)
	assert.ErrorIs(t, ValidatePublicKey(strings.Repeat("00", 33)), common.ErrInvalidKey)
	// x above the field prime names no point.
	assert.ErrorIs(t, ValidatePublicKey(strings.Repeat("ff", 32)), common.ErrInvalidKey)
}

func TestFingerprint(t *testing.T) {
	kp := mustKeyPair(t)
	fp := Fingerprint(kp.PublicKey)
	assert.Len(t, fp, 20)
	assert.Equal(t, fp, Fingerprint(kp.PublicKey))
	assert.NotEqual(t, fp, Fingerprint(mustKeyPair(t).PublicKey))
	assert.Equal(t, "invalid", Fingerprint("xyz"))
}

func TestHash(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", Hash([]byte("abc")))
}
