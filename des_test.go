package blockcrypt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDESKnownVector(t *testing.T) {
	// Key of seven zero bytes normalizes to 0x01 x8 after parity
	// regeneration; encrypting the all-zero block yields the published
	// fixed point.
	des := NewDES()
	require.NoError(t, des.Initialize(make([]byte, 7)))

	ct, err := des.EncryptBlock(make([]byte, 8))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x8C, 0xA6, 0x4D, 0xE9, 0xC1, 0xB1, 0x23, 0xA7}, ct)

	pt, err := des.DecryptBlock(ct)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), pt)
}

func TestDESParityKeyEquivalence(t *testing.T) {
	// The 8-byte parity form of the all-zero raw key is 0x01 x8; both must
	// load the same schedule.
	raw := NewDES()
	require.NoError(t, raw.Initialize(make([]byte, 7)))
	parity := NewDES()
	require.NoError(t, parity.Initialize(bytes.Repeat([]byte{0x01}, 8)))

	block := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	a, err := raw.EncryptBlock(block)
	require.NoError(t, err)
	b, err := parity.EncryptBlock(block)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDESRoundKeys(t *testing.T) {
	des := NewDES()
	keys, err := des.GenerateRoundKeys([]byte{0x13, 0x34, 0x57, 0x79, 0x9B, 0xBC, 0xDF, 0xF1})
	require.NoError(t, err)
	require.Len(t, keys, 16)
	for i, k := range keys {
		assert.Len(t, k, 6, "round key %d", i)
	}
}

func TestDESRoundTrip(t *testing.T) {
	des := NewDES()
	require.NoError(t, des.Initialize([]byte{0xA1, 0xB2, 0xC3, 0xD4, 0xE5, 0xF6, 0x07}))

	data := bytes.Repeat([]byte("blocks07"), 4)
	ct, err := des.Encrypt(data)
	require.NoError(t, err)
	assert.NotEqual(t, data, ct)

	pt, err := des.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, data, pt)
}

func TestDESInvalidInputs(t *testing.T) {
	des := NewDES()

	assert.Error(t, des.Initialize(make([]byte, 6)))
	_, err := des.EncryptBlock(make([]byte, 8))
	assert.ErrorIs(t, err, ErrCipherNotInitialized)

	require.NoError(t, des.Initialize(make([]byte, 8)))
	_, err = des.EncryptBlock(make([]byte, 7))
	assert.ErrorIs(t, err, ErrInvalidBlockSize)
	_, err = des.Encrypt(make([]byte, 12))
	assert.Error(t, err)
}

func TestTripleDESDegeneratesToDES(t *testing.T) {
	key := []byte{0x0B, 0x16, 0x21, 0x2C, 0x37, 0x42, 0x4D}

	single := NewDES()
	require.NoError(t, single.Initialize(key))
	triple := NewTripleDES()
	require.NoError(t, triple.Initialize(bytes.Repeat(key, 3)))

	block := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04}
	want, err := single.EncryptBlock(block)
	require.NoError(t, err)
	got, err := triple.EncryptBlock(block)
	require.NoError(t, err)
	assert.Equal(t, want, got, "E(K)D(K)E(K) must reduce to E(K)")
}

func TestTripleDESRoundTrip(t *testing.T) {
	for _, size := range []int{21, 24} {
		triple := NewTripleDES()
		key := make([]byte, size)
		for i := range key {
			key[i] = byte(i * 7)
		}
		require.NoError(t, triple.Initialize(key))

		data := bytes.Repeat([]byte{0x5C}, 40)
		ct, err := triple.Encrypt(data)
		require.NoError(t, err)
		pt, err := triple.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, data, pt, "key size %d", size)
	}

	assert.Error(t, NewTripleDES().Initialize(make([]byte, 16)))
}
