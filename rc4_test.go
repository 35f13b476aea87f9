package blockcrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRC4KeystreamVectors(t *testing.T) {
	// RFC 6229 test vectors: keystream equals the encryption of zeros.
	tests := []struct {
		name string
		key  []byte
		want []byte
	}{
		{
			"40-bit key",
			[]byte{0x01, 0x02, 0x03, 0x04, 0x05},
			[]byte{
				0xB2, 0x39, 0x63, 0x05, 0xF0, 0x3D, 0xC0, 0x27,
				0xCC, 0xC3, 0x52, 0x4A, 0x0A, 0x11, 0x18, 0xA8,
			},
		},
		{
			"56-bit key",
			[]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
			[]byte{
				0x29, 0x3F, 0x02, 0xD4, 0x7F, 0x37, 0xC9, 0xB6,
				0x33, 0xF2, 0xAF, 0x52, 0x85, 0xFE, 0xB4, 0x6B,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc4 := NewRC4()
			require.NoError(t, rc4.Initialize(tt.key))
			out, err := rc4.Encrypt(make([]byte, 16))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRC4EncryptResetDecrypt(t *testing.T) {
	rc4 := NewRC4()
	require.NoError(t, rc4.Initialize([]byte("1234567890123456")))

	plaintext := []byte("Hello World!!! This is a test message for RC4 algorithm.")
	ct, err := rc4.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ct)

	require.NoError(t, rc4.Reset())
	pt, err := rc4.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, plaintext, pt)
}

func TestRC4KeySizes(t *testing.T) {
	rc4 := NewRC4()
	assert.Error(t, rc4.Initialize(make([]byte, 4)))
	assert.NoError(t, rc4.Initialize(make([]byte, 5)))
	assert.NoError(t, rc4.Initialize(make([]byte, 256)))
	assert.Equal(t, 0, rc4.BlockSize())
}

func TestRC4RequiresInitialize(t *testing.T) {
	rc4 := NewRC4()
	_, err := rc4.Encrypt([]byte("data"))
	assert.ErrorIs(t, err, ErrCipherNotInitialized)
	assert.ErrorIs(t, rc4.Reset(), ErrCipherNotInitialized)
}

func TestRC4StreamSplitEquivalence(t *testing.T) {
	// Processing a message in pieces equals processing it whole.
	key := []byte("stream-key")
	msg := make([]byte, 300)
	for i := range msg {
		msg[i] = byte(i)
	}

	whole := NewRC4()
	require.NoError(t, whole.Initialize(key))
	want, err := whole.Encrypt(msg)
	require.NoError(t, err)

	split := NewRC4()
	require.NoError(t, split.Initialize(key))
	first, err := split.Encrypt(msg[:113])
	require.NoError(t, err)
	second, err := split.Encrypt(msg[113:])
	require.NoError(t, err)
	assert.Equal(t, want, append(first, second...))
}
