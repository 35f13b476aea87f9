package blockcrypt

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/absfs/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Password-derived key drives a YAML-configured engine through the sealed
// container format.
func TestIntegrationPasswordToSeal(t *testing.T) {
	pk, err := NewPasswordKey([]byte("integration password"), PasswordKeyConfig{
		KeySize:   16,
		MemoryKiB: 8 * 1024,
		Passes:    1,
	})
	require.NoError(t, err)
	defer pk.Close()
	salt, err := pk.GenerateSalt()
	require.NoError(t, err)
	key, err := pk.DeriveKey(salt)
	require.NoError(t, err)

	cipher, err := NewRijndael(16, DefaultPolynomial)
	require.NoError(t, err)
	ctx, err := NewContext(cipher, key, ModeCBC, PaddingANSIX923, make([]byte, 16))
	require.NoError(t, err)
	defer ctx.Close()

	payload := bytes.Repeat([]byte("sealed integration payload\n"), 64)
	var container bytes.Buffer
	require.NoError(t, Seal(ctx, &container, payload))

	got, err := Open(ctx, &container)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

// A file encrypted under an old key is recovered through the keyring after
// rotation, end to end over an in-memory filesystem.
func TestIntegrationKeyringOverFiles(t *testing.T) {
	fs, err := memfs.NewFS()
	require.NoError(t, err)

	oldKey := []byte{1, 2, 3, 4, 5, 6, 7}
	iv := bytes.Repeat([]byte{0x31}, 8)
	payload := bytes.Repeat([]byte("file under rotation "), 100)
	writeTestFile(t, fs, "/plain.bin", payload)

	factory := func(key []byte) (*Context, error) {
		return NewContext(NewDES(), key, ModeCBC, PaddingPKCS7, iv)
	}

	ctx, err := factory(oldKey)
	require.NoError(t, err)
	require.NoError(t, ctx.EncryptFileFS(fs, "/plain.bin", "/enc.bin", 1024))
	ctx.Close()

	kr, err := NewKeyring(oldKey)
	require.NoError(t, err)
	_, err = kr.Add([]byte{9, 8, 7, 6, 5, 4, 3})
	require.NoError(t, err)

	verify := func(pt []byte) bool { return bytes.HasPrefix(pt, []byte("file under rotation")) }
	got, err := kr.TryDecrypt(readTestFile(t, fs, "/enc.bin"), factory, verify)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

// The shared secret from a DH exchange keys the mode engine on both sides.
func TestIntegrationDHKeysEngine(t *testing.T) {
	p, ok := new(big.Int).SetString(modp2048, 16)
	require.True(t, ok)

	alice, err := NewDiffieHellman(p, big.NewInt(2))
	require.NoError(t, err)
	bob, err := NewDiffieHellman(p, big.NewInt(2))
	require.NoError(t, err)

	sharedA, err := alice.ComputeShared(bob.PublicKey())
	require.NoError(t, err)
	sharedB, err := bob.ComputeShared(alice.PublicKey())
	require.NoError(t, err)

	keyA := sharedA.Bytes()[:16]
	keyB := sharedB.Bytes()[:16]

	rA, err := NewRijndael(16, DefaultPolynomial)
	require.NoError(t, err)
	encrypting, err := NewContext(rA, keyA, ModeCTR, PaddingPKCS7, make([]byte, 16))
	require.NoError(t, err)
	defer encrypting.Close()

	rB, err := NewRijndael(16, DefaultPolynomial)
	require.NoError(t, err)
	decrypting, err := NewContext(rB, keyB, ModeCTR, PaddingPKCS7, make([]byte, 16))
	require.NoError(t, err)
	defer decrypting.Close()

	payload := []byte("message under the agreed key")
	ct, err := encrypting.Encrypt(payload)
	require.NoError(t, err)
	pt, err := decrypting.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, payload, pt)
}
