package blockcrypt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
algorithm: des
mode: CBC
padding: PKCS7
key: "01020304050607"
iv: "0000000000000000"
chunk_size: 1024
parallel:
  enabled: true
  max_workers: 4
  min_blocks: 8
`

func TestParseParams(t *testing.T) {
	p, err := ParseParams([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "des", p.Algorithm)
	assert.Equal(t, "CBC", p.Mode)
	assert.Equal(t, 1024, p.ChunkSize)
	assert.Equal(t, 4, p.Parallel.MaxWorkers)
}

func TestParamsNewContext(t *testing.T) {
	p, err := ParseParams([]byte(sampleConfig))
	require.NoError(t, err)

	ctx, err := p.NewContext()
	require.NoError(t, err)
	defer ctx.Close()

	payload := []byte("configured engine")
	ct, err := ctx.Encrypt(payload)
	require.NoError(t, err)
	pt, err := ctx.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, payload, pt)
}

func TestLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0600))

	p, err := LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, "des", p.Algorithm)

	_, err = LoadParams(filepath.Join(t.TempDir(), "missing.yaml"))
	_, ok := AsIOError(err)
	assert.True(t, ok)
}

func TestParamsValidation(t *testing.T) {
	bad := []string{
		"mode: CBC\npadding: PKCS7\nkey: \"00\"",                      // missing algorithm
		"algorithm: des\nmode: XTS\npadding: PKCS7\nkey: \"00\"",      // unknown mode
		"algorithm: des\nmode: CBC\npadding: PKCS99\nkey: \"00\"",     // unknown padding
		"algorithm: des\nmode: CBC\npadding: PKCS7\nkey: \"zz\"",      // bad hex
		"algorithm: des\nmode: CBC\npadding: PKCS7",                   // missing key
		"algorithm: des\nmode: CBC\npadding: PKCS7\nkey: [not, text]", // bad YAML shape
	}
	for i, doc := range bad {
		_, err := ParseParams([]byte(doc))
		assert.Error(t, err, "case %d", i)
	}
}

func TestNewCipherNames(t *testing.T) {
	for _, name := range []string{"des", "3des", "deal", "frog", "rc4", "rijndael-128", "rijndael-192", "rijndael-256"} {
		c, err := NewCipher(name)
		require.NoError(t, err, name)
		require.NotNil(t, c)
	}
	_, err := NewCipher("rot13")
	assert.Error(t, err)
}
