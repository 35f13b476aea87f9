package blockcrypt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sealTestContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := NewContext(NewDES(), []byte{1, 2, 3, 4, 5, 6, 7}, ModeCBC, PaddingPKCS7, make([]byte, 8))
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Close() })
	return ctx
}

func TestSealOpenRoundTrip(t *testing.T) {
	ctx := sealTestContext(t)

	// Compressible payload so the container is visibly smaller than raw.
	payload := bytes.Repeat([]byte("the same line of text over and over\n"), 200)

	var buf bytes.Buffer
	require.NoError(t, Seal(ctx, &buf, payload))
	assert.Less(t, buf.Len(), len(payload), "compressed container should shrink")

	got, err := Open(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestSealRejectsEmptyPayload(t *testing.T) {
	ctx := sealTestContext(t)
	var buf bytes.Buffer
	assert.ErrorIs(t, Seal(ctx, &buf, nil), ErrEmptyInput)
}

func TestOpenRejectsForeignData(t *testing.T) {
	ctx := sealTestContext(t)

	_, err := Open(ctx, bytes.NewReader([]byte("not a container at all")))
	assert.Error(t, err)
}

func TestOpenRejectsMismatchedContext(t *testing.T) {
	seal := sealTestContext(t)
	var buf bytes.Buffer
	require.NoError(t, Seal(seal, &buf, []byte("payload")))

	other, err := NewContext(NewDES(), []byte{1, 2, 3, 4, 5, 6, 7}, ModeECB, PaddingPKCS7, nil)
	require.NoError(t, err)
	defer other.Close()

	_, err = Open(other, &buf)
	assert.Error(t, err, "mode mismatch must be refused")
}

func TestSealUseAfterClose(t *testing.T) {
	ctx, err := NewContext(NewDES(), []byte{1, 2, 3, 4, 5, 6, 7}, ModeCBC, PaddingPKCS7, make([]byte, 8))
	require.NoError(t, err)
	ctx.Close()

	var buf bytes.Buffer
	assert.ErrorIs(t, Seal(ctx, &buf, []byte("data")), ErrContextClosed)
	_, err = Open(ctx, &buf)
	assert.ErrorIs(t, err, ErrContextClosed)
}
