package blockcrypt

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Context is the mode engine: it borrows a block cipher, owns a padding
// provider and its own copies of the IV and a random seed block, and
// evaluates the cipher under the configured mode.
//
// A Context is not safe for concurrent calls; callers serialize operations
// on one Context. The underlying cipher, once initialized, is safe to share
// across goroutines for independent blocks, which the engine exploits for
// parallel modes.
type Context struct {
	cipher     BlockCipher
	mode       EncryptionMode
	padder     *Padder
	iv         []byte
	randomData []byte
	blockSize  int
	parallel   ParallelConfig
	closed     bool
}

// ContextOption adjusts optional Context behaviour.
type ContextOption func(*Context)

// WithParallelConfig overrides the parallel dispatch configuration.
func WithParallelConfig(cfg ParallelConfig) ContextOption {
	return func(c *Context) { c.parallel = cfg }
}

// NewContext builds a mode engine around cipher. The cipher is initialized
// with key. Every non-ECB mode requires an IV of exactly one block; ECB
// rejects one. The random seed block for CTR and RandomDelta is drawn from
// the OS entropy source at construction.
func NewContext(cipher BlockCipher, key []byte, mode EncryptionMode, padding PaddingScheme, iv []byte, opts ...ContextOption) (*Context, error) {
	if cipher == nil {
		return nil, &ValidationError{
			Param:  "cipher",
			Reason: "cannot be nil",
			Err:    ErrNilCipher,
		}
	}
	if !mode.valid() {
		return nil, &ValidationError{
			Param:  "mode",
			Reason: fmt.Sprintf("%d names no mode", mode),
			Err:    ErrUnknownMode,
		}
	}
	padder, err := NewPadder(padding)
	if err != nil {
		return nil, err
	}
	blockSize := cipher.BlockSize()
	if blockSize <= 0 {
		return nil, &ValidationError{
			Param:  "cipher",
			Reason: "the mode engine needs a block cipher with a positive block size",
		}
	}

	if mode == ModeECB {
		if iv != nil {
			return nil, NewValidationError("iv", "ECB mode does not take an iv")
		}
	} else {
		if err := ValidateIV(iv, blockSize); err != nil {
			return nil, err
		}
	}

	if err := cipher.Initialize(key); err != nil {
		return nil, err
	}

	c := &Context{
		cipher:    cipher,
		mode:      mode,
		padder:    padder,
		blockSize: blockSize,
		parallel:  DefaultParallelConfig(),
	}
	if iv != nil {
		c.iv = append([]byte(nil), iv...)
	}
	c.randomData = make([]byte, blockSize)
	if _, err := rand.Read(c.randomData); err != nil {
		return nil, fmt.Errorf("failed to generate random seed block: %w", err)
	}

	for _, opt := range opts {
		opt(c)
	}
	if err := c.parallel.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Mode returns the configured encryption mode.
func (c *Context) Mode() EncryptionMode { return c.mode }

// BlockSize returns the cipher block size.
func (c *Context) BlockSize() int { return c.blockSize }

// Padding returns the configured padding scheme.
func (c *Context) Padding() PaddingScheme { return c.padder.Scheme() }

func (c *Context) check() error {
	if c.closed {
		return ErrContextClosed
	}
	return nil
}

// hasPrefixBlock reports whether the mode carries its encrypted seed as an
// extra leading block.
func (c *Context) hasPrefixBlock() bool {
	return c.mode == ModeCTR || c.mode == ModeRandomDelta
}

// Encrypt encrypts data and returns the ciphertext. The output length is
// the padded input length, plus one block for CTR and RandomDelta carrying
// the encrypted seed.
func (c *Context) Encrypt(data []byte) ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &ValidationError{
			Param:  "data",
			Reason: "cannot be empty",
			Err:    ErrEmptyInput,
		}
	}

	st := c.newModeState()
	st.IsEnd = true

	var out []byte
	if c.hasPrefixBlock() {
		prefix, err := c.cipher.EncryptBlock(st.Initial)
		if err != nil {
			return nil, err
		}
		out = append(out, prefix...)
	}
	body, err := c.encryptChunk(data, st)
	if err != nil {
		return nil, err
	}
	return append(out, body...), nil
}

// Decrypt decrypts data and returns the plaintext. The input must be a
// positive multiple of the block size; for CTR and RandomDelta the first
// block is consumed to recover the seed.
func (c *Context) Decrypt(data []byte) ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if err := ValidateBlockAligned(data, c.blockSize); err != nil {
		return nil, err
	}

	st := c.newModeState()
	st.IsEnd = true

	if c.hasPrefixBlock() {
		if len(data) < c.blockSize {
			return nil, ErrInputTooShort
		}
		initial, err := c.cipher.DecryptBlock(data[:c.blockSize])
		if err != nil {
			return nil, err
		}
		st.Initial = initial
		if c.mode == ModeRandomDelta {
			st.Delta = append([]byte(nil), initial[c.blockSize/2:]...)
		}
		data = data[c.blockSize:]
	}
	return c.decryptChunk(data, st)
}

// EncryptInto encrypts data into out. If out is too small the sentinel -1
// is returned and nothing is written; otherwise the number of bytes
// written.
func (c *Context) EncryptInto(data, out []byte) (int, error) {
	result, err := c.Encrypt(data)
	if err != nil {
		return 0, err
	}
	if len(out) < len(result) {
		return -1, nil
	}
	return copy(out, result), nil
}

// DecryptInto decrypts data into out with the same contract as
// EncryptInto.
func (c *Context) DecryptInto(data, out []byte) (int, error) {
	result, err := c.Decrypt(data)
	if err != nil {
		return 0, err
	}
	if len(out) < len(result) {
		return -1, nil
	}
	return copy(out, result), nil
}

// EncryptChunk encrypts one chunk of a longer stream, carrying mode state
// in st. Padding is applied only when st.IsEnd.
func (c *Context) EncryptChunk(data []byte, st *ModeState) ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	return c.encryptChunk(data, st)
}

// DecryptChunk decrypts one chunk of a longer stream, carrying mode state
// in st. Padding is removed only when st.IsEnd.
func (c *Context) DecryptChunk(data []byte, st *ModeState) ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	return c.decryptChunk(data, st)
}

// NewStreamState seeds a ModeState for chunked processing, as used by the
// file-streaming layer.
func (c *Context) NewStreamState() (*ModeState, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	return c.newModeState(), nil
}

// Close zeroes the IV copy and random seed and closes the cipher when it
// claims the disposable capability. Every later call fails with
// ErrContextClosed.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	zeroBytes(c.iv)
	zeroBytes(c.randomData)
	c.iv = nil
	c.randomData = nil
	if closer, ok := c.cipher.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
