package blockcrypt

import "fmt"

// RC4 stream cipher. Encryption and decryption are the same keystream XOR;
// Reset rewinds the generator to its post-key-schedule state so a single
// instance can decrypt what it just encrypted.

const (
	rc4MinKeySize = 5
	rc4MaxKeySize = 256
)

// RC4 is the concrete cipher. It reports a block size of 0: the mode engine
// has no business chaining a stream cipher, so RC4 is used directly.
type RC4 struct {
	state    [256]byte
	snapshot [256]byte
	i, j     uint8
	ready    bool
}

// NewRC4 returns an uninitialized RC4 instance.
func NewRC4() *RC4 {
	return &RC4{}
}

// BlockSize returns 0; RC4 processes byte streams.
func (r *RC4) BlockSize() int { return 0 }

// SupportedKeySizes returns every length from 5 through 256.
func (r *RC4) SupportedKeySizes() []int {
	sizes := make([]int, 0, rc4MaxKeySize-rc4MinKeySize+1)
	for s := rc4MinKeySize; s <= rc4MaxKeySize; s++ {
		sizes = append(sizes, s)
	}
	return sizes
}

// RoundsCount returns 256, the KSA mixing passes.
func (r *RC4) RoundsCount() int { return 256 }

// IsInitialized reports whether the key schedule has run.
func (r *RC4) IsInitialized() bool { return r.ready }

// Initialize runs the key-scheduling algorithm and snapshots the mixed
// state for Reset.
func (r *RC4) Initialize(key []byte) error {
	if len(key) < rc4MinKeySize || len(key) > rc4MaxKeySize {
		return &ValidationError{
			Param:  "key",
			Reason: fmt.Sprintf("%d bytes; RC4 takes 5 through 256", len(key)),
			Err:    ErrInvalidKeySize,
		}
	}
	for i := 0; i < 256; i++ {
		r.state[i] = byte(i)
	}
	var j uint8
	for i := 0; i < 256; i++ {
		j += r.state[i] + key[i%len(key)]
		r.state[i], r.state[j] = r.state[j], r.state[i]
	}
	r.snapshot = r.state
	r.i, r.j = 0, 0
	r.ready = true
	return nil
}

// Reset restores the post-KSA state, rewinding the keystream to its start.
func (r *RC4) Reset() error {
	if !r.ready {
		return ErrCipherNotInitialized
	}
	r.state = r.snapshot
	r.i, r.j = 0, 0
	return nil
}

// process XORs the keystream into data via the PRGA.
func (r *RC4) process(data []byte) ([]byte, error) {
	if !r.ready {
		return nil, ErrCipherNotInitialized
	}
	out := make([]byte, len(data))
	i, j := r.i, r.j
	for n, b := range data {
		i++
		j += r.state[i]
		r.state[i], r.state[j] = r.state[j], r.state[i]
		out[n] = b ^ r.state[r.state[i]+r.state[j]]
	}
	r.i, r.j = i, j
	return out, nil
}

// EncryptBlock applies the keystream to a buffer of any length.
func (r *RC4) EncryptBlock(block []byte) ([]byte, error) {
	return r.process(block)
}

// DecryptBlock is identical to EncryptBlock.
func (r *RC4) DecryptBlock(block []byte) ([]byte, error) {
	return r.process(block)
}

// Encrypt applies the keystream to a buffer of any length.
func (r *RC4) Encrypt(data []byte) ([]byte, error) {
	return r.process(data)
}

// Decrypt is identical to Encrypt.
func (r *RC4) Decrypt(data []byte) ([]byte, error) {
	return r.process(data)
}

// GenerateRoundKeys is not meaningful for RC4; it returns the mixed state
// as a single 256-byte key.
func (r *RC4) GenerateRoundKeys(key []byte) ([][]byte, error) {
	tmp := NewRC4()
	if err := tmp.Initialize(key); err != nil {
		return nil, err
	}
	return [][]byte{append([]byte(nil), tmp.state[:]...)}, nil
}

// Close zeroes the cipher state.
func (r *RC4) Close() error {
	zeroBytes(r.state[:])
	zeroBytes(r.snapshot[:])
	r.i, r.j = 0, 0
	r.ready = false
	return nil
}
