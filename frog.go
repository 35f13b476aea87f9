package blockcrypt

import "fmt"

// FROG: an 8-round cipher over 16-byte blocks with a data-dependent key
// schedule. The schedule stretches the user key into a 2304-byte buffer,
// XOR-chains it, and carves out eight round structures of a 16-byte XOR key
// plus a 256-byte substitution permutation.

const (
	frogBlockSize  = 16
	frogRounds     = 8
	frogMinKeySize = 5
	frogMaxKeySize = 125
	frogBufferSize = 2304
)

type frogRound struct {
	xorKey [frogBlockSize]byte
	sbox   [256]byte
	invs   [256]byte
}

// FROG is the concrete cipher.
type FROG struct {
	rounds []frogRound
}

// NewFROG returns an uninitialized FROG instance.
func NewFROG() *FROG {
	return &FROG{}
}

// BlockSize returns 16.
func (f *FROG) BlockSize() int { return frogBlockSize }

// SupportedKeySizes returns every length from 5 through 125.
func (f *FROG) SupportedKeySizes() []int {
	sizes := make([]int, 0, frogMaxKeySize-frogMinKeySize+1)
	for s := frogMinKeySize; s <= frogMaxKeySize; s++ {
		sizes = append(sizes, s)
	}
	return sizes
}

// RoundsCount returns 8.
func (f *FROG) RoundsCount() int { return frogRounds }

// IsInitialized reports whether the round structures are built.
func (f *FROG) IsInitialized() bool { return f.rounds != nil }

// frogExpand stretches the key cyclically over the internal buffer and
// XOR-chains it with a running value.
func frogExpand(key []byte) []byte {
	buf := make([]byte, frogBufferSize)
	for i := range buf {
		buf[i] = key[i%len(key)]
	}
	var last byte
	for i := range buf {
		buf[i] ^= last
		last = buf[i]
	}
	return buf
}

// buildRounds carves the round structures out of the chained buffer. The
// substitution permutation starts as the identity and is Fisher-Yates
// shuffled with bytes drawn cyclically from the buffer.
func buildRounds(buf []byte) []frogRound {
	rounds := make([]frogRound, frogRounds)
	pos := 0
	next := func() byte {
		b := buf[pos%len(buf)]
		pos++
		return b
	}

	for r := range rounds {
		for i := 0; i < frogBlockSize; i++ {
			rounds[r].xorKey[i] = next()
		}
		for i := 0; i < 256; i++ {
			rounds[r].sbox[i] = byte(i)
		}
		for i := 255; i >= 1; i-- {
			j := int(next()) % (i + 1)
			rounds[r].sbox[i], rounds[r].sbox[j] = rounds[r].sbox[j], rounds[r].sbox[i]
		}
		for i := 0; i < 256; i++ {
			rounds[r].invs[rounds[r].sbox[i]] = byte(i)
		}
	}
	return rounds
}

// Initialize builds the eight round structures from the key.
func (f *FROG) Initialize(key []byte) error {
	if len(key) < frogMinKeySize || len(key) > frogMaxKeySize {
		return &ValidationError{
			Param:  "key",
			Reason: fmt.Sprintf("%d bytes; FROG takes 5 through 125", len(key)),
			Err:    ErrInvalidKeySize,
		}
	}
	f.rounds = buildRounds(frogExpand(key))
	return nil
}

// GenerateRoundKeys returns the per-round XOR keys.
func (f *FROG) GenerateRoundKeys(key []byte) ([][]byte, error) {
	if len(key) < frogMinKeySize || len(key) > frogMaxKeySize {
		return nil, &ValidationError{
			Param:  "key",
			Reason: fmt.Sprintf("%d bytes; FROG takes 5 through 125", len(key)),
			Err:    ErrInvalidKeySize,
		}
	}
	rounds := buildRounds(frogExpand(key))
	keys := make([][]byte, frogRounds)
	for r := range rounds {
		keys[r] = append([]byte(nil), rounds[r].xorKey[:]...)
	}
	return keys, nil
}

// EncryptBlock encrypts one 16-byte block: per round, XOR the round key,
// substitute every byte, propagate XOR forward through the block and close
// the ring.
func (f *FROG) EncryptBlock(block []byte) ([]byte, error) {
	if f.rounds == nil {
		return nil, ErrCipherNotInitialized
	}
	if len(block) != frogBlockSize {
		return nil, ErrInvalidBlockSize
	}
	b := make([]byte, frogBlockSize)
	copy(b, block)
	for r := range f.rounds {
		round := &f.rounds[r]
		for i := range b {
			b[i] ^= round.xorKey[i]
		}
		for i := range b {
			b[i] = round.sbox[b[i]]
		}
		for i := 0; i < frogBlockSize-1; i++ {
			b[i+1] ^= b[i]
		}
		b[0] ^= b[frogBlockSize-1]
	}
	return b, nil
}

// DecryptBlock reverses every round step in reverse order.
func (f *FROG) DecryptBlock(block []byte) ([]byte, error) {
	if f.rounds == nil {
		return nil, ErrCipherNotInitialized
	}
	if len(block) != frogBlockSize {
		return nil, ErrInvalidBlockSize
	}
	b := make([]byte, frogBlockSize)
	copy(b, block)
	for r := frogRounds - 1; r >= 0; r-- {
		round := &f.rounds[r]
		b[0] ^= b[frogBlockSize-1]
		for i := frogBlockSize - 1; i >= 1; i-- {
			b[i] ^= b[i-1]
		}
		for i := range b {
			b[i] = round.invs[b[i]]
		}
		for i := range b {
			b[i] ^= round.xorKey[i]
		}
	}
	return b, nil
}

// Encrypt encrypts a block-aligned buffer.
func (f *FROG) Encrypt(data []byte) ([]byte, error) {
	return encryptBlocks(f, data)
}

// Decrypt decrypts a block-aligned buffer.
func (f *FROG) Decrypt(data []byte) ([]byte, error) {
	return decryptBlocks(f, data)
}

// Close drops the round structures.
func (f *FROG) Close() error {
	for r := range f.rounds {
		zeroBytes(f.rounds[r].xorKey[:])
	}
	f.rounds = nil
	return nil
}
