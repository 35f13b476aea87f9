package blockcrypt

import "fmt"

// DEAL: a Feistel network over 16-byte blocks whose round function is DES
// under a per-round 8-byte key. Key sizes 16/24/32 select 6/6/8 rounds.

const dealBlockSize = 16

// dealBaseKey keys the DES instance that whitens the key-schedule
// accumulator.
var dealBaseKey = []byte{0x12, 0x34, 0x56, 0x78, 0x90, 0xAB, 0xCD, 0xEF}

func dealRoundsForKey(size int) int {
	if size == 32 {
		return 8
	}
	return 6
}

// dealKeyExpander chains the user-key segments through DES under the fixed
// base key. Every len(key)/8 rounds a rotating constant is folded into the
// accumulator so repeated segments produce distinct round keys.
type dealKeyExpander struct{}

func (dealKeyExpander) SupportedKeySizes() []int { return []int{16, 24, 32} }

func (dealKeyExpander) IsValidKeySize(size int) bool {
	return size == 16 || size == 24 || size == 32
}

func (dealKeyExpander) RoundKeySize() int { return 8 }

func (e dealKeyExpander) ExpandKey(key []byte) ([][]byte, error) {
	return e.ExpandKeyRounds(key, dealRoundsForKey(len(key)))
}

func (e dealKeyExpander) ExpandKeyRounds(key []byte, rounds int) ([][]byte, error) {
	if !e.IsValidKeySize(len(key)) {
		return nil, &ValidationError{
			Param:  "key",
			Reason: fmt.Sprintf("%d bytes; DEAL takes 16, 24 or 32", len(key)),
			Err:    ErrInvalidKeySize,
		}
	}

	base := NewDES()
	if err := base.Initialize(dealBaseKey); err != nil {
		return nil, fmt.Errorf("base key schedule: %w", err)
	}
	defer base.Close()

	segments := len(key) / 8
	constant := []byte{0x80, 0, 0, 0, 0, 0, 0, 0}

	keys := make([][]byte, rounds)
	prev := make([]byte, 8)
	for i := 0; i < rounds; i++ {
		acc := make([]byte, 8)
		copy(acc, key[(i%segments)*8:(i%segments)*8+8])
		xorBytesInPlace(acc, prev)
		if i >= segments && i%segments == 0 {
			xorBytesInPlace(acc, constant)
			constant[0] = constant[0]>>1 | constant[0]<<7
		}
		rk, err := base.EncryptBlock(acc)
		if err != nil {
			return nil, fmt.Errorf("round key %d: %w", i, err)
		}
		keys[i] = rk
		prev = rk
	}
	return keys, nil
}

// dealRoundFunction runs DES keyed by the round key over the 8-byte half.
type dealRoundFunction struct{}

func (dealRoundFunction) BlockSize() int { return dealBlockSize }

func (dealRoundFunction) IsValidBlockSize(size int) bool { return size == dealBlockSize }

func (dealRoundFunction) IsValidKeySize(size int) bool { return size == 8 }

func (dealRoundFunction) Encrypt(halfBlock, roundKey []byte) ([]byte, error) {
	if len(halfBlock) != dealBlockSize/2 {
		return nil, NewValidationError("halfBlock", "%d bytes; the DEAL round function works on 8-byte halves", len(halfBlock))
	}
	des := NewDES()
	if err := des.Initialize(roundKey); err != nil {
		return nil, err
	}
	defer des.Close()
	return des.EncryptBlock(halfBlock)
}

// DEAL is the concrete cipher.
type DEAL struct {
	feistel *FeistelNetwork
	rounds  int
}

// NewDEAL returns an uninitialized DEAL instance.
func NewDEAL() *DEAL {
	return &DEAL{}
}

// BlockSize returns 16.
func (d *DEAL) BlockSize() int { return dealBlockSize }

// SupportedKeySizes returns the accepted key lengths.
func (d *DEAL) SupportedKeySizes() []int { return dealKeyExpander{}.SupportedKeySizes() }

// RoundsCount returns the round count for the loaded key, or 0 before
// Initialize.
func (d *DEAL) RoundsCount() int { return d.rounds }

// IsInitialized reports whether a key schedule is loaded.
func (d *DEAL) IsInitialized() bool { return d.feistel != nil && d.feistel.IsInitialized() }

// Initialize builds the round-count-specific Feistel scaffold and loads the
// DES-derived round keys.
func (d *DEAL) Initialize(key []byte) error {
	rounds := dealRoundsForKey(len(key))
	f, err := NewFeistelNetwork(dealKeyExpander{}, dealRoundFunction{}, rounds)
	if err != nil {
		return err
	}
	if err := f.Initialize(key); err != nil {
		return err
	}
	d.feistel = f
	d.rounds = rounds
	return nil
}

// GenerateRoundKeys runs the key schedule without loading it.
func (d *DEAL) GenerateRoundKeys(key []byte) ([][]byte, error) {
	return dealKeyExpander{}.ExpandKey(key)
}

// EncryptBlock encrypts one 16-byte block.
func (d *DEAL) EncryptBlock(block []byte) ([]byte, error) {
	if d.feistel == nil {
		return nil, ErrCipherNotInitialized
	}
	return d.feistel.EncryptBlock(block)
}

// DecryptBlock decrypts one 16-byte block.
func (d *DEAL) DecryptBlock(block []byte) ([]byte, error) {
	if d.feistel == nil {
		return nil, ErrCipherNotInitialized
	}
	return d.feistel.DecryptBlock(block)
}

// Encrypt encrypts a block-aligned buffer.
func (d *DEAL) Encrypt(data []byte) ([]byte, error) {
	return encryptBlocks(d, data)
}

// Decrypt decrypts a block-aligned buffer.
func (d *DEAL) Decrypt(data []byte) ([]byte, error) {
	return decryptBlocks(d, data)
}

// Close zeroes the round-key schedule.
func (d *DEAL) Close() error {
	if d.feistel != nil {
		return d.feistel.Close()
	}
	return nil
}
