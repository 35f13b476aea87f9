package blockcrypt

import "fmt"

// FeistelNetwork drives any (KeyExpander, RoundFunction) pair for a fixed
// number of rounds with the classic left/right half-block swap. Both halves
// of the output are concatenated in swapped order (R, L); running the same
// loop with the round keys reversed inverts the permutation.
type FeistelNetwork struct {
	expander  KeyExpander
	roundFn   RoundFunction
	rounds    int
	roundKeys [][]byte
}

// NewFeistelNetwork builds a scaffold around the given key expander and
// round function.
func NewFeistelNetwork(expander KeyExpander, roundFn RoundFunction, rounds int) (*FeistelNetwork, error) {
	if expander == nil {
		return nil, NewValidationError("expander", "cannot be nil")
	}
	if roundFn == nil {
		return nil, NewValidationError("roundFunction", "cannot be nil")
	}
	if rounds <= 0 {
		return nil, NewValidationError("rounds", "%d; round count must be positive", rounds)
	}
	return &FeistelNetwork{
		expander: expander,
		roundFn:  roundFn,
		rounds:   rounds,
	}, nil
}

// Rounds returns the configured round count.
func (f *FeistelNetwork) Rounds() int {
	return f.rounds
}

// IsInitialized reports whether round keys are loaded.
func (f *FeistelNetwork) IsInitialized() bool {
	return f.roundKeys != nil
}

// Initialize expands the key into the round-key schedule.
func (f *FeistelNetwork) Initialize(key []byte) error {
	if !f.expander.IsValidKeySize(len(key)) {
		return &ValidationError{
			Param:  "key",
			Reason: fmt.Sprintf("%d bytes; the expander takes %v", len(key), f.expander.SupportedKeySizes()),
			Err:    ErrInvalidKeySize,
		}
	}
	keys, err := f.expander.ExpandKeyRounds(key, f.rounds)
	if err != nil {
		return err
	}
	f.roundKeys = keys
	return nil
}

// RoundKeys exposes the expanded schedule.
func (f *FeistelNetwork) RoundKeys() [][]byte {
	return f.roundKeys
}

// EncryptBlock runs the forward Feistel loop over one block. The first
// blockSize/2 bytes are the high half L, the rest the low half R.
func (f *FeistelNetwork) EncryptBlock(block []byte) ([]byte, error) {
	return f.process(block, false)
}

// DecryptBlock runs the loop with the round keys reversed.
func (f *FeistelNetwork) DecryptBlock(block []byte) ([]byte, error) {
	return f.process(block, true)
}

func (f *FeistelNetwork) process(block []byte, reverse bool) ([]byte, error) {
	if f.roundKeys == nil {
		return nil, ErrCipherNotInitialized
	}
	if !f.roundFn.IsValidBlockSize(len(block)) {
		return nil, &ValidationError{
			Param:  "block",
			Reason: fmt.Sprintf("%d bytes not accepted by the round function", len(block)),
			Err:    ErrInvalidBlockSize,
		}
	}

	half := len(block) / 2
	left := make([]byte, half)
	right := make([]byte, half)
	copy(left, block[:half])
	copy(right, block[half:])

	for r := 0; r < f.rounds; r++ {
		key := f.roundKeys[r]
		if reverse {
			key = f.roundKeys[f.rounds-1-r]
		}
		t, err := f.roundFn.Encrypt(right, key)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", r, err)
		}
		left, right = right, xorBytes(left, t)
	}

	// Undo the swap of the last round by emitting (R, L).
	out := make([]byte, len(block))
	copy(out[:half], right)
	copy(out[half:], left)
	return out, nil
}

// Close zeroes the round-key schedule.
func (f *FeistelNetwork) Close() error {
	for _, k := range f.roundKeys {
		zeroBytes(k)
	}
	f.roundKeys = nil
	return nil
}
