package blockcrypt

// TripleDES applies DES in the EDE configuration with three independent
// subkeys: C = E3(D2(E1(P))). Keys are three raw 7-byte thirds (21 bytes)
// or three parity-carrying 8-byte thirds (24 bytes).
type TripleDES struct {
	first  *DES
	second *DES
	third  *DES
	ready  bool
}

// NewTripleDES returns an uninitialized Triple-DES instance.
func NewTripleDES() *TripleDES {
	return &TripleDES{
		first:  NewDES(),
		second: NewDES(),
		third:  NewDES(),
	}
}

// BlockSize returns 8.
func (t *TripleDES) BlockSize() int { return desBlockSize }

// SupportedKeySizes returns the raw and parity key lengths.
func (t *TripleDES) SupportedKeySizes() []int { return []int{21, 24} }

// RoundsCount returns the total DES rounds executed per block.
func (t *TripleDES) RoundsCount() int { return 3 * desRounds }

// IsInitialized reports whether all three schedules are loaded.
func (t *TripleDES) IsInitialized() bool { return t.ready }

// Initialize splits the key into thirds and loads the three DES schedules.
func (t *TripleDES) Initialize(key []byte) error {
	if err := ValidateKeySize(key, t.SupportedKeySizes()); err != nil {
		return err
	}
	third := len(key) / 3
	if err := t.first.Initialize(key[:third]); err != nil {
		return err
	}
	if err := t.second.Initialize(key[third : 2*third]); err != nil {
		return err
	}
	if err := t.third.Initialize(key[2*third:]); err != nil {
		return err
	}
	t.ready = true
	return nil
}

// GenerateRoundKeys concatenates the three DES schedules in key order.
func (t *TripleDES) GenerateRoundKeys(key []byte) ([][]byte, error) {
	if err := ValidateKeySize(key, t.SupportedKeySizes()); err != nil {
		return nil, err
	}
	third := len(key) / 3
	var all [][]byte
	for i := 0; i < 3; i++ {
		keys, err := desKeyExpander{}.ExpandKey(key[i*third : (i+1)*third])
		if err != nil {
			return nil, err
		}
		all = append(all, keys...)
	}
	return all, nil
}

// EncryptBlock computes E3(D2(E1(P))).
func (t *TripleDES) EncryptBlock(block []byte) ([]byte, error) {
	if !t.ready {
		return nil, ErrCipherNotInitialized
	}
	out, err := t.first.EncryptBlock(block)
	if err != nil {
		return nil, err
	}
	out, err = t.second.DecryptBlock(out)
	if err != nil {
		return nil, err
	}
	return t.third.EncryptBlock(out)
}

// DecryptBlock computes D1(E2(D3(C))).
func (t *TripleDES) DecryptBlock(block []byte) ([]byte, error) {
	if !t.ready {
		return nil, ErrCipherNotInitialized
	}
	out, err := t.third.DecryptBlock(block)
	if err != nil {
		return nil, err
	}
	out, err = t.second.EncryptBlock(out)
	if err != nil {
		return nil, err
	}
	return t.first.DecryptBlock(out)
}

// Encrypt encrypts a block-aligned buffer.
func (t *TripleDES) Encrypt(data []byte) ([]byte, error) {
	return encryptBlocks(t, data)
}

// Decrypt decrypts a block-aligned buffer.
func (t *TripleDES) Decrypt(data []byte) ([]byte, error) {
	return decryptBlocks(t, data)
}

// Close zeroes all three schedules.
func (t *TripleDES) Close() error {
	t.ready = false
	t.first.Close()
	t.second.Close()
	return t.third.Close()
}
