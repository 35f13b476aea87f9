package blockcrypt

import "fmt"

// DES per FIPS 46-3: a 16-round Feistel network over 8-byte blocks. Keys
// are accepted raw (7 bytes) or with parity bits (8 bytes); parity is
// regenerated either way so each key byte has odd parity.

const (
	desBlockSize    = 8
	desRounds       = 16
	desRoundKeySize = 6
)

// Initial permutation and its inverse.
var desIP = []int{
	58, 50, 42, 34, 26, 18, 10, 2,
	60, 52, 44, 36, 28, 20, 12, 4,
	62, 54, 46, 38, 30, 22, 14, 6,
	64, 56, 48, 40, 32, 24, 16, 8,
	57, 49, 41, 33, 25, 17, 9, 1,
	59, 51, 43, 35, 27, 19, 11, 3,
	61, 53, 45, 37, 29, 21, 13, 5,
	63, 55, 47, 39, 31, 23, 15, 7,
}

var desFP = []int{
	40, 8, 48, 16, 56, 24, 64, 32,
	39, 7, 47, 15, 55, 23, 63, 31,
	38, 6, 46, 14, 54, 22, 62, 30,
	37, 5, 45, 13, 53, 21, 61, 29,
	36, 4, 44, 12, 52, 20, 60, 28,
	35, 3, 43, 11, 51, 19, 59, 27,
	34, 2, 42, 10, 50, 18, 58, 26,
	33, 1, 41, 9, 49, 17, 57, 25,
}

// Expansion of the 32-bit half to 48 bits.
var desE = []int{
	32, 1, 2, 3, 4, 5,
	4, 5, 6, 7, 8, 9,
	8, 9, 10, 11, 12, 13,
	12, 13, 14, 15, 16, 17,
	16, 17, 18, 19, 20, 21,
	20, 21, 22, 23, 24, 25,
	24, 25, 26, 27, 28, 29,
	28, 29, 30, 31, 32, 1,
}

// Permutation applied after the S-boxes.
var desP = []int{
	16, 7, 20, 21,
	29, 12, 28, 17,
	1, 15, 23, 26,
	5, 18, 31, 10,
	2, 8, 24, 14,
	32, 27, 3, 9,
	19, 13, 30, 6,
	22, 11, 4, 25,
}

// Key schedule permutations.
var desPC1 = []int{
	57, 49, 41, 33, 25, 17, 9,
	1, 58, 50, 42, 34, 26, 18,
	10, 2, 59, 51, 43, 35, 27,
	19, 11, 3, 60, 52, 44, 36,
	63, 55, 47, 39, 31, 23, 15,
	7, 62, 54, 46, 38, 30, 22,
	14, 6, 61, 53, 45, 37, 29,
	21, 13, 5, 28, 20, 12, 4,
}

var desPC2 = []int{
	14, 17, 11, 24, 1, 5,
	3, 28, 15, 6, 21, 10,
	23, 19, 12, 4, 26, 8,
	16, 7, 27, 20, 13, 2,
	41, 52, 31, 37, 47, 55,
	30, 40, 51, 45, 33, 48,
	44, 49, 39, 56, 34, 53,
	46, 42, 50, 36, 29, 32,
}

// Per-round left-shift schedule for the C and D halves.
var desShifts = []int{1, 1, 2, 2, 2, 2, 2, 2, 1, 2, 2, 2, 2, 2, 2, 1}

// The eight 6->4 bit substitution boxes.
var desSBoxes = [8][64]byte{
	{
		14, 4, 13, 1, 2, 15, 11, 8, 3, 10, 6, 12, 5, 9, 0, 7,
		0, 15, 7, 4, 14, 2, 13, 1, 10, 6, 12, 11, 9, 5, 3, 8,
		4, 1, 14, 8, 13, 6, 2, 11, 15, 12, 9, 7, 3, 10, 5, 0,
		15, 12, 8, 2, 4, 9, 1, 7, 5, 11, 3, 14, 10, 0, 6, 13,
	},
	{
		15, 1, 8, 14, 6, 11, 3, 4, 9, 7, 2, 13, 12, 0, 5, 10,
		3, 13, 4, 7, 15, 2, 8, 14, 12, 0, 1, 10, 6, 9, 11, 5,
		0, 14, 7, 11, 10, 4, 13, 1, 5, 8, 12, 6, 9, 3, 2, 15,
		13, 8, 10, 1, 3, 15, 4, 2, 11, 6, 7, 12, 0, 5, 14, 9,
	},
	{
		10, 0, 9, 14, 6, 3, 15, 5, 1, 13, 12, 7, 11, 4, 2, 8,
		13, 7, 0, 9, 3, 4, 6, 10, 2, 8, 5, 14, 12, 11, 15, 1,
		13, 6, 4, 9, 8, 15, 3, 0, 11, 1, 2, 12, 5, 10, 14, 7,
		1, 10, 13, 0, 6, 9, 8, 7, 4, 15, 14, 3, 11, 5, 2, 12,
	},
	{
		7, 13, 14, 3, 0, 6, 9, 10, 1, 2, 8, 5, 11, 12, 4, 15,
		13, 8, 11, 5, 6, 15, 0, 3, 4, 7, 2, 12, 1, 10, 14, 9,
		10, 6, 9, 0, 12, 11, 7, 13, 15, 1, 3, 14, 5, 2, 8, 4,
		3, 15, 0, 6, 10, 1, 13, 8, 9, 4, 5, 11, 12, 7, 2, 14,
	},
	{
		2, 12, 4, 1, 7, 10, 11, 6, 8, 5, 3, 15, 13, 0, 14, 9,
		14, 11, 2, 12, 4, 7, 13, 1, 5, 0, 15, 10, 3, 9, 8, 6,
		4, 2, 1, 11, 10, 13, 7, 8, 15, 9, 12, 5, 6, 3, 0, 14,
		11, 8, 12, 7, 1, 14, 2, 13, 6, 15, 0, 9, 10, 4, 5, 3,
	},
	{
		12, 1, 10, 15, 9, 2, 6, 8, 0, 13, 3, 4, 14, 7, 5, 11,
		10, 15, 4, 2, 7, 12, 9, 5, 6, 1, 13, 14, 0, 11, 3, 8,
		9, 14, 15, 5, 2, 8, 12, 3, 7, 0, 4, 10, 1, 13, 11, 6,
		4, 3, 2, 12, 9, 5, 15, 10, 11, 14, 1, 7, 6, 0, 8, 13,
	},
	{
		4, 11, 2, 14, 15, 0, 8, 13, 3, 12, 9, 7, 5, 10, 6, 1,
		13, 0, 11, 7, 4, 9, 1, 10, 14, 3, 5, 12, 2, 15, 8, 6,
		1, 4, 11, 13, 12, 3, 7, 14, 10, 15, 6, 8, 0, 5, 9, 2,
		6, 11, 13, 8, 1, 4, 10, 7, 9, 5, 0, 15, 14, 2, 3, 12,
	},
	{
		13, 2, 8, 4, 6, 15, 11, 1, 10, 9, 3, 14, 5, 0, 12, 7,
		1, 15, 13, 8, 10, 3, 7, 4, 12, 5, 6, 11, 0, 14, 9, 2,
		7, 11, 4, 1, 9, 12, 14, 2, 0, 6, 10, 13, 15, 3, 5, 8,
		2, 1, 14, 7, 4, 10, 8, 13, 15, 12, 9, 0, 3, 5, 6, 11,
	},
}

// desNormalizeKey turns a 7- or 8-byte key into the 8-byte parity-adjusted
// form the schedule consumes. The low bit of every byte is regenerated so
// overall byte parity is odd.
func desNormalizeKey(key []byte) ([]byte, error) {
	var full [8]byte
	switch len(key) {
	case 7:
		// Spread 56 bits across 8 bytes, 7 bits per byte, MSB-first.
		for i := 0; i < 8; i++ {
			for j := 0; j < 7; j++ {
				setBit(full[:], i*8+j, getBit(key, i*7+j))
			}
		}
	case 8:
		copy(full[:], key)
	default:
		return nil, &ValidationError{
			Param:  "key",
			Reason: fmt.Sprintf("%d bytes; DES takes 7 raw or 8 with parity", len(key)),
			Err:    ErrInvalidKeySize,
		}
	}
	for i := range full {
		b := full[i] &^ 1
		parity := byte(0)
		for v := b; v != 0; v >>= 1 {
			parity ^= v & 1
		}
		// Odd overall parity: the low bit complements the high seven.
		full[i] = b | (parity ^ 1)
	}
	return full[:], nil
}

// desKeyExpander derives the sixteen 6-byte round keys.
type desKeyExpander struct{}

func (desKeyExpander) SupportedKeySizes() []int { return []int{7, 8} }

func (desKeyExpander) IsValidKeySize(size int) bool { return size == 7 || size == 8 }

func (desKeyExpander) RoundKeySize() int { return desRoundKeySize }

func (e desKeyExpander) ExpandKey(key []byte) ([][]byte, error) {
	return e.ExpandKeyRounds(key, desRounds)
}

func (e desKeyExpander) ExpandKeyRounds(key []byte, rounds int) ([][]byte, error) {
	full, err := desNormalizeKey(key)
	if err != nil {
		return nil, err
	}

	permuted := permuteBits(full, desPC1)
	c := bitsToUint32(permuted, 0, 28)
	d := bitsToUint32(permuted, 28, 28)

	keys := make([][]byte, rounds)
	for r := 0; r < rounds; r++ {
		shift := desShifts[r%len(desShifts)]
		c = rotl28(c, shift)
		d = rotl28(d, shift)

		var cd [7]byte
		uint32ToBits(cd[:], 0, 28, c)
		uint32ToBits(cd[:], 28, 28, d)
		keys[r] = permuteBits(cd[:], desPC2)
	}
	return keys, nil
}

func rotl28(v uint32, shift int) uint32 {
	return (v<<shift | v>>(28-shift)) & 0x0FFFFFFF
}

func bitsToUint32(src []byte, start, n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v = v<<1 | uint32(getBit(src, start+i))
	}
	return v
}

func uint32ToBits(dst []byte, start, n int, v uint32) {
	for i := 0; i < n; i++ {
		setBit(dst, start+i, byte(v>>(n-1-i))&1)
	}
}

// desRoundFunction is the f-function: E-expansion, key mixing, S-boxes and
// the P permutation.
type desRoundFunction struct{}

func (desRoundFunction) BlockSize() int { return desBlockSize }

func (desRoundFunction) IsValidBlockSize(size int) bool { return size == desBlockSize }

func (desRoundFunction) IsValidKeySize(size int) bool { return size == desRoundKeySize }

func (desRoundFunction) Encrypt(halfBlock, roundKey []byte) ([]byte, error) {
	if len(halfBlock) != desBlockSize/2 {
		return nil, NewValidationError("halfBlock", "%d bytes; the DES round function works on 4-byte halves", len(halfBlock))
	}
	if len(roundKey) != desRoundKeySize {
		return nil, NewValidationError("roundKey", "%d bytes; DES round keys are 6 bytes", len(roundKey))
	}

	expanded := permuteBits(halfBlock, desE)
	xorBytesInPlace(expanded, roundKey)

	var substituted [4]byte
	for box := 0; box < 8; box++ {
		var group byte
		for j := 0; j < 6; j++ {
			group = group<<1 | getBit(expanded, box*6+j)
		}
		row := (group>>4)&2 | group&1
		col := (group >> 1) & 0x0F
		val := desSBoxes[box][row*16+col]
		if box%2 == 0 {
			substituted[box/2] |= val << 4
		} else {
			substituted[box/2] |= val
		}
	}
	return permuteBits(substituted[:], desP), nil
}

// DES is the concrete cipher.
type DES struct {
	feistel *FeistelNetwork
}

// NewDES returns an uninitialized DES instance.
func NewDES() *DES {
	f, err := NewFeistelNetwork(desKeyExpander{}, desRoundFunction{}, desRounds)
	if err != nil {
		// Static arguments; construction cannot fail.
		panic(fmt.Sprintf("blockcrypt: DES scaffold: %v", err))
	}
	return &DES{feistel: f}
}

// BlockSize returns 8.
func (d *DES) BlockSize() int { return desBlockSize }

// SupportedKeySizes returns the raw and parity key lengths.
func (d *DES) SupportedKeySizes() []int { return []int{7, 8} }

// RoundsCount returns 16.
func (d *DES) RoundsCount() int { return desRounds }

// IsInitialized reports whether a key schedule is loaded.
func (d *DES) IsInitialized() bool { return d.feistel.IsInitialized() }

// Initialize expands the key into sixteen round keys.
func (d *DES) Initialize(key []byte) error {
	return d.feistel.Initialize(key)
}

// GenerateRoundKeys runs the key schedule without loading it.
func (d *DES) GenerateRoundKeys(key []byte) ([][]byte, error) {
	return desKeyExpander{}.ExpandKey(key)
}

// EncryptBlock encrypts one 8-byte block.
func (d *DES) EncryptBlock(block []byte) ([]byte, error) {
	if len(block) != desBlockSize {
		return nil, ErrInvalidBlockSize
	}
	permuted := permuteBits(block, desIP)
	out, err := d.feistel.EncryptBlock(permuted)
	if err != nil {
		return nil, err
	}
	return permuteBits(out, desFP), nil
}

// DecryptBlock decrypts one 8-byte block.
func (d *DES) DecryptBlock(block []byte) ([]byte, error) {
	if len(block) != desBlockSize {
		return nil, ErrInvalidBlockSize
	}
	permuted := permuteBits(block, desIP)
	out, err := d.feistel.DecryptBlock(permuted)
	if err != nil {
		return nil, err
	}
	return permuteBits(out, desFP), nil
}

// Encrypt encrypts a block-aligned buffer.
func (d *DES) Encrypt(data []byte) ([]byte, error) {
	return encryptBlocks(d, data)
}

// Decrypt decrypts a block-aligned buffer.
func (d *DES) Decrypt(data []byte) ([]byte, error) {
	return decryptBlocks(d, data)
}

// Close zeroes the round-key schedule.
func (d *DES) Close() error {
	return d.feistel.Close()
}
