package blockcrypt

import "fmt"

// Rijndael parameterized over block size (16/24/32), key size (16/24/32)
// and the GF(2^8) reduction polynomial. With blockSize 16 and the default
// polynomial this is AES.

// DefaultPolynomial is the AES reduction polynomial x^8+x^4+x^3+x+1.
const DefaultPolynomial byte = 0x1B

var rijndaelSizes = []int{16, 24, 32}

// rijndaelRounds returns the round count for the larger of block and key
// size: 10/12/14 for 16/24/32 bytes.
func rijndaelRounds(blockSize, keySize int) int {
	max := blockSize
	if keySize > max {
		max = keySize
	}
	return max/4 + 6
}

// Rijndael is the concrete cipher.
type Rijndael struct {
	blockSize int
	nb        int // state columns
	poly      byte
	sbox      [256]byte
	invSbox   [256]byte
	rounds    int
	roundKeys [][]byte // one 4*nb-byte key per round, rounds+1 total
}

// NewRijndael builds a Rijndael instance for the given block size and
// reduction polynomial. The S-boxes are derived from the polynomial.
func NewRijndael(blockSize int, poly byte) (*Rijndael, error) {
	valid := false
	for _, s := range rijndaelSizes {
		if blockSize == s {
			valid = true
		}
	}
	if !valid {
		return nil, NewValidationError("blockSize", "%d bytes; Rijndael takes 16, 24 or 32", blockSize)
	}
	r := &Rijndael{
		blockSize: blockSize,
		nb:        blockSize / 4,
		poly:      poly,
		rounds:    rijndaelRounds(blockSize, blockSize),
	}
	var err error
	r.sbox, r.invSbox, err = buildSBoxes(poly)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// BlockSize returns the configured block size.
func (r *Rijndael) BlockSize() int { return r.blockSize }

// SupportedKeySizes returns 16, 24 and 32.
func (r *Rijndael) SupportedKeySizes() []int { return append([]int(nil), rijndaelSizes...) }

// RoundsCount returns the round count for the loaded key.
func (r *Rijndael) RoundsCount() int { return r.rounds }

// IsInitialized reports whether a key schedule is loaded.
func (r *Rijndael) IsInitialized() bool { return r.roundKeys != nil }

// shiftOffsets returns the ShiftRows offsets for rows 1..3.
func (r *Rijndael) shiftOffsets() [4]int {
	if r.nb < 8 {
		return [4]int{0, 1, 2, 3}
	}
	return [4]int{0, 1, 3, 4}
}

// Initialize expands the key into nb*(rounds+1) words.
func (r *Rijndael) Initialize(key []byte) error {
	keys, err := r.expandKey(key)
	if err != nil {
		return err
	}
	r.rounds = rijndaelRounds(r.blockSize, len(key))
	r.roundKeys = keys
	return nil
}

// GenerateRoundKeys runs the key schedule without loading it.
func (r *Rijndael) GenerateRoundKeys(key []byte) ([][]byte, error) {
	return r.expandKey(key)
}

func (r *Rijndael) expandKey(key []byte) ([][]byte, error) {
	if err := ValidateKeySize(key, rijndaelSizes); err != nil {
		return nil, err
	}
	nk := len(key) / 4
	rounds := rijndaelRounds(r.blockSize, len(key))
	totalWords := r.nb * (rounds + 1)

	words := make([][4]byte, totalWords)
	for i := 0; i < nk; i++ {
		copy(words[i][:], key[4*i:4*i+4])
	}

	rcon := byte(1)
	for i := nk; i < totalWords; i++ {
		temp := words[i-1]
		if i%nk == 0 {
			// RotWord
			temp = [4]byte{temp[1], temp[2], temp[3], temp[0]}
			for j := range temp {
				temp[j] = r.sbox[temp[j]]
			}
			temp[0] ^= rcon
			rcon = GFMul(rcon, 2, r.poly)
		} else if nk > 6 && i%nk == 4 {
			for j := range temp {
				temp[j] = r.sbox[temp[j]]
			}
		}
		for j := range temp {
			words[i][j] = words[i-nk][j] ^ temp[j]
		}
	}

	keys := make([][]byte, rounds+1)
	for round := range keys {
		keys[round] = make([]byte, r.blockSize)
		for c := 0; c < r.nb; c++ {
			copy(keys[round][4*c:4*c+4], words[round*r.nb+c][:])
		}
	}
	return keys, nil
}

func (r *Rijndael) addRoundKey(state []byte, round int) {
	xorBytesInPlace(state, r.roundKeys[round])
}

func (r *Rijndael) subBytes(state []byte, box *[256]byte) {
	for i := range state {
		state[i] = box[state[i]]
	}
}

// shiftRows rotates row i left by its offset; the state is column-major
// with state[4*c+row].
func (r *Rijndael) shiftRows(state []byte, inverse bool) {
	offsets := r.shiftOffsets()
	tmp := make([]byte, r.blockSize)
	copy(tmp, state)
	for row := 1; row < 4; row++ {
		for c := 0; c < r.nb; c++ {
			var src int
			if inverse {
				src = (c - offsets[row]%r.nb + r.nb) % r.nb
			} else {
				src = (c + offsets[row]) % r.nb
			}
			state[4*c+row] = tmp[4*src+row]
		}
	}
}

var (
	mixForward = [4]byte{0x02, 0x01, 0x01, 0x03}
	mixInverse = [4]byte{0x0E, 0x09, 0x0D, 0x0B}
)

// mixColumns multiplies each state column by the circulant matrix built
// from coeff.
func (r *Rijndael) mixColumns(state []byte, coeff [4]byte) {
	var col [4]byte
	for c := 0; c < r.nb; c++ {
		copy(col[:], state[4*c:4*c+4])
		for row := 0; row < 4; row++ {
			// Row `row` of the circulant matrix is coeff rotated so the
			// diagonal carries coeff[0].
			var v byte
			v ^= GFMul(col[row], coeff[0], r.poly)
			v ^= GFMul(col[(row+1)%4], coeff[3], r.poly)
			v ^= GFMul(col[(row+2)%4], coeff[2], r.poly)
			v ^= GFMul(col[(row+3)%4], coeff[1], r.poly)
			state[4*c+row] = v
		}
	}
}

// EncryptBlock encrypts one block.
func (r *Rijndael) EncryptBlock(block []byte) ([]byte, error) {
	if r.roundKeys == nil {
		return nil, ErrCipherNotInitialized
	}
	if len(block) != r.blockSize {
		return nil, ErrInvalidBlockSize
	}
	state := make([]byte, r.blockSize)
	copy(state, block)

	r.addRoundKey(state, 0)
	for round := 1; round < r.rounds; round++ {
		r.subBytes(state, &r.sbox)
		r.shiftRows(state, false)
		r.mixColumns(state, mixForward)
		r.addRoundKey(state, round)
	}
	r.subBytes(state, &r.sbox)
	r.shiftRows(state, false)
	r.addRoundKey(state, r.rounds)
	return state, nil
}

// DecryptBlock decrypts one block.
func (r *Rijndael) DecryptBlock(block []byte) ([]byte, error) {
	if r.roundKeys == nil {
		return nil, ErrCipherNotInitialized
	}
	if len(block) != r.blockSize {
		return nil, ErrInvalidBlockSize
	}
	state := make([]byte, r.blockSize)
	copy(state, block)

	r.addRoundKey(state, r.rounds)
	for round := r.rounds - 1; round >= 1; round-- {
		r.shiftRows(state, true)
		r.subBytes(state, &r.invSbox)
		r.addRoundKey(state, round)
		r.mixColumns(state, mixInverse)
	}
	r.shiftRows(state, true)
	r.subBytes(state, &r.invSbox)
	r.addRoundKey(state, 0)
	return state, nil
}

// Encrypt encrypts a block-aligned buffer.
func (r *Rijndael) Encrypt(data []byte) ([]byte, error) {
	return encryptBlocks(r, data)
}

// Decrypt decrypts a block-aligned buffer.
func (r *Rijndael) Decrypt(data []byte) ([]byte, error) {
	return decryptBlocks(r, data)
}

// Close zeroes the round-key schedule.
func (r *Rijndael) Close() error {
	for _, k := range r.roundKeys {
		zeroBytes(k)
	}
	r.roundKeys = nil
	return nil
}

// SBox exposes the derived substitution table, mainly for tests and
// demonstration.
func (r *Rijndael) SBox() [256]byte { return r.sbox }

// String describes the configured geometry.
func (r *Rijndael) String() string {
	return fmt.Sprintf("rijndael-%d", r.blockSize*8)
}
