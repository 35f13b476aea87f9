package blockcrypt

// EncryptionMode selects how the Context chains block-cipher calls over
// multi-block inputs.
type EncryptionMode uint8

const (
	// ModeECB encrypts every block independently
	ModeECB EncryptionMode = iota
	// ModeCBC chains each block through the previous ciphertext block
	ModeCBC
	// ModePCBC propagates plaintext-xor-ciphertext between blocks
	ModePCBC
	// ModeCFB feeds ciphertext back through the cipher as a shift register
	ModeCFB
	// ModeOFB generates a key stream independent of the data
	ModeOFB
	// ModeCTR encrypts an incrementing counter and XORs it with the data
	ModeCTR
	// ModeRandomDelta advances a random initial block by a constant
	// half-block delta and folds it into the leading half of each block
	ModeRandomDelta
)

// String returns the string representation of the encryption mode
func (m EncryptionMode) String() string {
	switch m {
	case ModeECB:
		return "ECB"
	case ModeCBC:
		return "CBC"
	case ModePCBC:
		return "PCBC"
	case ModeCFB:
		return "CFB"
	case ModeOFB:
		return "OFB"
	case ModeCTR:
		return "CTR"
	case ModeRandomDelta:
		return "RandomDelta"
	default:
		return "unknown"
	}
}

// valid reports whether m names a recognized mode.
func (m EncryptionMode) valid() bool {
	return m <= ModeRandomDelta
}

// PaddingScheme selects how plaintexts are extended to a block-aligned
// length before encryption.
type PaddingScheme uint8

const (
	// PaddingZeros appends zero bytes
	PaddingZeros PaddingScheme = iota
	// PaddingANSIX923 appends zero bytes and a final length byte
	PaddingANSIX923
	// PaddingPKCS7 appends P bytes each holding the value P
	PaddingPKCS7
	// PaddingISO10126 appends random bytes and a final length byte
	PaddingISO10126
)

// String returns the string representation of the padding scheme
func (p PaddingScheme) String() string {
	switch p {
	case PaddingZeros:
		return "Zeros"
	case PaddingANSIX923:
		return "ANSIX923"
	case PaddingPKCS7:
		return "PKCS7"
	case PaddingISO10126:
		return "ISO10126"
	default:
		return "unknown"
	}
}

func (p PaddingScheme) valid() bool {
	return p <= PaddingISO10126
}

// BlockCipher is the capability the mode engine consumes. Implementations
// are stateful only in carrying the expanded key; after Initialize returns,
// EncryptBlock and DecryptBlock must be safe to call from multiple
// goroutines on independent blocks.
type BlockCipher interface {
	// BlockSize returns the cipher block size in bytes. Stream ciphers
	// report 0.
	BlockSize() int

	// SupportedKeySizes lists the key lengths Initialize accepts.
	SupportedKeySizes() []int

	// RoundsCount returns the number of rounds the cipher runs.
	RoundsCount() int

	// IsInitialized reports whether a key schedule is loaded.
	IsInitialized() bool

	// Initialize expands the key and loads the round-key schedule.
	Initialize(key []byte) error

	// EncryptBlock encrypts exactly one block.
	EncryptBlock(block []byte) ([]byte, error)

	// DecryptBlock decrypts exactly one block.
	DecryptBlock(block []byte) ([]byte, error)

	// Encrypt encrypts a block-aligned buffer, block by block.
	Encrypt(data []byte) ([]byte, error)

	// Decrypt decrypts a block-aligned buffer, block by block.
	Decrypt(data []byte) ([]byte, error)

	// GenerateRoundKeys runs the key schedule without loading it.
	GenerateRoundKeys(key []byte) ([][]byte, error)
}

// KeyExpander turns a master key into the per-round subkeys a Feistel
// network consumes.
type KeyExpander interface {
	// ExpandKey derives the cipher's default number of round keys.
	ExpandKey(key []byte) ([][]byte, error)

	// ExpandKeyRounds derives exactly rounds round keys.
	ExpandKeyRounds(key []byte, rounds int) ([][]byte, error)

	// IsValidKeySize reports whether size is an accepted key length.
	IsValidKeySize(size int) bool

	// SupportedKeySizes lists accepted key lengths.
	SupportedKeySizes() []int

	// RoundKeySize returns the length in bytes of one round key.
	RoundKeySize() int
}

// RoundFunction mixes one half-block under a round key inside a Feistel
// network.
type RoundFunction interface {
	// Encrypt applies the round function to a half-block.
	Encrypt(halfBlock, roundKey []byte) ([]byte, error)

	// BlockSize returns the full block size the function serves.
	BlockSize() int

	// IsValidBlockSize reports whether size is a full block size the
	// function can serve.
	IsValidBlockSize(size int) bool

	// IsValidKeySize reports whether size is an accepted round-key length.
	IsValidKeySize(size int) bool
}
