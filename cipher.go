package blockcrypt

import (
	"fmt"
	"strings"
)

// Whole-buffer helpers shared by the concrete ciphers. Encrypt/Decrypt on a
// BlockCipher operate block by block with no chaining; chained modes live in
// the Context engine.

// encryptBlocks encrypts a block-aligned buffer with c, fanning blocks out
// across workers when the buffer is large enough.
func encryptBlocks(c BlockCipher, data []byte) ([]byte, error) {
	return processBlocks(c, data, c.EncryptBlock)
}

// decryptBlocks decrypts a block-aligned buffer with c.
func decryptBlocks(c BlockCipher, data []byte) ([]byte, error) {
	return processBlocks(c, data, c.DecryptBlock)
}

func processBlocks(c BlockCipher, data []byte, op func([]byte) ([]byte, error)) ([]byte, error) {
	if !c.IsInitialized() {
		return nil, ErrCipherNotInitialized
	}
	blockSize := c.BlockSize()
	if err := ValidateBlockAligned(data, blockSize); err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	numBlocks := len(data) / blockSize
	err := forEachBlock(DefaultParallelConfig(), numBlocks, func(i int) error {
		block, err := op(data[i*blockSize : (i+1)*blockSize])
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		copy(out[i*blockSize:], block)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NewCipher constructs a block cipher by algorithm name. Recognized names:
// "des", "3des", "deal", "frog", "rc4", "rijndael-128", "rijndael-192",
// "rijndael-256" (the suffix selects the block size).
func NewCipher(name string) (BlockCipher, error) {
	switch strings.ToLower(name) {
	case "des":
		return NewDES(), nil
	case "3des", "tripledes", "triple-des":
		return NewTripleDES(), nil
	case "deal":
		return NewDEAL(), nil
	case "frog":
		return NewFROG(), nil
	case "rc4":
		return NewRC4(), nil
	case "rijndael", "rijndael-128":
		return NewRijndael(16, DefaultPolynomial)
	case "rijndael-192":
		return NewRijndael(24, DefaultPolynomial)
	case "rijndael-256":
		return NewRijndael(32, DefaultPolynomial)
	default:
		return nil, NewValidationError("algorithm", "no cipher named %q", name)
	}
}
