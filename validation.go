package blockcrypt

import "fmt"

// Argument checks shared by the engine, the ciphers and the streaming
// layer.

// ValidateKeySize checks a key length against a cipher's supported sizes
func ValidateKeySize(key []byte, supported []int) error {
	for _, size := range supported {
		if len(key) == size {
			return nil
		}
	}
	return &ValidationError{
		Param:  "key",
		Reason: fmt.Sprintf("%d bytes; this cipher takes %v", len(key), supported),
		Err:    ErrInvalidKeySize,
	}
}

// ValidateIV checks that an IV is present and exactly one block long
func ValidateIV(iv []byte, blockSize int) error {
	if iv == nil {
		return &ValidationError{
			Param:  "iv",
			Reason: "required for this mode",
			Err:    ErrMissingIV,
		}
	}
	if len(iv) != blockSize {
		return &ValidationError{
			Param:  "iv",
			Reason: fmt.Sprintf("%d bytes, need one block (%d)", len(iv), blockSize),
		}
	}
	return nil
}

// ValidateBlockAligned checks that ciphertext divides into whole blocks
func ValidateBlockAligned(data []byte, blockSize int) error {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return &DataError{
			Operation: "decrypt",
			Message:   fmt.Sprintf("%d bytes does not divide into %d-byte blocks", len(data), blockSize),
			Err:       ErrNotBlockAligned,
		}
	}
	return nil
}

// ValidateChunkSize checks a streaming chunk size against the block size
func ValidateChunkSize(chunkSize, blockSize int) error {
	if chunkSize <= 0 || chunkSize%blockSize != 0 {
		return &ValidationError{
			Param:  "chunkSize",
			Reason: fmt.Sprintf("%d is not a positive multiple of the %d-byte block", chunkSize, blockSize),
		}
	}
	return nil
}
