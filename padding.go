package blockcrypt

import (
	"crypto/rand"
	"fmt"
)

// Padder adds and removes block padding for a single PaddingScheme.
//
// The pad length P is blockSize - (len(data) mod blockSize); when the input
// is already aligned P is reset to zero, so aligned payloads pass through
// unchanged. This deviates from the canonical PKCS#7 contract (which always
// pads) and is deliberate.
type Padder struct {
	scheme PaddingScheme
}

// NewPadder returns a Padder for the given scheme.
func NewPadder(scheme PaddingScheme) (*Padder, error) {
	if !scheme.valid() {
		return nil, &ValidationError{
			Param:  "padding",
			Reason: fmt.Sprintf("%d names no scheme", scheme),
			Err:    ErrUnknownPadding,
		}
	}
	return &Padder{scheme: scheme}, nil
}

// Scheme returns the padding scheme this Padder applies.
func (p *Padder) Scheme() PaddingScheme {
	return p.scheme
}

// padLength computes P for the given data length.
func padLength(dataLen, blockSize int) int {
	padLen := blockSize - dataLen%blockSize
	if padLen == blockSize {
		padLen = 0
	}
	return padLen
}

// AddPadding extends data to a multiple of blockSize.
func (p *Padder) AddPadding(data []byte, blockSize int) ([]byte, error) {
	if blockSize <= 0 || blockSize > 255 {
		return nil, NewValidationError("blockSize", "%d is outside 1..255", blockSize)
	}
	padLen := padLength(len(data), blockSize)
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	if padLen == 0 {
		return padded, nil
	}

	switch p.scheme {
	case PaddingZeros:
		// Trailing bytes are already zero.

	case PaddingANSIX923:
		padded[len(padded)-1] = byte(padLen)

	case PaddingPKCS7:
		for i := len(data); i < len(padded); i++ {
			padded[i] = byte(padLen)
		}

	case PaddingISO10126:
		if padLen > 1 {
			if _, err := rand.Read(padded[len(data) : len(padded)-1]); err != nil {
				return nil, fmt.Errorf("failed to generate padding bytes: %w", err)
			}
		}
		padded[len(padded)-1] = byte(padLen)

	default:
		return nil, ErrUnknownPadding
	}
	return padded, nil
}

// RemovePadding strips the padding that AddPadding attached.
//
// PKCS#7 returns the input unchanged when its trailing bytes are not a valid
// pad. ANSI X9.23 returns the input unchanged only when the length byte is
// out of range; it does not check the zero filler. ISO 10126 rejects an
// out-of-range length byte. Zeros
// trims every trailing zero byte and therefore cannot distinguish padding
// from a payload that ends in 0x00.
func (p *Padder) RemovePadding(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	switch p.scheme {
	case PaddingZeros:
		end := len(data)
		for end > 0 && data[end-1] == 0 {
			end--
		}
		return data[:end], nil

	case PaddingANSIX923:
		last := int(data[len(data)-1])
		if last <= 0 || last >= blockSize || last > len(data) {
			return data, nil
		}
		return data[:len(data)-last], nil

	case PaddingPKCS7:
		last := int(data[len(data)-1])
		if last <= 0 || last > blockSize || last > len(data) {
			return data, nil
		}
		for i := len(data) - last; i < len(data); i++ {
			if data[i] != byte(last) {
				return data, nil
			}
		}
		return data[:len(data)-last], nil

	case PaddingISO10126:
		last := int(data[len(data)-1])
		if last == 0 || last > blockSize {
			return nil, &DataError{
				Operation: "depad",
				Message:   fmt.Sprintf("ISO 10126 length byte %d out of range for block size %d", last, blockSize),
				Err:       ErrInvalidPadding,
			}
		}
		if last > len(data) {
			return nil, &DataError{
				Operation: "depad",
				Message:   fmt.Sprintf("ISO 10126 length byte %d exceeds data length %d", last, len(data)),
				Err:       ErrInvalidPadding,
			}
		}
		return data[:len(data)-last], nil

	default:
		return nil, ErrUnknownPadding
	}
}
