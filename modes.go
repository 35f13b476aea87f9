package blockcrypt

// Per-mode chunk processing. Every function consumes a block-aligned chunk
// and a ModeState carried from the previous chunk, mutating the state so
// the next chunk continues the stream seamlessly.

// ModeState is the continuation threaded through chunked processing. The
// Context never stores one; callers own it for the lifetime of a stream.
type ModeState struct {
	// Initial carries one block of mode state: the previous ciphertext
	// block (CBC), the PCBC accumulator, the shift register (CFB), the
	// feedback block (OFB), the counter (CTR) or the running block
	// (RandomDelta).
	Initial []byte

	// Delta is the RandomDelta half-block increment.
	Delta []byte

	// IsEnd marks the final chunk of a stream; only then is padding
	// applied (encrypt) or removed (decrypt).
	IsEnd bool
}

// newModeState seeds the continuation for one stream.
func (c *Context) newModeState() *ModeState {
	st := &ModeState{}
	switch c.mode {
	case ModeECB:
		// Stateless.
	case ModeCTR, ModeRandomDelta:
		st.Initial = append([]byte(nil), c.randomData...)
		if c.mode == ModeRandomDelta {
			st.Delta = append([]byte(nil), c.randomData[c.blockSize/2:]...)
		}
	default:
		st.Initial = append([]byte(nil), c.iv...)
	}
	return st
}

// encryptChunk pads the chunk when st.IsEnd and runs the mode over its
// blocks. Non-final chunks must already be block-aligned.
func (c *Context) encryptChunk(data []byte, st *ModeState) ([]byte, error) {
	var err error
	if st.IsEnd {
		data, err = c.padder.AddPadding(data, c.blockSize)
		if err != nil {
			return nil, err
		}
	} else if len(data)%c.blockSize != 0 {
		return nil, NewValidationError("data", "intermediate chunk of %d bytes is not block-aligned", len(data))
	}
	if len(data) == 0 {
		return []byte{}, nil
	}

	switch c.mode {
	case ModeECB:
		return c.ecbApply(data, c.cipher.EncryptBlock)
	case ModeCBC:
		return c.cbcEncrypt(data, st)
	case ModePCBC:
		return c.pcbcEncrypt(data, st)
	case ModeCFB:
		return c.cfbApply(data, st, true)
	case ModeOFB:
		return c.ofbApply(data, st)
	case ModeCTR:
		return c.ctrApply(data, st)
	case ModeRandomDelta:
		return c.randomDeltaEncrypt(data, st)
	default:
		return nil, ErrUnknownMode
	}
}

// decryptChunk runs the mode over the chunk's blocks and strips padding
// when st.IsEnd.
func (c *Context) decryptChunk(data []byte, st *ModeState) ([]byte, error) {
	if len(data) == 0 {
		if st.IsEnd {
			return []byte{}, nil
		}
		return nil, ErrEmptyInput
	}
	if len(data)%c.blockSize != 0 {
		return nil, &DataError{
			Operation: "decrypt",
			Message:   "chunk is not block-aligned",
			Err:       ErrNotBlockAligned,
		}
	}

	var out []byte
	var err error
	switch c.mode {
	case ModeECB:
		out, err = c.ecbApply(data, c.cipher.DecryptBlock)
	case ModeCBC:
		out, err = c.cbcDecrypt(data, st)
	case ModePCBC:
		out, err = c.pcbcDecrypt(data, st)
	case ModeCFB:
		out, err = c.cfbApply(data, st, false)
	case ModeOFB:
		out, err = c.ofbApply(data, st)
	case ModeCTR:
		out, err = c.ctrApply(data, st)
	case ModeRandomDelta:
		out, err = c.randomDeltaDecrypt(data, st)
	default:
		return nil, ErrUnknownMode
	}
	if err != nil {
		return nil, err
	}
	if st.IsEnd {
		return c.padder.RemovePadding(out, c.blockSize)
	}
	return out, nil
}

// ecbApply runs op over every block independently, in parallel when the
// chunk is large enough.
func (c *Context) ecbApply(data []byte, op func([]byte) ([]byte, error)) ([]byte, error) {
	out := make([]byte, len(data))
	numBlocks := len(data) / c.blockSize
	err := forEachBlock(c.parallel, numBlocks, func(i int) error {
		block, err := op(data[i*c.blockSize : (i+1)*c.blockSize])
		if err != nil {
			return err
		}
		copy(out[i*c.blockSize:], block)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Context) cbcEncrypt(data []byte, st *ModeState) ([]byte, error) {
	out := make([]byte, len(data))
	prev := st.Initial
	for i := 0; i < len(data); i += c.blockSize {
		block, err := c.cipher.EncryptBlock(xorBytes(data[i:i+c.blockSize], prev))
		if err != nil {
			return nil, err
		}
		copy(out[i:], block)
		prev = block
	}
	st.Initial = append(st.Initial[:0:0], prev...)
	return out, nil
}

func (c *Context) cbcDecrypt(data []byte, st *ModeState) ([]byte, error) {
	out := make([]byte, len(data))
	prev := st.Initial
	for i := 0; i < len(data); i += c.blockSize {
		ct := data[i : i+c.blockSize]
		block, err := c.cipher.DecryptBlock(ct)
		if err != nil {
			return nil, err
		}
		copy(out[i:], xorBytes(block, prev))
		prev = ct
	}
	st.Initial = append(st.Initial[:0:0], prev...)
	return out, nil
}

func (c *Context) pcbcEncrypt(data []byte, st *ModeState) ([]byte, error) {
	out := make([]byte, len(data))
	prev := st.Initial
	for i := 0; i < len(data); i += c.blockSize {
		pt := data[i : i+c.blockSize]
		block, err := c.cipher.EncryptBlock(xorBytes(pt, prev))
		if err != nil {
			return nil, err
		}
		copy(out[i:], block)
		prev = xorBytes(pt, block)
	}
	st.Initial = append(st.Initial[:0:0], prev...)
	return out, nil
}

func (c *Context) pcbcDecrypt(data []byte, st *ModeState) ([]byte, error) {
	out := make([]byte, len(data))
	prev := st.Initial
	for i := 0; i < len(data); i += c.blockSize {
		ct := data[i : i+c.blockSize]
		block, err := c.cipher.DecryptBlock(ct)
		if err != nil {
			return nil, err
		}
		pt := xorBytes(block, prev)
		copy(out[i:], pt)
		prev = xorBytes(pt, ct)
	}
	st.Initial = append(st.Initial[:0:0], prev...)
	return out, nil
}

// cfbApply runs the CFB shift register. The register always loads the
// ciphertext block, so encryption and decryption differ only in which side
// of the XOR that is.
func (c *Context) cfbApply(data []byte, st *ModeState, encrypting bool) ([]byte, error) {
	out := make([]byte, len(data))
	shift := st.Initial
	for i := 0; i < len(data); i += c.blockSize {
		stream, err := c.cipher.EncryptBlock(shift)
		if err != nil {
			return nil, err
		}
		block := xorBytes(data[i:i+c.blockSize], stream)
		copy(out[i:], block)
		if encrypting {
			shift = block
		} else {
			shift = data[i : i+c.blockSize]
		}
	}
	st.Initial = append(st.Initial[:0:0], shift...)
	return out, nil
}

func (c *Context) ofbApply(data []byte, st *ModeState) ([]byte, error) {
	out := make([]byte, len(data))
	feedback := st.Initial
	for i := 0; i < len(data); i += c.blockSize {
		var err error
		feedback, err = c.cipher.EncryptBlock(feedback)
		if err != nil {
			return nil, err
		}
		copy(out[i:], xorBytes(data[i:i+c.blockSize], feedback))
	}
	st.Initial = append(st.Initial[:0:0], feedback...)
	return out, nil
}

// ctrApply XORs each block against the encrypted counter stream. Blocks
// are independent once the counter base is known, so they fan out across
// workers; each worker derives its counter by scalar addition.
func (c *Context) ctrApply(data []byte, st *ModeState) ([]byte, error) {
	out := make([]byte, len(data))
	numBlocks := len(data) / c.blockSize
	base := append([]byte(nil), st.Initial...)
	err := forEachBlock(c.parallel, numBlocks, func(i int) error {
		counter := append([]byte(nil), base...)
		addCounterScalar(counter, uint64(i))
		stream, err := c.cipher.EncryptBlock(counter)
		if err != nil {
			return err
		}
		copy(out[i*c.blockSize:], xorBytes(data[i*c.blockSize:(i+1)*c.blockSize], stream))
		return nil
	})
	if err != nil {
		return nil, err
	}
	addCounterScalar(base, uint64(numBlocks))
	st.Initial = base
	return out, nil
}

// randomDeltaMask XORs the advancing low half of the state into the
// leading half-block; the trailing half passes through untouched.
func randomDeltaMask(block, state []byte, blockSize int) []byte {
	out := append([]byte(nil), block...)
	xorBytesInPlace(out[:blockSize/2], state[blockSize/2:])
	return out
}

func (c *Context) randomDeltaEncrypt(data []byte, st *ModeState) ([]byte, error) {
	out := make([]byte, len(data))
	state := append([]byte(nil), st.Initial...)
	for i := 0; i < len(data); i += c.blockSize {
		block, err := c.cipher.EncryptBlock(randomDeltaMask(data[i:i+c.blockSize], state, c.blockSize))
		if err != nil {
			return nil, err
		}
		copy(out[i:], block)
		addCounterVector(state, st.Delta)
	}
	st.Initial = state
	return out, nil
}

func (c *Context) randomDeltaDecrypt(data []byte, st *ModeState) ([]byte, error) {
	out := make([]byte, len(data))
	state := append([]byte(nil), st.Initial...)
	for i := 0; i < len(data); i += c.blockSize {
		block, err := c.cipher.DecryptBlock(data[i : i+c.blockSize])
		if err != nil {
			return nil, err
		}
		copy(out[i:], randomDeltaMask(block, state, c.blockSize))
		addCounterVector(state, st.Delta)
	}
	st.Initial = state
	return out, nil
}
