package blockcrypt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Sealed container: a small self-describing header followed by a
// zstd-compressed, mode-encrypted payload. This is a convenience surface
// over the Context engine; the raw streaming format written by EncryptFile
// stays headerless.

const (
	// sealMagic identifies sealed containers. The value spells "BCRY" read
	// big-endian; it is stored little-endian, so the header bytes are "YRCB".
	sealMagic = uint32(0x42435259)

	// sealVersion is the current container version.
	sealVersion = uint8(1)
)

// sealHeader records the engine configuration the payload was produced
// with, so Open can refuse a mismatched context instead of emitting
// garbage.
type sealHeader struct {
	Magic   uint32
	Version uint8
	Mode    uint8
	Padding uint8
	Flags   uint8 // bit 0: payload is zstd-compressed
}

func (h *sealHeader) writeTo(w io.Writer) error {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, h.Magic); err != nil {
		return err
	}
	buf.WriteByte(h.Version)
	buf.WriteByte(h.Mode)
	buf.WriteByte(h.Padding)
	buf.WriteByte(h.Flags)
	_, err := w.Write(buf.Bytes())
	return err
}

func (h *sealHeader) readFrom(r io.Reader) error {
	if err := binary.Read(r, binary.LittleEndian, &h.Magic); err != nil {
		return err
	}
	if h.Magic != sealMagic {
		return NewDataError("open", "not a sealed container", nil)
	}
	var rest [4]byte
	if _, err := io.ReadFull(r, rest[:]); err != nil {
		return err
	}
	h.Version = rest[0]
	h.Mode = rest[1]
	h.Padding = rest[2]
	h.Flags = rest[3]
	if h.Version != sealVersion {
		return NewDataError("open", fmt.Sprintf("unsupported container version %d", h.Version), nil)
	}
	return nil
}

// Seal compresses data, encrypts it with ctx and writes a container to w.
func Seal(ctx *Context, w io.Writer, data []byte) error {
	if err := ctx.check(); err != nil {
		return err
	}
	if len(data) == 0 {
		return &ValidationError{Param: "data", Reason: "cannot be empty", Err: ErrEmptyInput}
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("zstd encoder: %w", err)
	}
	compressed := enc.EncodeAll(data, nil)
	enc.Close()

	// Compressed output has an arbitrary tail that block padding cannot
	// always distinguish from itself, so terminate the plaintext with an
	// 0x80 marker and keep it off the block boundary. Open strips the
	// marker after depadding.
	plain := append(compressed, 0x80)
	if len(plain)%ctx.BlockSize() == 0 {
		plain = append(plain, 0x00)
	}

	ciphertext, err := ctx.Encrypt(plain)
	if err != nil {
		return err
	}

	h := &sealHeader{
		Magic:   sealMagic,
		Version: sealVersion,
		Mode:    uint8(ctx.Mode()),
		Padding: uint8(ctx.Padding()),
		Flags:   1,
	}
	if err := h.writeTo(w); err != nil {
		return NewIOError("write", "", err)
	}
	if _, err := w.Write(ciphertext); err != nil {
		return NewIOError("write", "", err)
	}
	return nil
}

// Open reads a container from r, decrypts it with ctx and decompresses the
// payload. The context configuration must match the header.
func Open(ctx *Context, r io.Reader) ([]byte, error) {
	if err := ctx.check(); err != nil {
		return nil, err
	}

	var h sealHeader
	if err := h.readFrom(r); err != nil {
		return nil, err
	}
	if EncryptionMode(h.Mode) != ctx.Mode() || PaddingScheme(h.Padding) != ctx.Padding() {
		return nil, NewDataError("open", fmt.Sprintf(
			"container sealed with %s/%s, context configured for %s/%s",
			EncryptionMode(h.Mode), PaddingScheme(h.Padding), ctx.Mode(), ctx.Padding()), nil)
	}

	ciphertext, err := io.ReadAll(r)
	if err != nil {
		return nil, NewIOError("read", "", err)
	}
	plain, err := ctx.Decrypt(ciphertext)
	if err != nil {
		return nil, err
	}

	// Drop the end marker written by Seal.
	end := len(plain)
	for end > 0 && plain[end-1] == 0x00 {
		end--
	}
	if end == 0 || plain[end-1] != 0x80 {
		return nil, NewDataError("open", "payload end marker missing", nil)
	}
	compressed := plain[:end-1]

	if h.Flags&1 == 0 {
		return compressed, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	defer dec.Close()
	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, NewDataError("open", "payload decompression failed", err)
	}
	return data, nil
}
