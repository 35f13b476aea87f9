package blockcrypt

import (
	"io"

	"github.com/absfs/absfs"
)

// File streaming: drive fixed-size chunks through the mode engine while a
// ModeState carries the continuation between them. The chunk size must be
// a positive multiple of the cipher block size; 1024 or 4096 are good
// choices.

// EncryptFile streams inPath through the engine into outPath on the host
// filesystem. For CTR and RandomDelta the output starts with one extra
// block carrying the encrypted seed.
func (c *Context) EncryptFile(inPath, outPath string, chunkSize int) error {
	return c.EncryptFileFS(hostFS{}, inPath, outPath, chunkSize)
}

// DecryptFile reverses EncryptFile on the host filesystem.
func (c *Context) DecryptFile(inPath, outPath string, chunkSize int) error {
	return c.DecryptFileFS(hostFS{}, inPath, outPath, chunkSize)
}

// EncryptFileFS streams inPath into outPath on any absfs filesystem.
func (c *Context) EncryptFileFS(fsys absfs.FileSystem, inPath, outPath string, chunkSize int) error {
	return c.streamFile(fsys, inPath, outPath, chunkSize, true)
}

// DecryptFileFS reverses EncryptFileFS.
func (c *Context) DecryptFileFS(fsys absfs.FileSystem, inPath, outPath string, chunkSize int) error {
	return c.streamFile(fsys, inPath, outPath, chunkSize, false)
}

func (c *Context) streamFile(fsys absfs.FileSystem, inPath, outPath string, chunkSize int, encrypting bool) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := ValidateChunkSize(chunkSize, c.blockSize); err != nil {
		return err
	}

	src, err := fsys.Open(inPath)
	if err != nil {
		return NewIOError("open", inPath, err)
	}
	defer src.Close()

	dst, err := fsys.Create(outPath)
	if err != nil {
		return NewIOError("create", outPath, err)
	}
	defer dst.Close()

	st := c.newModeState()
	if c.hasPrefixBlock() {
		if err := c.streamPrefix(src, dst, st, inPath, outPath, encrypting); err != nil {
			return err
		}
	}

	cur := make([]byte, chunkSize)
	next := make([]byte, chunkSize)
	curN, err := readChunk(src, cur)
	if err != nil {
		return NewIOError("read", inPath, err)
	}

	for {
		nextN := 0
		if curN < chunkSize {
			st.IsEnd = true
		} else {
			nextN, err = readChunk(src, next)
			if err != nil {
				return NewIOError("read", inPath, err)
			}
			if nextN == 0 {
				st.IsEnd = true
			}
		}

		var out []byte
		if encrypting {
			out, err = c.encryptChunk(cur[:curN], st)
		} else {
			out, err = c.decryptChunk(cur[:curN], st)
		}
		if err != nil {
			return err
		}
		if len(out) > 0 {
			if _, err := dst.Write(out); err != nil {
				return NewIOError("write", outPath, err)
			}
		}

		if st.IsEnd {
			return nil
		}
		cur, next = next, cur
		curN = nextN
	}
}

// streamPrefix writes the encrypted seed block on encrypt, or consumes and
// decrypts it on decrypt, rebuilding the RandomDelta increment from the
// recovered seed.
func (c *Context) streamPrefix(src io.Reader, dst io.Writer, st *ModeState, inPath, outPath string, encrypting bool) error {
	if encrypting {
		prefix, err := c.cipher.EncryptBlock(st.Initial)
		if err != nil {
			return err
		}
		if _, err := dst.Write(prefix); err != nil {
			return NewIOError("write", outPath, err)
		}
		return nil
	}

	first := make([]byte, c.blockSize)
	n, err := readChunk(src, first)
	if err != nil {
		return NewIOError("read", inPath, err)
	}
	if n < c.blockSize {
		return ErrInputTooShort
	}
	initial, err := c.cipher.DecryptBlock(first)
	if err != nil {
		return err
	}
	st.Initial = initial
	if c.mode == ModeRandomDelta {
		st.Delta = append([]byte(nil), initial[c.blockSize/2:]...)
	}
	return nil
}

// readChunk fills buf as far as the reader allows, mapping the end of the
// stream to a short count instead of an error.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	return n, err
}
