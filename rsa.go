package blockcrypt

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"os"
)

// Textbook RSA with PKCS#1 v1.5 type-2 padding, chunking long inputs into
// fixed-size blocks. Educational: no OAEP, no blinding.

// rsaFileBufferSize sizes the buffered reader/writer for file variants.
const rsaFileBufferSize = 81920

// RSAPublicKey holds the modulus and public exponent.
type RSAPublicKey struct {
	N *big.Int
	E *big.Int
}

// RSAPrivateKey holds the modulus and private exponent.
type RSAPrivateKey struct {
	N *big.Int
	D *big.Int
}

// RSAKeyGenerator produces key pairs with a configurable primality test.
type RSAKeyGenerator struct {
	method         PrimalityMethod
	minProbability float64
	bits           int
}

// NewRSAKeyGenerator validates and stores the generation parameters: the
// primality method, a confidence in [0.5, 1) and a modulus length of at
// least 128 bits, a multiple of 8.
func NewRSAKeyGenerator(method PrimalityMethod, minProbability float64, bits int) (*RSAKeyGenerator, error) {
	if minProbability < 0.5 || minProbability >= 1 {
		return nil, NewValidationError("minProbability", "%v is outside [0.5, 1)", minProbability)
	}
	if bits < 128 || bits%8 != 0 {
		return nil, NewValidationError("bits", "%d; the modulus needs >= 128 bits in whole bytes", bits)
	}
	if method > MillerRabin {
		return nil, NewValidationError("method", "%d names no primality test", method)
	}
	return &RSAKeyGenerator{
		method:         method,
		minProbability: minProbability,
		bits:           bits,
	}, nil
}

// GenerateKeyPair draws two primes of half the modulus length and derives
// the exponent pair.
func (g *RSAKeyGenerator) GenerateKeyPair() (*RSAPublicKey, *RSAPrivateKey, error) {
	e := big.NewInt(65537)
	for {
		p, err := GeneratePrime(g.bits/2, g.method, g.minProbability)
		if err != nil {
			return nil, nil, err
		}
		q, err := GeneratePrime(g.bits/2, g.method, g.minProbability)
		if err != nil {
			return nil, nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		phi := new(big.Int).Mul(
			new(big.Int).Sub(p, bigOne),
			new(big.Int).Sub(q, bigOne),
		)
		d := new(big.Int).ModInverse(e, phi)
		if d == nil {
			// e divides phi; redraw.
			continue
		}
		return &RSAPublicKey{N: n, E: e}, &RSAPrivateKey{N: n, D: d}, nil
	}
}

// rsaBlockSize returns the modulus size in bytes.
func rsaBlockSize(n *big.Int) int {
	return (n.BitLen() + 7) / 8
}

// rsaPadChunk builds one PKCS#1 v1.5 type-2 block:
// 0x00 || 0x02 || nonzero random || 0x00 || chunk.
func rsaPadChunk(chunk []byte, blockSize int) ([]byte, error) {
	padLen := blockSize - 3 - len(chunk)
	block := make([]byte, blockSize)
	block[1] = 0x02
	ps := block[2 : 2+padLen]
	if _, err := rand.Read(ps); err != nil {
		return nil, fmt.Errorf("failed to generate padding: %w", err)
	}
	for i := range ps {
		for ps[i] == 0 {
			var b [1]byte
			if _, err := rand.Read(b[:]); err != nil {
				return nil, fmt.Errorf("failed to generate padding: %w", err)
			}
			ps[i] = b[0]
		}
	}
	copy(block[2+padLen+1:], chunk)
	return block, nil
}

// rsaUnpadChunk parses a decrypted type-2 block.
func rsaUnpadChunk(block []byte) ([]byte, error) {
	if len(block) < 11 || block[0] != 0x00 || block[1] != 0x02 {
		return nil, NewDataError("decrypt", "not a PKCS#1 v1.5 type-2 block", nil)
	}
	for i := 2; i < len(block); i++ {
		if block[i] == 0x00 {
			return block[i+1:], nil
		}
	}
	return nil, NewDataError("decrypt", "missing padding delimiter", nil)
}

// RSAEncrypt chunks data into blockSize-11-byte pieces, pads each and
// raises it to the public exponent. Output is a sequence of fixed-size
// blocks.
func RSAEncrypt(data []byte, pub *RSAPublicKey) ([]byte, error) {
	if pub == nil || pub.N == nil || pub.E == nil {
		return nil, NewValidationError("pub", "public key cannot be nil")
	}
	if len(data) == 0 {
		return nil, &ValidationError{Param: "data", Reason: "cannot be empty", Err: ErrEmptyInput}
	}
	blockSize := rsaBlockSize(pub.N)
	chunkSize := blockSize - 11

	var out []byte
	for start := 0; start < len(data); start += chunkSize {
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		block, err := rsaPadChunk(data[start:end], blockSize)
		if err != nil {
			return nil, err
		}
		m := new(big.Int).SetBytes(block)
		c := new(big.Int).Exp(m, pub.E, pub.N)
		cb := make([]byte, blockSize)
		c.FillBytes(cb)
		out = append(out, cb...)
	}
	return out, nil
}

// RSADecrypt reverses RSAEncrypt.
func RSADecrypt(data []byte, priv *RSAPrivateKey) ([]byte, error) {
	if priv == nil || priv.N == nil || priv.D == nil {
		return nil, NewValidationError("priv", "private key cannot be nil")
	}
	blockSize := rsaBlockSize(priv.N)
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, &DataError{
			Operation: "decrypt",
			Message:   fmt.Sprintf("ciphertext length %d is not a positive multiple of %d", len(data), blockSize),
			Err:       ErrNotBlockAligned,
		}
	}

	var out []byte
	for start := 0; start < len(data); start += blockSize {
		c := new(big.Int).SetBytes(data[start : start+blockSize])
		m := new(big.Int).Exp(c, priv.D, priv.N)
		mb := make([]byte, blockSize)
		m.FillBytes(mb)
		chunk, err := rsaUnpadChunk(mb)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// RSAEncryptFile streams inPath through RSAEncrypt into outPath, one
// output block per input chunk.
func RSAEncryptFile(inPath, outPath string, pub *RSAPublicKey) error {
	return rsaProcessFile(inPath, outPath, rsaBlockSize(pub.N)-11, func(chunk []byte) ([]byte, error) {
		return RSAEncrypt(chunk, pub)
	})
}

// RSADecryptFile reverses RSAEncryptFile.
func RSADecryptFile(inPath, outPath string, priv *RSAPrivateKey) error {
	return rsaProcessFile(inPath, outPath, rsaBlockSize(priv.N), func(block []byte) ([]byte, error) {
		return RSADecrypt(block, priv)
	})
}

func rsaProcessFile(inPath, outPath string, chunkSize int, process func([]byte) ([]byte, error)) error {
	src, err := os.Open(inPath)
	if err != nil {
		return NewIOError("open", inPath, err)
	}
	defer src.Close()

	dst, err := os.Create(outPath)
	if err != nil {
		return NewIOError("create", outPath, err)
	}
	defer dst.Close()

	reader := bufio.NewReaderSize(src, rsaFileBufferSize)
	writer := bufio.NewWriterSize(dst, rsaFileBufferSize)

	buf := make([]byte, chunkSize)
	for {
		n, err := io.ReadFull(reader, buf)
		if n > 0 {
			out, perr := process(buf[:n])
			if perr != nil {
				return perr
			}
			if _, werr := writer.Write(out); werr != nil {
				return NewIOError("write", outPath, werr)
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return NewIOError("read", inPath, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return NewIOError("write", outPath, err)
	}
	return nil
}
