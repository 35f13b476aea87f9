package blockcrypt

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KeyProvider supplies cipher keys, typically derived from a password. The
// derived key length is chosen by the caller to match the target cipher
// (e.g. 7 for DES, 16/24/32 for Rijndael or DEAL).
type KeyProvider interface {
	// DeriveKey derives a cipher key from the given salt.
	DeriveKey(salt []byte) ([]byte, error)

	// GenerateSalt generates a new random salt.
	GenerateSalt() ([]byte, error)
}

// KDF selects the password-stretching algorithm behind a PasswordKey.
type KDF uint8

const (
	// KDFArgon2id is the memory-hard default
	KDFArgon2id KDF = iota
	// KDFPBKDF2SHA256 iterates HMAC-SHA-256
	KDFPBKDF2SHA256
	// KDFPBKDF2SHA512 iterates HMAC-SHA-512
	KDFPBKDF2SHA512
)

// String returns the string representation of the KDF
func (k KDF) String() string {
	switch k {
	case KDFArgon2id:
		return "argon2id"
	case KDFPBKDF2SHA256:
		return "pbkdf2-sha256"
	case KDFPBKDF2SHA512:
		return "pbkdf2-sha512"
	default:
		return "unknown"
	}
}

// PasswordKeyConfig tunes the derivation. KeySize is the only required
// field; zeroed cost fields fall back to moderate defaults.
type PasswordKeyConfig struct {
	KDF      KDF
	KeySize  int // derived key length in bytes
	SaltSize int // default 32

	// Argon2id cost
	Passes    uint32 // default 3
	MemoryKiB uint32 // default 64*1024
	Lanes     uint8  // default 4

	// PBKDF2 cost
	Iterations int // default 210000
}

// PasswordKey implements KeyProvider by stretching a password through the
// configured KDF. One instance can key several ciphers as long as they
// share a key length.
type PasswordKey struct {
	password []byte
	cfg      PasswordKeyConfig
}

// NewPasswordKey validates the configuration, fills in cost defaults and
// keeps its own copy of the password. Call Close when the provider is no
// longer needed.
func NewPasswordKey(password []byte, cfg PasswordKeyConfig) (*PasswordKey, error) {
	if len(password) == 0 {
		return nil, &ValidationError{Param: "password", Reason: "cannot be empty"}
	}
	if cfg.KDF > KDFPBKDF2SHA512 {
		return nil, &ValidationError{Param: "KDF", Reason: fmt.Sprintf("unknown derivation %d", cfg.KDF)}
	}
	if cfg.KeySize <= 0 {
		return nil, &ValidationError{Param: "KeySize", Reason: "a derived key length is required"}
	}
	if cfg.SaltSize == 0 {
		cfg.SaltSize = 32
	}
	if cfg.Passes == 0 {
		cfg.Passes = 3
	}
	if cfg.MemoryKiB == 0 {
		cfg.MemoryKiB = 64 * 1024
	}
	if cfg.Lanes == 0 {
		cfg.Lanes = 4
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = 210000
	}
	return &PasswordKey{
		password: append([]byte(nil), password...),
		cfg:      cfg,
	}, nil
}

// DeriveKey stretches the password with the given salt into a key of the
// configured length.
func (k *PasswordKey) DeriveKey(salt []byte) ([]byte, error) {
	if k.password == nil {
		return nil, ErrContextClosed
	}
	if len(salt) == 0 {
		return nil, &ValidationError{Param: "salt", Reason: "cannot be empty"}
	}

	switch k.cfg.KDF {
	case KDFArgon2id:
		return argon2.IDKey(k.password, salt, k.cfg.Passes, k.cfg.MemoryKiB, k.cfg.Lanes, uint32(k.cfg.KeySize)), nil
	case KDFPBKDF2SHA256:
		return pbkdf2.Key(k.password, salt, k.cfg.Iterations, k.cfg.KeySize, sha256.New), nil
	case KDFPBKDF2SHA512:
		return pbkdf2.Key(k.password, salt, k.cfg.Iterations, k.cfg.KeySize, sha512.New), nil
	default:
		return nil, &ValidationError{Param: "KDF", Reason: fmt.Sprintf("unknown derivation %d", k.cfg.KDF)}
	}
}

// GenerateSalt draws a fresh salt of the configured size from the OS
// entropy source.
func (k *PasswordKey) GenerateSalt() ([]byte, error) {
	salt := make([]byte, k.cfg.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("salt generation: %w", err)
	}
	return salt, nil
}

// Close zeroes the stored password; the provider refuses to derive keys
// afterwards.
func (k *PasswordKey) Close() error {
	zeroBytes(k.password)
	k.password = nil
	return nil
}
