package blockcrypt

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Keyring tracks cipher keys across rotations. The newest entry encrypts;
// older entries are tried in order when decrypting material produced before
// the rotation.
type Keyring struct {
	entries []KeyringEntry
}

// KeyringEntry is one key under a stable identifier.
type KeyringEntry struct {
	ID  uuid.UUID
	Key []byte
}

// NewKeyring creates a keyring with an initial primary key.
func NewKeyring(primary []byte) (*Keyring, error) {
	kr := &Keyring{}
	if _, err := kr.Add(primary); err != nil {
		return nil, err
	}
	return kr, nil
}

// Add registers a key and makes it primary. The assigned ID is returned.
func (kr *Keyring) Add(key []byte) (uuid.UUID, error) {
	if len(key) == 0 {
		return uuid.Nil, errors.New("key cannot be empty")
	}
	entry := KeyringEntry{
		ID:  uuid.New(),
		Key: append([]byte(nil), key...),
	}
	// Newest first.
	kr.entries = append([]KeyringEntry{entry}, kr.entries...)
	return entry.ID, nil
}

// Primary returns the entry used for new encryptions.
func (kr *Keyring) Primary() KeyringEntry {
	return kr.entries[0]
}

// Get returns the key registered under id.
func (kr *Keyring) Get(id uuid.UUID) ([]byte, error) {
	for _, e := range kr.entries {
		if e.ID == id {
			return e.Key, nil
		}
	}
	return nil, fmt.Errorf("no key with id %s", id)
}

// Len returns the number of registered keys.
func (kr *Keyring) Len() int { return len(kr.entries) }

// ContextFactory builds a mode engine for one key; the keyring uses it to
// try entries during decryption and rotation.
type ContextFactory func(key []byte) (*Context, error)

// TryDecrypt attempts every key, newest first, and returns the first
// plaintext that decrypts cleanly and passes verify. The permissive
// padding schemes decrypt under any key without error, so callers using
// them must supply a verify function that can recognize their plaintext;
// a nil verify accepts the first error-free decryption.
func (kr *Keyring) TryDecrypt(data []byte, factory ContextFactory, verify func([]byte) bool) ([]byte, error) {
	var lastErr error
	for _, e := range kr.entries {
		ctx, err := factory(e.Key)
		if err != nil {
			lastErr = err
			continue
		}
		plaintext, err := ctx.Decrypt(data)
		ctx.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if verify != nil && !verify(plaintext) {
			lastErr = errors.New("plaintext failed verification")
			continue
		}
		return plaintext, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("all keyring entries failed: %w", lastErr)
	}
	return nil, errors.New("keyring is empty")
}

// Rotate registers newKey as primary and re-encrypts data (produced under
// any older entry) with it. The re-encrypted buffer and the new key's ID
// are returned. The verify function has the TryDecrypt contract.
func (kr *Keyring) Rotate(data, newKey []byte, factory ContextFactory, verify func([]byte) bool) ([]byte, uuid.UUID, error) {
	plaintext, err := kr.TryDecrypt(data, factory, verify)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("rotation decrypt: %w", err)
	}

	id, err := kr.Add(newKey)
	if err != nil {
		return nil, uuid.Nil, err
	}
	ctx, err := factory(newKey)
	if err != nil {
		return nil, uuid.Nil, err
	}
	defer ctx.Close()

	ciphertext, err := ctx.Encrypt(plaintext)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("rotation encrypt: %w", err)
	}
	return ciphertext, id, nil
}
