package blockcrypt

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Diffie-Hellman key agreement over a caller-supplied group (p, g).

// DiffieHellman holds one party's state.
type DiffieHellman struct {
	p, g       *big.Int
	privateKey *big.Int
}

// NewDiffieHellman validates the group parameters and draws a random
// private key in (1, p-1).
func NewDiffieHellman(p, g *big.Int) (*DiffieHellman, error) {
	if p == nil || p.Sign() <= 0 {
		return nil, NewValidationError("p", "modulus must be positive")
	}
	if g == nil || g.Sign() <= 0 {
		return nil, NewValidationError("g", "generator must be positive")
	}
	dh := &DiffieHellman{p: p, g: g}

	// Draw k uniformly in [2, p-2].
	limit := new(big.Int).Sub(p, big.NewInt(3))
	if limit.Sign() <= 0 {
		return nil, NewValidationError("p", "modulus %v leaves no room for a private key", p)
	}
	k, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to draw private key: %w", err)
	}
	dh.privateKey = k.Add(k, bigTwo)
	return dh, nil
}

// SetPrivateKey replaces the private key; k must satisfy 1 < k < p-1.
func (dh *DiffieHellman) SetPrivateKey(k *big.Int) error {
	if k == nil || k.Cmp(bigOne) <= 0 {
		return NewValidationError("k", "private key must exceed 1")
	}
	upper := new(big.Int).Sub(dh.p, bigOne)
	if k.Cmp(upper) >= 0 {
		return NewValidationError("k", "private key must be below p-1")
	}
	dh.privateKey = new(big.Int).Set(k)
	return nil
}

// PublicKey returns g^privateKey mod p.
func (dh *DiffieHellman) PublicKey() *big.Int {
	return new(big.Int).Exp(dh.g, dh.privateKey, dh.p)
}

// ComputeShared returns peerPublic^privateKey mod p, the shared secret.
func (dh *DiffieHellman) ComputeShared(peerPublic *big.Int) (*big.Int, error) {
	if peerPublic == nil || peerPublic.Sign() <= 0 || peerPublic.Cmp(dh.p) >= 0 {
		return nil, NewValidationError("peerPublic", "peer public key must be in (0, p)")
	}
	return new(big.Int).Exp(peerPublic, dh.privateKey, dh.p), nil
}
