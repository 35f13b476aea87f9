package blockcrypt

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildVulnerableKey constructs an RSA key with a deliberately small
// private exponent (d well below n^(1/4)), the regime Wiener's attack
// breaks.
func buildVulnerableKey(t *testing.T) (*RSAPublicKey, *big.Int) {
	t.Helper()
	for {
		p, err := GeneratePrime(128, MillerRabin, 0.999)
		require.NoError(t, err)
		q, err := GeneratePrime(128, MillerRabin, 0.999)
		require.NoError(t, err)
		if p.Cmp(q) == 0 {
			continue
		}
		n := new(big.Int).Mul(p, q)
		phi := new(big.Int).Mul(new(big.Int).Sub(p, bigOne), new(big.Int).Sub(q, bigOne))

		// n is ~256 bits, so n^(1/4) is ~64 bits; a 40-bit d is far inside
		// the vulnerable range.
		d, err := rand.Int(rand.Reader, new(big.Int).Lsh(bigOne, 40))
		require.NoError(t, err)
		d.SetBit(d, 39, 1)
		d.SetBit(d, 0, 1)

		e := new(big.Int).ModInverse(d, phi)
		if e == nil {
			continue
		}
		return &RSAPublicKey{N: n, E: e}, d
	}
}

func TestWienerRecoversSmallExponent(t *testing.T) {
	pub, d := buildVulnerableKey(t)

	recovered, err := WienerAttack(pub)
	require.NoError(t, err)
	assert.Zero(t, d.Cmp(recovered), "recovered d = %s, want %s", recovered, d)
}

func TestWienerFailsOnHealthyKey(t *testing.T) {
	g, err := NewRSAKeyGenerator(MillerRabin, 0.999, 256)
	require.NoError(t, err)
	pub, _, err := g.GenerateKeyPair()
	require.NoError(t, err)

	// e = 65537 gives a large d; the convergent walk finds nothing.
	_, err = WienerAttack(pub)
	assert.ErrorIs(t, err, ErrWienerFailed)
}

func TestWienerValidation(t *testing.T) {
	_, err := WienerAttack(nil)
	assert.Error(t, err)
	_, err = WienerAttack(&RSAPublicKey{})
	assert.Error(t, err)
}
