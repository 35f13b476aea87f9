package blockcrypt

import (
	"errors"
	"math/big"
)

// Wiener's attack recovers the private exponent of an RSA key whose d is
// small (roughly d < n^0.25) by walking the continued-fraction convergents
// of e/n.

// ErrWienerFailed reports that no convergent yielded the private exponent;
// the key is not vulnerable to the attack.
var ErrWienerFailed = errors.New("wiener attack failed: private exponent not recoverable")

// WienerAttack attempts to recover d from a public key (e, n).
func WienerAttack(pub *RSAPublicKey) (*big.Int, error) {
	if pub == nil || pub.N == nil || pub.E == nil {
		return nil, NewValidationError("pub", "public key cannot be nil")
	}

	// Continued-fraction expansion of e/n, testing each convergent k/d.
	a := new(big.Int).Set(pub.E)
	b := new(big.Int).Set(pub.N)

	k0, k1 := big.NewInt(0), big.NewInt(1) // numerators
	d0, d1 := big.NewInt(1), big.NewInt(0) // denominators

	for b.Sign() != 0 {
		q, r := new(big.Int).QuoRem(a, b, new(big.Int))
		a, b = b, r

		k0, k1 = k1, new(big.Int).Add(new(big.Int).Mul(q, k1), k0)
		d0, d1 = d1, new(big.Int).Add(new(big.Int).Mul(q, d1), d0)

		if d := checkConvergent(pub, k1, d1); d != nil {
			return d, nil
		}
	}
	return nil, ErrWienerFailed
}

// checkConvergent tests whether k/d satisfies e*d - 1 = k*phi for an
// integer phi that factors n.
func checkConvergent(pub *RSAPublicKey, k, d *big.Int) *big.Int {
	if k.Sign() == 0 || d.Sign() == 0 {
		return nil
	}
	ed := new(big.Int).Mul(pub.E, d)
	ed.Sub(ed, bigOne)
	phi, rem := new(big.Int).QuoRem(ed, k, new(big.Int))
	if rem.Sign() != 0 {
		return nil
	}

	// phi = (p-1)(q-1) means p and q are roots of
	// x^2 - (n - phi + 1)x + n = 0.
	sum := new(big.Int).Sub(pub.N, phi)
	sum.Add(sum, bigOne)

	disc := new(big.Int).Mul(sum, sum)
	disc.Sub(disc, new(big.Int).Lsh(pub.N, 2))
	if disc.Sign() < 0 {
		return nil
	}
	root := new(big.Int).Sqrt(disc)
	if new(big.Int).Mul(root, root).Cmp(disc) != 0 {
		return nil
	}

	p := new(big.Int).Add(sum, root)
	p.Rsh(p, 1)
	q := new(big.Int).Sub(sum, root)
	q.Rsh(q, 1)
	if new(big.Int).Mul(p, q).Cmp(pub.N) != 0 {
		return nil
	}
	return new(big.Int).Set(d)
}
