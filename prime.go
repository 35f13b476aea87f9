package blockcrypt

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
)

// Probabilistic primality testing with a selectable algorithm. Each round
// of Fermat or Solovay-Strassen wrongly passes a composite with probability
// at most 1/2, Miller-Rabin with at most 1/4; rounds are repeated until the
// requested confidence is reached.

// PrimalityMethod selects the probabilistic primality test.
type PrimalityMethod uint8

const (
	// Fermat tests a^(n-1) == 1 (mod n)
	Fermat PrimalityMethod = iota
	// SolovayStrassen tests a^((n-1)/2) == Jacobi(a,n) (mod n)
	SolovayStrassen
	// MillerRabin tests the square-root chain of a^d
	MillerRabin
)

// String returns the string representation of the method
func (m PrimalityMethod) String() string {
	switch m {
	case Fermat:
		return "Fermat"
	case SolovayStrassen:
		return "SolovayStrassen"
	case MillerRabin:
		return "MillerRabin"
	default:
		return "unknown"
	}
}

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

// primalityRounds converts a confidence target into an iteration count.
func primalityRounds(method PrimalityMethod, minProbability float64) int {
	perRound := 0.5
	if method == MillerRabin {
		perRound = 0.25
	}
	rounds := int(math.Ceil(math.Log(1-minProbability) / math.Log(perRound)))
	if rounds < 1 {
		rounds = 1
	}
	return rounds
}

// IsProbablePrime runs the chosen test until a composite witness is found
// or enough rounds passed to reach minProbability confidence.
func IsProbablePrime(n *big.Int, method PrimalityMethod, minProbability float64) (bool, error) {
	if minProbability < 0.5 || minProbability >= 1 {
		return false, NewValidationError("minProbability", "%v is outside [0.5, 1)", minProbability)
	}
	if n.Sign() <= 0 {
		return false, nil
	}
	if n.Cmp(bigTwo) < 0 {
		return false, nil
	}
	if n.Cmp(bigTwo) == 0 || n.Cmp(big.NewInt(3)) == 0 {
		return true, nil
	}
	if n.Bit(0) == 0 {
		return false, nil
	}

	rounds := primalityRounds(method, minProbability)
	for i := 0; i < rounds; i++ {
		a, err := randomWitness(n)
		if err != nil {
			return false, err
		}
		var pass bool
		switch method {
		case Fermat:
			pass = fermatWitness(n, a)
		case SolovayStrassen:
			pass = solovayStrassenWitness(n, a)
		case MillerRabin:
			pass = millerRabinWitness(n, a)
		default:
			return false, NewValidationError("method", "%d names no primality test", method)
		}
		if !pass {
			return false, nil
		}
	}
	return true, nil
}

// randomWitness draws a uniformly in [2, n-2].
func randomWitness(n *big.Int) (*big.Int, error) {
	limit := new(big.Int).Sub(n, big.NewInt(3))
	a, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to draw witness: %w", err)
	}
	return a.Add(a, bigTwo), nil
}

func fermatWitness(n, a *big.Int) bool {
	exp := new(big.Int).Sub(n, bigOne)
	return new(big.Int).Exp(a, exp, n).Cmp(bigOne) == 0
}

func solovayStrassenWitness(n, a *big.Int) bool {
	j := big.Jacobi(a, n)
	if j == 0 {
		return false
	}
	exp := new(big.Int).Rsh(new(big.Int).Sub(n, bigOne), 1)
	r := new(big.Int).Exp(a, exp, n)

	expected := big.NewInt(int64(j))
	if j < 0 {
		expected.Add(n, expected)
	}
	return r.Cmp(expected) == 0
}

func millerRabinWitness(n, a *big.Int) bool {
	// n-1 = d * 2^s with d odd.
	d := new(big.Int).Sub(n, bigOne)
	s := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		s++
	}

	x := new(big.Int).Exp(a, d, n)
	nMinusOne := new(big.Int).Sub(n, bigOne)
	if x.Cmp(bigOne) == 0 || x.Cmp(nMinusOne) == 0 {
		return true
	}
	for i := 0; i < s-1; i++ {
		x.Exp(x, bigTwo, n)
		if x.Cmp(nMinusOne) == 0 {
			return true
		}
	}
	return false
}

// GeneratePrime draws random candidates of exactly bits length until one
// passes the chosen test.
func GeneratePrime(bits int, method PrimalityMethod, minProbability float64) (*big.Int, error) {
	if bits < 2 {
		return nil, NewValidationError("bits", "%d; a prime needs at least 2 bits", bits)
	}
	for {
		candidate, err := rand.Int(rand.Reader, new(big.Int).Lsh(bigOne, uint(bits)))
		if err != nil {
			return nil, fmt.Errorf("failed to draw prime candidate: %w", err)
		}
		// Force top bit (exact length) and low bit (odd).
		candidate.SetBit(candidate, bits-1, 1)
		candidate.SetBit(candidate, 0, 1)

		ok, err := IsProbablePrime(candidate, method, minProbability)
		if err != nil {
			return nil, err
		}
		if ok {
			return candidate, nil
		}
	}
}
