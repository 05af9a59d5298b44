package crypto

import (
	"crypto/rand"
	"math/big"
)

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}

// Shuffle permutes the slice in place with a Fisher-Yates walk.
func Shuffle[T any](s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := RandIntn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
