package generator

import (
	"math"
	"math/rand/v2"
)

// poissonChunk bounds the mean handled by one run of Knuth's method so that
// exp(-lambda) stays well away from underflow.
const poissonChunk = 30.0

// ResolveSeed returns seed, or a fresh random seed when seed is zero.
func ResolveSeed(seed uint64) uint64 {
	for seed == 0 {
		seed = rand.Uint64()
	}
	return seed
}

// NewRand returns the single random source used for one generation run.
// A zero seed draws a fresh seed so runs differ.
func NewRand(seed uint64) *rand.Rand {
	seed = ResolveSeed(seed)
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// poisson draws from a Poisson distribution with mean lambda. Large means
// are split into chunks whose draws are summed; the sum of independent
// Poisson variables is Poisson with the summed mean.
func poisson(r *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	n := 0
	for lambda > poissonChunk {
		n += knuthPoisson(r, poissonChunk)
		lambda -= poissonChunk
	}
	return n + knuthPoisson(r, lambda)
}

func knuthPoisson(r *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := r.Float64()
	for p > limit {
		k++
		p *= r.Float64()
	}
	return k
}

// logLogistic draws from a log-logistic (Fisk) distribution with shape c and
// unit scale by inverting its CDF F(x) = 1 / (1 + x^-c).
func logLogistic(r *rand.Rand, c float64) float64 {
	u := r.Float64()
	for u == 0 {
		u = r.Float64()
	}
	return math.Pow(u/(1-u), 1/c)
}

// sampleIndices returns k distinct indices from [0, n) in selection order.
// The caller guarantees 0 <= k <= n.
func sampleIndices(r *rand.Rand, n, k int) []int {
	if k == 0 {
		return nil
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	// Partial Fisher-Yates: the first k slots end up a uniform sample.
	for i := 0; i < k; i++ {
		j := i + r.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:k]
}

// weightedIndex draws an index with probability proportional to
// cumulative[i] - cumulative[i-1]. cumulative must be non-decreasing with a
// positive last element.
func weightedIndex(r *rand.Rand, cumulative []float64) int {
	x := r.Float64() * cumulative[len(cumulative)-1]
	lo, hi := 0, len(cumulative)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if cumulative[mid] > x {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
