// Package rng provides the seeded random source shared by the initializer and
// the infection update.
//
// A Source is not safe for concurrent use. Each simulation run owns its own
// sources, so two runs never observe each other's draws.
package rng

import (
	"fmt"
	"math/rand"
	"time"
)

// Source wraps a seeded pseudo-random generator. The seed is stored so a run
// started without one can still report what it used.
type Source struct {
	r    *rand.Rand
	seed int64
}

// New returns a Source seeded with *seed, or with the wall clock when seed is nil.
func New(seed *int64) *Source {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return &Source{r: rand.New(rand.NewSource(s)), seed: s}
}

// Seed returns the seed this Source was built from.
func (s *Source) Seed() int64 { return s.seed }

// Float64 returns a uniform value in [0, 1).
func (s *Source) Float64() float64 { return s.r.Float64() }

// Uniform returns a uniform value in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.r.Float64()
}

// Sample draws k distinct indices from [0, n) without replacement, in draw order.
// It panics if k is negative or greater than n.
func (s *Source) Sample(n, k int) []int {
	if k < 0 || k > n {
		panic(fmt.Sprintf("rng: cannot sample %d of %d", k, n))
	}
	// Partial Fisher-Yates: only the first k slots are shuffled.
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.r.Intn(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:k:k]
}

// Choose draws k distinct elements of pool without replacement.
// pool is not modified.
func (s *Source) Choose(pool []int, k int) []int {
	idx := s.Sample(len(pool), k)
	out := make([]int, k)
	for i, p := range idx {
		out[i] = pool[p]
	}
	return out
}
