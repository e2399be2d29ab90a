package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(v int64) *int64 { return &v }

func TestSource_SameSeedSameDraws(t *testing.T) {
	a, b := New(seed(42)), New(seed(42))
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64(), "draw %d", i)
	}
	assert.Equal(t, a.Sample(50, 10), b.Sample(50, 10))
}

func TestSource_NilSeedIsRecorded(t *testing.T) {
	s := New(nil)
	replay := New(seed(s.Seed()))
	assert.Equal(t, s.Float64(), replay.Float64())
}

func TestUniform_Range(t *testing.T) {
	s := New(seed(1))
	for i := 0; i < 1000; i++ {
		v := s.Uniform(-0.5, 0.5)
		assert.GreaterOrEqual(t, v, -0.5)
		assert.Less(t, v, 0.5)
	}
}

func TestSample_DistinctAndInRange(t *testing.T) {
	s := New(seed(7))
	for _, tc := range []struct{ n, k int }{{10, 0}, {10, 3}, {10, 10}, {1, 1}, {200, 57}} {
		got := s.Sample(tc.n, tc.k)
		require.Len(t, got, tc.k)
		seen := make(map[int]bool, tc.k)
		for _, v := range got {
			assert.GreaterOrEqual(t, v, 0)
			assert.Less(t, v, tc.n)
			assert.False(t, seen[v], "duplicate index %d", v)
			seen[v] = true
		}
	}
}

func TestSample_PanicsWhenKExceedsN(t *testing.T) {
	s := New(seed(7))
	assert.Panics(t, func() { s.Sample(3, 4) })
	assert.Panics(t, func() { s.Sample(3, -1) })
}

func TestChoose_DrawsFromPool(t *testing.T) {
	s := New(seed(3))
	pool := []int{4, 8, 15, 16, 23, 42}
	got := s.Choose(pool, 4)
	require.Len(t, got, 4)
	for _, v := range got {
		assert.Contains(t, pool, v)
	}
	assert.Equal(t, []int{4, 8, 15, 16, 23, 42}, pool, "pool must not be modified")
	assert.Empty(t, s.Choose(nil, 0))
}
