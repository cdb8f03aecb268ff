package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawWinningTicket_Bounds(t *testing.T) {
	for i := 0; i < 1000; i++ {
		ticket, err := drawWinningTicket(10)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ticket, 1)
		assert.LessOrEqual(t, ticket, 10)
	}
}

func TestDrawWinningTicket_SingleTicket(t *testing.T) {
	ticket, err := drawWinningTicket(1)
	require.NoError(t, err)
	assert.Equal(t, 1, ticket)
}

func TestDrawWinningTicket_NonPositive(t *testing.T) {
	_, err := drawWinningTicket(0)
	assert.Error(t, err)

	_, err = drawWinningTicket(-5)
	assert.Error(t, err)
}

func TestDrawWinningTicket_RoughlyUniform(t *testing.T) {
	const (
		n     = 10
		draws = 100000
	)

	counts := make(map[int]int)
	for i := 0; i < draws; i++ {
		ticket, err := drawWinningTicket(n)
		require.NoError(t, err)
		counts[ticket]++
	}

	// Every ticket should land within 20% of the expected frequency. With
	// 100k draws the standard deviation per bucket is about 95, so this
	// bound has enormous headroom against flakes.
	expected := draws / n
	for ticket := 1; ticket <= n; ticket++ {
		assert.InDelta(t, expected, counts[ticket], float64(expected)*0.2,
			"ticket %d drawn %d times", ticket, counts[ticket])
	}
	assert.Len(t, counts, n)
}

func TestCommitSeedHash(t *testing.T) {
	hash1, err := commitSeedHash("listing-1")
	require.NoError(t, err)
	assert.Len(t, hash1, 64) // hex encoded sha256

	hash2, err := commitSeedHash("listing-1")
	require.NoError(t, err)
	assert.NotEqual(t, hash1, hash2)
}
