package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateRoomCode()
		require.Len(t, code, RoomCodeLength)
		for _, c := range code {
			require.True(t, strings.ContainsRune(RoomCodeChars, c), "unexpected character %q", c)
		}
		seen[code] = true
	}
	// 100 draws from a 32^6 space should never collide this badly
	require.Greater(t, len(seen), 90)
}

func TestRollDie(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := RollDie(3)
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 3)
	}
	require.Equal(t, 1, RollDie(1))
	require.Equal(t, 1, RollDie(0))
}
