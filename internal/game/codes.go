package game

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
)

// GenerateRoomCode creates a random room code
func GenerateRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := 0; i < RoomCodeLength; i++ {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(RoomCodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = RoomCodeChars[rand.Intn(len(RoomCodeChars))]
			continue
		}
		code[i] = RoomCodeChars[n.Int64()]
	}
	return string(code)
}

// RollDie rolls a die with the given number of sides, returning 1..sides.
func RollDie(sides int) int {
	if sides <= 1 {
		return 1
	}
	n, err := crand.Int(crand.Reader, big.NewInt(int64(sides)))
	if err != nil {
		return rand.Intn(sides) + 1
	}
	return int(n.Int64()) + 1
}
