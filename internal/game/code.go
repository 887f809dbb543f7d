package game

import "crypto/rand"

// codeAlphabet omits visually ambiguous characters (0/O, 1/I). Its length
// divides 256, so mapping random bytes by modulo stays unbiased.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// newRoomCode produces a random 6-character room code. Collision checks
// against live rooms happen at insertion time.
func newRoomCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("room code entropy unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
