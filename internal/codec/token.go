package codec

import (
	"errors"
	"fmt"
)

// Tier sizes of the token alphabet. Output produced with one tiering cannot be
// read with another, so these are part of the encoded stream's format.
const (
	TierLow  = 111
	TierMid  = 38
	TierHigh = 3

	// MaxTokens is the number of distinct values Token can represent.
	MaxTokens = TierLow * TierMid * TierHigh
)

// ErrTokenRange is returned by Token for values outside [0, MaxTokens).
var ErrTokenRange = errors.New("token value out of range")

// alphabet skips NUL, the 0x02 multi-value separator and the printable ASCII
// range, so tokens never collide with record separators or attribute text.
var alphabet = [TierLow + TierMid + TierHigh]byte{
	3, 4, 5, 6, 7, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 127,
	128, 129, 130, 131, 132, 133, 134, 135, 136, 137, 138, 139, 140, 141, 142, 143, 144, 145, 146, 147, 148,
	149, 150, 151, 152, 153, 154, 155, 156, 157, 158, 159, 160, 161, 162, 163, 164, 165, 166, 167, 168, 169,
	170, 171, 172, 173, 174, 175, 176, 177, 178, 179, 180, 181, 182, 183, 184, 185, 186, 187, 188, 189, 190,
	191, 192, 193, 194, 195, 196, 197, 198, 199, 200, 201, 202, 203, 204, 205, 206, 207, 208, 209, 210, 211,
	212, 213, 214, 215, 216, 217, 218, 219, 220, 221, 222, 223, 224, 225, 226, 227, 228, 229, 230, 231, 232,
	233, 234, 235, 236, 237, 238, 239, 240, 241, 242, 243, 244, 245, 246, 247, 248, 249, 250, 251, 252, 253,
	254, 255,
}

var (
	lowTier  = alphabet[:TierLow]
	midTier  = alphabet[TierLow : TierLow+TierMid]
	highTier = alphabet[TierLow+TierMid:]
)

// Token encodes n as a 1 to 3 byte mixed-radix token, most significant byte first.
//
//	[0, 111)          -> low
//	[111, 4218)       -> mid low
//	[4218, MaxTokens) -> high mid low
func Token(n int) (string, error) {
	if n < 0 || n >= MaxTokens {
		return "", fmt.Errorf("token %d: %w", n, ErrTokenRange)
	}

	var buf [3]byte
	i := len(buf) - 1
	buf[i] = lowTier[n%TierLow]

	if n >= TierLow {
		q := n / TierLow
		i--
		buf[i] = midTier[q%TierMid]
		if q >= TierMid {
			i--
			buf[i] = highTier[q/TierMid]
		}
	}

	return string(buf[i:]), nil
}

// tierOf and digitOf invert the alphabet: tier 0 means the byte is not a token byte.
var tierOf, digitOf [256]uint8

func init() {
	for i, b := range lowTier {
		tierOf[b], digitOf[b] = 1, uint8(i)
	}
	for i, b := range midTier {
		tierOf[b], digitOf[b] = 2, uint8(i)
	}
	for i, b := range highTier {
		tierOf[b], digitOf[b] = 3, uint8(i)
	}
}

// ErrBadToken is returned by ReadToken for bytes that do not form a token.
var ErrBadToken = errors.New("malformed token")

// ReadToken decodes the token at the start of s. It returns the value and
// the number of bytes the token occupies.
func ReadToken(s string) (n, size int, err error) {
	high, mid := 0, 0
	for size < len(s) {
		b := s[size]
		size++
		switch tierOf[b] {
		case 3:
			if size != 1 {
				return 0, 0, ErrBadToken
			}
			high = int(digitOf[b])
		case 2:
			if mid != 0 || size > 2 || (size == 2 && tierOf[s[0]] != 3) {
				return 0, 0, ErrBadToken
			}
			mid = int(digitOf[b]) + 1
		case 1:
			q := high*TierMid + max(mid-1, 0)
			n = q*TierLow + int(digitOf[b])
			// reject non-canonical forms such as a high byte without a mid byte
			if t, err := Token(n); err != nil || t != s[:size] {
				return 0, 0, ErrBadToken
			}
			return n, size, nil
		default:
			return 0, 0, ErrBadToken
		}
	}
	return 0, 0, ErrBadToken
}

// MustToken is like Token but panics on out-of-range input.
func MustToken(n int) string {
	t, err := Token(n)
	if err != nil {
		panic(err)
	}
	return t
}
