// Package codec holds the primitive codecs shared by the converter:
// the rolling string hash used for tooltip keys, the mixed-radix token
// generator used for dictionary tokens and the word tokenizer.
package codec

import "strconv"

// Hash returns the 32-bit rolling hash of s rendered in base 36.
//
// For every byte b: a = a*31 + b, wrapping modulo 2^32.
//
//	Hash("hello world!") == "1vfqu3h"
func Hash(s string) string {
	var a uint32
	for i := 0; i < len(s); i++ {
		a = (a << 5) - a + uint32(s[i])
	}
	return strconv.FormatUint(uint64(a), 36)
}
