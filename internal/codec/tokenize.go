package codec

import "regexp"

// wordPattern alternates between word runs and everything in between.
var wordPattern = regexp.MustCompile(`[^a-zA-Z0-9\-]+|[a-zA-Z0-9\-]+`)

// Tokenize splits s into alternating runs of [A-Za-z0-9-] and other characters.
//
//	Tokenize("Aa Ab-c1_2") == ["Aa", " ", "Ab-c1", "_", "2"]
func Tokenize(s string) []string {
	return wordPattern.FindAllString(s, -1)
}

// IsWord reports whether tok is a word run produced by Tokenize.
func IsWord(tok string) bool {
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-') {
			return false
		}
	}
	return true
}
