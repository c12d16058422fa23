package wordchain

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// Difficulty selects the word length band.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
)

// ParseDifficulty resolves a difficulty name; empty means Normal.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case Easy:
		return Easy, true
	case Normal, "":
		return Normal, true
	case Hard:
		return Hard, true
	}
	return "", false
}

// Bounds returns the inclusive minimum length range drawn for challenges.
func (d Difficulty) Bounds() (lo, hi int) {
	switch d {
	case Easy:
		return 3, 5
	case Hard:
		return 5, 8
	default:
		return 3, 7
	}
}

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Challenge asks for a word starting with Letter that is at least Length long.
type Challenge struct {
	Letter   rune
	Length   int
	Answered bool
}

func newChallenges(rng *rand.Rand, d Difficulty, n int) []Challenge {
	lo, hi := d.Bounds()
	out := make([]Challenge, n)
	for i := range out {
		out[i] = Challenge{
			Letter: rune(alphabet[rng.IntN(len(alphabet))]),
			Length: lo + rng.IntN(hi-lo+1),
		}
	}
	return out
}

// Dictionary is the optional spell-checking capability.
type Dictionary interface {
	Valid(word string) bool
	Suggest(word string) []string
}

// Verdict is the result of checking a word against a challenge.
type Verdict struct {
	Word    string
	Correct bool
	Reason  string
	// Suggestion is a listed word that would have fit, offered as a hint
	// when the dictionary rejects Word.
	Suggestion string
}

func fits(word string, ch Challenge) bool {
	first, _ := utf8.DecodeRuneInString(word)
	return first == ch.Letter && utf8.RuneCountInString(word) >= ch.Length
}

// Validate checks word against ch. Without a dictionary only the letter and
// length rules apply. A word the dictionary rejects is incorrect; the first
// fitting suggestion is returned as a hint.
func Validate(word string, ch Challenge, dict Dictionary) Verdict {
	w := strings.ToLower(strings.TrimSpace(word))
	switch {
	case w == "":
		return Verdict{Reason: "no word given"}
	case !strings.HasPrefix(w, string(ch.Letter)):
		return Verdict{Word: w, Reason: "the word must start with " + strings.ToUpper(string(ch.Letter))}
	case utf8.RuneCountInString(w) < ch.Length:
		return Verdict{Word: w, Reason: "the word is too short"}
	}
	if dict == nil || dict.Valid(w) {
		return Verdict{Word: w, Correct: true}
	}
	v := Verdict{Word: w, Reason: "that is not a known word"}
	for _, s := range dict.Suggest(w) {
		s = strings.ToLower(s)
		if fits(s, ch) {
			v.Suggestion = s
			break
		}
	}
	return v
}
