// internal/game/scorer.go
//
// Score implements the two-pass feedback algorithm.
//
// Pass 1:
//   - Mark exact matches Green and take that letter out of the target pool.
//
// Pass 2:
//   - For each remaining guess letter: if the pool still holds that letter,
//     mark Yellow and take it out; otherwise mark Red.
//
// Greens are settled before any Yellow is handed out, so a repeated guess
// letter never earns more Yellow/Green marks than the target supplies.

package game

// Score compares guess against target. It is pure and safe for concurrent use.
func Score(target string, guess Guess) (Feedback, error) {
	answer := []rune(target)
	if len(answer) != len(guess) {
		return nil, &InvalidLengthError{Target: len(answer), Guess: len(guess)}
	}
	for _, l := range guess {
		if l.Position < 0 || l.Position >= len(answer) {
			return nil, &MalformedGuessError{Reason: "letter position out of range"}
		}
	}

	out := make(Feedback, len(guess))
	done := make([]bool, len(guess))

	// Letter supply of the target (A–Z).
	var pool [26]int
	for _, r := range answer {
		if j := idx(r); j >= 0 {
			pool[j]++
		}
	}

	// First pass: greens consume supply.
	for i, l := range guess {
		out[i].Letter = l
		if l.Char == answer[l.Position] {
			out[i].Status = Green
			done[i] = true
			if j := idx(l.Char); j >= 0 {
				pool[j]--
			}
		}
	}

	// Second pass: yellows take what is left.
	for i, l := range guess {
		if done[i] {
			continue
		}
		if j := idx(l.Char); j >= 0 && pool[j] > 0 {
			out[i].Status = Yellow
			pool[j]--
		} else {
			out[i].Status = Red
		}
	}
	return out, nil
}

// idx maps an upper-case ASCII letter to 0..25, or -1.
func idx(r rune) int {
	if r < 'A' || r > 'Z' {
		return -1
	}
	return int(r - 'A')
}
