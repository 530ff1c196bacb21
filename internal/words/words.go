// internal/words/words.go
//
// Word list management for targets and solver guesses.
//
// Word Lists:
//   - "answers": candidate targets (5 letters A–Z).
//   - "allowed": extra words a solver may guess (always includes answers).
//
// Initialization behavior (Init):
//  1. If both paths are set, load answers from the first and allowed
//     guesses from the second.
//  2. If only the allowed path is set, use that file for both lists.
//  3. Otherwise fall back to the lists embedded in the assets package.
//
// Lists are upper-cased on load. Init runs once; later calls return the
// first result.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"io"
	"io/fs"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/wordlebot/assets"
)

const wordLength = 5

var (
	initOnce   sync.Once
	answers    []string
	allowed    []string            // answers ∪ extra guesses, answers first
	allowedSet map[string]struct{} // same as allowed
	answersSet map[string]struct{}
	initialErr error
)

// Init loads the word lists exactly once.
// Returns an error if the answers list ends up empty.
func Init(answersPath, allowedPath string) error {
	initOnce.Do(func() {
		var ansList, allowList []string
		var err error

		switch {
		case answersPath != "" && allowedPath != "":
			if ansList, err = readWordFile(answersPath); err != nil {
				initialErr = err
				return
			}
			if allowList, err = readWordFile(allowedPath); err != nil {
				initialErr = err
				return
			}

		case allowedPath != "":
			if allowList, err = readWordFile(allowedPath); err != nil {
				initialErr = err
				return
			}
			ansList = allowList

		default:
			if ansList, err = readEmbedded(assets.Answers); err != nil {
				initialErr = err
				return
			}
			if allowList, err = readEmbedded(assets.Allowed); err != nil {
				initialErr = err
				return
			}
		}

		setLists(filterWords(ansList), filterWords(allowList))
		if len(answers) == 0 {
			initialErr = errors.New("words: answers list is empty")
		}
	})
	return initialErr
}

func setLists(ans, extra []string) {
	answers = ans
	answersSet = toSet(ans)
	allowedSet = make(map[string]struct{}, len(ans)+len(extra))
	allowed = make([]string, 0, len(ans)+len(extra))
	for _, list := range [][]string{ans, extra} {
		for _, w := range list {
			if _, dup := allowedSet[w]; dup {
				continue
			}
			allowedSet[w] = struct{}{}
			allowed = append(allowed, w)
		}
	}
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTargets(f)
}

// readEmbedded parses one of the embedded lists.
func readEmbedded(open func() (fs.File, error)) ([]string, error) {
	f, err := open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTargets(f)
}

// ReadTargets reads one word per line, trimming and upper-casing each.
// Blank lines and lines starting with '#' are skipped. Words are not
// validated, so callers decide how to treat bad entries.
func ReadTargets(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToUpper(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		out = append(out, w)
	}
	return out, sc.Err()
}

// filterWords keeps valid 5-letter A–Z words.
func filterWords(list []string) []string {
	out := make([]string, 0, len(list))
	for _, w := range list {
		if IsWord(w) {
			out = append(out, w)
		}
	}
	return out
}

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// IsWord reports whether w is 5 upper-case ASCII letters.
func IsWord(w string) bool {
	if len(w) != wordLength {
		return false
	}
	for _, r := range w {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Answers returns the target list. The slice must not be modified.
func Answers() []string { return answers }

// Allowed returns every word a solver may guess, answers first.
// The slice must not be modified.
func Allowed() []string { return allowed }

// RandomAnswer returns a cryptographically random answer.
// If answers are not loaded, falls back to "CRANE".
func RandomAnswer() string {
	if len(answers) == 0 {
		return "CRANE"
	}
	nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(len(answers))))
	return answers[nBig.Int64()]
}

// IsAllowed reports whether w is in the allowed list.
func IsAllowed(w string) bool {
	_, ok := allowedSet[strings.ToUpper(w)]
	return ok
}

// IsAnswer reports whether w is an answer word.
func IsAnswer(w string) bool {
	_, ok := answersSet[strings.ToUpper(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func Stats() (answersCount int, allowedCount int) {
	return len(answers), len(allowedSet)
}
