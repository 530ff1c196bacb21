package words

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DailyIndex maps a date to an answer index using HMAC(salt, DateKey) so
// the sequence cannot be guessed without the salt.
func DailyIndex(t time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n))
}

// DailyAnswer returns the answer of the day for t.
func DailyAnswer(t time.Time, salt string) string {
	if len(answers) == 0 {
		return RandomAnswer()
	}
	return answers[DailyIndex(t, salt, len(answers))]
}
