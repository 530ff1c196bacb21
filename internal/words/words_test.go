package words

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordlebot/assets"
)

func TestInitEmbedded(t *testing.T) {
	require.NoError(t, Init("", ""))
	a, g := Stats()
	require.Greater(t, a, 0)
	require.GreaterOrEqual(t, g, a)
	for _, w := range Answers() {
		require.True(t, IsWord(w), w)
		require.True(t, IsAllowed(w), w)
	}
	require.True(t, IsAnswer("widen"))
	require.True(t, IsAnswer(RandomAnswer()))
}

func TestReadTargets(t *testing.T) {
	in := "widen\n\n# comment\n  alloy \nwid3n\n"
	got, err := ReadTargets(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []string{"WIDEN", "ALLOY", "WID3N"}, got)
}

func TestIsWord(t *testing.T) {
	require.True(t, IsWord("CRANE"))
	require.False(t, IsWord("crane"))
	require.False(t, IsWord("CRANES"))
	require.False(t, IsWord("CR4NE"))
}

func TestDailyIndexDeterministic(t *testing.T) {
	d := time.Date(2026, 10, 15, 23, 0, 0, 0, time.UTC)
	require.Equal(t, "2026-10-15", DateKey(d))
	a := DailyIndex(d, "salt", 100)
	require.Equal(t, a, DailyIndex(d.Add(30*time.Minute).Add(-time.Hour), "salt", 100))
	require.GreaterOrEqual(t, a, 0)
	require.Less(t, a, 100)
	require.Zero(t, DailyIndex(d, "salt", 0))
}

func TestDailyAnswer(t *testing.T) {
	require.NoError(t, Init("", ""))
	d := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	require.Equal(t, DailyAnswer(d, "x"), DailyAnswer(d, "x"))
	require.True(t, IsAnswer(DailyAnswer(d, "x")))
}

func TestEmbeddedListsParseLikeTargetFiles(t *testing.T) {
	ans, err := readEmbedded(assets.Answers)
	require.NoError(t, err)
	require.NotEmpty(t, ans)
	for _, w := range ans {
		require.Equal(t, strings.ToUpper(w), w)
		require.False(t, strings.HasPrefix(w, "#"))
	}

	f, err := assets.Answers()
	require.NoError(t, err)
	defer f.Close()
	direct, err := ReadTargets(f)
	require.NoError(t, err)
	require.Equal(t, direct, ans)

	extra, err := readEmbedded(assets.Allowed)
	require.NoError(t, err)
	require.NotEmpty(t, extra)
}
