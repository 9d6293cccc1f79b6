package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDefaults(t *testing.T) {
	prefs := DefaultPreferences()
	assert.Equal(t, "Player", prefs.Username)
	assert.Equal(t, DifficultyMedium, prefs.Difficulty)
	assert.Equal(t, ColorRed, prefs.PlayerColor)
	assert.Equal(t, "heuristic", prefs.EvalKind)
	assert.True(t, prefs.SoundEnabled)

	stats := NewGameStats()
	assert.Zero(t, stats.GamesPlayed)
	assert.Zero(t, stats.GetWinRate())
}

func TestWinRate(t *testing.T) {
	stats := &GameStats{GamesPlayed: 10, Wins: 5, Losses: 3, Draws: 2}
	assert.Equal(t, 50.0, stats.GetWinRate())
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := openTestStorage(t)

	prefs, err := s.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, "Player", prefs.Username)

	prefs.Username = "ada"
	prefs.Difficulty = DifficultyHard
	prefs.PlayerColor = ColorYellow
	prefs.EvalKind = "network"
	prefs.ModelPath = "/tmp/net.c4nn"
	require.NoError(t, s.SavePreferences(prefs))

	loaded, err := s.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, "ada", loaded.Username)
	assert.Equal(t, DifficultyHard, loaded.Difficulty)
	assert.Equal(t, ColorYellow, loaded.PlayerColor)
	assert.Equal(t, "network", loaded.EvalKind)
	assert.Equal(t, "/tmp/net.c4nn", loaded.ModelPath)
	assert.False(t, loaded.LastPlayed.IsZero())
}

func TestFirstLaunch(t *testing.T) {
	s := openTestStorage(t)

	first, err := s.IsFirstLaunch()
	require.NoError(t, err)
	assert.True(t, first)

	require.NoError(t, s.MarkFirstLaunchComplete())
	first, err = s.IsFirstLaunch()
	require.NoError(t, err)
	assert.False(t, first)
}

func TestRecordGameUpdatesStats(t *testing.T) {
	s := openTestStorage(t)
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	games := []*GameRecord{
		{Result: "red wins", HumanColor: ColorRed, Difficulty: DifficultyEasy, HumanWon: true, Duration: time.Minute},
		{Result: "red wins", HumanColor: ColorRed, Difficulty: DifficultyHard, HumanWon: true, Duration: time.Minute},
		{Result: "tie", HumanColor: ColorYellow, Draw: true, Duration: time.Minute},
		{Result: "yellow wins", HumanColor: ColorYellow, Difficulty: DifficultyHard, HumanWon: true, Duration: time.Minute},
		{Result: "red wins", HumanColor: ColorYellow, Duration: time.Minute},
	}
	for i, g := range games {
		g.StartedAt = start.Add(time.Duration(i) * time.Hour)
		g.Moves = []int{3, 3, 4}
		require.NoError(t, s.RecordGame(g))
		assert.NotEmpty(t, g.ID)
	}

	stats, err := s.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 5, stats.GamesPlayed)
	assert.Equal(t, 3, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 1, stats.Draws)
	assert.Equal(t, 2, stats.LongestWinStrk)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 2, stats.WinsByDiff["hard"])
	assert.Equal(t, 1, stats.WinsByDiff["easy"])
	assert.Equal(t, 2, stats.WinsByColor["red"])
	assert.Equal(t, 1, stats.WinsByColor["yellow"])
	assert.Equal(t, 5*time.Minute, stats.TotalPlayTime)
}

func TestListGamesNewestFirst(t *testing.T) {
	s := openTestStorage(t)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.RecordGame(&GameRecord{
			StartedAt: start.Add(time.Duration(i) * time.Minute),
			Moves:     []int{i},
			Result:    "tie",
			Draw:      true,
		}))
	}

	all, err := s.ListGames(0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, g := range all {
		assert.Equal(t, []int{3 - i}, g.Moves)
	}

	recent, err := s.ListGames(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, []int{3}, recent[0].Moves)
	assert.Equal(t, []int{2}, recent[1].Moves)
}

func TestListGamesIgnoresOtherKeys(t *testing.T) {
	s := openTestStorage(t)
	require.NoError(t, s.SaveStats(NewGameStats()))
	require.NoError(t, s.MarkFirstLaunchComplete())

	games, err := s.ListGames(0)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestOpenOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")

	s, err := Open(dir)
	require.NoError(t, err)
	prefs := DefaultPreferences()
	prefs.Username = "persisted"
	require.NoError(t, s.SavePreferences(prefs))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	loaded, err := s.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, "persisted", loaded.Username)
}

func TestResolveDir(t *testing.T) {
	base := t.TempDir()
	dir, err := ResolveDir(base, "db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "db"), dir)
	assert.DirExists(t, dir)
}
