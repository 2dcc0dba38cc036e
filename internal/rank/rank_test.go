package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunestream/internal/domain"
)

func candidate(title string, seeders, leechers int, size int64, age time.Duration) domain.TorrentCandidate {
	return domain.TorrentCandidate{
		Title:       title,
		Seeders:     seeders,
		Leechers:    leechers,
		Size:        size,
		PublishDate: time.Now().Add(-age),
	}
}

func TestScorePrecise(t *testing.T) {
	cfg := DefaultConfig()
	target := domain.Target{
		TrackTitle: "Paranoid Android",
		ArtistName: "Radiohead",
		AlbumTitle: "OK Computer",
	}
	now := time.Now()

	c := candidate("Radiohead - OK Computer [FLAC]", 30, 5, 400<<20, 90*24*time.Hour)
	c.Title = "Radiohead - OK Computer - Paranoid Android [FLAC]"
	r := Score(c, target, cfg, now)

	// 300 seeders + 1000 full title match + 500 artist + 300 album +
	// 200 flac + 50 age + 100 ratio.
	assert.Equal(t, 2450, r.Score)
	assert.InDelta(t, 1.0, r.TitleMatch, 0.001)
	assert.Equal(t, 90, r.AgeDays)
}

func TestScoreSizePenalty(t *testing.T) {
	cfg := DefaultConfig()
	target := domain.Target{TrackTitle: "Song", ArtistName: "Band"}
	now := time.Now()

	small := Score(candidate("band discography", 10, 20, 100<<20, 60*24*time.Hour), target, cfg, now)
	big := Score(candidate("band discography", 10, 20, 600<<20, 60*24*time.Hour), target, cfg, now)

	assert.Equal(t, small.Score-200, big.Score)
}

func TestScoreHealthyRatioWithZeroLeechers(t *testing.T) {
	cfg := DefaultConfig()
	target := domain.Target{TrackTitle: "x"}
	now := time.Now()

	withLeechers := Score(candidate("something", 2, 1, 0, 60*24*time.Hour), target, cfg, now)
	noLeechers := Score(candidate("something", 2, 0, 0, 60*24*time.Hour), target, cfg, now)

	// 2:1 is not above 2x, but 2:0 counts as healthy.
	assert.Equal(t, withLeechers.Score+100, noLeechers.Score)
}

func TestScoreFractionalRatioBonus(t *testing.T) {
	cfg := DefaultConfig()
	target := domain.Target{TrackTitle: "x"}
	now := time.Now()

	above := Score(candidate("something", 5, 2, 0, 60*24*time.Hour), target, cfg, now)
	atBar := Score(candidate("something", 4, 2, 0, 60*24*time.Hour), target, cfg, now)

	// 5:2 = 2.5 clears the >2 bar; 4:2 = 2.0 sits on it and does not.
	assert.Equal(t, atBar.Score+110, above.Score)
}

func TestRankAndFilterDropsFreshAndSeederless(t *testing.T) {
	cfg := DefaultConfig()
	target := domain.Target{TrackTitle: "Song Name", ArtistName: "Artist"}

	candidates := []domain.TorrentCandidate{
		candidate("artist song name flac", 20, 2, 0, 90*24*time.Hour),
		candidate("artist song name fresh", 50, 2, 0, 12*time.Hour), // under min age
		candidate("artist song name dead", 0, 2, 0, 90*24*time.Hour),
		candidate("unrelated noise xyzzy", 1, 200, 600<<20, 90*24*time.Hour),
	}

	ranked := RankAndFilter(candidates, target, cfg)

	require.Len(t, ranked, 1)
	assert.Equal(t, "artist song name flac", ranked[0].Title)
}

func TestRankAndFilterSortsDescending(t *testing.T) {
	cfg := DefaultConfig()
	target := domain.Target{TrackTitle: "Song", ArtistName: "Artist"}

	candidates := []domain.TorrentCandidate{
		candidate("artist song", 5, 0, 0, 90*24*time.Hour),
		candidate("artist song flac", 50, 1, 0, 90*24*time.Hour),
		candidate("artist song mp3", 20, 1, 0, 90*24*time.Hour),
	}

	ranked := RankAndFilter(candidates, target, cfg)

	require.Len(t, ranked, 3)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	assert.Equal(t, "artist song flac", ranked[0].Title)
}

func TestRankLightSeederSteps(t *testing.T) {
	steps := []struct {
		seeders int
		bonus   int
	}{
		{60, 100},
		{30, 80},
		{15, 60},
		{8, 40},
		{1, 20},
	}
	for _, s := range steps {
		r := ScoreLight(domain.TorrentCandidate{Title: "zzz", Seeders: s.seeders}, "")
		assert.Equal(t, s.bonus, r.Score, "seeders=%d", s.seeders)
	}
}

func TestRankLightWordBonusAndLimit(t *testing.T) {
	candidates := make([]domain.TorrentCandidate, 0, 30)
	for i := 0; i < 30; i++ {
		candidates = append(candidates, domain.TorrentCandidate{Title: "radiohead ok computer", Seeders: i + 1})
	}
	candidates = append(candidates, domain.TorrentCandidate{Title: "dead", Seeders: 0})

	ranked := RankLight(candidates, "radiohead computer", 20)

	require.Len(t, ranked, 20)
	// Top entry: 100 seeder bonus + 2 matched words.
	assert.Equal(t, 130, ranked[0].Score)
}

func TestQueryWordsSkipsShortWords(t *testing.T) {
	words := queryWords("In the Court of the Crimson King")
	assert.Equal(t, []string{"the", "court", "the", "crimson", "king"}, words)
}
