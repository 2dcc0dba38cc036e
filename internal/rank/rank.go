package rank

import (
	"sort"
	"strings"
	"time"

	"tunestream/internal/domain"
)

// Config tunes the precise scoring variant. The size threshold is in
// bytes; candidates declaring more than this are penalized as likely
// full-discography bundles rather than single albums.
type Config struct {
	SizePenaltyThreshold int64
	MinAge               time.Duration
}

func DefaultConfig() Config {
	return Config{
		SizePenaltyThreshold: 500 << 20,
		MinAge:               48 * time.Hour,
	}
}

// Score computes the precise-variant score for a single candidate.
// Deterministic given the candidate, target and current time.
func Score(c domain.TorrentCandidate, target domain.Target, cfg Config, now time.Time) domain.RankedTorrent {
	ranked := domain.RankedTorrent{TorrentCandidate: c}

	title := strings.ToLower(c.Title)
	score := c.Seeders * 10

	ranked.TitleMatch = titleWordFraction(target.TrackTitle, title)
	score += int(1000 * ranked.TitleMatch)

	if artist := strings.ToLower(strings.TrimSpace(target.ArtistName)); artist != "" && strings.Contains(title, artist) {
		score += 500
	}
	if album := strings.ToLower(strings.TrimSpace(target.AlbumTitle)); album != "" && strings.Contains(title, album) {
		score += 300
	}

	switch {
	case strings.Contains(title, "flac"):
		score += 200
	case strings.Contains(title, "mp3"):
		score += 100
	}

	if cfg.SizePenaltyThreshold > 0 && c.Size > cfg.SizePenaltyThreshold {
		score -= 200
	}

	if !c.PublishDate.IsZero() {
		ranked.AgeDays = int(now.Sub(c.PublishDate).Hours() / 24)
		if ranked.AgeDays > 30 {
			score += 50
		}
	}

	// Cross-multiplied so fractional ratios like 5:2 clear the bar;
	// zero leechers with live seeders counts as a healthy ratio.
	if (c.Leechers > 0 && c.Seeders > 2*c.Leechers) || (c.Leechers == 0 && c.Seeders > 0) {
		score += 100
	}

	ranked.Score = score
	return ranked
}

// RankAndFilter applies the precise variant: drops candidates that are
// too fresh or seederless, scores the rest, drops non-positive scores
// and returns the survivors sorted by descending score. Ties keep
// discovery order.
func RankAndFilter(candidates []domain.TorrentCandidate, target domain.Target, cfg Config) []domain.RankedTorrent {
	now := time.Now()

	ranked := make([]domain.RankedTorrent, 0, len(candidates))
	for _, c := range candidates {
		if c.Seeders <= 0 {
			continue
		}
		if !c.PublishDate.IsZero() && now.Sub(c.PublishDate) < cfg.MinAge {
			continue
		}
		r := Score(c, target, cfg, now)
		if r.Score <= 0 {
			continue
		}
		ranked = append(ranked, r)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// ScoreLight is the bulk pre-load variant: a seeder step bonus plus a
// small per-word match bonus, never negative.
func ScoreLight(c domain.TorrentCandidate, query string) domain.RankedTorrent {
	ranked := domain.RankedTorrent{TorrentCandidate: c}

	score := 0
	switch {
	case c.Seeders > 50:
		score += 100
	case c.Seeders > 20:
		score += 80
	case c.Seeders > 10:
		score += 60
	case c.Seeders > 5:
		score += 40
	case c.Seeders > 0:
		score += 20
	}

	title := strings.ToLower(c.Title)
	for _, word := range queryWords(query) {
		if strings.Contains(title, word) {
			score += 15
		}
	}

	ranked.Score = score
	return ranked
}

// RankLight filters to seeded candidates, scores them with the light
// variant and returns at most limit results by descending score.
func RankLight(candidates []domain.TorrentCandidate, query string, limit int) []domain.RankedTorrent {
	ranked := make([]domain.RankedTorrent, 0, len(candidates))
	for _, c := range candidates {
		if c.Seeders <= 0 {
			continue
		}
		ranked = append(ranked, ScoreLight(c, query))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func titleWordFraction(trackTitle, candidateTitle string) float64 {
	words := queryWords(trackTitle)
	if len(words) == 0 {
		return 0
	}
	matched := 0
	for _, word := range words {
		if strings.Contains(candidateTitle, word) {
			matched++
		}
	}
	return float64(matched) / float64(len(words))
}

func queryWords(q string) []string {
	fields := strings.Fields(strings.ToLower(q))
	words := fields[:0]
	for _, f := range fields {
		if len(f) > 2 {
			words = append(words, f)
		}
	}
	return words
}
