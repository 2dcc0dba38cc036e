package selector

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"tunestream/internal/domain"
	"tunestream/internal/swarm"
)

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".flac": {},
	".wav":  {},
	".m4a":  {},
	".aac":  {},
	".ogg":  {},
	".wma":  {},
}

var contentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".wma":  "audio/x-ms-wma",
}

// ContentType maps a filename to its audio MIME type, with a generic
// fallback for anything outside the eligible set.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

var (
	trackNumberPattern = regexp.MustCompile(`(?i)(?:track\s*)?(\d{1,3})`)
	leadingNumPattern  = regexp.MustCompile(`^\d+\s*[-._)\s]*`)
	punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
)

// Hint narrows file selection within a multi-file torrent.
type Hint struct {
	Name string
}

// FilterAudio returns the audio files from files, sorted by name. The
// sort keeps selection independent of the engine's enumeration order.
func FilterAudio(files []swarm.File) []swarm.File {
	audio := make([]swarm.File, 0, len(files))
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if _, ok := audioExtensions[ext]; ok {
			audio = append(audio, f)
		}
	}
	sort.Slice(audio, func(i, j int) bool { return audio[i].Name < audio[j].Name })
	return audio
}

// SelectFile picks exactly one file from a non-empty, pre-filtered,
// sorted audio file list. Matching strategies are tried in order:
// exact name, substring either direction, track-number extraction,
// fuzzy match on normalized names, then the first file as fallback.
// Deterministic for identical inputs.
func SelectFile(files []swarm.File, hint Hint) (swarm.File, error) {
	if len(files) == 0 {
		return swarm.File{}, domain.ErrNoAudioFiles
	}

	hintName := strings.TrimSpace(hint.Name)
	if hintName == "" {
		return files[0], nil
	}
	hintLower := strings.ToLower(hintName)

	for _, f := range files {
		if strings.EqualFold(f.Name, hintName) {
			return f, nil
		}
	}

	for _, f := range files {
		name := strings.ToLower(f.Name)
		if strings.Contains(name, hintLower) || strings.Contains(hintLower, name) {
			return f, nil
		}
	}

	if n, ok := extractTrackNumber(hintName); ok && n >= 1 && n <= len(files) {
		return files[n-1], nil
	}

	normalizedHint := normalizeName(hintName)
	if normalizedHint != "" {
		for _, f := range files {
			name := normalizeName(f.Name)
			if name == "" {
				continue
			}
			if strings.Contains(name, normalizedHint) || strings.Contains(normalizedHint, name) {
				return f, nil
			}
			if fuzzy.MatchNormalizedFold(normalizedHint, name) {
				return f, nil
			}
		}
	}

	return files[0], nil
}

// ValidateCount raises ErrFileCountMismatch when the caller supplied an
// expected audio file count that disagrees with reality.
func ValidateCount(files []swarm.File, expected int) error {
	if expected > 0 && len(files) != expected {
		return fmt.Errorf("%w: have %d, expected %d", domain.ErrFileCountMismatch, len(files), expected)
	}
	return nil
}

func extractTrackNumber(hint string) (int, bool) {
	match := trackNumberPattern.FindStringSubmatch(hint)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// normalizeName strips a leading track-number prefix, file extension
// and all punctuation, lowercased.
func normalizeName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = leadingNumPattern.ReplaceAllString(base, "")
	base = punctuationPattern.ReplaceAllString(base, "")
	return strings.ToLower(strings.TrimSpace(base))
}
