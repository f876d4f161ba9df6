package chat

import (
	"strings"
	"unicode/utf8"
)

// minPointLength is the cutoff below which a cleaned line is treated as
// markdown noise (stray headers, separators, orphan words) rather than a
// point.
const minPointLength = 10

var emphasisReplacer = strings.NewReplacer("**", "", "__", "", "*", "")

/*
NormalizePoints converts the model's free-form reply into an ordered list of
clean point strings. Per line: emphasis markers are stripped, leading
bullet/heading markers are removed, whitespace runs collapse to single
spaces. Lines that end up empty, consist only of separator punctuation, or
are too short to be a sentence are discarded. Relative order is preserved and
duplicates are kept.

Pure and deterministic; empty input yields an empty (non-nil) slice.
*/
func NormalizePoints(raw string) []string {
	points := []string{}

	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		cleaned := cleanLine(line)
		if cleaned == "" {
			continue
		}
		// Lines of pure separator punctuation survive cleaning but carry no content.
		if strings.Trim(cleaned, ":#-= ") == "" {
			continue
		}
		if utf8.RuneCountInString(cleaned) <= minPointLength {
			continue
		}
		points = append(points, cleaned)
	}

	return points
}

func cleanLine(line string) string {
	line = emphasisReplacer.Replace(line)
	line = strings.TrimSpace(line)
	// One cutset for bullet and heading markers: models interleave them
	// ("# - point"), so trimming them in separate passes leaks the second
	// marker into the output.
	line = strings.TrimLeft(line, "-•# \t")
	// Collapse interior whitespace runs.
	return strings.Join(strings.Fields(line), " ")
}
