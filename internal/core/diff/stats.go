package diff

import (
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Count returns the number of added and deleted lines in a headered
// diff. Parsing is delegated to go-gitdiff; when the text is not a
// parseable diff (placeholder or diagnostic bodies), it falls back to
// a prefix scan of the body lines.
func Count(lines []string) (additions, deletions int) {
	if len(lines) == 0 {
		return 0, 0
	}

	files, _, err := gitdiff.Parse(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	if err == nil && len(files) > 0 {
		for _, f := range files {
			for _, frag := range f.TextFragments {
				additions += int(frag.LinesAdded)
				deletions += int(frag.LinesDeleted)
			}
		}
		return additions, deletions
	}

	for _, line := range lines {
		if _, isHeader := MatchHeader(line); isHeader {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+"):
			additions++
		case strings.HasPrefix(line, "-"):
			deletions++
		}
	}
	return additions, deletions
}
