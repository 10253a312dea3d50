package diff

import "strings"

// HeaderClass tags the kind of metadata line a strip predicate matches.
type HeaderClass int

const (
	DiffGitHeader HeaderClass = iota
	IndexLine
	FileMarker
	ModeLine
	HunkHeader
)

type headerPredicate struct {
	Class  HeaderClass
	Prefix string
}

// headerPredicates is the ordered list of prefixes that identify
// metadata lines in full-context mode. Matching is prefix based, not
// full-line equality: a body line that happens to begin with one of
// these tokens is stripped too. That is an accepted, documented
// limitation of the format, kept visible here rather than hidden in
// a regex.
var headerPredicates = []headerPredicate{
	{DiffGitHeader, "diff --git"},
	{IndexLine, "index "},
	{FileMarker, "--- "},
	{FileMarker, "+++ "},
	{ModeLine, "new file"},
	{ModeLine, "deleted file"},
	{HunkHeader, "@@"},
}

// MatchHeader reports whether line is a metadata line and which class
// of predicate matched it.
func MatchHeader(line string) (HeaderClass, bool) {
	for _, p := range headerPredicates {
		if strings.HasPrefix(line, p.Prefix) {
			return p.Class, true
		}
	}
	return 0, false
}

// StripHeaders removes every metadata line, leaving body lines
// untouched including their +/-/space prefix characters.
func StripHeaders(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, isHeader := MatchHeader(line); isHeader {
			continue
		}
		out = append(out, line)
	}
	return out
}
