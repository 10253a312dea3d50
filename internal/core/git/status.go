package git

import (
	"strconv"
	"strings"
)

// ChangeKind classifies a file with outstanding unstaged changes.
type ChangeKind int

const (
	KindModified ChangeKind = iota
	KindNew
	KindDeleted
)

// String returns the short display name for the kind.
func (k ChangeKind) String() string {
	switch k {
	case KindNew:
		return "new"
	case KindDeleted:
		return "deleted"
	default:
		return "modified"
	}
}

// ChangeEntry is one classified unstaged change. Entries are produced
// fresh on every classification pass and never mutated.
type ChangeEntry struct {
	Path string
	Kind ChangeKind
}

// StatusCode is one character of a porcelain two-character status field,
// parsed once at the boundary.
type StatusCode int

const (
	StatusUnmodified StatusCode = iota
	StatusModified
	StatusAdded
	StatusDeleted
	StatusRenamed
	StatusCopied
	StatusUpdated
	StatusUntracked
	StatusIgnored
	StatusUnknown
)

// ParseStatusCode maps a porcelain status character to its code.
func ParseStatusCode(c byte) StatusCode {
	switch c {
	case ' ':
		return StatusUnmodified
	case 'M':
		return StatusModified
	case 'A':
		return StatusAdded
	case 'D':
		return StatusDeleted
	case 'R':
		return StatusRenamed
	case 'C':
		return StatusCopied
	case 'U':
		return StatusUpdated
	case '?':
		return StatusUntracked
	case '!':
		return StatusIgnored
	default:
		return StatusUnknown
	}
}

// Classify parses porcelain short-format status lines into the ordered
// set of unstaged changes. A line is included only when its worktree
// character is not unmodified, or its staged character is untracked.
// Rename notations collapse to the new path; the old path is dropped.
// Each path appears at most once, first occurrence wins.
func Classify(statusLines []string) []ChangeEntry {
	var (
		entries []ChangeEntry
		seen    = map[string]struct{}{}
	)

	for _, line := range statusLines {
		if len(line) < 3 {
			continue
		}

		staged := ParseStatusCode(line[0])
		worktree := ParseStatusCode(line[1])

		if worktree == StatusUnmodified && staged != StatusUntracked {
			continue
		}

		path := parsePathField(line[2:])
		if path == "" {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		kind := KindModified
		switch {
		case staged == StatusUntracked && worktree == StatusUntracked:
			kind = KindNew
		case worktree == StatusDeleted:
			kind = KindDeleted
		}

		entries = append(entries, ChangeEntry{Path: path, Kind: kind})
	}

	return entries
}

// parsePathField extracts the resulting path from a status line's path
// field, collapsing "old -> new" rename notation and unwrapping the
// quoting git applies to exotic filenames.
func parsePathField(field string) string {
	path := strings.TrimSpace(field)

	if idx := strings.LastIndex(path, " -> "); idx != -1 {
		path = path[idx+len(" -> "):]
	}

	if strings.HasPrefix(path, `"`) && strings.HasSuffix(path, `"`) && len(path) >= 2 {
		if unquoted, err := strconv.Unquote(path); err == nil {
			path = unquoted
		} else {
			path = path[1 : len(path)-1]
		}
	}

	return path
}
