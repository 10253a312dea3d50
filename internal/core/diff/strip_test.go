package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHeaders(t *testing.T) {
	in := []string{
		"diff --git a/f.txt b/f.txt",
		"index 0000000..1111111 100644",
		"new file mode 100644",
		"--- /dev/null",
		"+++ b/f.txt",
		"@@ -0,0 +1,2 @@",
		"+hello",
		"+world",
	}

	assert.Equal(t, []string{"+hello", "+world"}, StripHeaders(in))
}

func TestStripHeadersDeletedFile(t *testing.T) {
	in := []string{
		"diff --git a/f.txt b/f.txt",
		"deleted file mode 100644",
		"--- a/f.txt",
		"+++ /dev/null",
		"@@ -1,1 +0,0 @@",
		"-goodbye",
	}

	assert.Equal(t, []string{"-goodbye"}, StripHeaders(in))
}

func TestStripHeadersPrefixLimitation(t *testing.T) {
	// A body line that merely begins with a metadata token is stripped
	// too. This is the documented policy, not an accident.
	in := []string{
		"@@ -1,3 +1,3 @@",
		"+@@ looks like a hunk",
		"+index of contents",
		"+normal line",
		" context",
	}

	got := StripHeaders(in)
	assert.Equal(t, []string{"+@@ looks like a hunk", "+index of contents", "+normal line", " context"}, got,
		"prefixes are matched against the raw line, so +-prefixed bodies survive")
}

func TestStripHeadersBareBodyCollision(t *testing.T) {
	// a raw body line beginning with "index " (no +/- prefix, as in
	// context lines of a malformed diff) does get stripped
	in := []string{
		"index collision without prefix",
		" index with leading space stays",
	}

	assert.Equal(t, []string{" index with leading space stays"}, StripHeaders(in))
}

func TestMatchHeaderClasses(t *testing.T) {
	tests := []struct {
		line  string
		class HeaderClass
		match bool
	}{
		{"diff --git a/x b/x", DiffGitHeader, true},
		{"index 123..456", IndexLine, true},
		{"--- a/x", FileMarker, true},
		{"+++ b/x", FileMarker, true},
		{"new file mode 100644", ModeLine, true},
		{"deleted file mode 100644", ModeLine, true},
		{"@@ -1,2 +1,2 @@", HunkHeader, true},
		{"+added", 0, false},
		{"-removed", 0, false},
		{" context", 0, false},
	}

	for _, tt := range tests {
		class, ok := MatchHeader(tt.line)
		assert.Equal(t, tt.match, ok, "line %q", tt.line)
		if tt.match {
			assert.Equal(t, tt.class, class, "line %q", tt.line)
		}
	}
}
