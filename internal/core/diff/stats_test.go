package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountParsesUnifiedDiff(t *testing.T) {
	lines := []string{
		"diff --git a/f.txt b/f.txt",
		"index 1111111..2222222 100644",
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -1,3 +1,4 @@",
		" context",
		"-old line",
		"+new line",
		"+another line",
		" more context",
	}

	adds, dels := Count(lines)
	assert.Equal(t, 2, adds)
	assert.Equal(t, 1, dels)
}

func TestCountSyntheticNewFile(t *testing.T) {
	lines := []string{
		"diff --git a/new.txt b/new.txt",
		"new file mode 100644",
		"--- /dev/null",
		"+++ b/new.txt",
		"@@ -0,0 +1,2 @@",
		"+a",
		"+b",
	}

	adds, dels := Count(lines)
	assert.Equal(t, 2, adds)
	assert.Equal(t, 0, dels)
}

func TestCountFallbackOnNonDiffBody(t *testing.T) {
	adds, dels := Count([]string{"no textual changes for mode.sh"})
	assert.Zero(t, adds)
	assert.Zero(t, dels)
}

func TestCountHeaderlessBody(t *testing.T) {
	adds, dels := Count([]string{"+kept", "-dropped", " context"})
	assert.Equal(t, 1, adds)
	assert.Equal(t, 1, dels)
}

func TestCountEmpty(t *testing.T) {
	adds, dels := Count(nil)
	assert.Zero(t, adds)
	assert.Zero(t, dels)
}
