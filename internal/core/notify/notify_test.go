package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreBounded(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Add(LevelInfo, fmt.Sprintf("msg %d", i))
	}

	items := s.List()
	require.Len(t, items, 3)
	assert.Equal(t, "msg 2", items[0].Message)
	assert.Equal(t, "msg 4", items[2].Message)
}

func TestLatest(t *testing.T) {
	s := NewStore(10)

	_, ok := s.Latest()
	assert.False(t, ok)

	s.Add(LevelWarning, "first")
	s.Add(LevelError, "second")

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, LevelError, latest.Level)
	assert.Equal(t, "second", latest.Message)
}

func TestClear(t *testing.T) {
	s := NewStore(10)
	s.Add(LevelInfo, "msg")
	s.Clear()

	assert.Empty(t, s.List())
	_, ok := s.Latest()
	assert.False(t, ok)
}
