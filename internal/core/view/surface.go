package view

import "github.com/colonyops/diffwatch/internal/core/git"

// State is the visibility of the diff view.
type State int

const (
	Hidden State = iota
	Visible
)

// Surface is one rendering unit bound to exactly one classified entry.
// Surfaces are immutable once handed to the renderer; a full-context
// toggle replaces the surface with a regenerated one bound to the same
// entry. They are owned by the session that created them and dropped
// when it hides or refreshes.
type Surface struct {
	Entry    git.ChangeEntry
	FullMode bool
	Lines    []string

	// Info marks the single placeholder surface shown when the
	// classification result is empty.
	Info bool

	// Additions and Deletions are display stats derived from Lines.
	Additions int
	Deletions int
}

// Title returns the surface's display name.
func (s *Surface) Title() string {
	if s.Info {
		return "status"
	}
	return s.Entry.Path
}

// Session is the live state of one diff view: the root it was opened
// against and its ordered surfaces, at most one per distinct path.
type Session struct {
	Root     string
	Surfaces []*Surface
}

// SurfaceFor returns the surface bound to path, or nil.
func (s Session) SurfaceFor(path string) *Surface {
	for _, surf := range s.Surfaces {
		if !surf.Info && surf.Entry.Path == path {
			return surf
		}
	}
	return nil
}
