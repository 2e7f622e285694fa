// Package shell owns the console chrome: the collapsible navigation panel,
// header and footer shared by every protected screen.
//
// The compact flag follows the viewport width and is independent of the
// session. A Shell only listens to its viewport while mounted.
package shell

import (
	"sync"
)

// DefaultBreakpoint is the width below which the chrome is compact
const DefaultBreakpoint = 768

// Viewport reports the current width and resize events
type Viewport interface {
	Width() int
	// OnResize registers fn and returns a function that removes it
	OnResize(fn func(width int)) (remove func())
}

// Shell tracks the responsive state of the chrome
type Shell struct {
	mu         sync.RWMutex
	breakpoint int
	compact    bool
	expanded   bool
	mounted    bool
	remove     func()
}

// New creates an unmounted shell. A non-positive breakpoint uses DefaultBreakpoint.
func New(breakpoint int) *Shell {
	if breakpoint <= 0 {
		breakpoint = DefaultBreakpoint
	}
	return &Shell{breakpoint: breakpoint, expanded: true}
}

// Breakpoint returns the compact breakpoint in pixels
func (s *Shell) Breakpoint() int {
	return s.breakpoint
}

// Mount starts tracking vp. Mounting an already mounted shell re-targets it.
// The listener is registered before the width is read, so a resize racing
// the mount is never lost.
func (s *Shell) Mount(vp Viewport) {
	s.Unmount()

	s.mu.Lock()
	s.mounted = true
	s.mu.Unlock()

	remove := vp.OnResize(s.resize)

	// vp must not hold its own lock while notifying listeners
	s.mu.Lock()
	s.remove = remove
	s.applyLocked(vp.Width(), true)
	s.mu.Unlock()
}

// Unmount releases the resize listener. No further updates happen afterwards.
func (s *Shell) Unmount() {
	s.mu.Lock()
	remove := s.remove
	s.remove = nil
	s.mounted = false
	s.mu.Unlock()

	if remove != nil {
		remove()
	}
}

// Mounted reports whether the shell is listening to a viewport
func (s *Shell) Mounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mounted
}

// Compact reports whether the viewport is narrower than the breakpoint
func (s *Shell) Compact() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.compact
}

// SidebarExpanded reports whether the navigation panel is expanded
func (s *Shell) SidebarExpanded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expanded
}

// ToggleSidebar flips the navigation panel. The choice holds until the
// viewport next crosses the breakpoint.
func (s *Shell) ToggleSidebar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded = !s.expanded
	return s.expanded
}

func (s *Shell) resize(width int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return
	}
	s.applyLocked(width, false)
}

// applyLocked requires s.mu to be held
func (s *Shell) applyLocked(width int, initial bool) {
	compact := width > 0 && width < s.breakpoint
	if initial || compact != s.compact {
		s.compact = compact
		// Desktop defaults to expanded, compact to collapsed
		s.expanded = !compact
	}
}
