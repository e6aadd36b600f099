// internal/avatars/selection.go
package avatars

import "sort"

// Step is the position in the two-step selection flow.
type Step int

const (
	StepAvatar Step = iota
	StepAngles
)

// Selection is the avatar-then-angles wizard state. It is a plain in-memory
// state machine: nothing persists across Close, and selecting a different
// avatar always clears the angle set so indices never refer across avatars.
type Selection struct {
	step        Step
	avatarIndex int // -1 means none selected
	angleSet    map[int]struct{}
	multiSelect bool
}

// NewSelection creates a selection in single-select angle mode.
func NewSelection() *Selection {
	return &Selection{
		avatarIndex: -1,
		angleSet:    make(map[int]struct{}),
	}
}

// NewMultiSelection creates a selection that accumulates angle indices.
func NewMultiSelection() *Selection {
	s := NewSelection()
	s.multiSelect = true
	return s
}

// Step returns the current wizard step.
func (s *Selection) Step() Step {
	return s.step
}

// AvatarIndex returns the selected avatar index, or -1.
func (s *Selection) AvatarIndex() int {
	return s.avatarIndex
}

// SelectAvatar picks an avatar. Picking a different avatar than the current
// one empties the angle selection.
func (s *Selection) SelectAvatar(index int) {
	if index < 0 {
		return
	}
	if index != s.avatarIndex {
		s.angleSet = make(map[int]struct{})
	}
	s.avatarIndex = index
}

// Next advances to the angle step. It refuses to advance without an avatar.
func (s *Selection) Next() bool {
	if s.step != StepAvatar || s.avatarIndex < 0 {
		return false
	}
	s.step = StepAngles
	return true
}

// Back returns to the avatar step, keeping the current selections.
func (s *Selection) Back() {
	s.step = StepAvatar
}

// ToggleAngle selects or deselects an angle index. In single-select mode the
// set is replaced with the one element.
func (s *Selection) ToggleAngle(index int) {
	if index < 0 {
		return
	}
	if _, ok := s.angleSet[index]; ok {
		delete(s.angleSet, index)
		return
	}
	if !s.multiSelect {
		s.angleSet = make(map[int]struct{})
	}
	s.angleSet[index] = struct{}{}
}

// AngleIndexes returns the selected angle indices in ascending order.
func (s *Selection) AngleIndexes() []int {
	out := make([]int, 0, len(s.angleSet))
	for i := range s.angleSet {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// HasAngles reports whether at least one angle is selected.
func (s *Selection) HasAngles() bool {
	return len(s.angleSet) > 0
}

// Close resets the wizard: back to step one, nothing selected.
func (s *Selection) Close() {
	s.step = StepAvatar
	s.avatarIndex = -1
	s.angleSet = make(map[int]struct{})
}
