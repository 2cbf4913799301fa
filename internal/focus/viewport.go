package focus

// Viewport is caller-owned state that survives focus changes: the scroll
// position to return to once the player leaves the grid after jumping to a
// clue from the clue list.
type Viewport struct {
	returnPosition int
	hasReturn      bool
}

// Remember stores the position to come back to.
func (v *Viewport) Remember(pos int) {
	v.returnPosition = pos
	v.hasReturn = true
}

// Return takes the remembered position and forgets it.
func (v *Viewport) Return() (int, bool) {
	pos, ok := v.returnPosition, v.hasReturn
	v.returnPosition, v.hasReturn = 0, false
	return pos, ok
}
