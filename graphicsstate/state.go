package graphicsstate

import (
	"errors"

	"github.com/tsawler/reflow/model"
)

// ErrStackUnderflow is returned by Restore on an empty stack
var ErrStackUnderflow = errors.New("graphics state stack underflow")

// GraphicsState represents the transform state while walking nested canvases
type GraphicsState struct {
	// Current Transformation Matrix, from local to page space
	CTM model.Matrix

	// Saved CTMs (one per enclosing canvas)
	stack []model.Matrix
}

// NewGraphicsState creates a new graphics state with an identity CTM
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM: model.Identity(),
	}
}

// Clone creates a copy of the graphics state without its stack
func (gs *GraphicsState) Clone() *GraphicsState {
	return &GraphicsState{CTM: gs.CTM}
}

// Save pushes the current CTM onto the stack
func (gs *GraphicsState) Save() {
	gs.stack = append(gs.stack, gs.CTM)
}

// Restore pops the CTM saved by the matching Save
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return ErrStackUnderflow
	}
	gs.CTM = gs.stack[len(gs.stack)-1]
	gs.stack = gs.stack[:len(gs.stack)-1]
	return nil
}

// Depth returns the number of saved states
func (gs *GraphicsState) Depth() int {
	return len(gs.stack)
}

// Transform prepends a local transform: points are mapped by m first and
// then by the current CTM
func (gs *GraphicsState) Transform(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// Local returns the page-space transform of a primitive carrying its own
// render transform
func (gs *GraphicsState) Local(m model.Matrix) model.Matrix {
	return m.Multiply(gs.CTM)
}
