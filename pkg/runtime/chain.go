package runtime

// Chain is the ordered list of frames visible at a point of execution,
// innermost first. The last frame is always the global frame.
//
// A chain walk locks each frame on its own and never holds two frame locks at
// once, so a concurrent writer may interleave between two steps of the same
// lookup.
type Chain struct {
	frames []*Environment
}

// NewChain builds a chain from frames ordered innermost first. An empty or
// nil-containing chain is a programming error.
func NewChain(frames ...*Environment) Chain {
	if len(frames) == 0 {
		panic("runtime: chain requires at least one frame")
	}
	for _, f := range frames {
		if f == nil {
			panic("runtime: chain frame is nil")
		}
	}
	return Chain{frames: append([]*Environment(nil), frames...)}
}

// Descend returns a new chain with a fresh empty frame in front of the
// current frames. The receiver is left untouched.
func (c Chain) Descend() Chain {
	c.mustFrames()
	frames := make([]*Environment, 0, len(c.frames)+1)
	frames = append(frames, NewEnvironment())
	frames = append(frames, c.frames...)
	return Chain{frames: frames}
}

// Depth reports how many frames the chain holds.
func (c Chain) Depth() int {
	return len(c.frames)
}

// Innermost returns the frame that receives definitions.
func (c Chain) Innermost() *Environment {
	c.mustFrames()
	return c.frames[0]
}

// Global returns the outermost frame.
func (c Chain) Global() *Environment {
	c.mustFrames()
	return c.frames[len(c.frames)-1]
}

// DefineVariable binds name in the innermost frame, shadowing outer bindings.
func (c Chain) DefineVariable(name string, value Value) {
	c.Innermost().Define(name, value)
}

// ReadVariable returns the first binding of name from the innermost frame
// outwards. A miss yields (None, false).
func (c Chain) ReadVariable(name string) (Value, bool) {
	c.mustFrames()
	for _, frame := range c.frames {
		if v, ok := frame.Lookup(name); ok {
			return v, true
		}
	}
	return None, false
}

// AssignVariable updates the first frame that binds name. Without such a
// frame the write is dropped and false is returned.
func (c Chain) AssignVariable(name string, value Value) bool {
	c.mustFrames()
	for _, frame := range c.frames {
		if frame.Assign(name, value) {
			return true
		}
	}
	return false
}

// DefineFunction binds fn in the innermost frame.
func (c Chain) DefineFunction(name string, fn Function) {
	c.Innermost().DefineFunction(name, fn)
}

// ResolveFunction returns the first function bound to name from the
// innermost frame outwards.
func (c Chain) ResolveFunction(name string) (Function, bool) {
	c.mustFrames()
	for _, frame := range c.frames {
		if fn, ok := frame.LookupFunction(name); ok {
			return fn, true
		}
	}
	return nil, false
}

func (c Chain) mustFrames() {
	if len(c.frames) == 0 {
		panic("runtime: empty chain")
	}
}
