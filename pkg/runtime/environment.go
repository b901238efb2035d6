package runtime

import "sync"

// Environment is a single scope frame. Variables and functions live in
// separate namespaces. Frames are shared by pointer between chains, so every
// access goes through the frame's lock.
type Environment struct {
	mu        sync.RWMutex
	variables map[string]Value
	functions map[string]Function
}

// NewEnvironment creates an empty frame.
func NewEnvironment() *Environment {
	return &Environment{
		variables: make(map[string]Value),
		functions: make(map[string]Function),
	}
}

// Define inserts or replaces a variable in this frame.
func (e *Environment) Define(name string, value Value) {
	if value == nil {
		value = None
	}
	e.mu.Lock()
	e.variables[name] = value
	e.mu.Unlock()
}

// Lookup returns the variable bound in this frame only.
func (e *Environment) Lookup(name string) (Value, bool) {
	e.mu.RLock()
	v, ok := e.variables[name]
	e.mu.RUnlock()
	return v, ok
}

// Assign replaces an existing variable in this frame, reporting whether the
// name was bound here.
func (e *Environment) Assign(name string, value Value) bool {
	if value == nil {
		value = None
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.variables[name]; !ok {
		return false
	}
	e.variables[name] = value
	return true
}

// DefineFunction inserts or replaces a function in this frame.
func (e *Environment) DefineFunction(name string, fn Function) {
	e.mu.Lock()
	e.functions[name] = fn
	e.mu.Unlock()
}

// RegisterNative installs a host function, silently replacing any previous
// binding of the same name.
func (e *Environment) RegisterNative(name string, impl NativeImpl) {
	e.DefineFunction(name, &NativeFunction{Name: name, Impl: impl})
}

// LookupFunction returns the function bound in this frame only. The lock is
// released before returning so the caller may invoke it freely.
func (e *Environment) LookupFunction(name string) (Function, bool) {
	e.mu.RLock()
	fn, ok := e.functions[name]
	e.mu.RUnlock()
	return fn, ok
}
