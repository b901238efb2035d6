package ast

// Definitions

// FunctionDefinition declares a script-defined function. It is only valid as
// a top-level unit.
type FunctionDefinition struct {
	nodeImpl
	unitMarker

	ID     *Identifier   `json:"id"`
	Params []*Identifier `json:"params"`
	Body   []Statement   `json:"body"`
}

func NewFunctionDefinition(id *Identifier, params []*Identifier, body []Statement) *FunctionDefinition {
	return &FunctionDefinition{nodeImpl: newNodeImpl(NodeFunctionDefinition), ID: id, Params: params, Body: body}
}

// Name returns the declared function name, or "" when the identifier is missing.
func (f *FunctionDefinition) Name() string {
	if f == nil || f.ID == nil {
		return ""
	}
	return f.ID.Name
}

// ParamNames returns the parameter names in declaration order.
func (f *FunctionDefinition) ParamNames() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		if p == nil {
			names = append(names, "")
			continue
		}
		names = append(names, p.Name)
	}
	return names
}

// Script is the ordered list of top-level units handed to the runtime.
type Script struct {
	nodeImpl

	Units []Unit `json:"units"`
}

func NewScript(units []Unit) *Script {
	return &Script{nodeImpl: newNodeImpl(NodeScript), Units: units}
}

// Append returns a script holding the units of s followed by those of other.
func (s *Script) Append(other *Script) *Script {
	var units []Unit
	if s != nil {
		units = append(units, s.Units...)
	}
	if other != nil {
		units = append(units, other.Units...)
	}
	return NewScript(units)
}
