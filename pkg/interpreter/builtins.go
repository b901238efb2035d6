package interpreter

import (
	"fmt"
	"io"

	"kizuna/interpreter-go/pkg/runtime"
)

// RegisterPrinters installs print and println writing to w. Both render their
// first argument as text and ignore the rest.
func (i *Interpreter) RegisterPrinters(w io.Writer) {
	i.RegisterNative("print", func(_ *runtime.Environment, args []runtime.Value) runtime.Value {
		if len(args) > 0 {
			fmt.Fprint(w, runtime.ToText(args[0]))
		}
		return runtime.None
	})
	i.RegisterNative("println", func(_ *runtime.Environment, args []runtime.Value) runtime.Value {
		if len(args) > 0 {
			fmt.Fprintln(w, runtime.ToText(args[0]))
		} else {
			fmt.Fprintln(w)
		}
		return runtime.None
	})
}
