package cli

import (
	"fmt"
	"io"

	quokkalua "github.com/JacisNonsense/quokka-lua"
)

// nativeRegistry builds the fixed set of native functions a
// Settings.Natives entry may name for pre-registration (spec §4.11):
// enough to let a loaded chunk produce visible output and measure itself
// without this reference host growing into a standard library. Output
// goes to the CLI's own stream so tests and embedders can capture it.
func nativeRegistry(out io.Writer) map[string]quokkalua.NativeFunc {
	return map[string]quokkalua.NativeFunc{
		"print":     nativePrint(out),
		"print_len": nativePrintLen,
		"clock":     nativeClock(),
	}
}

func registerNatives(vm *quokkalua.VM, names []string, out io.Writer) error {
	registry := nativeRegistry(out)
	for _, name := range names {
		fn, ok := registry[name]
		if !ok {
			return fmt.Errorf("unknown native function %q", name)
		}
		vm.Register(name, fn)
	}
	return nil
}

// nativePrint writes every argument, tab-separated, the way the
// reference Lua standalone interpreter's print builtin does.
func nativePrint(out io.Writer) quokkalua.NativeFunc {
	return func(vm *quokkalua.VM) (int, error) {
		n := vm.NumParams()
		for i := 0; i < n; i++ {
			if i > 0 {
				fmt.Fprint(out, "\t")
			}
			fmt.Fprint(out, formatValue(vm.Argument(i)))
		}
		fmt.Fprintln(out)
		return 0, nil
	}
}

// nativePrintLen pushes the length of its single string argument, the
// way a script would otherwise reach the LEN opcode through the '#'
// operator.
func nativePrintLen(vm *quokkalua.VM) (int, error) {
	arg := vm.Argument(0)
	switch arg.Type() {
	case quokkalua.TypeString:
		vm.Push(quokkalua.Int(int64(len(arg.AsString()))))
	default:
		vm.Push(quokkalua.Nil())
	}
	return 1, nil
}

// nativeClock reports a monotonically increasing tick count, standing in
// for the reference os.clock(): scripts that benchmark themselves need
// some source of elapsed time, and this interpreter has no os/io library
// of its own to provide one. Each registration carries its own counter.
func nativeClock() quokkalua.NativeFunc {
	var ticks int64
	return func(vm *quokkalua.VM) (int, error) {
		ticks++
		vm.Push(quokkalua.Int(ticks))
		return 1, nil
	}
}
