package cli

import "fmt"

const (
	exitCodeOK = iota
	exitCodeRuntimeErr
	exitCodeLoadErr
	exitCodeUsageErr
	exitCodeSettingsErr
)

// settingsError wraps a failure to read or parse a settings file (from
// --config or beside the chunk), or to register the natives it names.
type settingsError struct {
	err error
}

func (e *settingsError) Error() string {
	return fmt.Sprintf("invalid config: %s", e.err)
}

func (*settingsError) ExitCode() int {
	return exitCodeSettingsErr
}

// loadError wraps a failure from quokkalua.Load (a malformed or
// unsupported bytecode chunk).
type loadError struct {
	path string
	err  error
}

func (e *loadError) Error() string {
	return fmt.Sprintf("%s: %s", e.path, e.err)
}

func (*loadError) ExitCode() int {
	return exitCodeLoadErr
}

// runtimeError wraps a fault raised while executing a loaded chunk.
type runtimeError struct {
	err error
}

func (e *runtimeError) Error() string {
	return fmt.Sprintf("runtime error: %s", e.err)
}

func (*runtimeError) ExitCode() int {
	return exitCodeRuntimeErr
}

func exitCodeOf(err error) int {
	if err == nil {
		return exitCodeOK
	}
	if e, ok := err.(interface{ ExitCode() int }); ok {
		return e.ExitCode()
	}
	return exitCodeRuntimeErr
}
