package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	quokkalua "github.com/JacisNonsense/quokka-lua"
)

const name = "quokkalua"

const version = "0.0.0"

var revision = "HEAD"

type cli struct {
	inStream   io.Reader
	outStream  io.Writer
	errStream  io.Writer
	configPath string
}

func (c *cli) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           name,
		Short:         name + " — an embeddable Lua 5.3 bytecode interpreter",
		Version:       fmt.Sprintf("%s (rev: %s)", version, revision),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML settings file (default: quokkalua.yaml next to the chunk)")
	root.AddCommand(c.newRunCommand(), c.newDisasmCommand())
	return root
}

// resolveSettings loads --config if given, otherwise looks for a
// quokkalua.yaml sitting next to chunkPath (spec §4.11); neither existing
// is not an error, it just leaves every Settings field at its default.
func (c *cli) resolveSettings(chunkPath string) (Settings, error) {
	path := c.configPath
	if path == "" {
		candidate := filepath.Join(filepath.Dir(chunkPath), "quokkalua.yaml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	return loadSettings(path)
}

func (c *cli) newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <chunk> [arg...]",
		Short: "load a compiled chunk and execute it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.runChunk(args[0], args[1:])
		},
	}
}

func (c *cli) newDisasmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <chunk>",
		Short: "print a disassembly of a compiled chunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return c.disasmChunk(args[0])
		},
	}
}

func (c *cli) runChunk(path string, scriptArgs []string) error {
	chunk, err := c.loadChunk(path)
	if err != nil {
		return err
	}
	settings, err := c.resolveSettings(path)
	if err != nil {
		return err
	}
	vm := quokkalua.New(settings.options()...)
	if err := registerNatives(vm, settings.Natives, c.outStream); err != nil {
		return &settingsError{err}
	}
	if err := vm.Load(chunk); err != nil {
		return &loadError{path: path, err: err}
	}

	args := make([]quokkalua.Value, len(scriptArgs))
	for i, a := range scriptArgs {
		args[i] = argumentValue(a)
	}

	results, err := vm.Run(args...)
	if err != nil {
		return &runtimeError{err}
	}
	color := colorEnabled(c.outStream)
	for _, v := range results {
		fmt.Fprintln(c.outStream, colorizeValue(formatValue(v), v.Type(), color))
	}
	return nil
}

func (c *cli) disasmChunk(path string) error {
	chunk, err := c.loadChunk(path)
	if err != nil {
		return err
	}
	dump := chunk.Root.String()
	if colorEnabled(c.outStream) {
		dump = colorizeDisasm(dump)
	}
	fmt.Fprint(c.outStream, dump)
	return nil
}

// colorizeDisasm bolds each prototype's "function <...>" header line so
// it stands out from the instruction listing beneath it.
func colorizeDisasm(dump string) string {
	lines := strings.Split(dump, "\n")
	for i, line := range lines {
		if strings.Contains(line, "function <") {
			lines[i] = "\x1b[1m" + line + "\x1b[0m"
		}
	}
	return strings.Join(lines, "\n")
}

func (c *cli) loadChunk(path string) (*quokkalua.Chunk, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &loadError{path: path, err: err}
	}
	chunk, err := quokkalua.Load(b)
	if err != nil {
		return nil, &loadError{path: path, err: err}
	}
	return chunk, nil
}

// argumentValue interprets one command-line argument as a script value:
// an integer or float literal coerces to the matching NUMBER variant;
// anything else is passed through as a string. This mirrors how the
// reference lua.c standalone interpreter treats its own script
// arguments (always strings) only loosely — numeric-looking arguments
// are more convenient to pass through as numbers for a bytecode-focused
// CLI whose scripts rarely do their own tonumber() coercion up front.
func argumentValue(s string) quokkalua.Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return quokkalua.Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return quokkalua.Float(f)
	}
	return quokkalua.Str(s)
}

func formatValue(v quokkalua.Value) string {
	switch v.Type() {
	case quokkalua.TypeNil:
		return "nil"
	case quokkalua.TypeBoolean:
		return strconv.FormatBool(v.AsBool())
	case quokkalua.TypeNumber:
		if v.IsInteger() {
			return strconv.FormatInt(v.AsInteger(), 10)
		}
		return strconv.FormatFloat(v.AsFloat(), 'g', 14, 64)
	case quokkalua.TypeString:
		return v.AsString()
	case quokkalua.TypeTable:
		return "table"
	case quokkalua.TypeFunction:
		return "function"
	default:
		return "userdata"
	}
}

// colorEnabled reports whether out is an interactive terminal, the way
// the reference CLI decides whether to colorize output.
func colorEnabled(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// colorizeValue dims string results and bolds table/function
// placeholders so a glance at a terminal distinguishes them from plain
// numbers and booleans; left unstyled when out isn't a terminal.
func colorizeValue(s string, t quokkalua.Type, color bool) string {
	if !color {
		return s
	}
	switch t {
	case quokkalua.TypeString:
		return "\x1b[2m" + s + "\x1b[0m"
	case quokkalua.TypeTable, quokkalua.TypeFunction:
		return "\x1b[1m" + s + "\x1b[0m"
	default:
		return s
	}
}

func (s Settings) options() []quokkalua.Option {
	var opts []quokkalua.Option
	if s.MaxCallDepth > 0 {
		opts = append(opts, quokkalua.WithMaxCallDepth(s.MaxCallDepth))
	}
	if s.MaxRegisters > 0 {
		opts = append(opts, quokkalua.WithMaxRegisters(s.MaxRegisters))
	}
	return opts
}
