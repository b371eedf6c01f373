package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Config specifies configuration to run the quokkalua CLI with.
type Config struct {
	// Input and output streams for the CLI.
	//
	// If Stdin is nil, an empty stdin will be used.
	// If Stdout or Stderr are nil, that output stream will be discarded.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run the quokkalua CLI with the provided arguments, and return the exit
// code.
//
// The arguments must not contain os.Args[0].
func (cfg *Config) Run(args []string) (exitCode int) {
	c := &cli{
		inStream:  cfg.Stdin,
		outStream: cfg.Stdout,
		errStream: cfg.Stderr,
	}
	if c.inStream == nil {
		c.inStream = bytes.NewReader(nil)
	}
	if c.outStream == nil {
		c.outStream = io.Discard
	}
	if c.errStream == nil {
		c.errStream = io.Discard
	}

	return c.run(args)
}

func (c *cli) run(args []string) int {
	root := c.newRootCommand()
	root.SetArgs(args)
	root.SetIn(c.inStream)
	root.SetOut(c.outStream)
	root.SetErr(c.errStream)

	err := root.Execute()
	if err != nil {
		fmt.Fprintf(c.errStream, "%s: %s\n", name, err)
	}
	return exitCodeOf(err)
}

// Run the quokkalua CLI against os.Args and the process's standard
// streams.
func Run() int {
	return (&Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}).Run(os.Args[1:])
}
