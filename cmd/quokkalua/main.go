// Command quokkalua loads and runs compiled Lua 5.3 bytecode chunks.
package main

import (
	"os"

	"github.com/JacisNonsense/quokka-lua/cli"
)

func main() {
	os.Exit(cli.Run())
}
