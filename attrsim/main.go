// Command attrsim runs attribute setups from the command line.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/attrsim/attrsim/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
