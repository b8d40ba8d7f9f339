// Entrypoint for the Cobra CLI; hands control to the root command in cmd/root.go.

package main

import (
	"github.com/popdyn/casalcore/cmd"
)

func main() {
	cmd.Execute()
}
