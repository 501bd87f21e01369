// Command duragraphctl compiles and runs workflow graphs, and serves them
// over HTTP. It replaces the teacher's cmd/server and cmd/api binaries
// (a full DDD assistant/thread/run API with a Postgres-backed store) with
// the much smaller surface this spec's scope calls for: compile a graph,
// run it once, or serve it behind a minimal HTTP API. Grounded on
// cmd/server/main.go's wiring order and cmd/server/config's env-var
// loading style, using spf13/cobra for subcommands the teacher's single
// main() never needed.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "duragraphctl",
		Short: "Compile, run, and serve duragraph workflow graphs",
	}

	root.AddCommand(newCompileCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
