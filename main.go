package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/harrisonrobin/taskdump/pkg/cli"
)

func main() {
	ctx, cancel := cli.SetupSignalHandler()

	err := cli.Execute(ctx)
	cancel()

	if err != nil {
		// One line, whatever the cause carried (e.g. multi-line stderr of task).
		fmt.Fprintf(os.Stderr, "fatal: %s\n", strings.Join(strings.Fields(err.Error()), " "))
		os.Exit(1)
	}
}
