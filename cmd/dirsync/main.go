package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/temirov/guardrails/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main mirrors a documentation directory between its canonical source and the repository.
func main() {
	executionContext, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	application, creationError := cli.NewDirSyncApplication()
	if creationError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, creationError)
		os.Exit(1)
	}

	exitCode := application.Run(executionContext)
	stop()
	os.Exit(exitCode)
}
