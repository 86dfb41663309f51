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

// main commits only the named paths.
func main() {
	executionContext, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	application, creationError := cli.NewCommitGuardApplication()
	if creationError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, creationError)
		os.Exit(1)
	}

	exitCode := application.Run(executionContext)
	stop()
	os.Exit(exitCode)
}
