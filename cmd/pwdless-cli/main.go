// Command pwdless-cli administers the passwordless login token store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yndnr/pwdless-go/internal/cli/command"
	"github.com/yndnr/pwdless-go/internal/infra/shutdown"
)

func main() {
	ctx, stop := shutdown.Context(context.Background())

	err := command.App().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
