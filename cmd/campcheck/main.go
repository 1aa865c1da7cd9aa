package main

import (
	"context"
	"os"

	"campcheck/cmd/campcheck/commands"
	"campcheck/lib/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	code := commands.ExecuteContext(ctx)
	cancel()
	os.Exit(code)
}
