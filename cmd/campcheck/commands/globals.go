package commands

import (
	"context"

	"campcheck/internal/components/telemetry"
)

type globalsKeyType int

var globalsKey globalsKeyType

// Globals is everything the root command prepares for its subcommands.
type Globals struct {
	Config Config
	Debug  bool
	Tel    telemetry.API
}

func setGlobals(ctx context.Context, value *Globals) context.Context {
	return context.WithValue(ctx, globalsKey, value)
}

func getGlobals(ctx context.Context) *Globals {
	value, _ := ctx.Value(globalsKey).(*Globals)
	return value
}
