package commands

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"campcheck/internal/checker"
	"campcheck/internal/components/chrono"
	"campcheck/internal/facilities"
	"campcheck/internal/recreation"
	"campcheck/internal/report"
	"campcheck/lib/restyutil"
	"campcheck/lib/statedir"

	"github.com/spf13/cobra"
)

var checkArgs checkFlags

func init() {
	checkArgs.register(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check --start-date <YYYY-MM-DD> --end-date <YYYY-MM-DD> (--parks <id>... | --stdin)",
	Short: "Checks the parks once and prints the campsites that are available.",
	Long: `Checks the parks once and prints the campsites that are available.

The exit status is 0 when at least one campsite is available, 3 when none
are and 1 or 2 on errors.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := getGlobals(cmd.Context())

		req, err := checkArgs.resolve(os.Stdin, cmd.Flags().Changed("nights"))
		if err != nil {
			return err
		}
		req.Options.ParallelMonths = g.Config.Recreation.ParallelMonths

		c, cleanup, err := newChecker(cmd.Context(), g)
		if err != nil {
			return err
		}
		defer cleanup()

		out, available, err := runCheck(cmd.Context(), c, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)

		if !available {
			exitCode = ExitNoAvailability
		}
		return nil
	},
}

// newChecker wires the recreation.gov client and, unless disabled, the
// facility directory used to cache park names.
func newChecker(ctx context.Context, g *Globals) (checker.Checker, func(), error) {
	opts := recreation.ClientOptions{
		BaseUrl:          g.Config.Recreation.BaseUrl,
		UserAgent:        g.Config.Recreation.UserAgent,
		Timeout:          g.Config.Recreation.Timeout(),
		CloudflareBypass: g.Config.Recreation.CloudflareBypass,
	}
	if g.Debug {
		dir, err := statedir.ResolvePath(g.Config.HttpDump)
		if err != nil {
			return checker.Checker{}, nil, err
		}
		output, err := restyutil.NewFilesystemOutput(dir)
		if err != nil {
			return checker.Checker{}, nil, err
		}
		opts.DebugOutput = output
		slog.Debug("dumping http exchanges", "dir", dir)
	}

	client, err := recreation.NewClient(opts, g.Tel)
	if err != nil {
		return checker.Checker{}, nil, err
	}

	cleanup := func() {}
	var names checker.NameCache
	if !g.Config.Facilities.Disabled {
		store, database, err := openStore(ctx, g)
		if err != nil {
			slog.Warn("facility directory unavailable, park names will be fetched every time", "err", err)
		} else {
			names = store
			cleanup = func() { database.Close() }
		}
	}

	return checker.NewChecker(client, names, g.Tel), cleanup, nil
}

func openStore(ctx context.Context, g *Globals) (facilities.Store, *sql.DB, error) {
	database, err := g.Config.Facilities.Database.OpenDB()
	if err != nil {
		return facilities.Store{}, nil, err
	}
	store, err := facilities.NewStore(ctx, database, chrono.NewStandardImpl(nil), g.Tel)
	if err != nil {
		database.Close()
		return facilities.Store{}, nil, err
	}
	return store, database, nil
}

// runCheck checks every park of the request and renders the results.
func runCheck(ctx context.Context, c checker.Checker, req CheckRequest) (string, bool, error) {
	results, err := c.CheckParks(ctx, req.Parks, req.Options)
	if err != nil {
		return "", false, err
	}
	return render(results, req)
}

func render(results []checker.ParkResult, req CheckRequest) (string, bool, error) {
	switch req.Output {
	case outputJSON:
		return report.JSON(results)
	case outputTable:
		buff := bytes.NewBuffer(nil)
		available := report.Table(buff, results)
		return strings.TrimRight(buff.String(), "\n"), available, nil
	default:
		out, available := report.Human(results, req.Options.Window, req.ShowSites)
		return out, available, nil
	}
}
