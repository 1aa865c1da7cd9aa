package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"campcheck/internal/availability"
	"campcheck/internal/checker"
	"campcheck/internal/components/chrono"
	"campcheck/internal/components/telemetry"
	libtelemetry "campcheck/lib/telemetry"

	random "github.com/mazen160/go-random"
	"github.com/spf13/cobra"
)

const (
	report_watch_run = "run"
)

var watchArgs checkFlags
var watchSchedule *string

func init() {
	watchArgs.register(watchCmd)
	watchSchedule = watchCmd.Flags().String("schedule", "", "Cron schedule to check on, defaults to watch.schedule of the config.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch --start-date <YYYY-MM-DD> --end-date <YYYY-MM-DD> (--parks <id>... | --stdin) [--schedule <cron>]",
	Short: "Checks the parks on a schedule and prints the result whenever it changes.",
	Long: `Checks the parks on a schedule and prints the result whenever it changes.

Watching stops on Ctrl+C or once the end date has passed.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := getGlobals(cmd.Context())

		req, err := watchArgs.resolve(os.Stdin, cmd.Flags().Changed("nights"))
		if err != nil {
			return err
		}
		req.Options.ParallelMonths = g.Config.Recreation.ParallelMonths

		schedule := g.Config.Watch.Schedule
		if *watchSchedule != "" {
			schedule = *watchSchedule
		}
		err = chrono.ValidateSpec(schedule)
		if err != nil {
			return &UsageError{Message: err.Error()}
		}

		var location *time.Location
		if g.Config.Watch.Timezone != "" {
			location, err = time.LoadLocation(g.Config.Watch.Timezone)
			if err != nil {
				return fmt.Errorf("watch.timezone: %w", err)
			}
		}

		runID, err := random.String(8)
		if err != nil {
			return err
		}
		tel := telemetry.NewScopedAPI(fmt.Sprintf("watch[%s]", runID), g.Tel)

		c, cleanup, err := newChecker(cmd.Context(), g)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		libtelemetry.InstrumentPerfStats(ctx, time.Minute)

		clock := chrono.NewStandardImpl(location)
		w := newWatcher(c, req, clock, tel, cmd.OutOrStdout(), cancel)

		cron := chrono.NewStandardCron(clock, tel)
		err = cron.Cron(schedule, func() { w.run(ctx) })
		if err != nil {
			cron.Stop()
			return err
		}
		tel.ReportDebug("watching", schedule, req.Parks)

		w.run(ctx)
		<-ctx.Done()
		<-cron.Stop().Done()
		return nil
	},
}

// watcher runs a check and prints its output when it differs from the
// previous run.
type watcher struct {
	checker checker.Checker
	req     CheckRequest
	clock   chrono.API
	tel     telemetry.API
	out     io.Writer
	// called once the window is over
	done func()

	lock sync.Mutex
	last string
}

func newWatcher(c checker.Checker, req CheckRequest, clock chrono.API, tel telemetry.API, out io.Writer, done func()) *watcher {
	return &watcher{
		checker: c,
		req:     req,
		clock:   clock,
		tel:     tel,
		out:     out,
		done:    done,
	}
}

func (w *watcher) run(ctx context.Context) {
	w.lock.Lock()
	defer w.lock.Unlock()

	today := availability.DateOf(w.clock.Now())
	if today >= w.req.Options.Window.End {
		w.tel.ReportDebug("window is over, stopping", today)
		w.done()
		return
	}

	out, _, err := runCheck(ctx, w.checker, w.req)
	if err != nil {
		w.tel.ReportBroken(report_watch_run, err)
		return
	}
	if out == w.last {
		w.tel.ReportDebug("no change")
		return
	}
	w.last = out

	fmt.Fprintf(w.out, "[%s]\n%s\n", w.clock.Now().Format(time.DateTime), out)
}
