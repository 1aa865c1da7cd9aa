package commands

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func setupCheck(t *testing.T, availabilities string) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/camps/campgrounds/232447":
			w.Write([]byte(`{"campground": {"facility_name": "UPPER PINES"}}`))
		case "/api/camps/availability/campground/232447/month":
			fmt.Fprintf(w, `{"campsites": {
				"1000": {"campsite_id": "1000", "campsite_type": "STANDARD", "availabilities": {%s}},
				"1001": {"campsite_id": "1001", "campsite_type": "STANDARD", "availabilities": {}}
			}}`, availabilities)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	config := filepath.Join(t.TempDir(), "campcheck.json5")
	require.NoError(t, os.WriteFile(config, []byte(fmt.Sprintf(`{
		recreation: {base_url: %q},
		facilities: {disabled: true},
	}`, server.URL)), 0o600))
	return config
}

func execute(t *testing.T, args ...string) (string, int) {
	t.Helper()

	// flag values outlive a single execution of the command tree
	for _, flags := range []*pflag.FlagSet{rootCmd.PersistentFlags(), checkCmd.Flags(), facilitiesSearchCmd.Flags()} {
		flags.VisitAll(func(f *pflag.Flag) {
			if slice, ok := f.Value.(pflag.SliceValue); ok {
				slice.Replace(nil)
			} else {
				f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
	}

	out := bytes.NewBuffer(nil)
	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	code := ExecuteContext(context.Background())
	return out.String(), code
}

func TestCheckCommand(t *testing.T) {
	config := setupCheck(t, `
		"2022-06-22T00:00:00Z": "Available",
		"2022-06-23T00:00:00Z": "Available",
		"2022-06-24T00:00:00Z": "Reserved"
	`)

	out, code := execute(t,
		"check",
		"--config", config,
		"--start-date", "2022-06-22",
		"--end-date", "2022-06-24",
		"--parks", "232447",
		"--show-campsite-info",
	)
	require.Equal(t, ExitOK, code)
	require.Equal(t, "there are campsites available from 2022-06-22 to 2022-06-24!!!\n"+
		"🏕 UPPER PINES (232447): 1 site(s) available out of 2 site(s)\n"+
		"  * Site 1000 is available on the following dates:\n"+
		"    * 2022-06-22 -> 2022-06-24\n", out)
}

func TestCheckCommandNoAvailability(t *testing.T) {
	config := setupCheck(t, `"2022-06-22T00:00:00Z": "Reserved"`)

	out, code := execute(t,
		"check",
		"--config", config,
		"--start-date", "2022-06-22",
		"--end-date", "2022-06-24",
		"--parks", "232447",
		"--show-campsite-info=false",
	)
	require.Equal(t, ExitNoAvailability, code)
	require.Equal(t, "There are no campsites available :(\n"+
		"❌ UPPER PINES (232447): 0 site(s) available out of 2 site(s)\n", out)
}

func TestCheckCommandUsage(t *testing.T) {
	config := setupCheck(t, "")

	_, code := execute(t,
		"check",
		"--config", config,
		"--start-date", "2022-06-24",
		"--end-date", "2022-06-22",
		"--parks", "232447",
	)
	require.Equal(t, ExitUsage, code)

	_, code = execute(t, "check", "--config", config, "--no-such-flag")
	require.Equal(t, ExitUsage, code)
}

func TestCheckCommandMissingFlags(t *testing.T) {
	config := setupCheck(t, "")

	_, code := execute(t, "check", "--config", config, "--parks", "232447")
	require.Equal(t, ExitUsage, code)

	_, code = execute(t, "check", "--config", config, "--start-date", "2022-06-22", "--end-date", "2022-06-24")
	require.Equal(t, ExitUsage, code)

	_, code = execute(t, "check", "--config", config, "232447")
	require.Equal(t, ExitUsage, code)
}

func TestCheckCommandDebugDump(t *testing.T) {
	state := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_STATE_HOME", state)
	xdg.Reload()

	config := setupCheck(t, `"2022-06-22T00:00:00Z": "Available"`)

	_, code := execute(t,
		"check", "--debug",
		"--config", config,
		"--start-date", "2022-06-22",
		"--end-date", "2022-06-23",
		"--parks", "232447",
	)
	require.Equal(t, ExitOK, code)

	dumps, err := os.ReadDir(filepath.Join(state, "campcheck", "http"))
	require.NoError(t, err)
	require.Len(t, dumps, 2)

	var exchanges []string
	for _, dump := range dumps {
		contents, err := os.ReadFile(filepath.Join(state, "campcheck", "http", dump.Name()))
		require.NoError(t, err)
		exchanges = append(exchanges, string(contents))
	}
	require.Condition(t, func() bool {
		for _, exchange := range exchanges {
			if bytes.Contains([]byte(exchange), []byte("/api/camps/availability/campground/232447/month")) {
				return true
			}
		}
		return false
	}, "no exchange for the availability request in %v", exchanges)
}

func TestCheckCommandFlushesTelemetryOnFailure(t *testing.T) {
	var exported atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/traces" {
			exported.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(collector.Close)

	recreation := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(recreation.Close)

	config := filepath.Join(t.TempDir(), "campcheck.json5")
	require.NoError(t, os.WriteFile(config, []byte(fmt.Sprintf(`{
		recreation: {base_url: %q},
		facilities: {disabled: true},
		telemetry: {otlp: {traces: {http_endpoint: %q}}},
	}`, recreation.URL, collector.URL+"/v1/traces")), 0o600))

	_, code := execute(t,
		"check",
		"--config", config,
		"--start-date", "2022-06-22",
		"--end-date", "2022-06-24",
		"--parks", "232447",
	)
	require.Equal(t, ExitError, code)
	require.Positive(t, exported.Load())
}
