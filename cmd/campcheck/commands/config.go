package commands

import (
	"time"

	"campcheck/internal/recreation"
	"campcheck/lib/configlibsql"
	"campcheck/lib/configutil"
	"campcheck/lib/telemetry"
)

type RecreationConfig struct {
	BaseUrl        string `json:"base_url"`
	UserAgent      string `json:"user_agent"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// fetch every month of a park concurrently
	ParallelMonths   bool `json:"parallel_months"`
	CloudflareBypass bool `json:"cloudflare_bypass"`
}

func (c RecreationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type FacilitiesConfig struct {
	Database configlibsql.Struct `json:"database"`
	// names are always fetched from the API when disabled
	Disabled bool `json:"disabled"`
}

type WatchConfig struct {
	Schedule string `json:"schedule"`
	// IANA time zone the schedule is interpreted in, empty means local time
	Timezone string `json:"timezone"`
}

type Config struct {
	Recreation RecreationConfig `json:"recreation"`
	Facilities FacilitiesConfig `json:"facilities"`
	Watch      WatchConfig      `json:"watch"`
	Telemetry  telemetry.Config `json:"telemetry"`
	// directory HTTP exchanges are dumped to with --debug
	HttpDump string `json:"http_dump"`
}

func DefaultConfig() Config {
	return Config{
		Recreation: RecreationConfig{
			BaseUrl:        recreation.DefaultBaseUrl,
			UserAgent:      recreation.DefaultUserAgent,
			TimeoutSeconds: 30,
		},
		Facilities: FacilitiesConfig{
			Database: configlibsql.Struct{
				File: "<state>/facilities.db",
			},
		},
		Watch: WatchConfig{
			Schedule: "*/10 * * * *",
		},
		HttpDump: "<state>/http",
	}
}

// LoadConfig reads the configuration file, a missing file is not an error.
func LoadConfig(path string) (Config, error) {
	return configutil.ReadConfigWithDefaults(path, DefaultConfig())
}
