package recreation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"campcheck/internal/availability"
	"campcheck/internal/components/telemetry"
	"campcheck/lib/restyutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const monthFixture = `{
	"campsites": {
		"1001": {
			"campsite_id": "1001",
			"campsite_type": "STANDARD NONELECTRIC",
			"availabilities": {
				"2024-06-01T00:00:00Z": "Available",
				"2024-06-02T00:00:00Z": "Reserved"
			}
		},
		"1002": {
			"campsite_type": "TENT ONLY NONELECTRIC",
			"availabilities": {
				"2024-06-03T00:00:00Z": "Not Reservable"
			}
		}
	}
}`

func newTestClient(t testing.TB, handler http.HandlerFunc) (Client, *telemetry.Recorder) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tel := telemetry.NewRecorder()
	client, err := NewClient(ClientOptions{BaseUrl: server.URL}, tel)
	require.NoError(t, err)
	return client, tel
}

func TestGetAvailability(t *testing.T) {
	var gotPath, gotStart, gotAgent string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotStart = r.URL.Query().Get("start_date")
		gotAgent = r.Header.Get("user-agent")
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(monthFixture))
	})

	month := availability.NewDate(2024, 6, 1)
	raw, err := client.GetAvailability(context.Background(), 232447, month)
	require.NoError(t, err)

	require.Equal(t, "/api/camps/availability/campground/232447/month", gotPath)
	require.Equal(t, "2024-06-01T00:00:00.000Z", gotStart)
	require.Equal(t, DefaultUserAgent, gotAgent)

	expected := availability.RawMonthlyResponse{
		Month: month,
		Campsites: map[availability.SiteID]availability.Campsite{
			1001: {
				ID:   1001,
				Type: "STANDARD NONELECTRIC",
				Availabilities: map[availability.Date]availability.Status{
					availability.NewDate(2024, 6, 1): availability.StatusAvailable,
					availability.NewDate(2024, 6, 2): "Reserved",
				},
			},
			1002: {
				ID:   1002,
				Type: "TENT ONLY NONELECTRIC",
				Availabilities: map[availability.Date]availability.Status{
					availability.NewDate(2024, 6, 3): "Not Reservable",
				},
			},
		},
	}
	if diff := cmp.Diff(expected, raw); diff != "" {
		t.Fatal("unexpected availability (-want +got)\n", diff)
	}
}

func TestGetAvailabilityNon200(t *testing.T) {
	client, tel := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	})

	_, err := client.GetAvailability(context.Background(), 1, availability.NewDate(2024, 6, 1))
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, http.StatusTooManyRequests, fetchErr.StatusCode)
	require.Equal(t, "slow down", fetchErr.Body)
	require.Contains(t, fetchErr.Url, "/api/camps/availability/campground/1/month")

	broken := tel.Reports("broken")
	require.NotEmpty(t, broken)
	require.Equal(t, "recreation_client: "+report_client_get_availability, broken[len(broken)-1].ID)
}

func TestGetAvailabilityMalformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>"},
		{name: "bad site id", body: `{"campsites": {"abc": {"availabilities": {}}}}`},
		{name: "bad date", body: `{"campsites": {"1": {"availabilities": {"June 1st": "Available"}}}}`},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(test.body))
			})
			_, err := client.GetAvailability(context.Background(), 7, availability.NewDate(2024, 6, 1))

			var malformed *MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			require.Equal(t, int64(7), malformed.ParkID)
		})
	}
}

func TestGetParkName(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"campground": {"facility_name": "UPPER PINES"}}`))
	})

	name, err := client.GetParkName(context.Background(), 232447)
	require.NoError(t, err)
	require.Equal(t, "/api/camps/campgrounds/232447", gotPath)
	require.Equal(t, "UPPER PINES", name)
}

func TestGetParkNameMissing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"campground": {}}`))
	})

	_, err := client.GetParkName(context.Background(), 5)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestGetAvailabilityDebugOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(monthFixture))
	}))
	t.Cleanup(server.Close)

	dir := filepath.Join(t.TempDir(), "http")
	output, err := restyutil.NewFilesystemOutput(dir)
	require.NoError(t, err)

	client, err := NewClient(ClientOptions{BaseUrl: server.URL, DebugOutput: output}, telemetry.NewRecorder())
	require.NoError(t, err)

	raw, err := client.GetAvailability(context.Background(), 1, availability.NewDate(2024, 6, 1))
	require.NoError(t, err)
	require.Len(t, raw.Campsites, 2)

	exchange, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Contains(t, string(exchange), "GET "+server.URL+"/api/camps/availability/campground/1/month")
	require.Contains(t, string(exchange), `"campsite_id": "1001"`)
}
