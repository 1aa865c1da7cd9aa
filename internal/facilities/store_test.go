package facilities

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"campcheck/internal/components/chrono"
	"campcheck/internal/components/telemetry"
	"campcheck/lib/configlibsql"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const ridbFixture = `{
	"RECDATA": [
		{"FacilityID": "232447", "FacilityName": "UPPER PINES"},
		{"FacilityID": "232449", "FacilityName": "NORTH PINES"},
		{"FacilityID": 232450, "FacilityName": "LOWER PINES"},
		{"FacilityID": "232446", "FacilityName": "WAWONA"},
		{"FacilityID": "1", "FacilityName": "   "}
	]
}`

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupStore(t testing.TB) (Store, *chrono.FixedImpl) {
	t.Helper()

	database, err := configlibsql.Struct{File: ":memory:"}.OpenDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	clock := &chrono.FixedImpl{Time: epoch}
	store, err := NewStore(context.Background(), database, clock, telemetry.NewRecorder())
	require.NoError(t, err)
	return store, clock
}

func TestParseRIDB(t *testing.T) {
	facilities, err := ParseRIDB(strings.NewReader(ridbFixture))
	require.NoError(t, err)

	expected := []Facility{
		{ID: 232447, Name: "UPPER PINES"},
		{ID: 232449, Name: "NORTH PINES"},
		{ID: 232450, Name: "LOWER PINES"},
		{ID: 232446, Name: "WAWONA"},
	}
	if diff := cmp.Diff(expected, facilities); diff != "" {
		t.Fatal("(-want +got)\n", diff)
	}

	_, err = ParseRIDB(strings.NewReader(`{"facilities": []}`))
	require.Error(t, err)

	_, err = ParseRIDB(strings.NewReader(`{"RECDATA": [{"FacilityID": "abc", "FacilityName": "X"}]}`))
	require.Error(t, err)
}

func TestImportAndLookup(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	facilities, err := ParseRIDB(strings.NewReader(ridbFixture))
	require.NoError(t, err)
	require.NoError(t, store.Import(ctx, facilities))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)

	name, ok, err := store.Lookup(ctx, 232447)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "UPPER PINES", name)

	_, ok, err = store.Lookup(ctx, 999)
	require.NoError(t, err)
	require.False(t, ok)

	// importing again replaces names instead of failing
	require.NoError(t, store.Import(ctx, []Facility{{ID: 232447, Name: "UPPER PINES CAMPGROUND"}}))
	name, _, err = store.Lookup(ctx, 232447)
	require.NoError(t, err)
	require.Equal(t, "UPPER PINES CAMPGROUND", name)
}

func TestRememberGoesStale(t *testing.T) {
	ctx := context.Background()
	store, clock := setupStore(t)

	require.NoError(t, store.Remember(ctx, 10, "LEARNED"))
	require.NoError(t, store.Import(ctx, []Facility{{ID: 20, Name: "IMPORTED"}}))

	name, ok, err := store.Lookup(ctx, 10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "LEARNED", name)

	clock.Time = epoch.Add(StaleAfter + time.Hour)

	_, ok, err = store.Lookup(ctx, 10)
	require.NoError(t, err)
	require.False(t, ok)

	name, ok, err = store.Lookup(ctx, 20)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "IMPORTED", name)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	facilities, err := ParseRIDB(strings.NewReader(ridbFixture))
	require.NoError(t, err)
	require.NoError(t, store.Import(ctx, facilities))

	matches, err := store.Search(ctx, "upper pines", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, int64(232447), matches[0].ID)
	require.InDelta(t, 1.0, matches[0].Score, 0.0001)
	require.GreaterOrEqual(t, matches[0].Score, matches[1].Score)

	all, err := store.Search(ctx, "wawona", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "WAWONA", all[0].Name)
}

func TestLibsqlServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping libsql-server container in short mode")
	}

	ctx := context.Background()

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "ghcr.io/tursodatabase/libsql-server:latest",
			ExposedPorts: []string{"8080/tcp"},
			WaitingFor:   wait.ForListeningPort("8080/tcp"),
		},
	})
	if err != nil {
		t.Skip("libsql-server container unavailable:", err)
	}
	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "http")
	require.NoError(t, err)

	database, err := configlibsql.Struct{Url: endpoint}.OpenDB()
	require.NoError(t, err)
	defer database.Close()

	store, err := NewStore(ctx, database, chrono.FixedImpl{Time: epoch}, telemetry.NewRecorder())
	require.NoError(t, err)

	require.NoError(t, store.Import(ctx, []Facility{{ID: 232447, Name: "UPPER PINES"}}))
	name, ok, err := store.Lookup(ctx, 232447)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "UPPER PINES", name)
}
