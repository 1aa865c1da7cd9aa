package availability

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func june(day int) Date {
	return NewDate(2022, 6, day)
}

func july(day int) Date {
	return NewDate(2022, 7, day)
}

func testResponses() []RawMonthlyResponse {
	return []RawMonthlyResponse{
		{
			Month: june(1),
			Campsites: map[SiteID]Campsite{
				100: {
					ID:   100,
					Type: "STANDARD NONELECTRIC",
					Availabilities: map[Date]Status{
						june(29): StatusAvailable,
						june(30): StatusAvailable,
						june(28): "Reserved",
					},
				},
				101: {
					ID:   101,
					Type: "TENT ONLY NONELECTRIC",
					Availabilities: map[Date]Status{
						june(30): StatusAvailable,
					},
				},
				102: {
					ID:   102,
					Type: "STANDARD NONELECTRIC",
					Availabilities: map[Date]Status{
						june(30): "Not Reservable",
					},
				},
			},
		},
		{
			Month: july(1),
			Campsites: map[SiteID]Campsite{
				100: {
					ID:   100,
					Type: "STANDARD NONELECTRIC",
					Availabilities: map[Date]Status{
						july(1): StatusAvailable,
						july(2): "Open",
					},
				},
				101: {
					ID:   101,
					Type: "TENT ONLY NONELECTRIC",
					Availabilities: map[Date]Status{
						july(2): StatusAvailable,
						july(1): "available",
					},
				},
			},
		},
	}
}

func TestAggregate(t *testing.T) {
	testCases := []struct {
		name     string
		filter   Filter
		expected SiteAvailability
	}{
		{
			name: "no filter",
			expected: SiteAvailability{
				100: {june(29), june(30), july(1)},
				101: {june(30), july(2)},
			},
		},
		{
			name:   "site type",
			filter: Filter{SiteType: "STANDARD NONELECTRIC"},
			expected: SiteAvailability{
				100: {june(29), june(30), july(1)},
			},
		},
		{
			name:     "site type is case sensitive",
			filter:   Filter{SiteType: "standard nonelectric"},
			expected: SiteAvailability{},
		},
		{
			name:   "site ids",
			filter: Filter{SiteIDs: []SiteID{101, 102}},
			expected: SiteAvailability{
				101: {june(30), july(2)},
			},
		},
		{
			name:     "both filters",
			filter:   Filter{SiteType: "STANDARD NONELECTRIC", SiteIDs: []SiteID{101}},
			expected: SiteAvailability{},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			result := Aggregate(testResponses(), test.filter)
			diff := cmp.Diff(test.expected, result)
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	responses := testResponses()
	expected := Aggregate(responses, Filter{})

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]RawMonthlyResponse(nil), responses...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		diff := cmp.Diff(expected, Aggregate(shuffled, Filter{}))
		if diff != "" {
			t.Fatal(diff)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	require.Empty(t, Aggregate(nil, Filter{}))
	require.Empty(t, Aggregate([]RawMonthlyResponse{{Month: june(1)}}, Filter{SiteType: "x"}))
}

func TestCountSites(t *testing.T) {
	require.Equal(t, 3, CountSites(testResponses(), nil))
	require.Equal(t, 2, CountSites(testResponses(), []SiteID{102}))
	require.Equal(t, 0, CountSites(nil, nil))
}

func TestWithout(t *testing.T) {
	sites := Aggregate(testResponses(), Filter{})
	result := sites.Without([]SiteID{100})
	require.Len(t, result, 1)
	require.Contains(t, result, SiteID(101))
	// the receiver is left untouched
	require.Len(t, sites, 2)
}
