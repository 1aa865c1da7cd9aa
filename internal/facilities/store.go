package facilities

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"campcheck/internal/components/assert"
	"campcheck/internal/components/chrono"
	"campcheck/internal/components/telemetry"
	"campcheck/internal/facilities/db"

	"github.com/antzucaro/matchr"
)

const (
	report_store_import   = "store.import"
	report_store_lookup   = "store.lookup"
	report_store_remember = "store.remember"
	report_store_search   = "store.search"
)

// StaleAfter is how long a name learned from the reservation API is used
// before it is fetched again, imported names never go stale.
const StaleAfter = time.Hour * 24 * 30

// Facility is a campground known to the directory.
type Facility struct {
	ID   int64
	Name string
}

// Match is a search result, Score is the Jaro-Winkler similarity of the
// query and the facility name.
type Match struct {
	Facility
	Score float64
}

// Store is a directory of campground names backed by sqlite or libsql.
type Store struct {
	qry    *db.Queries
	makeTx db.MakeTx
	clock  chrono.API
	tel    telemetry.API
}

// NewStore creates the directory schema if it does not exist yet.
func NewStore(ctx context.Context, database *sql.DB, clock chrono.API, tel telemetry.API) (Store, error) {
	assert.NotNil(database)
	assert.NotNil(clock)
	assert.NotNil(tel)

	for _, stmt := range strings.Split(db.Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := database.ExecContext(ctx, stmt)
		if err != nil {
			return Store{}, fmt.Errorf("create facility schema: %w", err)
		}
	}

	return Store{
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
		clock:  clock,
		tel:    telemetry.NewScopedAPI("facilities", tel),
	}, nil
}

// Import upserts every facility in a single transaction.
func (s Store) Import(ctx context.Context, facilities []Facility) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_store_import, err)
		return err
	}
	defer discard()

	now := s.clock.Now().Unix()
	for _, f := range facilities {
		err := tx.UpsertFacility(ctx, db.UpsertFacilityParams{
			ID:        f.ID,
			Name:      f.Name,
			Source:    string(db.SOURCE_RIDB),
			UpdatedAt: now,
		})
		if err != nil {
			s.tel.ReportBroken(report_store_import, err, f.ID)
			return fmt.Errorf("import facility %d: %w", f.ID, err)
		}
	}

	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_store_import, err)
		return err
	}
	s.tel.ReportCount(report_store_import, int64(len(facilities)))
	return nil
}

// Lookup returns the name of a park, ok is false when it is not known or
// was learned from the API longer than StaleAfter ago.
func (s Store) Lookup(ctx context.Context, parkID int64) (string, bool, error) {
	row, err := s.qry.GetFacility(ctx, parkID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.tel.ReportBroken(report_store_lookup, err, parkID)
		return "", false, err
	}

	updated := time.Unix(row.UpdatedAt, 0)
	if row.Source == string(db.SOURCE_API) && s.clock.Now().Sub(updated) > StaleAfter {
		s.tel.ReportDebug("stale facility name", parkID, updated)
		return "", false, nil
	}
	return row.Name, true, nil
}

// Remember records a name learned from the reservation API.
func (s Store) Remember(ctx context.Context, parkID int64, name string) error {
	err := s.qry.UpsertFacility(ctx, db.UpsertFacilityParams{
		ID:        parkID,
		Name:      name,
		Source:    string(db.SOURCE_API),
		UpdatedAt: s.clock.Now().Unix(),
	})
	if err != nil {
		s.tel.ReportBroken(report_store_remember, err, parkID)
		return err
	}
	return nil
}

// Search returns up to limit facilities whose names are most similar to the
// query, best match first. Ties are broken by id.
func (s Store) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	rows, err := s.qry.ListFacilities(ctx)
	if err != nil {
		s.tel.ReportBroken(report_store_search, err)
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]Match, len(rows))
	for i, row := range rows {
		matches[i] = Match{
			Facility: Facility{ID: row.ID, Name: row.Name},
			Score:    matchr.JaroWinkler(query, strings.ToLower(row.Name), false),
		}
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Count returns the number of facilities in the directory.
func (s Store) Count(ctx context.Context) (int64, error) {
	return s.qry.CountFacilities(ctx)
}
