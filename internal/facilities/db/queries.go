package db

import (
	"context"
)

const upsertFacility = `
insert into Facility(id, name, source, updated_at) values (?, ?, ?, ?)
on conflict(id) do update set
    name = excluded.name,
    source = excluded.source,
    updated_at = excluded.updated_at
`

type UpsertFacilityParams struct {
	ID        int64
	Name      string
	Source    string
	UpdatedAt int64
}

func (q *Queries) UpsertFacility(ctx context.Context, arg UpsertFacilityParams) error {
	_, err := q.db.ExecContext(ctx, upsertFacility,
		arg.ID,
		arg.Name,
		arg.Source,
		arg.UpdatedAt,
	)
	return err
}

const getFacility = `
select id, name, source, updated_at from Facility
where id = ?
`

func (q *Queries) GetFacility(ctx context.Context, id int64) (Facility, error) {
	row := q.db.QueryRowContext(ctx, getFacility, id)
	var i Facility
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Source,
		&i.UpdatedAt,
	)
	return i, err
}

const listFacilities = `
select id, name, source, updated_at from Facility
order by id
`

func (q *Queries) ListFacilities(ctx context.Context) ([]Facility, error) {
	rows, err := q.db.QueryContext(ctx, listFacilities)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Facility
	for rows.Next() {
		var i Facility
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Source,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countFacilities = `
select count(*) from Facility
`

func (q *Queries) CountFacilities(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countFacilities)
	var count int64
	err := row.Scan(&count)
	return count, err
}
