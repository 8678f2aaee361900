// Package catalog is the relational index of published projects.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Project is one published project's catalog record. ProjectID is the
// stable external identifier joining this row to its blob artifacts;
// it is never reused across owners.
type Project struct {
	ID         int64     `json:"id"`
	ProjectID  string    `json:"project_id"`
	Name       string    `json:"name"`
	OwnerID    string    `json:"owner_id"`
	OwnerEmail string    `json:"owner_email"`
	Image      string    `json:"image"`
	Tags       []string  `json:"tags"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UpsertParams carries the fields a publish may write. Owner fields
// are only applied on first insert; republish never changes them.
type UpsertParams struct {
	ProjectID  string
	Name       string
	OwnerID    string
	OwnerEmail string
	Image      string
	Tags       []string
}

const projectColumns = `id, project_id, name, owner_id, owner_email, image, tags, rating, created_at, updated_at`

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.ProjectID, &p.Name, &p.OwnerID, &p.OwnerEmail,
		&p.Image, &p.Tags, &p.Rating, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByProjectID returns the record for the given external id, or
// (nil, nil) when no such project has been published.
func (r *Repo) FindByProjectID(ctx context.Context, projectID string) (*Project, error) {
	const q = `
select ` + projectColumns + `
from projects
where project_id = $1;
`
	p, err := scanProject(r.db.QueryRow(ctx, q, projectID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project %s: %w", projectID, err)
	}
	return p, nil
}

// Upsert inserts a new record, or updates the mutable fields (name,
// image, tags) of an existing one. Ownership is fixed at insert time
// and never touched by the conflict branch.
func (r *Repo) Upsert(ctx context.Context, in UpsertParams) (*Project, error) {
	const q = `
insert into projects (project_id, name, owner_id, owner_email, image, tags)
values ($1, $2, $3, $4, $5, $6)
on conflict (project_id) do update
set name = excluded.name,
    image = excluded.image,
    tags = excluded.tags,
    updated_at = now()
returning ` + projectColumns + `;
`
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	p, err := scanProject(r.db.QueryRow(ctx, q,
		in.ProjectID, in.Name, in.OwnerID, in.OwnerEmail, in.Image, tags))
	if err != nil {
		return nil, fmt.Errorf("upsert project %s: %w", in.ProjectID, err)
	}
	return p, nil
}

// ListTop returns the highest-rated published projects.
func (r *Repo) ListTop(ctx context.Context, limit int) ([]Project, error) {
	const q = `
select ` + projectColumns + `
from projects
order by rating desc, updated_at desc
limit $1;
`
	rows, err := r.db.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collect(rows)
}

// ListByOwner returns all projects published by one owner.
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]Project, error) {
	const q = `
select ` + projectColumns + `
from projects
where owner_id = $1
order by updated_at desc;
`
	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collect(rows)
}

func collect(rows pgx.Rows) ([]Project, error) {
	out := make([]Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
