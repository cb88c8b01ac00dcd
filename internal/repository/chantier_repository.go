package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgChantierRepository struct {
	pool *pgxpool.Pool
}

func NewChantierRepository(pool *pgxpool.Pool) ChantierRepository {
	return &pgChantierRepository{pool: pool}
}

const chantierSelect = `
	SELECT c.id, c.name, c.client_id, COALESCE(cl.name, ''), c.start_date, c.duration,
	       c.images, c.status, c.created_at, c.updated_at
	FROM chantiers c
	LEFT JOIN clients cl ON cl.id = c.client_id
`

func scanChantier(row pgx.Row) (*Chantier, error) {
	c := &Chantier{}
	var images string
	err := row.Scan(
		&c.ID, &c.Name, &c.ClientID, &c.ClientName, &c.StartDate, &c.Duration,
		&images, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Images = decodeImages(images)
	return c, nil
}

func (r *pgChantierRepository) Create(ctx context.Context, chantier *Chantier) error {
	query := `
		INSERT INTO chantiers (name, client_id, start_date, duration, images, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		chantier.Name, chantier.ClientID, chantier.StartDate, chantier.Duration,
		encodeImages(chantier.Images), chantier.Status,
	).Scan(&chantier.ID, &chantier.CreatedAt, &chantier.UpdatedAt)
	return translateError(err)
}

func (r *pgChantierRepository) FindByID(ctx context.Context, id string) (*Chantier, error) {
	c, err := scanChantier(r.pool.QueryRow(ctx, chantierSelect+` WHERE c.id = $1`, id))
	if isMissing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgChantierRepository) FindAll(ctx context.Context) ([]*Chantier, error) {
	rows, err := r.pool.Query(ctx, chantierSelect+` ORDER BY c.created_at, c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chantiers := []*Chantier{}
	for rows.Next() {
		c, err := scanChantier(rows)
		if err != nil {
			return nil, err
		}
		chantiers = append(chantiers, c)
	}
	return chantiers, rows.Err()
}

func (r *pgChantierRepository) Update(ctx context.Context, chantier *Chantier) error {
	query := `
		UPDATE chantiers
		SET name = $2, client_id = $3, start_date = $4, duration = $5, images = $6, status = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		chantier.ID, chantier.Name, chantier.ClientID, chantier.StartDate, chantier.Duration,
		encodeImages(chantier.Images), chantier.Status,
	).Scan(&chantier.UpdatedAt)
	if isMissing(err) {
		return ErrNotFound
	}
	return translateError(err)
}

func (r *pgChantierRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return affectedOne(r.pool.Exec(ctx,
		`UPDATE chantiers SET status = $2, updated_at = NOW() WHERE id = $1`, id, status))
}

func (r *pgChantierRepository) Delete(ctx context.Context, id string) error {
	return affectedOne(r.pool.Exec(ctx, `DELETE FROM chantiers WHERE id = $1`, id))
}
