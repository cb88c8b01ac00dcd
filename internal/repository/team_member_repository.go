package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgTeamMemberRepository struct {
	pool *pgxpool.Pool
}

func NewTeamMemberRepository(pool *pgxpool.Pool) TeamMemberRepository {
	return &pgTeamMemberRepository{pool: pool}
}

const memberColumns = `id, name, role, email, phone, status, login_code, user_id, created_at, updated_at`

func scanMember(row pgx.Row) (*TeamMember, error) {
	m := &TeamMember{}
	err := row.Scan(
		&m.ID, &m.Name, &m.Role, &m.Email, &m.Phone, &m.Status,
		&m.LoginCode, &m.UserID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgTeamMemberRepository) Create(ctx context.Context, member *TeamMember) error {
	query := `
		INSERT INTO team_members (name, role, email, phone, status, login_code, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		member.Name, member.Role, member.Email, member.Phone, member.Status, member.LoginCode, member.UserID,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
	return translateError(err)
}

func (r *pgTeamMemberRepository) FindByID(ctx context.Context, id string) (*TeamMember, error) {
	m, err := scanMember(r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM team_members WHERE id = $1`, id))
	if isMissing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgTeamMemberRepository) FindByLoginCode(ctx context.Context, code string) (*TeamMember, error) {
	m, err := scanMember(r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM team_members WHERE login_code = $1`, code))
	if isMissing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgTeamMemberRepository) FindAll(ctx context.Context) ([]*TeamMember, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+memberColumns+` FROM team_members ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*TeamMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *pgTeamMemberRepository) Update(ctx context.Context, member *TeamMember) error {
	query := `
		UPDATE team_members
		SET name = $2, role = $3, email = $4, phone = $5, status = $6, login_code = $7, user_id = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		member.ID, member.Name, member.Role, member.Email, member.Phone,
		member.Status, member.LoginCode, member.UserID,
	).Scan(&member.UpdatedAt)
	if isMissing(err) {
		return ErrNotFound
	}
	return translateError(err)
}

func (r *pgTeamMemberRepository) Delete(ctx context.Context, id string) error {
	return affectedOne(r.pool.Exec(ctx, `DELETE FROM team_members WHERE id = $1`, id))
}
