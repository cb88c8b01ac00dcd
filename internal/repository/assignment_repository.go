package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgAssignmentRepository struct {
	pool *pgxpool.Pool
}

func NewAssignmentRepository(pool *pgxpool.Pool) AssignmentRepository {
	return &pgAssignmentRepository{pool: pool}
}

const assignmentWithMemberSelect = `
	SELECT a.id, a.chantier_id, a.team_member_id, a.created_at,
	       m.id, m.name, m.role, m.email, m.phone, m.status, m.login_code, m.user_id, m.created_at, m.updated_at
	FROM chantier_assignments a
	JOIN team_members m ON m.id = a.team_member_id
`

func (r *pgAssignmentRepository) Create(ctx context.Context, assignment *Assignment) error {
	query := `
		INSERT INTO chantier_assignments (chantier_id, team_member_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query, assignment.ChantierID, assignment.TeamMemberID).
		Scan(&assignment.ID, &assignment.CreatedAt)
	return translateError(err)
}

func (r *pgAssignmentRepository) FindByID(ctx context.Context, id string) (*Assignment, error) {
	a, err := scanAssignment(r.pool.QueryRow(ctx, assignmentWithMemberSelect+` WHERE a.id = $1`, id))
	if isMissing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *pgAssignmentRepository) FindByChantierID(ctx context.Context, chantierID string) ([]*Assignment, error) {
	rows, err := r.pool.Query(ctx, assignmentWithMemberSelect+` WHERE a.chantier_id = $1 ORDER BY a.created_at, a.id`, chantierID)
	if err != nil {
		if isMissing(err) {
			return []*Assignment{}, nil
		}
		return nil, err
	}
	return collectAssignments(rows)
}

func (r *pgAssignmentRepository) FindAll(ctx context.Context, teamMemberID string) ([]*Assignment, error) {
	query := assignmentWithMemberSelect + ` WHERE ($1 = '' OR a.team_member_id::text = $1) ORDER BY a.created_at, a.id`
	rows, err := r.pool.Query(ctx, query, teamMemberID)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

func (r *pgAssignmentRepository) Delete(ctx context.Context, id string) error {
	return affectedOne(r.pool.Exec(ctx, `DELETE FROM chantier_assignments WHERE id = $1`, id))
}

func scanAssignment(row pgx.Row) (*Assignment, error) {
	a := &Assignment{Member: &TeamMember{}}
	m := a.Member
	err := row.Scan(
		&a.ID, &a.ChantierID, &a.TeamMemberID, &a.CreatedAt,
		&m.ID, &m.Name, &m.Role, &m.Email, &m.Phone, &m.Status, &m.LoginCode, &m.UserID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func collectAssignments(rows pgx.Rows) ([]*Assignment, error) {
	defer rows.Close()
	assignments := []*Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		if isMissing(err) {
			return []*Assignment{}, nil
		}
		return nil, err
	}
	return assignments, nil
}
