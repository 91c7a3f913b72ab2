package projects

import (
	"context"
	"database/sql"
	"errors"

	"signing-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts the project and its first member in one transaction.
func (r *PGRepo) Create(ctx context.Context, project Project, owner Member) error {
	const insertProject = `
INSERT INTO projects (id, name, created_by, created_at)
VALUES ($1, $2, $3, $4)`
	const insertMember = `
INSERT INTO project_members (project_id, user_id, role, added_at)
VALUES ($1, $2, $3, $4)`

	return db.InTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertProject, project.ID, project.Name, project.CreatedBy, project.CreatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertMember, owner.ProjectID, owner.UserID, string(owner.Role), owner.AddedAt)
		return err
	})
}

func (r *PGRepo) GetByID(ctx context.Context, projectID string) (Project, error) {
	const query = `
SELECT id, name, created_by, created_at
FROM projects
WHERE id = $1`
	var project Project
	err := r.DB.QueryRowContext(ctx, query, projectID).Scan(
		&project.ID,
		&project.Name,
		&project.CreatedBy,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	return project, nil
}

func (r *PGRepo) ListForUser(ctx context.Context, userID string) ([]Project, error) {
	const query = `
SELECT p.id, p.name, p.created_by, p.created_at
FROM projects p
JOIN project_members m ON m.project_id = p.id
WHERE m.user_id = $1
ORDER BY p.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0)
	for rows.Next() {
		var project Project
		if err := rows.Scan(&project.ID, &project.Name, &project.CreatedBy, &project.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, project)
	}
	return out, rows.Err()
}

func (r *PGRepo) AddMember(ctx context.Context, member Member) error {
	const query = `
INSERT INTO project_members (project_id, user_id, role, added_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (project_id, user_id) DO UPDATE SET role = EXCLUDED.role`
	_, err := r.DB.ExecContext(ctx, query, member.ProjectID, member.UserID, string(member.Role), member.AddedAt)
	return err
}

func (r *PGRepo) GetMember(ctx context.Context, projectID, userID string) (Member, error) {
	const query = `
SELECT project_id, user_id, role, added_at
FROM project_members
WHERE project_id = $1 AND user_id = $2`
	var member Member
	var role string
	err := r.DB.QueryRowContext(ctx, query, projectID, userID).Scan(
		&member.ProjectID,
		&member.UserID,
		&role,
		&member.AddedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Member{}, ErrNotFound
		}
		return Member{}, err
	}
	member.Role = MemberRole(role)
	return member, nil
}

func (r *PGRepo) ListMembers(ctx context.Context, projectID string) ([]Member, error) {
	const query = `
SELECT project_id, user_id, role, added_at
FROM project_members
WHERE project_id = $1
ORDER BY added_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Member, 0)
	for rows.Next() {
		var member Member
		var role string
		if err := rows.Scan(&member.ProjectID, &member.UserID, &role, &member.AddedAt); err != nil {
			return nil, err
		}
		member.Role = MemberRole(role)
		out = append(out, member)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
