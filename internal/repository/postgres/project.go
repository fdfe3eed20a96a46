package postgres

import (
	"context"
	"fmt"

	"github.com/zahek/todo-platform/internal/domain"
	"github.com/zahek/todo-platform/internal/repository"
	"github.com/zahek/todo-platform/pkg/database"
)

// ProjectRepository implements repository.ProjectRepository using PostgreSQL.
type ProjectRepository struct {
	db database.DBTX
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a new PostgreSQL-backed project repository.
func NewProjectRepository(db database.DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (err error) {
	query := `
		INSERT INTO projects (id, owner_id, title, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	ctx, end := database.TraceQuery(ctx, "CreateProject", query)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, query, p.ID, p.OwnerID, p.Title, p.Description, p.CreatedAt); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's projects, newest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) (_ []domain.Project, _ int, err error) {
	query := `
		SELECT id, owner_id, title, description, created_at,
			   count(*) OVER() AS total_count
		FROM projects
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "ListProjects", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var (
		projects   = []domain.Project{}
		totalCount int
	)

	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.CreatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan project row: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate project rows: %w", err)
	}

	return projects, totalCount, nil
}
