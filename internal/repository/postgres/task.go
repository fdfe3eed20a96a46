package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/zahek/todo-platform/internal/domain"
	"github.com/zahek/todo-platform/internal/repository"
	"github.com/zahek/todo-platform/pkg/database"
)

// Task listing predicates. %[1]d is replaced by the placeholder index of
// the predicate's single argument.
const (
	predVisibleTo = "(created_by = $%[1]d OR assignee_id = $%[1]d)"
	predProject   = "project_id = $%[1]d"
	predStatus    = "status = $%[1]d"
)

// whereBuilder accumulates AND-ed predicates with positional arguments.
type whereBuilder struct {
	conditions []string
	args       []any
}

func (b *whereBuilder) add(predicate string, arg any) {
	b.args = append(b.args, arg)
	b.conditions = append(b.conditions, fmt.Sprintf(predicate, len(b.args)))
}

// next returns the index the next positional argument will take.
func (b *whereBuilder) next() int {
	return len(b.args) + 1
}

func (b *whereBuilder) clause() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conditions, " AND ")
}

// TaskRepository implements repository.TaskRepository using PostgreSQL.
type TaskRepository struct {
	db database.DBTX
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new PostgreSQL-backed task repository.
func NewTaskRepository(db database.DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (err error) {
	query := `
		INSERT INTO tasks (id, project_id, title, description, status, priority, assignee_id, due_date, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	ctx, end := database.TraceQuery(ctx, "CreateTask", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		t.ID,
		t.ProjectID,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.AssigneeID,
		t.DueDate,
		t.CreatedBy,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func buildTaskFilter(filter domain.TaskFilter) *whereBuilder {
	b := &whereBuilder{}
	b.add(predVisibleTo, filter.UserID)
	if filter.ProjectID != nil {
		b.add(predProject, *filter.ProjectID)
	}
	if filter.Status != nil {
		b.add(predStatus, *filter.Status)
	}
	return b
}

// List returns tasks visible to filter.UserID, newest first, with the
// total count.
func (r *TaskRepository) List(ctx context.Context, filter domain.TaskFilter) (_ []domain.Task, _ int, err error) {
	where := buildTaskFilter(filter)

	query := fmt.Sprintf(`
		SELECT id, project_id, title, description, status, priority, assignee_id, due_date, created_by, created_at,
			   count(*) OVER() AS total_count
		FROM tasks
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		where.clause(), where.next(), where.next()+1,
	)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args := append(where.args, limit, filter.Offset)

	ctx, end := database.TraceQuery(ctx, "ListTasks", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var (
		tasks      = []domain.Task{}
		totalCount int
	)

	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.Priority,
			&t.AssigneeID,
			&t.DueDate,
			&t.CreatedBy,
			&t.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan task row: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate task rows: %w", err)
	}

	return tasks, totalCount, nil
}
