package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zahek/todo-platform/internal/domain"
	"github.com/zahek/todo-platform/internal/repository"
	apperrors "github.com/zahek/todo-platform/pkg/errors"
	"github.com/zahek/todo-platform/pkg/pagination"
)

// WorkspaceService manages projects and tasks on behalf of an
// authenticated user.
type WorkspaceService struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
}

// NewWorkspaceService creates a new workspace service.
func NewWorkspaceService(projects repository.ProjectRepository, tasks repository.TaskRepository) *WorkspaceService {
	return &WorkspaceService{projects: projects, tasks: tasks}
}

// CreateProjectInput holds the parameters for creating a project.
type CreateProjectInput struct {
	Title       string
	Description string
}

// CreateTaskInput holds the parameters for creating a task. Empty optional
// fields are stored as NULL.
type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description string
	AssigneeID  string
	Priority    string
	DueDate     *time.Time
}

// ListTasksInput narrows a task listing.
type ListTasksInput struct {
	ProjectID string
	Status    string
	Page      pagination.Params
}

// CreateProject creates a project owned by ownerID.
func (s *WorkspaceService) CreateProject(ctx context.Context, ownerID string, input CreateProjectInput) (*domain.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}

	project := &domain.Project{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       title,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// ListProjects returns one page of the owner's projects.
func (s *WorkspaceService) ListProjects(ctx context.Context, ownerID string, page pagination.Params) (pagination.Result[domain.Project], error) {
	items, total, err := s.projects.ListByOwner(ctx, ownerID, page.PerPage, page.Offset())
	if err != nil {
		return pagination.Result[domain.Project]{}, fmt.Errorf("list projects: %w", err)
	}
	return pagination.NewResult(items, total, page), nil
}

// CreateTask creates a task in status todo. Priority defaults to medium.
func (s *WorkspaceService) CreateTask(ctx context.Context, createdBy string, input CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}

	priority := domain.TaskPriorityMedium
	if input.Priority != "" {
		priority = domain.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown priority %q", input.Priority))
		}
	}

	task := &domain.Task{
		ID:          uuid.New().String(),
		ProjectID:   optional(input.ProjectID),
		Title:       title,
		Description: optional(input.Description),
		Status:      domain.TaskStatusTodo,
		Priority:    priority,
		AssigneeID:  optional(input.AssigneeID),
		DueDate:     input.DueDate,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// ListTasks returns one page of tasks the user created or is assigned to.
func (s *WorkspaceService) ListTasks(ctx context.Context, userID string, input ListTasksInput) (pagination.Result[domain.Task], error) {
	filter := domain.TaskFilter{
		UserID:    userID,
		ProjectID: optional(input.ProjectID),
		Limit:     input.Page.PerPage,
		Offset:    input.Page.Offset(),
	}

	if input.Status != "" {
		status := domain.TaskStatus(input.Status)
		if !status.Valid() {
			return pagination.Result[domain.Task]{}, apperrors.InvalidInput(fmt.Sprintf("unknown status %q", input.Status))
		}
		filter.Status = &status
	}

	items, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return pagination.Result[domain.Task]{}, fmt.Errorf("list tasks: %w", err)
	}
	return pagination.NewResult(items, total, input.Page), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
