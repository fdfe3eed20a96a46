package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/zahek/todo-platform/internal/auth"
	"github.com/zahek/todo-platform/internal/service"
	"github.com/zahek/todo-platform/pkg/httputil"
	"github.com/zahek/todo-platform/pkg/pagination"
	"github.com/zahek/todo-platform/pkg/validator"
)

// WorkspaceHandler handles project and task endpoints. Every route sits
// behind Authenticate.
type WorkspaceHandler struct {
	service *service.WorkspaceService
	logger  *slog.Logger
}

// NewWorkspaceHandler creates a new workspace HTTP handler.
func NewWorkspaceHandler(svc *service.WorkspaceService, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{service: svc, logger: logger}
}

// CreateProjectRequest is the JSON request body for creating a project.
type CreateProjectRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// CreateTaskRequest is the JSON request body for creating a task.
type CreateTaskRequest struct {
	ProjectID   string     `json:"project_id" validate:"omitempty,uuid"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"omitempty,max=2000"`
	AssigneeID  string     `json:"assignee_id" validate:"omitempty,uuid"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateProject handles POST /projects
func (h *WorkspaceHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated, h.logger)
		return
	}

	var req CreateProjectRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	project, err := h.service.CreateProject(r.Context(), principal.UserID, service.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, project)
}

// ListProjects handles GET /projects
func (h *WorkspaceHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated, h.logger)
		return
	}

	result, err := h.service.ListProjects(r.Context(), principal.UserID, pagination.FromRequest(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// CreateTask handles POST /tasks
func (h *WorkspaceHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated, h.logger)
		return
	}

	var req CreateTaskRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	task, err := h.service.CreateTask(r.Context(), principal.UserID, service.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, task)
}

// ListTasks handles GET /tasks?project_id=&status=
func (h *WorkspaceHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated, h.logger)
		return
	}

	q := r.URL.Query()
	if projectID := q.Get("project_id"); projectID != "" {
		if _, ok := httputil.ParseUUID(w, projectID); !ok {
			return
		}
	}

	result, err := h.service.ListTasks(r.Context(), principal.UserID, service.ListTasksInput{
		ProjectID: q.Get("project_id"),
		Status:    q.Get("status"),
		Page:      pagination.FromRequest(r),
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}
