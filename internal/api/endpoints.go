package api

import (
	"context"
	"net/url"

	"github.com/fentz26/n3dash/internal/models"
)

// LoginResult is the payload of a successful login.
type LoginResult struct {
	UserID      string `json:"user_id"`
	Nickname    string `json:"nickname"`
	Department  string `json:"department"`
	AccessToken string `json:"access_token"`
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Department string `json:"department,omitempty"`
}

// ProjectFilter narrows ListProjects. Empty fields are not sent.
type ProjectFilter struct {
	DepartmentID string
}

func (f ProjectFilter) values() url.Values {
	q := url.Values{}
	if f.DepartmentID != "" {
		q.Set("department_id", f.DepartmentID)
	}
	return q
}

// Login authenticates and returns the identity plus bearer token.
// It does not install the token; the session layer decides that.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var result LoginResult
	if err := c.post(ctx, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates an account. No payload is consumed on success.
func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	return c.post(ctx, "/auth/register", in, nil)
}

// ListDepartments fetches every department.
func (c *Client) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	if err := c.get(ctx, "/departments", nil, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// ListProjects fetches projects, optionally filtered by department.
func (c *Client) ListProjects(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	var projects []models.Project
	if err := c.get(ctx, "/projects", filter.values(), &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a project and returns the stored record.
func (c *Client) CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.post(ctx, "/projects", in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DashboardSummary fetches the server-computed dashboard aggregate.
func (c *Client) DashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	if err := c.get(ctx, "/projects/dashboard/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListTasks fetches the tasks of one project.
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.get(ctx, "/projects/"+url.PathEscape(projectID)+"/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListSubtasks fetches the subtasks of one task.
func (c *Client) ListSubtasks(ctx context.Context, taskID string) ([]models.Subtask, error) {
	var subtasks []models.Subtask
	if err := c.get(ctx, "/subtasks/task/"+url.PathEscape(taskID), nil, &subtasks); err != nil {
		return nil, err
	}
	return subtasks, nil
}

// CheckHealth reports whether the service answers its health endpoint.
func (c *Client) CheckHealth(ctx context.Context) (bool, error) {
	var health struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", nil, &health); err != nil {
		return false, err
	}
	return health.Status == "healthy", nil
}
