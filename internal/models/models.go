// Package models defines the work-item records consumed from the N3 API.
package models

import "time"

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusPlanned    ProjectStatus = "planned"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// Known reports whether s is one of the statuses the service defines.
func (s ProjectStatus) Known() bool {
	switch s {
	case ProjectStatusPlanned, ProjectStatusInProgress, ProjectStatusCompleted,
		ProjectStatusOnHold, ProjectStatusCancelled:
		return true
	}
	return false
}

// ProjectPriority is the importance of a project.
type ProjectPriority string

const (
	ProjectPriorityLow      ProjectPriority = "low"
	ProjectPriorityMedium   ProjectPriority = "medium"
	ProjectPriorityHigh     ProjectPriority = "high"
	ProjectPriorityCritical ProjectPriority = "critical"
)

// ProjectRisk is the risk level of a project.
type ProjectRisk string

const (
	ProjectRiskLow    ProjectRisk = "low"
	ProjectRiskMedium ProjectRisk = "medium"
	ProjectRiskHigh   ProjectRisk = "high"
)

// TaskStatus represents the board column a task belongs to.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusDone       TaskStatus = "done"
)

// TaskStatuses lists the recognized task statuses in board order.
var TaskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusReview,
	TaskStatusBlocked,
	TaskStatusDone,
}

// Known reports whether s is one of TaskStatuses.
func (s TaskStatus) Known() bool {
	for _, k := range TaskStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// TaskPriority is the urgency of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Rank orders priorities from most to least urgent. Unrecognized values
// rank after every known priority.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityUrgent:
		return 0
	case TaskPriorityHigh:
		return 1
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 3
	default:
		return 99
	}
}

// SubtaskStatus represents the state of a subtask.
type SubtaskStatus string

const (
	SubtaskStatusTodo       SubtaskStatus = "todo"
	SubtaskStatusInProgress SubtaskStatus = "in_progress"
	SubtaskStatusDone       SubtaskStatus = "done"
	SubtaskStatusBlocked    SubtaskStatus = "blocked"
)

// ActivityAction is the kind of change an activity records.
type ActivityAction string

const (
	ActivityCreated         ActivityAction = "created"
	ActivityUpdated         ActivityAction = "updated"
	ActivityStatusChanged   ActivityAction = "status_changed"
	ActivityComment         ActivityAction = "comment"
	ActivityAttachmentAdded ActivityAction = "attachment_added"
)

// UserDepartment is the department label attached to an account at signup.
type UserDepartment string

const (
	DepartmentCloudSales       UserDepartment = "클라우드 영업"
	DepartmentCloudManagement  UserDepartment = "클라우드 관리"
	DepartmentTechnicalSupport UserDepartment = "기술지원본부"
	DepartmentBusinessSupport  UserDepartment = "Business Support"
	DepartmentSolutionTeam     UserDepartment = "솔루션팀"
	DepartmentCloudAI          UserDepartment = "클라우드 AI"
	DepartmentUndefined        UserDepartment = "미지정"
)

// UserDepartments lists the selectable departments in display order.
var UserDepartments = []UserDepartment{
	DepartmentCloudSales,
	DepartmentCloudManagement,
	DepartmentTechnicalSupport,
	DepartmentBusinessSupport,
	DepartmentSolutionTeam,
	DepartmentCloudAI,
	DepartmentUndefined,
}

// ParseUserDepartment maps a wire value to a department, falling back to
// DepartmentUndefined for empty or unknown labels.
func ParseUserDepartment(value string) UserDepartment {
	for _, d := range UserDepartments {
		if string(d) == value {
			return d
		}
	}
	return DepartmentUndefined
}

// Session is the authenticated identity plus bearer credential.
type Session struct {
	UserID     string         `json:"user_id"`
	Nickname   string         `json:"nickname"`
	Department UserDepartment `json:"department"`
	Token      string         `json:"access_token"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
}

// Expired reports whether the session's token is past its expiry at now.
// Sessions without a known expiry never expire client-side.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt == nil {
		return false
	}
	return !now.Before(*s.ExpiresAt)
}

// Department is an organizational unit that owns projects.
type Department struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	LeadID      *string   `json:"lead_id,omitempty"`
	Tags        []string  `json:"tags"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// Project is a top-level work item owned by a department.
type Project struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    *string         `json:"description,omitempty"`
	DepartmentID   string          `json:"department_id"`
	DepartmentName *string         `json:"department_name,omitempty"`
	Status         ProjectStatus   `json:"status"`
	Priority       ProjectPriority `json:"priority"`
	RiskLevel      ProjectRisk     `json:"risk_level"`
	Progress       float64         `json:"progress"`
	StartDate      *string         `json:"start_date,omitempty"`
	EndDate        *string         `json:"end_date,omitempty"`
	AssigneeID     *string         `json:"assignee_id,omitempty"`
	MemberIDs      []string        `json:"member_ids"`
	WatcherIDs     []string        `json:"watcher_ids"`
	Tags           []string        `json:"tags"`
	References     []string        `json:"references"`
	CreatedAt      Timestamp       `json:"created_at"`
	UpdatedAt      Timestamp       `json:"updated_at"`
}

// ProjectInput is the payload for creating a project.
type ProjectInput struct {
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	DepartmentID string  `json:"department_id"`
}

// Task is a unit of work inside a project.
type Task struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"project_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Progress    float64      `json:"progress"`
	StartDate   *string      `json:"start_date,omitempty"`
	DueDate     *string      `json:"due_date,omitempty"`
	AssigneeID  *string      `json:"assignee_id,omitempty"`
	Checklist   []string     `json:"checklist"`
	Tags        []string     `json:"tags"`
	References  []string     `json:"references"`
	CreatedAt   Timestamp    `json:"created_at"`
	UpdatedAt   Timestamp    `json:"updated_at"`
}

// Assignee returns the assignee id or "" when unassigned.
func (t Task) Assignee() string {
	if t.AssigneeID == nil {
		return ""
	}
	return *t.AssigneeID
}

// Subtask is an ordered step of a task.
type Subtask struct {
	ID         string        `json:"id"`
	TaskID     string        `json:"task_id"`
	Title      string        `json:"title"`
	Content    *string       `json:"content,omitempty"`
	Status     SubtaskStatus `json:"status"`
	AssigneeID *string       `json:"assignee_id,omitempty"`
	Order      int           `json:"order"`
	DueDate    *string       `json:"due_date,omitempty"`
	CreatedAt  Timestamp     `json:"created_at"`
	UpdatedAt  Timestamp     `json:"updated_at"`
}

// Activity is an entry in the recent-activity feed.
type Activity struct {
	ID         string         `json:"id"`
	ProjectID  *string        `json:"project_id,omitempty"`
	TaskID     *string        `json:"task_id,omitempty"`
	ActorID    *string        `json:"actor_id,omitempty"`
	Action     ActivityAction `json:"action"`
	Detail     *string        `json:"detail,omitempty"`
	OccurredAt Timestamp      `json:"occurred_at"`
}

// DashboardSummary is the server-computed aggregate for the dashboard.
type DashboardSummary struct {
	ProjectTotal              int              `json:"project_total"`
	ActiveProjects            int              `json:"active_projects"`
	OverdueTasks              int              `json:"overdue_tasks"`
	UpcomingDeadlines         []map[string]any `json:"upcoming_deadlines"`
	ProjectStatusDistribution []map[string]any `json:"project_status_distribution"`
	TaskStatusDistribution    []map[string]any `json:"task_status_distribution"`
	DepartmentWorkload        []map[string]any `json:"department_workload"`
	RecentActivities          []Activity       `json:"recent_activities"`
}
