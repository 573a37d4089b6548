// Package workitems holds the client-side cache of projects, tasks, subtasks
// and the dashboard aggregate.
package workitems

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/fentz26/n3dash/internal/api"
	"github.com/fentz26/n3dash/internal/models"
	"github.com/fentz26/n3dash/internal/notify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// User-facing messages.
const (
	MsgDashboardFailed     = "Failed to load dashboard data."
	MsgProjectsFailed      = "Failed to load projects."
	MsgTasksFailed         = "Failed to load tasks."
	MsgSubtasksFailed      = "Failed to load subtasks."
	MsgProjectCreated      = "Project created."
	MsgProjectCreateFailed = "Failed to create project."
)

// DefaultPrefetchConcurrency caps parallel task fetches in PrefetchTasks.
const DefaultPrefetchConcurrency = 4

// API is the part of the client the work-item store calls.
type API interface {
	DashboardSummary(ctx context.Context) (*models.DashboardSummary, error)
	ListProjects(ctx context.Context, filter api.ProjectFilter) ([]models.Project, error)
	ListTasks(ctx context.Context, projectID string) ([]models.Task, error)
	ListSubtasks(ctx context.Context, taskID string) ([]models.Subtask, error)
	CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error)
}

// State is a snapshot of the store.
type State struct {
	Projects   []models.Project
	Tasks      map[string][]models.Task
	Subtasks   map[string][]models.Subtask
	Activities []models.Activity
	Dashboard  *models.DashboardSummary
	Loading    bool
	Error      string
}

// Store is the work-item store. It is safe for concurrent use.
type Store struct {
	api    API
	notify notify.Publisher
	log    *slog.Logger
	flight singleflight.Group

	mu         sync.RWMutex
	projects   []models.Project
	tasks      map[string][]models.Task
	subtasks   map[string][]models.Subtask
	activities []models.Activity
	dashboard  *models.DashboardSummary
	inFlight   int
	err        string
	gen        uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates an empty work-item store.
func New(client API, pub notify.Publisher, opts ...Option) *Store {
	if pub == nil {
		pub = notify.Discard
	}
	s := &Store{
		api:      client,
		notify:   pub,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		tasks:    make(map[string][]models.Task),
		subtasks: make(map[string][]models.Subtask),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchDashboard replaces the dashboard aggregate and the activity feed.
// On failure the previous values are kept.
func (s *Store) FetchDashboard(ctx context.Context) error {
	_, err, _ := s.flight.Do(s.flightKey("dashboard"), func() (any, error) {
		gen := s.begin()
		defer s.end()

		summary, err := s.api.DashboardSummary(ctx)
		if err != nil {
			s.fail(gen, "fetch dashboard", MsgDashboardFailed, err)
			return nil, err
		}
		s.commit(gen, func() {
			s.dashboard = summary
			s.activities = summary.RecentActivities
		})
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("fetch dashboard: %w", err)
	}
	return nil
}

// FetchProjects replaces the project list, optionally filtered by department.
func (s *Store) FetchProjects(ctx context.Context, filter api.ProjectFilter) error {
	_, err, _ := s.flight.Do(s.flightKey("projects:"+filter.DepartmentID), func() (any, error) {
		gen := s.begin()
		defer s.end()

		projects, err := s.api.ListProjects(ctx, filter)
		if err != nil {
			s.fail(gen, "fetch projects", MsgProjectsFailed, err)
			return nil, err
		}
		if projects == nil {
			projects = []models.Project{}
		}
		s.commit(gen, func() { s.projects = projects })
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("fetch projects: %w", err)
	}
	return nil
}

// FetchTasks loads one project's tasks. Entries for other projects are
// never touched.
func (s *Store) FetchTasks(ctx context.Context, projectID string) error {
	_, err, _ := s.flight.Do(s.flightKey("tasks:"+projectID), func() (any, error) {
		gen := s.begin()
		defer s.end()

		tasks, err := s.api.ListTasks(ctx, projectID)
		if err != nil {
			s.fail(gen, "fetch tasks", MsgTasksFailed, err, "project_id", projectID)
			return nil, err
		}
		if tasks == nil {
			tasks = []models.Task{}
		}
		s.commit(gen, func() { s.tasks[projectID] = tasks })
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("fetch tasks %s: %w", projectID, err)
	}
	return nil
}

// FetchSubtasks loads one task's subtasks.
func (s *Store) FetchSubtasks(ctx context.Context, taskID string) error {
	_, err, _ := s.flight.Do(s.flightKey("subtasks:"+taskID), func() (any, error) {
		gen := s.begin()
		defer s.end()

		subtasks, err := s.api.ListSubtasks(ctx, taskID)
		if err != nil {
			s.fail(gen, "fetch subtasks", MsgSubtasksFailed, err, "task_id", taskID)
			return nil, err
		}
		if subtasks == nil {
			subtasks = []models.Subtask{}
		}
		s.commit(gen, func() { s.subtasks[taskID] = subtasks })
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("fetch subtasks %s: %w", taskID, err)
	}
	return nil
}

// PrefetchTasks loads tasks for the first limit projects that have no entry
// yet. Per-project failures are recorded on the store; the first one is
// returned after every fetch has finished.
func (s *Store) PrefetchTasks(ctx context.Context, limit int) error {
	s.mu.RLock()
	var pending []string
	for i, p := range s.projects {
		if limit >= 0 && i >= limit {
			break
		}
		if _, ok := s.tasks[p.ID]; !ok {
			pending = append(pending, p.ID)
		}
	}
	s.mu.RUnlock()

	var g errgroup.Group
	g.SetLimit(DefaultPrefetchConcurrency)
	for _, id := range pending {
		id := id
		g.Go(func() error { return s.FetchTasks(ctx, id) })
	}
	return g.Wait()
}

// CreateProject creates a project and prepends it to the list. On failure
// the list is unchanged, an error toast is published and nil is returned
// with the error.
func (s *Store) CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	gen := s.generation()
	project, err := s.api.CreateProject(ctx, in)
	if err != nil {
		msg := api.Detail(err)
		if msg == "" {
			msg = MsgProjectCreateFailed
		}
		s.log.Warn("create project failed", "title", in.Title, "error", err)
		s.notify.Notify(msg, notify.KindError)
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.commit(gen, func() {
		projects := make([]models.Project, 0, len(s.projects)+1)
		projects = append(projects, *project)
		s.projects = append(projects, s.projects...)
	})

	s.log.Info("project created", "id", project.ID)
	s.notify.Notify(MsgProjectCreated, notify.KindSuccess)
	return project, nil
}

// Reset drops every cached collection. Fetches still in flight finish
// without writing their results.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.projects = nil
	s.tasks = make(map[string][]models.Task)
	s.subtasks = make(map[string][]models.Subtask)
	s.activities = nil
	s.dashboard = nil
	s.err = ""
}

// State returns a snapshot of the store.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		Projects:   append([]models.Project(nil), s.projects...),
		Tasks:      make(map[string][]models.Task, len(s.tasks)),
		Subtasks:   make(map[string][]models.Subtask, len(s.subtasks)),
		Activities: append([]models.Activity(nil), s.activities...),
		Loading:    s.inFlight > 0,
		Error:      s.err,
	}
	for k, v := range s.tasks {
		st.Tasks[k] = append([]models.Task(nil), v...)
	}
	for k, v := range s.subtasks {
		st.Subtasks[k] = append([]models.Subtask(nil), v...)
	}
	if s.dashboard != nil {
		d := *s.dashboard
		st.Dashboard = &d
	}
	return st
}

// Projects returns the project list.
func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Project(nil), s.projects...)
}

// Tasks returns the cached tasks of a project and whether an entry exists.
func (s *Store) Tasks(projectID string) ([]models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks, ok := s.tasks[projectID]
	return append([]models.Task(nil), tasks...), ok
}

// Subtasks returns the cached subtasks of a task and whether an entry exists.
func (s *Store) Subtasks(taskID string) ([]models.Subtask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subtasks, ok := s.subtasks[taskID]
	return append([]models.Subtask(nil), subtasks...), ok
}

// Dashboard returns the last fetched aggregate or nil.
func (s *Store) Dashboard() *models.DashboardSummary {
	return s.State().Dashboard
}

// Loading reports whether any request is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// Error returns the last failure message.
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// begin marks a fetch as started and returns the generation its result
// belongs to.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
	s.err = ""
	return s.gen
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// flightKey scopes a singleflight key to the current generation so a call
// made after Reset never joins a fetch started before it.
func (s *Store) flightKey(name string) string {
	return strconv.FormatUint(s.generation(), 10) + "/" + name
}

// commit applies write under the lock unless the store was reset since gen.
func (s *Store) commit(gen uint64, write func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		write()
	}
}

func (s *Store) end() {
	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
}

func (s *Store) fail(gen uint64, op, msg string, err error, attrs ...any) {
	s.log.Warn(op+" failed", append(attrs, "error", err)...)
	s.commit(gen, func() { s.err = msg })
}
