package workitems

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fentz26/n3dash/internal/api"
	"github.com/fentz26/n3dash/internal/models"
	"github.com/fentz26/n3dash/internal/notify"
)

type fakeAPI struct {
	dashboard func(ctx context.Context) (*models.DashboardSummary, error)
	projects  func(ctx context.Context, f api.ProjectFilter) ([]models.Project, error)
	tasks     func(ctx context.Context, id string) ([]models.Task, error)
	subtasks  func(ctx context.Context, id string) ([]models.Subtask, error)
	create    func(ctx context.Context, in models.ProjectInput) (*models.Project, error)
}

func (f *fakeAPI) DashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	return f.dashboard(ctx)
}

func (f *fakeAPI) ListProjects(ctx context.Context, filter api.ProjectFilter) ([]models.Project, error) {
	return f.projects(ctx, filter)
}

func (f *fakeAPI) ListTasks(ctx context.Context, id string) ([]models.Task, error) {
	return f.tasks(ctx, id)
}

func (f *fakeAPI) ListSubtasks(ctx context.Context, id string) ([]models.Subtask, error) {
	return f.subtasks(ctx, id)
}

func (f *fakeAPI) CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	return f.create(ctx, in)
}

type recorder struct {
	mu     sync.Mutex
	events []string
	kinds  []notify.Kind
}

func (r *recorder) Notify(message string, kind notify.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, message)
	r.kinds = append(r.kinds, kind)
}

func TestCreateProject_PrependsOnSuccess(t *testing.T) {
	f := &fakeAPI{
		create: func(_ context.Context, in models.ProjectInput) (*models.Project, error) {
			return &models.Project{ID: "p1", Title: in.Title, DepartmentID: in.DepartmentID}, nil
		},
	}
	rec := &recorder{}
	s := New(f, rec)

	p, err := s.CreateProject(context.Background(), models.ProjectInput{Title: "Launch", DepartmentID: "d1"})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if p == nil || p.ID != "p1" {
		t.Fatalf("Expected created project, got %+v", p)
	}

	second := &models.Project{ID: "p2"}
	f.create = func(context.Context, models.ProjectInput) (*models.Project, error) { return second, nil }
	s.CreateProject(context.Background(), models.ProjectInput{Title: "Next"})

	projects := s.Projects()
	if len(projects) != 2 || projects[0].ID != "p2" || projects[1].ID != "p1" {
		t.Errorf("Expected newest project first, got %+v", projects)
	}
	if len(rec.events) != 2 || rec.events[0] != MsgProjectCreated || rec.kinds[0] != notify.KindSuccess {
		t.Errorf("Expected success toasts, got %v %v", rec.events, rec.kinds)
	}
}

func TestCreateProject_FailureLeavesListUnchanged(t *testing.T) {
	f := &fakeAPI{
		create: func(context.Context, models.ProjectInput) (*models.Project, error) {
			return nil, &api.TransportError{Op: "POST /projects", Err: errors.New("connection refused")}
		},
	}
	rec := &recorder{}
	s := New(f, rec)

	p, err := s.CreateProject(context.Background(), models.ProjectInput{Title: "X"})
	if err == nil || p != nil {
		t.Fatalf("Expected nil project and error, got %+v %v", p, err)
	}
	if !errors.Is(err, api.ErrTransport) {
		t.Errorf("Expected transport error, got %v", err)
	}
	if len(s.Projects()) != 0 {
		t.Errorf("Expected no projects, got %+v", s.Projects())
	}
	if len(rec.events) != 1 || rec.events[0] != MsgProjectCreateFailed || rec.kinds[0] != notify.KindError {
		t.Errorf("Expected one error toast, got %v %v", rec.events, rec.kinds)
	}
}

func TestCreateProject_UsesServerDetail(t *testing.T) {
	f := &fakeAPI{
		create: func(context.Context, models.ProjectInput) (*models.Project, error) {
			return nil, &api.APIError{StatusCode: 400, Detail: "Department not found"}
		},
	}
	rec := &recorder{}
	s := New(f, rec)

	s.CreateProject(context.Background(), models.ProjectInput{Title: "X", DepartmentID: "nope"})
	if len(rec.events) != 1 || rec.events[0] != "Department not found" {
		t.Errorf("Expected server detail toast, got %v", rec.events)
	}
}

func TestFetchTasks_MergesWithoutEviction(t *testing.T) {
	f := &fakeAPI{
		tasks: func(_ context.Context, id string) ([]models.Task, error) {
			return []models.Task{{ID: id + "-t1", ProjectID: id}}, nil
		},
	}
	s := New(f, nil)
	ctx := context.Background()

	if err := s.FetchTasks(ctx, "a"); err != nil {
		t.Fatalf("FetchTasks a failed: %v", err)
	}
	if err := s.FetchTasks(ctx, "b"); err != nil {
		t.Fatalf("FetchTasks b failed: %v", err)
	}

	st := s.State()
	if len(st.Tasks) != 2 || st.Tasks["a"][0].ID != "a-t1" || st.Tasks["b"][0].ID != "b-t1" {
		t.Errorf("Expected both entries, got %+v", st.Tasks)
	}

	f.tasks = func(context.Context, string) ([]models.Task, error) {
		return nil, &api.APIError{StatusCode: 500}
	}
	if err := s.FetchTasks(ctx, "a"); err == nil {
		t.Fatal("Expected error")
	}
	if tasks, ok := s.Tasks("a"); !ok || len(tasks) != 1 {
		t.Errorf("Expected prior entry to survive a failed fetch, got %+v", tasks)
	}
	if s.Error() != MsgTasksFailed {
		t.Errorf("Expected %q, got %q", MsgTasksFailed, s.Error())
	}
}

func TestFetchTasks_EmptyEntryIsRecorded(t *testing.T) {
	f := &fakeAPI{
		tasks: func(context.Context, string) ([]models.Task, error) { return nil, nil },
	}
	s := New(f, nil)
	s.FetchTasks(context.Background(), "empty")

	if tasks, ok := s.Tasks("empty"); !ok || len(tasks) != 0 {
		t.Errorf("Expected an empty recorded entry, got ok=%v %+v", ok, tasks)
	}
}

func TestFetchSubtasks(t *testing.T) {
	f := &fakeAPI{
		subtasks: func(_ context.Context, id string) ([]models.Subtask, error) {
			return []models.Subtask{{ID: "s1", TaskID: id, Order: 1}}, nil
		},
	}
	s := New(f, nil)

	if err := s.FetchSubtasks(context.Background(), "t1"); err != nil {
		t.Fatalf("FetchSubtasks failed: %v", err)
	}
	subtasks, ok := s.Subtasks("t1")
	if !ok || len(subtasks) != 1 || subtasks[0].TaskID != "t1" {
		t.Errorf("Unexpected subtasks: %+v", subtasks)
	}
	if _, ok := s.Subtasks("t2"); ok {
		t.Error("Expected no entry for an unfetched task")
	}
}

func TestFetchDashboard_KeepsPriorDataOnFailure(t *testing.T) {
	summary := &models.DashboardSummary{
		ProjectTotal:     3,
		RecentActivities: []models.Activity{{ID: "a1", Action: models.ActivityCreated}},
	}
	f := &fakeAPI{
		dashboard: func(context.Context) (*models.DashboardSummary, error) { return summary, nil },
	}
	s := New(f, nil)
	ctx := context.Background()

	if err := s.FetchDashboard(ctx); err != nil {
		t.Fatalf("FetchDashboard failed: %v", err)
	}
	st := s.State()
	if st.Dashboard == nil || st.Dashboard.ProjectTotal != 3 || len(st.Activities) != 1 {
		t.Fatalf("Unexpected state: %+v", st)
	}

	f.dashboard = func(context.Context) (*models.DashboardSummary, error) {
		return nil, errors.New("boom")
	}
	if err := s.FetchDashboard(ctx); err == nil {
		t.Fatal("Expected error")
	}
	st = s.State()
	if st.Dashboard == nil || st.Dashboard.ProjectTotal != 3 || len(st.Activities) != 1 {
		t.Errorf("Expected prior dashboard to survive, got %+v", st)
	}
	if st.Error != MsgDashboardFailed || st.Loading {
		t.Errorf("Expected error state without loading, got %+v", st)
	}
}

func TestFetchProjects_PassesFilter(t *testing.T) {
	var got api.ProjectFilter
	f := &fakeAPI{
		projects: func(_ context.Context, filter api.ProjectFilter) ([]models.Project, error) {
			got = filter
			return []models.Project{{ID: "p1"}}, nil
		},
	}
	s := New(f, nil)

	if err := s.FetchProjects(context.Background(), api.ProjectFilter{DepartmentID: "d1"}); err != nil {
		t.Fatalf("FetchProjects failed: %v", err)
	}
	if got.DepartmentID != "d1" {
		t.Errorf("Expected filter to be forwarded, got %+v", got)
	}
	if len(s.Projects()) != 1 {
		t.Errorf("Expected one project, got %d", len(s.Projects()))
	}
}

func TestFetchTasks_CoalescesSameKey(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	f := &fakeAPI{
		tasks: func(context.Context, string) ([]models.Task, error) {
			atomic.AddInt32(&calls, 1)
			started <- struct{}{}
			<-release
			return []models.Task{{ID: "t1"}}, nil
		},
	}
	s := New(f, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.FetchTasks(context.Background(), "p1")
	}()
	<-started
	if !s.Loading() {
		t.Error("Expected loading while a request is in flight")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.FetchTasks(context.Background(), "p1")
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("Expected same-key fetches to share one request, got %d", n)
	}
	if s.Loading() {
		t.Error("Expected loading to clear")
	}
}

func TestPrefetchTasks_SkipsLoadedAndRespectsLimit(t *testing.T) {
	var mu sync.Mutex
	fetched := map[string]int{}
	f := &fakeAPI{
		projects: func(context.Context, api.ProjectFilter) ([]models.Project, error) {
			return []models.Project{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}, {ID: "p4"}}, nil
		},
		tasks: func(_ context.Context, id string) ([]models.Task, error) {
			mu.Lock()
			fetched[id]++
			mu.Unlock()
			return []models.Task{{ID: id + "-t"}}, nil
		},
	}
	s := New(f, nil)
	ctx := context.Background()
	s.FetchProjects(ctx, api.ProjectFilter{})
	s.FetchTasks(ctx, "p1")

	if err := s.PrefetchTasks(ctx, 3); err != nil {
		t.Fatalf("PrefetchTasks failed: %v", err)
	}
	if fetched["p1"] != 1 || fetched["p2"] != 1 || fetched["p3"] != 1 || fetched["p4"] != 0 {
		t.Errorf("Unexpected fetch counts: %v", fetched)
	}
}

func TestReset(t *testing.T) {
	f := &fakeAPI{
		tasks: func(context.Context, string) ([]models.Task, error) { return []models.Task{{ID: "t"}}, nil },
	}
	s := New(f, nil)
	s.FetchTasks(context.Background(), "p1")
	s.Reset()

	st := s.State()
	if len(st.Tasks) != 0 || len(st.Projects) != 0 || st.Dashboard != nil {
		t.Errorf("Expected empty state after reset, got %+v", st)
	}
}

func TestReset_DropsInFlightResults(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	failing := make(chan struct{})
	f := &fakeAPI{
		projects: func(context.Context, api.ProjectFilter) ([]models.Project, error) {
			started <- struct{}{}
			<-release
			return []models.Project{{ID: "previous-user"}}, nil
		},
		tasks: func(context.Context, string) ([]models.Task, error) {
			started <- struct{}{}
			<-failing
			return nil, errors.New("boom")
		},
	}
	s := New(f, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.FetchProjects(context.Background(), api.ProjectFilter{})
	}()
	go func() {
		defer wg.Done()
		s.FetchTasks(context.Background(), "p1")
	}()
	<-started
	<-started

	s.Reset()
	close(release)
	close(failing)
	wg.Wait()

	if p := s.Projects(); len(p) != 0 {
		t.Errorf("Expected no projects after reset, got %+v", p)
	}
	if msg := s.Error(); msg != "" {
		t.Errorf("Expected no error after reset, got %q", msg)
	}
	if s.Loading() {
		t.Error("Expected loading to clear")
	}
}

func TestReset_NewFetchDoesNotJoinStaleFlight(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	f := &fakeAPI{
		projects: func(context.Context, api.ProjectFilter) ([]models.Project, error) {
			n := atomic.AddInt32(&calls, 1)
			if n == 1 {
				started <- struct{}{}
				<-release
				return []models.Project{{ID: "previous-user"}}, nil
			}
			return []models.Project{{ID: "next-user"}}, nil
		},
	}
	s := New(f, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.FetchProjects(context.Background(), api.ProjectFilter{})
	}()
	<-started

	s.Reset()
	if err := s.FetchProjects(context.Background(), api.ProjectFilter{}); err != nil {
		t.Fatalf("FetchProjects failed: %v", err)
	}
	close(release)
	<-done

	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("Expected a fresh request after reset, got %d", n)
	}
	if p := s.Projects(); len(p) != 1 || p[0].ID != "next-user" {
		t.Errorf("Expected only the new projects, got %+v", p)
	}
}
