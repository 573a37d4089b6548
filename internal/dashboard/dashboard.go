// Package dashboard composes the stores for the UI: it gates data loading on
// the session and derives the task panels.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/fentz26/n3dash/internal/api"
	"github.com/fentz26/n3dash/internal/models"
	"github.com/fentz26/n3dash/internal/reference"
	"github.com/fentz26/n3dash/internal/session"
	"github.com/fentz26/n3dash/internal/views"
	"github.com/fentz26/n3dash/internal/workitems"
	"golang.org/x/sync/errgroup"
)

// ErrNotAuthenticated is returned when data is requested without a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// DefaultPrefetchProjects is how many projects get their tasks loaded on refresh.
const DefaultPrefetchProjects = 4

// Options tunes the derived panels.
type Options struct {
	PrefetchProjects int
	TodayLimit       int
	FallbackLimit    int
	Now              func() time.Time
	Logger           *slog.Logger
}

// Dashboard ties the session, work-item and reference stores together.
type Dashboard struct {
	Session   *session.Store
	WorkItems *workitems.Store
	Reference *reference.Store
	opts      Options
	log       *slog.Logger
}

// New builds a dashboard over the given stores.
func New(sess *session.Store, items *workitems.Store, ref *reference.Store, opts Options) *Dashboard {
	if opts.PrefetchProjects <= 0 {
		opts.PrefetchProjects = DefaultPrefetchProjects
	}
	if opts.TodayLimit <= 0 {
		opts.TodayLimit = views.DefaultTodayLimit
	}
	if opts.FallbackLimit <= 0 {
		opts.FallbackLimit = views.DefaultFallbackLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dashboard{
		Session:   sess,
		WorkItems: items,
		Reference: ref,
		opts:      opts,
		log:       log,
	}
}

// Refresh loads the dashboard aggregate and projects concurrently, then the
// tasks of the first projects. The two fetches are independent: a failed
// summary does not stop projects or their tasks from loading. It requires an
// active session.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if !d.Session.Authenticated() {
		return ErrNotAuthenticated
	}

	var (
		g                errgroup.Group
		dashErr, projErr error
	)
	g.Go(func() error {
		dashErr = d.WorkItems.FetchDashboard(ctx)
		return nil
	})
	g.Go(func() error {
		projErr = d.WorkItems.FetchProjects(ctx, api.ProjectFilter{})
		return nil
	})
	g.Wait()

	var prefetchErr error
	if projErr == nil {
		if err := d.WorkItems.PrefetchTasks(ctx, d.opts.PrefetchProjects); err != nil {
			prefetchErr = fmt.Errorf("prefetch tasks: %w", err)
		}
	}

	if err := errors.Join(dashErr, projErr, prefetchErr); err != nil {
		d.log.Warn("dashboard refresh failed", "error", err)
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

// LoadDepartments loads the department list for the current session.
func (d *Dashboard) LoadDepartments(ctx context.Context) error {
	if !d.Session.Authenticated() {
		return ErrNotAuthenticated
	}
	return d.Reference.FetchDepartments(ctx)
}

// ReloadDepartments refetches the department list from the server,
// bypassing the persisted cache.
func (d *Dashboard) ReloadDepartments(ctx context.Context) error {
	if !d.Session.Authenticated() {
		return ErrNotAuthenticated
	}
	return d.Reference.Reload(ctx)
}

// Logout ends the session and drops every cached collection.
func (d *Dashboard) Logout() {
	d.Session.Logout()
	d.WorkItems.Reset()
	d.Reference.Reset()
}

// AllTasks flattens the task cache following project order, then any
// remaining entries by key.
func (d *Dashboard) AllTasks() []models.Task {
	st := d.WorkItems.State()

	var all []models.Task
	seen := make(map[string]bool, len(st.Tasks))
	for _, p := range st.Projects {
		if tasks, ok := st.Tasks[p.ID]; ok && !seen[p.ID] {
			all = append(all, tasks...)
			seen[p.ID] = true
		}
	}

	var rest []string
	for id := range st.Tasks {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		all = append(all, st.Tasks[id]...)
	}
	return all
}

func (d *Dashboard) userID() string {
	if u := d.Session.User(); u != nil {
		return u.UserID
	}
	return ""
}

// Board returns the kanban columns of every loaded task.
func (d *Dashboard) Board() []views.Column {
	return views.Board(d.AllTasks())
}

// MyWork returns the signed-in user's tasks or the unassigned fallback.
func (d *Dashboard) MyWork() []models.Task {
	return views.MyWork(d.AllTasks(), d.userID(), d.opts.FallbackLimit)
}

// Today returns the open tasks due today for the signed-in user.
func (d *Dashboard) Today() []models.Task {
	return views.Today(d.AllTasks(), d.userID(), d.opts.Now(), d.opts.TodayLimit)
}

// Calendar returns the calendar events of every loaded task.
func (d *Dashboard) Calendar() []views.CalendarEvent {
	return views.Calendar(d.AllTasks())
}

// Gantt returns the gantt bars of every loaded task.
func (d *Dashboard) Gantt() []views.GanttBar {
	return views.Gantt(d.AllTasks())
}

// Table returns the table rows of every loaded task.
func (d *Dashboard) Table() []views.TableRow {
	return views.Table(d.AllTasks())
}

// Cards returns the summary cards of the last fetched aggregate.
func (d *Dashboard) Cards() []views.Card {
	return views.SummaryCards(d.WorkItems.Dashboard())
}
