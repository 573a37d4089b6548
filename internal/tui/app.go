// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/n3dash/internal/dashboard"
	"github.com/fentz26/n3dash/internal/models"
	"github.com/fentz26/n3dash/internal/notify"
	"github.com/fentz26/n3dash/internal/views"
)

type mode int

const (
	modeAuth mode = iota
	modeMain
	modeDetail
	modeCreate
)

const (
	tabOverview = iota
	tabBoard
	tabMine
	tabTimeline
	tabTable
)

var tabNames = []string{"Overview", "Board", "My work", "Timeline", "Table"}

// Messages
type (
	refreshedMsg   struct{ err error }
	authDoneMsg    struct{ err error }
	createdMsg     struct{ err error }
	departmentsMsg struct{ err error }
	tasksLoadedMsg struct{ err error }
	subtasksMsg    struct {
		taskID string
		err    error
	}
	toastMsg        notify.Event
	toastsClosedMsg struct{}
)

// App is the main TUI application model.
type App struct {
	ctx    context.Context
	dash   *dashboard.Dashboard
	center *notify.Center
	events <-chan notify.Event
	stop   func()

	input       textinput.Model
	spinner     spinner.Model
	viewport    viewport.Model
	suggestions *Suggestions
	auth        *authForm
	create      *createForm

	mode     mode
	tab      int
	selected string
	detail   *taskDetail
	busy     int
	message  string
	formErr  string
	width    int
	height   int
}

// New creates the dashboard UI over dash. Toasts are read from center,
// which the stores behind dash publish to.
func New(ctx context.Context, dash *dashboard.Dashboard, center *notify.Center) *App {
	ti := textinput.New()
	ti.Placeholder = "Type / for commands, @ to jump to a project or task"
	ti.CharLimit = 256
	ti.Width = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	events, stop := center.Subscribe()

	a := &App{
		ctx:         ctx,
		dash:        dash,
		center:      center,
		events:      events,
		stop:        stop,
		input:       ti,
		spinner:     sp,
		viewport:    viewport.New(80, 20),
		suggestions: NewSuggestions(),
		auth:        newAuthForm(),
		mode:        modeAuth,
	}
	if dash.Session.Authenticated() {
		a.mode = modeMain
		a.input.Focus()
	}
	return a
}

// Run starts the TUI application.
func (a *App) Run() error {
	defer a.stop()
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, a.spinner.Tick, a.waitForToast()}
	if a.mode == modeMain {
		cmds = append(cmds, a.refresh(), a.loadDepartments())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = max(msg.Width-6, 20)
		a.viewport.Width = msg.Width
		a.viewport.Height = a.contentHeight()

	case tea.KeyMsg:
		var cmd tea.Cmd
		switch a.mode {
		case modeAuth:
			cmd = a.updateAuth(msg)
		case modeCreate:
			cmd = a.updateCreate(msg)
		default:
			cmd = a.updateMain(msg)
		}
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case toastMsg:
		cmds = append(cmds, a.waitForToast())

	case toastsClosedMsg:

	case refreshedMsg:
		a.busy--
		if errors.Is(msg.err, dashboard.ErrNotAuthenticated) {
			a.toAuth()
		}
		a.clampSelection()

	case departmentsMsg:
		a.busy--

	case tasksLoadedMsg:
		a.busy--
		a.clampSelection()

	case authDoneMsg:
		a.busy--
		if msg.err != nil {
			a.formErr = a.dash.Session.State().Error
			break
		}
		a.formErr = ""
		a.auth.reset()
		a.mode = modeMain
		a.input.Focus()
		cmds = append(cmds, a.refresh(), a.loadDepartments())

	case createdMsg:
		a.busy--
		if msg.err == nil {
			a.create = nil
			a.mode = modeMain
			a.input.Focus()
		}

	case subtasksMsg:
		a.busy--
		if a.detail != nil && a.detail.task.ID == msg.taskID {
			subs, ok := a.dash.WorkItems.Subtasks(msg.taskID)
			a.detail.subtasks = subs
			a.detail.loaded = ok || msg.err != nil
		}
	}

	a.syncViewport()
	return a, tea.Batch(cmds...)
}

func (a *App) updateAuth(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "esc":
		return tea.Quit
	case "ctrl+t":
		a.auth.toggle()
		a.formErr = ""
	case "tab", "down":
		a.auth.next()
	case "shift+tab", "up":
		a.auth.prev()
	case "left", "right":
		if a.auth.current() == fieldDepartment {
			if msg.String() == "left" {
				a.auth.cycleDept(-1)
			} else {
				a.auth.cycleDept(1)
			}
			return nil
		}
		return a.auth.update(msg)
	case "enter":
		if m := a.auth.missing(); m != "" {
			a.formErr = m
			return nil
		}
		a.formErr = ""
		return a.submitAuth()
	default:
		return a.auth.update(msg)
	}
	return nil
}

func (a *App) updateCreate(msg tea.KeyMsg) tea.Cmd {
	depts := a.dash.Reference.Departments()
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		a.create = nil
		a.mode = modeMain
		a.input.Focus()
	case "tab", "down":
		a.create.next()
	case "shift+tab", "up":
		a.create.prev()
	case "left", "right":
		if a.create.focus == 2 {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			a.create.cycleDept(delta, len(depts))
			return nil
		}
		return a.create.update(msg)
	case "enter":
		in, missing := a.create.input(depts)
		if missing != "" {
			a.formErr = missing
			return nil
		}
		a.formErr = ""
		return a.createProject(in)
	default:
		return a.create.update(msg)
	}
	return nil
}

func (a *App) updateMain(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit

	case "esc":
		switch {
		case a.suggestions.IsVisible() || a.input.Value() != "":
			a.input.SetValue("")
			a.suggestions.Update("")
		case a.mode == modeDetail:
			a.detail = nil
			a.mode = modeMain
		}
		return nil

	case "tab":
		if a.suggestions.IsVisible() {
			a.input.SetValue(a.suggestions.Completion())
			a.input.CursorEnd()
			a.suggestions.Update(a.input.Value())
			return nil
		}
		if a.mode == modeMain {
			a.tab = (a.tab + 1) % len(tabNames)
			a.clampSelection()
		}
		return nil

	case "shift+tab":
		if a.suggestions.IsVisible() {
			a.suggestions.Prev()
			return nil
		}
		if a.mode == modeMain {
			a.tab = (a.tab - 1 + len(tabNames)) % len(tabNames)
			a.clampSelection()
		}
		return nil

	case "up", "down":
		if a.suggestions.IsVisible() {
			if msg.String() == "up" {
				a.suggestions.Prev()
			} else {
				a.suggestions.Next()
			}
			return nil
		}
		if a.mode == modeDetail {
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			return cmd
		}
		if msg.String() == "up" {
			a.moveSelection(-1)
		} else {
			a.moveSelection(1)
		}
		return nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return cmd

	case "ctrl+r":
		return a.refresh()

	case "ctrl+n":
		return a.openCreate("")

	case "enter":
		if a.suggestions.IsVisible() && !strings.Contains(a.input.Value(), " ") {
			a.input.SetValue(a.suggestions.Completion())
		}
		value := strings.TrimSpace(a.input.Value())
		a.input.SetValue("")
		a.suggestions.Update("")
		if value != "" {
			return a.executeCommand(value)
		}
		if a.mode == modeMain && a.selected != "" {
			return a.openTask(a.selected)
		}
		return nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	a.suggestions.Update(a.input.Value())
	if strings.HasPrefix(a.input.Value(), "@") {
		a.suggestions.SetReferences(a.projectRefs(), a.taskRefs())
	}
	return cmd
}

func (a *App) executeCommand(input string) tea.Cmd {
	parts := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(parts) == 0 {
		return nil
	}
	cmd, args := parts[0], parts[1:]
	a.message = ""

	switch cmd {
	case "refresh", "r":
		return a.refresh()

	case "new":
		return a.openCreate(strings.Join(args, " "))

	case "open":
		if len(args) < 1 {
			a.message = "Usage: /open <task-id>"
			return nil
		}
		return a.openTask(args[0])

	case "tasks":
		if len(args) < 1 {
			a.message = "Usage: /tasks <project-id>"
			return nil
		}
		return a.fetchTasks(args[0])

	case "departments":
		return a.reloadDepartments()

	case "whoami":
		if u := a.dash.Session.User(); u != nil {
			a.message = fmt.Sprintf("%s (%s) · %s", u.Nickname, u.UserID, u.Department)
		}
		return nil

	case "logout":
		a.dash.Logout()
		a.toAuth()
		return nil

	case "quit", "exit", "q":
		return tea.Quit

	case "help":
		a.message = "Commands: /refresh /new <title> /open <id> /tasks <project> /departments /whoami /logout /quit"
		return nil

	default:
		a.message = fmt.Sprintf("Error: unknown command %q. Type /help", cmd)
		return nil
	}
}

func (a *App) toAuth() {
	a.mode = modeAuth
	a.detail = nil
	a.create = nil
	a.selected = ""
	a.input.Blur()
	a.input.SetValue("")
	a.suggestions.Update("")
}

func (a *App) openCreate(title string) tea.Cmd {
	a.create = newCreateForm(title)
	a.mode = modeCreate
	a.formErr = ""
	a.input.Blur()
	if len(a.dash.Reference.Departments()) == 0 {
		return a.loadDepartments()
	}
	return nil
}

// openTask shows the task whose id equals or starts with id.
func (a *App) openTask(id string) tea.Cmd {
	var found *models.Task
	for _, t := range a.dash.AllTasks() {
		if t.ID == id {
			t := t
			found = &t
			break
		}
		if found == nil && strings.HasPrefix(t.ID, id) {
			t := t
			found = &t
		}
	}
	if found == nil {
		a.message = fmt.Sprintf("Error: no loaded task matches %q", id)
		return nil
	}

	d := &taskDetail{task: *found}
	for _, p := range a.dash.WorkItems.Projects() {
		if p.ID == found.ProjectID {
			d.project = p.Title
			break
		}
	}
	d.subtasks, d.loaded = a.dash.WorkItems.Subtasks(found.ID)
	a.detail = d
	a.selected = found.ID
	a.mode = modeDetail
	a.viewport.GotoTop()
	return a.fetchSubtasks(found.ID)
}

// selectable returns the tasks the cursor moves over on the current tab.
func (a *App) selectable() []models.Task {
	switch a.tab {
	case tabOverview:
		return a.dash.Today()
	case tabBoard:
		var out []models.Task
		for _, col := range a.dash.Board() {
			out = append(out, col.Tasks...)
		}
		return out
	case tabMine:
		return a.dash.MyWork()
	case tabTable:
		return a.dash.AllTasks()
	default:
		return nil
	}
}

func (a *App) moveSelection(delta int) {
	tasks := a.selectable()
	if len(tasks) == 0 {
		a.selected = ""
		return
	}
	idx := -1
	for i, t := range tasks {
		if t.ID == a.selected {
			idx = i
			break
		}
	}
	switch {
	case idx < 0:
		idx = 0
	default:
		idx = (idx + delta + len(tasks)) % len(tasks)
	}
	a.selected = tasks[idx].ID
}

// clampSelection keeps the cursor on a task visible in the current tab.
func (a *App) clampSelection() {
	tasks := a.selectable()
	for _, t := range tasks {
		if t.ID == a.selected {
			return
		}
	}
	a.selected = ""
	if len(tasks) > 0 {
		a.selected = tasks[0].ID
	}
}

func (a *App) projectRefs() []SuggestionItem {
	projects := a.dash.WorkItems.Projects()
	out := make([]SuggestionItem, 0, len(projects))
	for _, p := range projects {
		out = append(out, SuggestionItem{Text: p.ID, Description: p.Title, Type: "project"})
	}
	return out
}

func (a *App) taskRefs() []SuggestionItem {
	tasks := a.dash.AllTasks()
	out := make([]SuggestionItem, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, SuggestionItem{Text: t.ID, Description: t.Title, Type: "task"})
	}
	return out
}

// Commands

func (a *App) refresh() tea.Cmd {
	a.busy++
	return func() tea.Msg {
		return refreshedMsg{a.dash.Refresh(a.ctx)}
	}
}

func (a *App) loadDepartments() tea.Cmd {
	a.busy++
	return func() tea.Msg {
		return departmentsMsg{a.dash.LoadDepartments(a.ctx)}
	}
}

func (a *App) reloadDepartments() tea.Cmd {
	a.busy++
	return func() tea.Msg {
		return departmentsMsg{a.dash.ReloadDepartments(a.ctx)}
	}
}

func (a *App) fetchTasks(projectID string) tea.Cmd {
	a.busy++
	return func() tea.Msg {
		return tasksLoadedMsg{a.dash.WorkItems.FetchTasks(a.ctx, projectID)}
	}
}

func (a *App) fetchSubtasks(taskID string) tea.Cmd {
	a.busy++
	return func() tea.Msg {
		return subtasksMsg{taskID: taskID, err: a.dash.WorkItems.FetchSubtasks(a.ctx, taskID)}
	}
}

func (a *App) submitAuth() tea.Cmd {
	id := a.auth.value(fieldID)
	password := a.auth.inputs[fieldPassword].Value()
	nickname := a.auth.value(fieldNickname)
	dept := a.auth.department()
	signup := a.auth.mode == authSignup

	a.busy++
	return func() tea.Msg {
		sess := a.dash.Session
		if signup {
			return authDoneMsg{sess.Signup(a.ctx, id, nickname, password, dept)}
		}
		return authDoneMsg{sess.Login(a.ctx, id, password)}
	}
}

func (a *App) createProject(in models.ProjectInput) tea.Cmd {
	a.busy++
	return func() tea.Msg {
		_, err := a.dash.WorkItems.CreateProject(a.ctx, in)
		return createdMsg{err}
	}
}

// waitForToast blocks on the next queue change so the view redraws when a
// toast appears or expires.
func (a *App) waitForToast() tea.Cmd {
	events := a.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return toastsClosedMsg{}
		}
		return toastMsg(ev)
	}
}

// View

func (a *App) contentHeight() int {
	return max(a.height-9, 5)
}

func (a *App) syncViewport() {
	a.viewport.SetContent(a.renderContent())
}

func (a *App) renderContent() string {
	width := max(a.width, 60)
	switch a.mode {
	case modeDetail:
		if a.detail != nil {
			return renderTaskDetail(*a.detail, width)
		}
	case modeMain:
		return a.renderTab(width)
	}
	return ""
}

func (a *App) renderTab(width int) string {
	switch a.tab {
	case tabOverview:
		summary := a.dash.WorkItems.Dashboard()
		acts := a.dash.WorkItems.State().Activities
		return strings.Join([]string{
			renderCards(a.dash.Cards(), width),
			renderProjects(a.dash.WorkItems.Projects(), width),
			renderTaskList("Due today", a.dash.Today(), a.selected, width),
			renderSeries("Project status", views.ProjectStatusSeries(summary), width),
			renderSeries("Task status", views.TaskStatusSeries(summary), width),
			renderSeries("Department workload", views.DepartmentWorkloadSeries(summary), width),
			renderActivities(acts),
		}, "\n\n")
	case tabBoard:
		return renderBoard(a.dash.Board(), a.selected, width)
	case tabMine:
		return renderTaskList("My work", a.dash.MyWork(), a.selected, width)
	case tabTimeline:
		return renderGantt(a.dash.Gantt(), width) + "\n\n" + renderCalendar(a.dash.Calendar())
	case tabTable:
		return renderTable(a.dash.Table(), a.selected, width)
	}
	return ""
}

func (a *App) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if i == a.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (a *App) renderToasts() string {
	toasts := a.center.Toasts()
	if len(toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(toasts))
	for _, t := range toasts {
		lines = append(lines, toastStyle(t.Kind).Render(t.Message))
	}
	return strings.Join(lines, "\n")
}

func (a *App) loading() bool {
	return a.busy > 0 || a.dash.WorkItems.Loading()
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	userStatus := offlineStyle.Render("○ not signed in")
	if u := a.dash.Session.User(); u != nil {
		userStatus = onlineStyle.Render("● " + u.Nickname)
		userStatus += "  " + mutedStyle.Render(string(u.Department))
	}
	header := titleStyle.Render("N3 Dashboard") + "  " + userStatus
	if a.loading() {
		header += "  " + a.spinner.View() + mutedStyle.Render(" loading")
	}
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", max(a.width, 1)) + "\n")

	switch a.mode {
	case modeAuth:
		b.WriteString(a.auth.view(a.width))
		b.WriteString("\n")
		if a.formErr != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(errorColor).Render(a.formErr) + "\n")
		}
		if t := a.renderToasts(); t != "" {
			b.WriteString(t + "\n")
		}
		b.WriteString(statusBarStyle.Width(a.width).Render(" " + a.dash.Session.State().Error))
		return b.String()

	case modeCreate:
		b.WriteString(a.create.view(a.width, a.dash.Reference.Departments()))
		b.WriteString("\n")
		if a.formErr != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(errorColor).Render(a.formErr) + "\n")
		}
		if errMsg := a.dash.Reference.State().Error; errMsg != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(errorColor).Render(errMsg) + "\n")
		}
		if t := a.renderToasts(); t != "" {
			b.WriteString(t + "\n")
		}
		b.WriteString(statusBarStyle.Width(a.width).Render(" Tab:next | ←→:department | Enter:create | Esc:cancel"))
		return b.String()

	case modeDetail:
		b.WriteString(mutedStyle.Render(" Task detail") + "\n")
	default:
		b.WriteString(a.renderTabs() + "\n")
	}

	b.WriteString(a.viewport.View())

	if t := a.renderToasts(); t != "" {
		b.WriteString("\n" + t)
	}

	// Message bar
	switch {
	case a.message != "":
		msgStyle := lipgloss.NewStyle().Foreground(successColor)
		if strings.HasPrefix(a.message, "Error") {
			msgStyle = lipgloss.NewStyle().Foreground(errorColor)
		}
		b.WriteString("\n" + msgStyle.Render(a.message))
	case a.dash.WorkItems.Error() != "":
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(errorColor).Render(a.dash.WorkItems.Error()))
	default:
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(inputBoxStyle.Render(a.input.View()))

	if a.suggestions.IsVisible() {
		b.WriteString("\n")
		b.WriteString(a.suggestions.Render(a.width))
	}
	b.WriteString("\n")

	var status string
	switch a.mode {
	case modeDetail:
		status = " ↑↓:scroll | Esc:back | Ctrl+R:refresh | Ctrl+C:quit"
	default:
		status = fmt.Sprintf(" Projects: %d | Tab:switch | ↑↓:select | Enter:open | Ctrl+N:new project | Ctrl+R:refresh | Ctrl+C:quit",
			len(a.dash.WorkItems.Projects()))
	}
	b.WriteString(statusBarStyle.Width(a.width).Render(status))

	return b.String()
}
