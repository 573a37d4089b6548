package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/n3dash/internal/models"
)

type authMode int

const (
	authLogin authMode = iota
	authSignup
)

// Input indices inside authForm.inputs.
const (
	fieldID = iota
	fieldPassword
	fieldNickname
)

// fieldDepartment marks the department picker in a field order.
const fieldDepartment = -1

// authForm collects credentials for login or signup.
type authForm struct {
	mode    authMode
	inputs  []textinput.Model
	focus   int
	deptIdx int
}

func newAuthForm() *authForm {
	id := textinput.New()
	id.Placeholder = "user id"
	id.CharLimit = 64

	pw := textinput.New()
	pw.Placeholder = "password"
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	pw.CharLimit = 128

	nick := textinput.New()
	nick.Placeholder = "nickname"
	nick.CharLimit = 64

	f := &authForm{
		inputs:  []textinput.Model{id, pw, nick},
		deptIdx: len(models.UserDepartments) - 1,
	}
	f.focusCurrent()
	return f
}

// order lists the fields shown for the current mode.
func (f *authForm) order() []int {
	if f.mode == authSignup {
		return []int{fieldID, fieldNickname, fieldPassword, fieldDepartment}
	}
	return []int{fieldID, fieldPassword}
}

func (f *authForm) current() int {
	return f.order()[f.focus]
}

func (f *authForm) focusCurrent() {
	cur := f.current()
	for i := range f.inputs {
		if i == cur {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

func (f *authForm) toggle() {
	if f.mode == authLogin {
		f.mode = authSignup
	} else {
		f.mode = authLogin
	}
	f.focus = 0
	f.focusCurrent()
}

func (f *authForm) next() {
	f.focus = (f.focus + 1) % len(f.order())
	f.focusCurrent()
}

func (f *authForm) prev() {
	n := len(f.order())
	f.focus = (f.focus - 1 + n) % n
	f.focusCurrent()
}

func (f *authForm) cycleDept(delta int) {
	n := len(models.UserDepartments)
	f.deptIdx = ((f.deptIdx+delta)%n + n) % n
}

func (f *authForm) department() models.UserDepartment {
	return models.UserDepartments[f.deptIdx]
}

func (f *authForm) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// missing returns a prompt for the first empty required field, or "".
func (f *authForm) missing() string {
	if f.value(fieldID) == "" {
		return "Enter your id."
	}
	if f.mode == authSignup && f.value(fieldNickname) == "" {
		return "Enter a nickname."
	}
	if f.inputs[fieldPassword].Value() == "" {
		return "Enter your password."
	}
	return ""
}

func (f *authForm) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.focus = 0
	f.focusCurrent()
}

func (f *authForm) update(msg tea.Msg) tea.Cmd {
	cur := f.current()
	if cur == fieldDepartment {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[cur], cmd = f.inputs[cur].Update(msg)
	return cmd
}

func (f *authForm) view(width int) string {
	var b strings.Builder

	title := "Sign in"
	if f.mode == authSignup {
		title = "Create account"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	labels := map[int]string{
		fieldID:         "ID",
		fieldPassword:   "Password",
		fieldNickname:   "Nickname",
		fieldDepartment: "Department",
	}
	for i, field := range f.order() {
		label := labels[field]
		marker := "  "
		if i == f.focus {
			marker = "▶ "
		}
		b.WriteString(marker + lipgloss.NewStyle().Width(12).Render(label))
		if field == fieldDepartment {
			b.WriteString("◀ " + string(f.department()) + " ▶")
		} else {
			b.WriteString(f.inputs[field].View())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch f.mode {
	case authSignup:
		b.WriteString(helpStyle.Render("ctrl+t sign in instead • ←/→ department • enter submit"))
	default:
		b.WriteString(helpStyle.Render("ctrl+t create an account • tab next field • enter submit"))
	}

	return panelStyle.Width(max(width-4, 40)).Render(b.String())
}

// createForm collects a new project.
type createForm struct {
	title   textinput.Model
	desc    textinput.Model
	focus   int // 0 title, 1 description, 2 department
	deptIdx int
}

func newCreateForm(title string) *createForm {
	t := textinput.New()
	t.Placeholder = "project title"
	t.CharLimit = 200
	t.SetValue(title)

	d := textinput.New()
	d.Placeholder = "description (optional)"
	d.CharLimit = 1000

	f := &createForm{title: t, desc: d}
	f.focusCurrent()
	return f
}

func (f *createForm) focusCurrent() {
	f.title.Blur()
	f.desc.Blur()
	switch f.focus {
	case 0:
		f.title.Focus()
	case 1:
		f.desc.Focus()
	}
}

func (f *createForm) next() {
	f.focus = (f.focus + 1) % 3
	f.focusCurrent()
}

func (f *createForm) prev() {
	f.focus = (f.focus + 2) % 3
	f.focusCurrent()
}

func (f *createForm) cycleDept(delta, n int) {
	if n == 0 {
		return
	}
	f.deptIdx = ((f.deptIdx+delta)%n + n) % n
}

// input builds the request, or returns a prompt when something is missing.
func (f *createForm) input(depts []models.Department) (models.ProjectInput, string) {
	title := strings.TrimSpace(f.title.Value())
	if title == "" {
		return models.ProjectInput{}, "Enter a project title."
	}
	if len(depts) == 0 {
		return models.ProjectInput{}, "No departments loaded. Try /departments."
	}
	in := models.ProjectInput{
		Title:        title,
		DepartmentID: depts[f.deptIdx%len(depts)].ID,
	}
	if desc := strings.TrimSpace(f.desc.Value()); desc != "" {
		in.Description = &desc
	}
	return in, ""
}

func (f *createForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case 0:
		f.title, cmd = f.title.Update(msg)
	case 1:
		f.desc, cmd = f.desc.Update(msg)
	}
	return cmd
}

func (f *createForm) view(width int, depts []models.Department) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New project"))
	b.WriteString("\n\n")

	dept := mutedStyle.Render("none loaded")
	if len(depts) > 0 {
		dept = "◀ " + depts[f.deptIdx%len(depts)].Name + " ▶"
	}
	rows := []struct {
		label string
		body  string
	}{
		{"Title", f.title.View()},
		{"Description", f.desc.View()},
		{"Department", dept},
	}
	for i, r := range rows {
		marker := "  "
		if i == f.focus {
			marker = "▶ "
		}
		b.WriteString(marker + lipgloss.NewStyle().Width(13).Render(r.label) + r.body + "\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab next field • ←/→ department • enter create • esc cancel"))

	return panelStyle.Width(max(width-4, 40)).Render(b.String())
}
