package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sogrim/sogrim/client"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/registration"
	"github.com/sogrim/sogrim/core/user"
)

// API is the part of the backend the stepper calls directly. Polling and finalizing run outside the model.
type API interface {
	GetCatalogs(ctx context.Context) ([]catalog.DisplayCatalog, error)
	UpdateCatalog(ctx context.Context, catalogID string) (user.User, error)
	AddCourses(ctx context.Context, statuses []course.Status) (user.User, error)
	UpdateSettings(ctx context.Context, settings user.Settings) (user.User, error)
}

type (
	// UserMsg carries a Refresher result.
	UserMsg client.Update

	// FinalizedMsg carries the outcome of a degree status computation.
	FinalizedMsg struct {
		User user.User
		Err  error
	}

	catalogsMsg struct {
		catalogs []catalog.DisplayCatalog
		err      error
	}

	settingsMsg struct {
		user user.User
		err  error
	}

	savedMsg struct {
		dialog registration.Dialog
		user   user.User
		err    error
		notice string
	}
)

// Model is the interactive registration stepper.
type Model struct {
	ctx       context.Context
	api       API
	stepper   *registration.Stepper
	finalizer *registration.Finalizer
	refetch   func()

	usr      *user.User
	catalogs []catalog.DisplayCatalog
	cursor   int
	input    textinput.Model
	spinner  spinner.Model
	styles   Styles

	busy    bool
	notice  string
	err     error
	expired bool
}

func NewModel(ctx context.Context, api API, stepper *registration.Stepper, finalizer *registration.Finalizer, refetch func()) Model {
	in := textinput.New()
	in.Placeholder = "path/to/courses.yaml or gilion.txt"
	in.CharLimit = 256
	in.Width = 48

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if refetch == nil {
		refetch = func() {}
	}
	return Model{
		ctx:       ctx,
		api:       api,
		stepper:   stepper,
		finalizer: finalizer,
		refetch:   refetch,
		input:     in,
		spinner:   sp,
		styles:    NewStyles(LightTheme()),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Expired reports whether the session ended because the token was rejected.
func (m Model) Expired() bool {
	return m.expired
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case UserMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.setUser(msg.User)
		return m, nil

	case FinalizedMsg:
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.setUser(msg.User)
		m.stepper.Refresh(msg.User)
		m.notice = "Degree status updated."
		return m, nil

	case catalogsMsg:
		m.busy = false
		if msg.err != nil {
			m.stepper.Close(registration.DialogCatalog)
			return m.fail(msg.err)
		}
		m.catalogs = msg.catalogs
		m.cursor = 0
		return m, nil

	case savedMsg:
		m.busy = false
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.stepper.Close(msg.dialog)
		m.setUser(msg.user)
		m.stepper.Refresh(msg.user)
		m.notice = msg.notice
		m.refetch()
		return m, nil

	case settingsMsg:
		m.busy = false
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.setUser(msg.user)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) setUser(usr user.User) {
	m.usr = &usr
	m.err = nil
	if m.styles.Theme.IsDark != usr.Settings.DarkMode {
		m.styles = NewStyles(ThemeFor(usr.Settings.DarkMode))
	}
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	if client.IsUnauthorized(err) {
		m.expired = true
		return m, tea.Quit
	}
	m.err = err
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch {
	case m.stepper.IsOpen(registration.DialogCatalog):
		return m.catalogDialogKey(msg)
	case m.stepper.IsOpen(registration.DialogCourses):
		return m.coursesDialogKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter", " ":
		return m.press()
	case "b", "left":
		m.stepper.Back()
	case "r":
		m.refetch()
	case "d":
		if m.usr == nil || m.busy {
			return m, nil
		}
		m.busy = true
		settings := user.Settings{DarkMode: !m.usr.Settings.DarkMode}
		return m, func() tea.Msg {
			usr, err := m.api.UpdateSettings(m.ctx, settings)
			return settingsMsg{user: usr, err: err}
		}
	}
	return m, nil
}

func (m Model) press() (tea.Model, tea.Cmd) {
	m.notice, m.err = "", nil
	switch m.stepper.Press() {
	case registration.ActionOpenCatalogDialog:
		m.busy = true
		m.catalogs = nil
		return m, m.fetchCatalogs()
	case registration.ActionOpenCoursesDialog:
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case registration.ActionFinalize:
		if !m.finalizer.Trigger() {
			m.notice = "Already computing…"
		}
	}
	return m, nil
}

func (m Model) catalogDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.stepper.Close(registration.DialogCatalog)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.catalogs)-1 {
			m.cursor++
		}
	case "enter":
		if m.busy || len(m.catalogs) == 0 {
			return m, nil
		}
		m.busy = true
		cat := m.catalogs[m.cursor]
		return m, m.save(registration.DialogCatalog, fmt.Sprintf("Selected %s.", cat.Name), func(ctx context.Context) (user.User, error) {
			return m.api.UpdateCatalog(ctx, cat.ID)
		})
	}
	return m, nil
}

func (m Model) coursesDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.stepper.Close(registration.DialogCourses)
		return m, nil
	case tea.KeyEnter:
		if m.busy {
			return m, nil
		}
		statuses, err := LoadCourses(strings.TrimSpace(m.input.Value()))
		if err != nil {
			m.err = err
			return m, nil
		}
		m.busy = true
		m.input.Blur()
		return m, m.save(registration.DialogCourses, fmt.Sprintf("Imported %d courses.", len(statuses)), func(ctx context.Context) (user.User, error) {
			return m.api.AddCourses(ctx, statuses)
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) fetchCatalogs() tea.Cmd {
	return func() tea.Msg {
		cats, err := m.api.GetCatalogs(m.ctx)
		return catalogsMsg{catalogs: cats, err: err}
	}
}

func (m Model) save(d registration.Dialog, notice string, call func(ctx context.Context) (user.User, error)) tea.Cmd {
	return func() tea.Msg {
		usr, err := call(m.ctx)
		return savedMsg{dialog: d, user: usr, err: err, notice: notice}
	}
}

var stepTitles = []string{"Select catalog", "Import courses", "Finalize"}

func (m Model) View() string {
	var b strings.Builder
	s := m.styles

	current := m.stepper.Step()
	steps := make([]string, len(stepTitles))
	for i, title := range stepTitles {
		label := fmt.Sprintf("%d %s", i+1, title)
		switch {
		case registration.Step(i) == current:
			steps[i] = s.StepActive.Render(label)
		case registration.Step(i) < current:
			steps[i] = s.StepDone.Render("✓ " + label)
		default:
			steps[i] = s.StepTodo.Render(label)
		}
	}
	b.WriteString(strings.Join(steps, s.Muted.Render(" › ")))
	b.WriteString("\n\n")

	switch {
	case m.stepper.IsOpen(registration.DialogCatalog):
		b.WriteString(s.Dialog.Render(m.catalogDialogView()))
	case m.stepper.IsOpen(registration.DialogCourses):
		b.WriteString(s.Dialog.Render("Courses file (YAML or copied grade sheet)\n\n" + m.input.View()))
	case m.usr == nil:
		b.WriteString(m.spinner.View() + " Loading…")
	default:
		b.WriteString(RenderStatus(*m.usr, s))
	}
	b.WriteString("\n")

	if m.busy || m.finalizer.Pending() {
		b.WriteString(m.spinner.View() + " Working…\n")
	}
	if m.notice != "" {
		b.WriteString(s.Success.Render(m.notice) + "\n")
	}
	if m.err != nil {
		b.WriteString(s.Error.Render("Error: "+m.err.Error()) + "\n")
	} else if err := m.finalizer.Err(); err != nil {
		b.WriteString(s.Error.Render("Computation failed: "+err.Error()) + "\n")
	}

	b.WriteString(s.Footer.Render(m.help()))
	return b.String()
}

func (m Model) catalogDialogView() string {
	if m.busy && m.catalogs == nil {
		return m.spinner.View() + " Loading catalogs…"
	}
	if len(m.catalogs) == 0 {
		return "No catalogs available."
	}
	var b strings.Builder
	b.WriteString("Choose your catalog\n\n")
	for i, cat := range m.catalogs {
		label := fmt.Sprintf("%s (%s credits)", cat.Name, formatCredit(cat.TotalCredit))
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("› "+label) + "\n")
			continue
		}
		b.WriteString("  " + label + "\n")
	}
	return b.String()
}

func (m Model) help() string {
	switch {
	case m.stepper.IsOpen(registration.DialogCatalog):
		return "↑/↓ choose • enter select • esc cancel"
	case m.stepper.IsOpen(registration.DialogCourses):
		return "enter import • esc cancel"
	}
	action := registration.ActionFor(m.stepper.Step())
	return fmt.Sprintf("enter %s • b back • r refresh • d theme • q quit", action)
}
