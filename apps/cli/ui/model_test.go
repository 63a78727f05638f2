package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sogrim/sogrim/client"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/registration"
	"github.com/sogrim/sogrim/core/user"
)

type fakeAPI struct {
	usr      user.User
	catalogs []catalog.DisplayCatalog
	err      error
	imported []course.Status
}

func (f *fakeAPI) GetCatalogs(context.Context) ([]catalog.DisplayCatalog, error) {
	return f.catalogs, f.err
}

func (f *fakeAPI) UpdateCatalog(_ context.Context, id string) (user.User, error) {
	if f.err != nil {
		return user.User{}, f.err
	}
	for _, cat := range f.catalogs {
		if cat.ID == id {
			cat := cat
			f.usr.Details.Catalog = &cat
		}
	}
	return f.usr, nil
}

func (f *fakeAPI) AddCourses(_ context.Context, statuses []course.Status) (user.User, error) {
	if f.err != nil {
		return user.User{}, f.err
	}
	f.imported = statuses
	f.usr.Details.DegreeStatus.CourseStatuses = statuses
	return f.usr, nil
}

func (f *fakeAPI) UpdateSettings(_ context.Context, settings user.Settings) (user.User, error) {
	if f.err != nil {
		return user.User{}, f.err
	}
	f.usr.Settings = settings
	return f.usr, nil
}

type harness struct {
	api       *fakeAPI
	stepper   *registration.Stepper
	finalizer *registration.Finalizer
	refetches int
	model     Model
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		api: &fakeAPI{catalogs: []catalog.DisplayCatalog{
			{ID: "ee-4", Name: "Electrical Engineering", TotalCredit: 155},
			{ID: "cs-3", Name: "Computer Science 3 years", TotalCredit: 10},
		}},
		stepper:   registration.NewStepper(),
		finalizer: registration.NewFinalizer(),
	}
	h.model = NewModel(testContext(t), h.api, h.stepper, h.finalizer, func() { h.refetches++ })
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(Model)
	return cmd
}

// run executes cmd and feeds its message back, as the bubbletea runtime would.
func (h *harness) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	h.send(cmd())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func writeCourses(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "courses.yaml")
	data := `
- course: {id: "104031", name: Calculus 1M, credit: 5.5}
  semester: winter_1
  grade: 87
- course: {id: "234111", name: Introduction to Computer Science, credit: 3}
  grade: 55
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestModel_registrationFlow(t *testing.T) {
	h := newHarness(t)

	assert.Nil(t, h.send(UserMsg{User: h.api.usr}))
	assert.Contains(t, h.model.View(), "No catalog selected")
	assert.Contains(t, h.model.View(), "enter open catalog dialog")

	// select a catalog
	h.run(t, h.send(key("enter")))
	assert.True(t, h.stepper.IsOpen(registration.DialogCatalog))
	view := h.model.View()
	assert.Contains(t, view, "Choose your catalog")
	assert.Contains(t, view, "› Electrical Engineering")

	h.send(key("down"))
	assert.Contains(t, h.model.View(), "› Computer Science 3 years")
	h.run(t, h.send(key("enter")))
	assert.False(t, h.stepper.IsOpen(registration.DialogCatalog))
	assert.Equal(t, registration.StepImportCourses, h.stepper.Step())
	assert.Equal(t, 1, h.refetches)
	assert.Contains(t, h.model.View(), "Selected Computer Science 3 years.")

	// import courses
	h.send(key("enter"))
	assert.True(t, h.stepper.IsOpen(registration.DialogCourses))
	assert.Contains(t, h.model.View(), "Courses file (YAML or copied grade sheet)")
	h.send(key(writeCourses(t)))
	h.run(t, h.send(key("enter")))
	assert.False(t, h.stepper.IsOpen(registration.DialogCourses))
	assert.Equal(t, registration.StepFinalize, h.stepper.Step())
	assert.Equal(t, 2, h.refetches)
	require.Len(t, h.api.imported, 2)
	assert.Equal(t, "234111", h.api.imported[1].Course.ID)
	assert.Contains(t, h.model.View(), "Imported 2 courses.")

	// finalize
	assert.Nil(t, h.send(key("enter")))
	assert.True(t, h.finalizer.Pending())
	assert.Contains(t, h.model.View(), "Working")
	h.send(key("enter"))
	assert.Contains(t, h.model.View(), "Already computing")

	<-h.finalizer.Triggers()
	h.finalizer.Resolve(nil)
	h.send(FinalizedMsg{User: computedUserWithCourses()})
	view = h.model.View()
	assert.Contains(t, view, "Degree status updated.")
	assert.Contains(t, view, "Total credit: 7 of 10")
	assert.NotContains(t, view, "Working")
}

func TestModel_dialogFreezesStep(t *testing.T) {
	h := newHarness(t)
	h.send(key("enter"))
	require.True(t, h.stepper.IsOpen(registration.DialogCatalog))

	// a poll lands while the dialog is open
	fresh := computedUser()
	fresh.Details.DegreeStatus.CourseStatuses = []course.Status{{Course: course.Course{ID: "104031"}}}
	_, applied := h.stepper.Refresh(fresh)
	assert.False(t, applied)
	assert.Equal(t, registration.StepSelectCatalog, h.stepper.Step())

	h.send(key("esc"))
	assert.False(t, h.stepper.IsOpen(registration.DialogCatalog))
	assert.Equal(t, registration.StepFinalize, h.stepper.Step())
}

func TestModel_coursesFileErrors(t *testing.T) {
	h := newHarness(t)
	h.stepper.Refresh(user.User{Details: user.Details{Catalog: &catalog.DisplayCatalog{ID: "cs-3"}}})
	h.send(key("enter"))
	require.True(t, h.stepper.IsOpen(registration.DialogCourses))

	h.send(key(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Nil(t, h.send(key("enter")))
	assert.True(t, h.stepper.IsOpen(registration.DialogCourses))
	assert.Contains(t, h.model.View(), "reading courses file")
	assert.Nil(t, h.api.imported)
}

func TestModel_back(t *testing.T) {
	h := newHarness(t)
	h.stepper.Refresh(computedUserWithCourses())
	h.send(key("b"))
	assert.Equal(t, registration.StepImportCourses, h.stepper.Step())
	h.send(key("b"))
	h.send(key("b"))
	assert.Equal(t, registration.StepSelectCatalog, h.stepper.Step())
}

func TestModel_darkMode(t *testing.T) {
	h := newHarness(t)
	h.send(UserMsg{User: h.api.usr})
	assert.False(t, h.model.styles.Theme.IsDark)

	h.run(t, h.send(key("d")))
	assert.True(t, h.api.usr.Settings.DarkMode)
	assert.True(t, h.model.styles.Theme.IsDark)

	h.run(t, h.send(key("d")))
	assert.False(t, h.model.styles.Theme.IsDark)
}

func TestModel_errors(t *testing.T) {
	t.Run("request failure is shown", func(t *testing.T) {
		h := newHarness(t)
		h.api.err = errors.New("service unavailable")
		h.run(t, h.send(key("enter")))
		assert.False(t, h.stepper.IsOpen(registration.DialogCatalog))
		assert.Contains(t, h.model.View(), "Error: service unavailable")
		assert.False(t, h.model.Expired())
	})

	t.Run("unauthorized quits", func(t *testing.T) {
		h := newHarness(t)
		cmd := h.send(UserMsg{Err: errors.Wrap(client.ErrUnauthorized, "fetching user")})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.True(t, h.model.Expired())
	})

	t.Run("failed computation", func(t *testing.T) {
		h := newHarness(t)
		h.send(UserMsg{User: computedUserWithCourses()})
		h.stepper.Refresh(computedUserWithCourses())
		h.send(key("enter"))
		h.finalizer.Resolve(errors.New("catalog is broken"))
		assert.Contains(t, h.model.View(), "Computation failed: catalog is broken")
	})
}

func TestModel_quit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		h := newHarness(t)
		cmd := h.send(key(k))
		require.NotNil(t, cmd, k)
		assert.IsType(t, tea.QuitMsg{}, cmd(), k)
	}
}

func TestLoadCourses(t *testing.T) {
	statuses, err := LoadCourses(writeCourses(t))
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "Calculus 1M", statuses[0].Course.Name)
	assert.Equal(t, 5.5, statuses[0].Course.Credit)
	assert.Equal(t, "winter_1", statuses[0].Semester)
	require.NotNil(t, statuses[1].Grade)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("[]"), 0o600))
	_, err = LoadCourses(empty)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "has no courses"))
}

func TestLoadCoursesTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gilion.txt")
	data := course.TranscriptHeader + "\nחורף 2019-2020\n104031 חשבון דיפרנציאלי ואינטגרלי 1מ 5.5 87*\n" + course.TranscriptEnd + "\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	statuses, err := LoadCourses(path)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "חורף_1", statuses[0].Semester)
	assert.Equal(t, course.NumericGrade(87), statuses[0].Grade)

	require.NoError(t, os.WriteFile(path, []byte(course.TranscriptHeader+"\n"), 0o600))
	_, err = LoadCourses(path)
	assert.Error(t, err)
}

func computedUserWithCourses() user.User {
	u := computedUser()
	u.Details.DegreeStatus.CourseStatuses = []course.Status{{Course: course.Course{ID: "104031"}}}
	return u
}
