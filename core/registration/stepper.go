package registration

import (
	"sync"

	"github.com/sogrim/sogrim/core/user"
)

type Dialog int

const (
	DialogCatalog Dialog = iota
	DialogCourses
)

// Stepper holds the displayed step. While a dialog is open the step is frozen: refreshed user data is
// kept and applied once every dialog is closed.
type Stepper struct {
	mutex   sync.Mutex
	step    Step
	open    map[Dialog]bool
	pending *user.User
}

func NewStepper() *Stepper {
	return &Stepper{open: make(map[Dialog]bool)}
}

func (s *Stepper) Step() Step {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.step
}

// Refresh derives the step from fresh user data. It reports false when a dialog is open and the
// step was left unchanged.
func (s *Stepper) Refresh(u user.User) (Step, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.anyOpen() {
		s.pending = &u
		return s.step, false
	}
	s.pending = nil
	s.step = Derive(u)
	return s.step, true
}

func (s *Stepper) IsOpen(d Dialog) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.open[d]
}

func (s *Stepper) Open(d Dialog) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.open[d] = true
}

// Close closes the dialog and applies data received while dialogs were open.
func (s *Stepper) Close(d Dialog) Step {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.open, d)
	if !s.anyOpen() && s.pending != nil {
		s.step = Derive(*s.pending)
		s.pending = nil
	}
	return s.step
}

// Back moves the displayed step back by one, never below the first step.
func (s *Stepper) Back() Step {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.step > StepSelectCatalog {
		s.step--
	}
	return s.step
}

// Press returns the action of the current step and opens its dialog, if any.
func (s *Stepper) Press() Action {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	action := ActionFor(s.step)
	switch action {
	case ActionOpenCatalogDialog:
		s.open[DialogCatalog] = true
	case ActionOpenCoursesDialog:
		s.open[DialogCourses] = true
	}
	return action
}

func (s *Stepper) anyOpen() bool {
	for _, open := range s.open {
		if open {
			return true
		}
	}
	return false
}
