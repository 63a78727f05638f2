package registration

import "github.com/sogrim/sogrim/core/user"

// Step is the student's registration progress.
type Step int

const (
	StepSelectCatalog Step = iota
	StepImportCourses
	StepFinalize
)

func (s Step) String() string {
	switch s {
	case StepSelectCatalog:
		return "select catalog"
	case StepImportCourses:
		return "import courses"
	case StepFinalize:
		return "finalize"
	default:
		return "unknown"
	}
}

// Derive computes the step from the user record. It is never stored.
func Derive(u user.User) Step {
	switch {
	case !u.HasCatalog():
		return StepSelectCatalog
	case !u.HasCourses():
		return StepImportCourses
	default:
		return StepFinalize
	}
}

// Action is what the primary button does at a step.
type Action int

const (
	ActionNone Action = iota
	ActionOpenCatalogDialog
	ActionOpenCoursesDialog
	ActionFinalize
)

func (a Action) String() string {
	switch a {
	case ActionOpenCatalogDialog:
		return "open catalog dialog"
	case ActionOpenCoursesDialog:
		return "open courses dialog"
	case ActionFinalize:
		return "finalize"
	default:
		return "none"
	}
}

func ActionFor(s Step) Action {
	switch s {
	case StepSelectCatalog:
		return ActionOpenCatalogDialog
	case StepImportCourses:
		return ActionOpenCoursesDialog
	case StepFinalize:
		return ActionFinalize
	default:
		return ActionNone
	}
}
