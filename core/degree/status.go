package degree

import (
	"fmt"
	"strconv"

	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
)

// Status is the evaluation of a student's courses against a catalog.
type Status struct {
	CourseStatuses         []course.Status `json:"course_statuses"`
	CourseBankRequirements []Requirement   `json:"course_bank_requirements"`
	OverflowMsgs           []string        `json:"overflow_msgs"`
	TotalCredit            float64         `json:"total_credit"`
}

// HasCourses reports whether any course was imported.
func (s Status) HasCourses() bool {
	return len(s.CourseStatuses) > 0
}

func (s *Status) reset() {
	s.CourseBankRequirements = []Requirement{}
	s.OverflowMsgs = []string{}
	s.TotalCredit = 0
	if s.CourseStatuses == nil {
		s.CourseStatuses = []course.Status{}
	}
}

// Requirement is the evaluated state of one course bank.
type Requirement struct {
	CourseBankName    string   `json:"course_bank_name"`
	BankRuleName      string   `json:"bank_rule_name"`
	CreditRequirement *float64 `json:"credit_requirement"`
	CourseRequirement *int     `json:"course_requirement"`
	CreditCompleted   float64  `json:"credit_completed"`
	CourseCompleted   int      `json:"course_completed"`
	Completed         bool     `json:"completed"`
	Message           string   `json:"message,omitempty"`
}

func (r Requirement) countsCourses() bool {
	return r.BankRuleName == string(catalog.RuleAccumulateCourses) ||
		(r.CreditRequirement == nil && r.CourseRequirement != nil)
}

// Progress returns the completion percentage in [0, 100].
func (r Requirement) Progress() float64 {
	var done, required float64
	switch {
	case r.countsCourses():
		if r.CourseRequirement == nil {
			return completedPercent(r.Completed)
		}
		done, required = float64(r.CourseCompleted), float64(*r.CourseRequirement)
	case r.CreditRequirement != nil:
		done, required = r.CreditCompleted, *r.CreditRequirement
	default:
		return completedPercent(r.Completed)
	}
	if required <= 0 {
		return 100
	}
	p := done / required * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

func completedPercent(completed bool) float64 {
	if completed {
		return 100
	}
	return 0
}

// Subtitle is the one-line progress summary of the bank.
func (r Requirement) Subtitle() string {
	if r.countsCourses() {
		req := 0
		if r.CourseRequirement != nil {
			req = *r.CourseRequirement
		}
		return fmt.Sprintf("completed %d of %d courses", r.CourseCompleted, req)
	}
	var req float64
	if r.CreditRequirement != nil {
		req = *r.CreditRequirement
	}
	return fmt.Sprintf("completed %s of %s credits", formatCredit(r.CreditCompleted), formatCredit(req))
}

func formatCredit(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}
