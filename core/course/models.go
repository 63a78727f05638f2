package course

import (
	"math"
	"strconv"
	"strings"

	"github.com/sogrim/sogrim/core"
)

var ErrNotFound = core.NewNotFoundError("course")

// SportPrefix is the course number prefix of physical education courses.
const SportPrefix = "394"

type Course struct {
	ID     string  `json:"_id" yaml:"id" db:"id" validate:"required,course_number"`
	Name   string  `json:"name" yaml:"name" db:"name" validate:"required"`
	Credit float64 `json:"credit" yaml:"credit" db:"credit" validate:"gte=0"`
}

func (c Course) IsSport() bool {
	return strings.HasPrefix(c.ID, SportPrefix)
}

type State string

const (
	StateComplete    State = "complete"
	StateNotComplete State = "not-complete"
	StateInProgress  State = "in-progress"
	StateIrrelevant  State = "irrelevant"
)

// Status is a course as taken by a student.
type Status struct {
	Course                  Course `json:"course" yaml:"course"`
	State                   State  `json:"state,omitempty" yaml:"state,omitempty"`
	Semester                string `json:"semester,omitempty" yaml:"semester,omitempty"`
	Grade                   *Grade `json:"grade,omitempty" yaml:"grade,omitempty"`
	Type                    string `json:"type,omitempty" yaml:"type,omitempty"` // name of the course bank it was counted in
	SpecializationGroupName string `json:"specialization_group_name,omitempty" yaml:"specialization_group_name,omitempty"`
	AdditionalMsg           string `json:"additional_msg,omitempty" yaml:"additional_msg,omitempty"`
	Modified                bool   `json:"modified" yaml:"modified"`
}

func (s Status) Completed() bool {
	return s.State == StateComplete
}

func (s Status) Irrelevant() bool {
	return s.State == StateIrrelevant
}

// Credit returns the credit the course contributes. Exemptions without credit contribute nothing.
func (s Status) Credit() float64 {
	if s.Grade != nil && s.Grade.Kind == GradeExemptionWithoutCredit {
		return 0
	}
	return s.Course.Credit
}

// Normalize fills in a missing state from the grade.
func (s *Status) Normalize() {
	s.Course.ID = core.CleanString(s.Course.ID)
	s.Semester = core.CleanString(s.Semester)
	if s.State != "" {
		return
	}
	if s.Grade == nil {
		s.State = StateInProgress
		return
	}
	if s.Grade.Passed() {
		s.State = StateComplete
	} else {
		s.State = StateNotComplete
	}
}

// ExtractSemester maps a semester label ("winter_1", "spring_2", "summer_3", or the hebrew
// season names) to a sortable number. Summer semesters follow their academic year's spring.
// A missing or malformed label sorts last.
func (s Status) ExtractSemester() float64 {
	parts := strings.SplitN(s.Semester, "_", 2)
	if len(parts) != 2 {
		return math.Inf(1)
	}
	num, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return math.Inf(1)
	}
	switch strings.ToLower(parts[0]) {
	case "summer", "קיץ":
		return num + 0.5
	default:
		return num
	}
}

// QueryFilter is used to search courses by name or number.
// Limit caps the results below MaxSearchResults when positive.
type QueryFilter struct {
	Name   string `query:"name"`
	Number string `query:"number"`
	Limit  int    `query:"limit"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Name == "" && qf.Number == ""
}

func (qf *QueryFilter) Clean() {
	qf.Name = core.CleanString(qf.Name, true /* lower */)
	qf.Number = core.CleanString(qf.Number)
}

// ToMap indexes courses by ID.
func ToMap(courses []Course) map[string]Course {
	m := make(map[string]Course, len(courses))
	for _, c := range courses {
		m[c.ID] = c
	}
	return m
}
