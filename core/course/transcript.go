package course

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core"
)

const (
	// TranscriptHeader opens a grade sheet copied from the student portal.
	TranscriptHeader = "גיליון ציונים"
	// TranscriptEnd closes it. Anything after it is ignored.
	TranscriptEnd = "סוף גיליון ציונים"
)

var (
	ErrTranscriptHeader = core.NewValidationError(errors.New("transcript must start with " + TranscriptHeader))
	ErrTranscriptEnd    = core.NewValidationError(errors.New("transcript is missing " + TranscriptEnd))
	ErrTranscriptEmpty  = core.NewValidationError(errors.New("transcript has no courses"))
)

var (
	courseLineRegex = regexp.MustCompile(`^[0-9]{6,8}$`)
	creditRegex     = regexp.MustCompile(`^[0-9]{1,2}\.[0-9]$`)
)

var seasons = map[string]string{
	"חורף":   "חורף",
	"אביב":   "אביב",
	"קיץ":    "קיץ",
	"winter": "חורף",
	"spring": "אביב",
	"summer": "קיץ",
}

var transcriptGrades = map[string]GradeKind{
	"עבר":            GradePass,
	"נכשל":           GradeFail,
	"לא עבר":         GradeFail,
	"פטור עם ניקוד":  GradeExemptionWithCredit,
	"פטור ללא ניקוד": GradeExemptionWithoutCredit,
	"לא השלים":       GradeNotComplete,
}

// IsTranscript reports whether text looks like a copied grade sheet.
func IsTranscript(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), TranscriptHeader)
}

// ParseTranscript reads the courses of a grade sheet copied from the student portal.
//
// Semester headers start with a season name and are numbered in order of appearance,
// so the first one becomes "חורף_1". A summer semester shares the number of the semester
// before it. Course rows hold the course number, its name, a credit such as "3.0" and
// an optional grade. A trailing or leading asterisk on a grade is dropped. When a course
// is listed more than once the last attempt wins.
func ParseTranscript(text string) ([]Status, error) {
	if !IsTranscript(text) {
		return nil, ErrTranscriptHeader
	}

	var (
		statuses []Status
		last     = make(map[string]int)
		semester string
		number   int
		ended    bool
	)
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		row := strings.TrimSpace(scanner.Text())
		if row == TranscriptEnd {
			ended = true
			break
		}
		fields := strings.Fields(row)
		if len(fields) == 0 {
			continue
		}

		if season, ok := seasons[strings.ToLower(fields[0])]; ok {
			if season != "קיץ" || number == 0 {
				number++
			}
			semester = season + "_" + strconv.Itoa(number)
			continue
		}
		if !courseLineRegex.MatchString(fields[0]) {
			continue
		}

		st, err := parseTranscriptRow(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		st.Semester = semester
		st.Normalize()
		last[st.Course.ID] = len(statuses)
		statuses = append(statuses, st)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading transcript")
	}
	if !ended {
		return nil, ErrTranscriptEnd
	}
	if len(statuses) == 0 {
		return nil, ErrTranscriptEmpty
	}

	kept := statuses[:0]
	for i, st := range statuses {
		if last[st.Course.ID] == i {
			kept = append(kept, st)
		}
	}
	return kept, nil
}

func parseTranscriptRow(fields []string) (Status, error) {
	credit := -1
	for i := len(fields) - 1; i >= 2; i-- {
		if creditRegex.MatchString(fields[i]) {
			credit = i
			break
		}
	}
	if credit < 0 {
		return Status{}, core.NewValidationError(errors.Errorf("course %s has no credit", fields[0]))
	}
	points, err := strconv.ParseFloat(fields[credit], 64)
	if err != nil {
		return Status{}, core.NewValidationError(errors.Wrapf(err, "course %s credit", fields[0]))
	}

	st := Status{Course: Course{
		ID:     fields[0],
		Name:   strings.Join(fields[1:credit], " "),
		Credit: points,
	}}
	if raw := strings.Trim(strings.Join(fields[credit+1:], " "), "* "); raw != "" {
		grade, err := parseTranscriptGrade(raw)
		if err != nil {
			return Status{}, core.NewValidationError(errors.Wrapf(err, "course %s", fields[0]))
		}
		st.Grade = grade
	}
	return st, nil
}

func parseTranscriptGrade(raw string) (*Grade, error) {
	if kind, ok := transcriptGrades[raw]; ok {
		return NamedGrade(kind), nil
	}
	return ParseGrade(raw)
}
