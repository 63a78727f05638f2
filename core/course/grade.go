package course

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type GradeKind int

const (
	GradeNumeric GradeKind = iota
	GradePass
	GradeFail
	GradeExemptionWithCredit
	GradeExemptionWithoutCredit
	GradeNotComplete
)

// PassingGrade is the minimal numeric grade of a completed course.
const PassingGrade = 55

var gradeNames = map[GradeKind]string{
	GradePass:                   "pass",
	GradeFail:                   "fail",
	GradeExemptionWithCredit:    "exemption-with-credit",
	GradeExemptionWithoutCredit: "exemption-without-credit",
	GradeNotComplete:            "not-complete",
}

// Grade is either a numeric grade (0-100) or one of the named grades.
type Grade struct {
	Kind  GradeKind
	Value int // numeric grades only
}

func NumericGrade(v int) *Grade {
	return &Grade{Kind: GradeNumeric, Value: v}
}

func NamedGrade(kind GradeKind) *Grade {
	return &Grade{Kind: kind}
}

func ParseGrade(s string) (*Grade, error) {
	for kind, name := range gradeNames {
		if name == s {
			return NamedGrade(kind), nil
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, errors.Errorf("invalid grade %q", s)
	}
	if v < 0 || v > 100 {
		return nil, errors.Errorf("grade %d out of range", v)
	}
	return NumericGrade(v), nil
}

func (g Grade) Passed() bool {
	switch g.Kind {
	case GradeNumeric:
		return g.Value >= PassingGrade
	case GradePass, GradeExemptionWithCredit, GradeExemptionWithoutCredit:
		return true
	default:
		return false
	}
}

func (g Grade) String() string {
	if g.Kind == GradeNumeric {
		return strconv.Itoa(g.Value)
	}
	return gradeNames[g.Kind]
}

func (g Grade) MarshalJSON() ([]byte, error) {
	if g.Kind == GradeNumeric {
		return json.Marshal(g.Value)
	}
	return json.Marshal(gradeNames[g.Kind])
}

func (g *Grade) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err == nil {
		parsed, err := ParseGrade(strconv.Itoa(v))
		if err != nil {
			return err
		}
		*g = *parsed
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "grade must be a number or a string")
	}
	parsed, err := ParseGrade(s)
	if err != nil {
		return err
	}
	*g = *parsed
	return nil
}

func (g *Grade) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseGrade(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*g = *parsed
	return nil
}

func (g Grade) MarshalYAML() (interface{}, error) {
	if g.Kind == GradeNumeric {
		return g.Value, nil
	}
	return gradeNames[g.Kind], nil
}
