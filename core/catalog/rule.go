package catalog

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type RuleKind string

const (
	RuleAll                  RuleKind = "all"
	RuleAccumulateCredit     RuleKind = "accumulate_credit"
	RuleAccumulateCourses    RuleKind = "accumulate_courses"
	RuleMalag                RuleKind = "malag"
	RuleSport                RuleKind = "sport"
	RuleFreeChoice           RuleKind = "free_choice"
	RuleChains               RuleKind = "chains"
	RuleSpecializationGroups RuleKind = "specialization_groups"
)

type SpecializationGroup struct {
	Name       string     `json:"name" yaml:"name"`
	CoursesSum int        `json:"courses_sum" yaml:"courses_sum"`
	Mandatory  [][]string `json:"mandatory,omitempty" yaml:"mandatory,omitempty"` // every inner list is an OR group
	CourseList []string   `json:"course_list" yaml:"course_list"`
}

type SpecializationGroups struct {
	GroupsList   []SpecializationGroup `json:"groups_list" yaml:"groups_list"`
	GroupsNumber int                   `json:"groups_number" yaml:"groups_number"`
}

// Rule is how a course bank is evaluated.
// Kinds without parameters are encoded as a plain string, the others as a single-key object,
// eg. "all" or {"accumulate_courses": 3}.
type Rule struct {
	Kind                 RuleKind
	NumCourses           int                   // accumulate_courses
	Chains               [][]string            // chains
	SpecializationGroups *SpecializationGroups // specialization_groups
}

func (r Rule) String() string {
	return string(r.Kind)
}

func (r Rule) Validate() error {
	switch r.Kind {
	case RuleAll, RuleAccumulateCredit, RuleMalag, RuleSport, RuleFreeChoice:
		return nil
	case RuleAccumulateCourses:
		if r.NumCourses < 0 {
			return errors.New("accumulate_courses must be non-negative")
		}
		return nil
	case RuleChains:
		if len(r.Chains) == 0 {
			return errors.New("chains must not be empty")
		}
		return nil
	case RuleSpecializationGroups:
		if r.SpecializationGroups == nil {
			return errors.New("specialization_groups must not be empty")
		}
		return nil
	default:
		return errors.Errorf("unknown rule %q", r.Kind)
	}
}

func (r Rule) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RuleAccumulateCourses:
		return json.Marshal(map[RuleKind]int{r.Kind: r.NumCourses})
	case RuleChains:
		return json.Marshal(map[RuleKind][][]string{r.Kind: r.Chains})
	case RuleSpecializationGroups:
		return json.Marshal(map[RuleKind]*SpecializationGroups{r.Kind: r.SpecializationGroups})
	default:
		return json.Marshal(string(r.Kind))
	}
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	var kind string
	if err := json.Unmarshal(data, &kind); err == nil {
		*r = Rule{Kind: RuleKind(kind)}
		return r.Validate()
	}

	var obj map[RuleKind]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.Wrap(err, "rule must be a string or an object")
	}
	if len(obj) != 1 {
		return errors.Errorf("rule object must have exactly one key, got %d", len(obj))
	}
	for k, raw := range obj {
		rule := Rule{Kind: k}
		var err error
		switch k {
		case RuleAccumulateCourses:
			err = json.Unmarshal(raw, &rule.NumCourses)
		case RuleChains:
			err = json.Unmarshal(raw, &rule.Chains)
		case RuleSpecializationGroups:
			err = json.Unmarshal(raw, &rule.SpecializationGroups)
		default:
			err = errors.Errorf("rule %q takes no parameters", k)
		}
		if err != nil {
			return errors.Wrapf(err, "decoding rule %s", k)
		}
		*r = rule
	}
	return r.Validate()
}

// UnmarshalYAML decodes the same shapes as UnmarshalJSON.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return err
	}
	data, err := json.Marshal(normalizeYAML(v))
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	if err := r.UnmarshalJSON(data); err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	return nil
}

func (r Rule) MarshalYAML() (interface{}, error) {
	data, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// normalizeYAML converts yaml maps to string-keyed maps so they can be re-encoded as JSON.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[toString(k)] = normalizeYAML(val)
		}
		return m
	case []interface{}:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}
