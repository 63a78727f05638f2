package catalog

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sogrim/sogrim/core"
)

func TestRuleJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Rule
		wantErr bool
	}{
		{name: "unit", data: `"all"`, want: Rule{Kind: RuleAll}},
		{name: "accumulate courses", data: `{"accumulate_courses": 3}`, want: Rule{Kind: RuleAccumulateCourses, NumCourses: 3}},
		{name: "chains", data: `{"chains": [["1","2"],["3"]]}`, want: Rule{Kind: RuleChains, Chains: [][]string{{"1", "2"}, {"3"}}}},
		{
			name: "specialization groups",
			data: `{"specialization_groups": {"groups_list": [{"name": "g", "courses_sum": 2, "course_list": ["1","2"]}], "groups_number": 1}}`,
			want: Rule{Kind: RuleSpecializationGroups, SpecializationGroups: &SpecializationGroups{
				GroupsList:   []SpecializationGroup{{Name: "g", CoursesSum: 2, CourseList: []string{"1", "2"}}},
				GroupsNumber: 1,
			}},
		},
		{name: "unknown", data: `"everything"`, wantErr: true},
		{name: "param on unit", data: `{"all": 1}`, wantErr: true},
		{name: "two keys", data: `{"chains": [], "all": 1}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Rule
			err := json.Unmarshal([]byte(tt.data), &r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, r); diff != "" {
				t.Errorf("UnmarshalJSON() mismatch (-want +got):\n%s", diff)
			}
			b, err := json.Marshal(r)
			require.NoError(t, err)
			assert.JSONEq(t, tt.data, string(b))
		})
	}
}

func TestCatalogYAML(t *testing.T) {
	data := `
id: cs-4
name: Computer Science 4 years
total_credit: 155
course_banks:
  - name: mandatory
    rule: all
  - name: list a
    rule: accumulate_credit
    credit: 10
  - name: project
    rule: {accumulate_courses: 1}
credit_overflows:
  - {from: mandatory, to: list a}
course_to_bank:
  "104031": mandatory
  "236303": project
`
	var cat Catalog
	require.NoError(t, yaml.Unmarshal([]byte(data), &cat))
	assert.Equal(t, "cs-4", cat.ID)
	require.Len(t, cat.CourseBanks, 3)
	assert.Equal(t, Rule{Kind: RuleAccumulateCourses, NumCourses: 1}, cat.CourseBanks[2].Rule)
	assert.Equal(t, core.Float64Ptr(10), cat.CourseBanks[1].Credit)
	assert.NoError(t, cat.Validate())
	assert.Equal(t, []string{"104031"}, cat.CoursesOfBank("mandatory"))
}

func TestCatalogValidate(t *testing.T) {
	cat := Catalog{
		Name:            "c",
		TotalCredit:     10,
		CourseBanks:     []CourseBank{{Name: "a", Rule: Rule{Kind: RuleAll}}, {Name: "a", Rule: Rule{Kind: RuleAll}}},
		CreditOverflows: []CreditOverflow{{From: "a", To: "b"}},
		CourseToBank:    map[string]string{"1": "c"},
	}
	err := cat.Validate()
	require.Error(t, err)
	verr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Len(t, verr.Fields, 3)
}

func TestCatalogCloneAndReplace(t *testing.T) {
	cat := Catalog{CourseToBank: map[string]string{"1": "a"}}
	cp := cat.Clone()
	cp.ReplaceCourses("1", "2")
	cp.ReplaceCourses("9", "10")

	assert.Equal(t, map[string]string{"1": "a"}, cat.CourseToBank)
	assert.Equal(t, map[string]string{"2": "a"}, cp.CourseToBank)
}
