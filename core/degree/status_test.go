package degree

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
)

func TestRequirementProgress(t *testing.T) {
	tests := []struct {
		name         string
		req          Requirement
		wantProgress float64
		wantSubtitle string
	}{
		{
			name:         "credit",
			req:          Requirement{BankRuleName: "accumulate_credit", CreditRequirement: core.Float64Ptr(12), CreditCompleted: 3},
			wantProgress: 25,
			wantSubtitle: "completed 3 of 12 credits",
		},
		{
			name:         "courses",
			req:          Requirement{BankRuleName: "accumulate_courses", CourseRequirement: core.IntPtr(4), CourseCompleted: 1, CreditCompleted: 7.5},
			wantProgress: 25,
			wantSubtitle: "completed 1 of 4 courses",
		},
		{
			name:         "clamped",
			req:          Requirement{BankRuleName: "all", CreditRequirement: core.Float64Ptr(2), CreditCompleted: 7.5},
			wantProgress: 100,
			wantSubtitle: "completed 7.5 of 2 credits",
		},
		{
			name:         "zero requirement",
			req:          Requirement{BankRuleName: "accumulate_credit", CreditRequirement: core.Float64Ptr(0)},
			wantProgress: 100,
			wantSubtitle: "completed 0 of 0 credits",
		},
		{
			name:         "groups",
			req:          Requirement{BankRuleName: "specialization_groups", CourseRequirement: core.IntPtr(2), CourseCompleted: 1},
			wantProgress: 50,
			wantSubtitle: "completed 1 of 2 courses",
		},
		{
			name:         "no requirement",
			req:          Requirement{BankRuleName: "free_choice", Completed: true},
			wantProgress: 100,
			wantSubtitle: "completed 0 of 0 credits",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Progress(); got != tt.wantProgress {
				t.Errorf("Progress() = %v, want %v", got, tt.wantProgress)
			}
			if got := tt.req.Subtitle(); got != tt.wantSubtitle {
				t.Errorf("Subtitle() = %q, want %q", got, tt.wantSubtitle)
			}
		})
	}
}

func TestTraversalOrder(t *testing.T) {
	banks := []catalog.CourseBank{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}

	tests := []struct {
		name      string
		overflows []catalog.CreditOverflow
		courses   []catalog.CoursesOverflow
		want      []string
		wantCycle string
		wantErr   bool
	}{
		{name: "no rules keeps catalog order", want: []string{"a", "b", "c", "d"}},
		{
			name:      "chain",
			overflows: []catalog.CreditOverflow{{From: "c", To: "b"}, {From: "b", To: "a"}},
			want:      []string{"c", "b", "a", "d"},
		},
		{
			name:      "diamond",
			overflows: []catalog.CreditOverflow{{From: "a", To: "d"}, {From: "b", To: "d"}, {From: "d", To: "c"}},
			want:      []string{"a", "b", "d", "c"},
		},
		{
			name:      "cycle",
			overflows: []catalog.CreditOverflow{{From: "a", To: "b"}, {From: "b", To: "c"}, {From: "c", To: "b"}},
			wantCycle: "b",
		},
		{
			name:    "courses overflow",
			courses: []catalog.CoursesOverflow{{From: "d", To: "a"}},
			want:    []string{"b", "c", "d", "a"},
		},
		{
			name:      "credit and courses overflows",
			overflows: []catalog.CreditOverflow{{From: "c", To: "b"}},
			courses:   []catalog.CoursesOverflow{{From: "b", To: "a"}},
			want:      []string{"c", "b", "a", "d"},
		},
		{
			name:      "cycle across overflow kinds",
			overflows: []catalog.CreditOverflow{{From: "a", To: "c"}},
			courses:   []catalog.CoursesOverflow{{From: "c", To: "a"}},
			wantCycle: "a",
		},
		{name: "unknown bank", overflows: []catalog.CreditOverflow{{From: "a", To: "z"}}, wantErr: true},
		{name: "unknown courses bank", courses: []catalog.CoursesOverflow{{From: "z", To: "a"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := TraversalOrder(banks, tt.overflows, tt.courses)
			if tt.wantCycle != "" {
				var cycle *ErrCyclicOverflow
				require.True(t, errors.As(err, &cycle), "error = %v", err)
				assert.Equal(t, tt.wantCycle, cycle.Bank)
				return
			}
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			names := make([]string, 0, len(order))
			for _, b := range order {
				names = append(names, b.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

type fakeCatalogs map[string]catalog.Catalog

func (f fakeCatalogs) GetByID(_ context.Context, id string) (catalog.Catalog, error) {
	cat, ok := f[id]
	if !ok {
		return catalog.Catalog{}, catalog.ErrNotFound
	}
	return cat, nil
}

type fakeCourses struct{}

func (fakeCourses) QueryAllAsMap(context.Context) (map[string]course.Course, error) {
	return testCourses, nil
}

func (fakeCourses) Malags(context.Context) ([]string, error) { return nil, nil }

func TestServiceEvaluate(t *testing.T) {
	svc := NewService(fakeCatalogs{"cs": testCatalog()}, fakeCourses{})

	st := testStatus()
	require.NoError(t, svc.Evaluate(context.Background(), "cs", st))
	assert.Len(t, st.CourseBankRequirements, 5)

	err := svc.Evaluate(context.Background(), "nope", testStatus())
	assert.True(t, core.IsNotFound(err))
}
