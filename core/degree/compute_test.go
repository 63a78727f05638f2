package degree

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
)

var testCourses = course.ToMap([]course.Course{
	{ID: "104031", Name: "Calculus 1M", Credit: 5.5},
	{ID: "104166", Name: "Algebra A", Credit: 5.5},
	{ID: "104016", Name: "Algebra B", Credit: 5.5},
	{ID: "236303", Name: "Project 1", Credit: 3},
	{ID: "236512", Name: "Project 2", Credit: 3},
	{ID: "234111", Name: "Intro to CS", Credit: 3},
	{ID: "234112", Name: "Intro to Systems", Credit: 4},
	{ID: "394645", Name: "Basketball", Credit: 1},
	{ID: "111111", Name: "Art History", Credit: 2},
})

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		ID:          "cs",
		Name:        "Computer Science",
		TotalCredit: 30,
		CourseBanks: []catalog.CourseBank{
			{Name: "mandatory", Rule: catalog.Rule{Kind: catalog.RuleAll}, Credit: core.Float64Ptr(12)},
			{Name: "list a", Rule: catalog.Rule{Kind: catalog.RuleAccumulateCredit}, Credit: core.Float64Ptr(6)},
			{Name: "sport", Rule: catalog.Rule{Kind: catalog.RuleSport}, Credit: core.Float64Ptr(1)},
			{Name: "project", Rule: catalog.Rule{Kind: catalog.RuleAccumulateCourses, NumCourses: 1}},
			{Name: "free", Rule: catalog.Rule{Kind: catalog.RuleFreeChoice}, Credit: core.Float64Ptr(2)},
		},
		CreditOverflows: []catalog.CreditOverflow{
			{From: "mandatory", To: "list a"},
			{From: "list a", To: "free"},
			{From: "sport", To: "free"},
			{From: "project", To: "list a"},
		},
		CourseToBank: map[string]string{
			"104031": "mandatory",
			"104166": "mandatory",
			"236303": "project",
			"236512": "project",
			"234111": "list a",
			"234112": "list a",
		},
	}
}

func taken(id, semester string, grade *course.Grade) course.Status {
	cs := course.Status{Course: testCourses[id], Semester: semester, Grade: grade}
	cs.Normalize()
	return cs
}

func testStatus() *Status {
	return &Status{CourseStatuses: []course.Status{
		taken("104031", "winter_1", course.NumericGrade(85)),
		taken("104166", "winter_1", course.NamedGrade(course.GradeFail)),
		taken("236303", "spring_2", course.NumericGrade(90)),
		taken("236512", "spring_4", course.NumericGrade(95)),
		taken("234111", "winter_3", course.NumericGrade(70)),
		taken("394645", "winter_1", course.NamedGrade(course.GradePass)),
		taken("111111", "summer_2", course.NumericGrade(100)),
	}}
}

func typesByID(st *Status) map[string]string {
	m := make(map[string]string)
	for _, cs := range st.CourseStatuses {
		m[cs.Course.ID] = cs.Type
	}
	return m
}

func reqByName(t *testing.T, st *Status, name string) Requirement {
	t.Helper()
	for _, r := range st.CourseBankRequirements {
		if r.CourseBankName == name {
			return r
		}
	}
	t.Fatalf("no requirement for bank %q", name)
	return Requirement{}
}

func TestCompute(t *testing.T) {
	st := testStatus()
	require.NoError(t, Compute(testCatalog(), testCourses, nil, st))

	names := make([]string, 0, len(st.CourseBankRequirements))
	for _, r := range st.CourseBankRequirements {
		names = append(names, r.CourseBankName)
	}
	assert.Equal(t, []string{"mandatory", "sport", "project", "list a", "free"}, names)

	mandatory := reqByName(t, st, "mandatory")
	assert.Equal(t, core.Float64Ptr(11), mandatory.CreditRequirement)
	assert.Equal(t, 5.5, mandatory.CreditCompleted)
	assert.False(t, mandatory.Completed)

	sport := reqByName(t, st, "sport")
	assert.Equal(t, 1.0, sport.CreditCompleted)
	assert.True(t, sport.Completed)

	project := reqByName(t, st, "project")
	assert.Nil(t, project.CreditRequirement)
	assert.Equal(t, core.IntPtr(1), project.CourseRequirement)
	assert.Equal(t, 2, project.CourseCompleted)
	assert.Equal(t, 0.0, project.CreditCompleted)
	assert.True(t, project.Completed)

	listA := reqByName(t, st, "list a")
	assert.Equal(t, core.Float64Ptr(7), listA.CreditRequirement) // 6 + 1 missing from mandatory
	assert.Equal(t, 7.0, listA.CreditCompleted)
	assert.True(t, listA.Completed)

	free := reqByName(t, st, "free")
	assert.Equal(t, 2.0, free.CreditCompleted)
	assert.True(t, free.Completed)

	assert.Equal(t, []string{
		missingCreditMsg(1, "mandatory", "list a"),
		creditOverflowDetailedMsg("project", "list a"),
		creditOverflowMsg(2, "list a", "free"),
		creditLeftoversMsg(2),
	}, st.OverflowMsgs)
	assert.Equal(t, 15.5, st.TotalCredit)

	assert.Equal(t, map[string]string{
		"104031": "mandatory",
		"104166": "mandatory",
		"394645": "sport",
		"236303": "project",
		"236512": "project",
		"234111": "list a",
		"111111": "free",
	}, typesByID(st))

	semesters := make([]string, 0, len(st.CourseStatuses))
	for _, cs := range st.CourseStatuses {
		semesters = append(semesters, cs.Semester)
	}
	assert.Equal(t, []string{"winter_1", "winter_1", "winter_1", "spring_2", "summer_2", "winter_3", "spring_4"}, semesters)
}

func TestComputeIsRepeatable(t *testing.T) {
	st := testStatus()
	st.CourseStatuses = st.CourseStatuses[:1] // 104166 is missing and will be added by the algorithm

	require.NoError(t, Compute(testCatalog(), testCourses, nil, st))
	first := *st
	first.CourseStatuses = append([]course.Status(nil), st.CourseStatuses...)
	first.CourseBankRequirements = append([]Requirement(nil), st.CourseBankRequirements...)
	require.Len(t, st.CourseStatuses, 2)
	assert.Equal(t, course.StateNotComplete, st.CourseStatuses[1].State)
	assert.Equal(t, "mandatory", st.CourseStatuses[1].Type)

	require.NoError(t, Compute(testCatalog(), testCourses, nil, st))
	assert.Equal(t, first.CourseStatuses, st.CourseStatuses)
	assert.Equal(t, first.CourseBankRequirements, st.CourseBankRequirements)
	assert.Equal(t, first.OverflowMsgs, st.OverflowMsgs)
}

func TestComputeModifiedAndIrrelevant(t *testing.T) {
	st := testStatus()
	st.CourseStatuses[4].Modified = true // 234111 moved to free choice by the student
	st.CourseStatuses[4].Type = "free"
	st.CourseStatuses[6].State = course.StateIrrelevant // 111111
	st.CourseStatuses[6].Type = "free"

	require.NoError(t, Compute(testCatalog(), testCourses, nil, st))

	types := typesByID(st)
	assert.Equal(t, "free", types["234111"])
	assert.Equal(t, "", types["111111"])

	listA := reqByName(t, st, "list a")
	assert.Equal(t, 6.0, listA.CreditCompleted) // only the project overflow
	free := reqByName(t, st, "free")
	assert.Equal(t, 2.0, free.CreditCompleted)
}

func TestComputeIrrelevantDuplicateRemoved(t *testing.T) {
	st := testStatus()
	irrelevant := st.CourseStatuses[4]
	irrelevant.State = course.StateIrrelevant
	st.CourseStatuses[4].Modified = true
	st.CourseStatuses = append(st.CourseStatuses, irrelevant)

	require.NoError(t, Compute(testCatalog(), testCourses, nil, st))

	var count int
	for _, cs := range st.CourseStatuses {
		if cs.Course.ID == "234111" {
			count++
			assert.NotEqual(t, course.StateIrrelevant, cs.State)
		}
	}
	assert.Equal(t, 1, count)
}

func TestComputeReplacements(t *testing.T) {
	cat := testCatalog()
	cat.CatalogReplacements = map[string][]string{"104166": {"104016"}}
	st := testStatus()
	st.CourseStatuses[1] = taken("104016", "winter_1", course.NumericGrade(60))

	require.NoError(t, Compute(cat, testCourses, nil, st))

	var replacement course.Status
	for _, cs := range st.CourseStatuses {
		if cs.Course.ID == "104016" {
			replacement = cs
		}
	}
	assert.Equal(t, "mandatory", replacement.Type)
	assert.Equal(t, catalogReplacementMsg(testCourses["104166"]), replacement.AdditionalMsg)

	mandatory := reqByName(t, st, "mandatory")
	assert.True(t, mandatory.Completed)
	assert.Equal(t, 11.0, mandatory.CreditCompleted)
	assert.Equal(t, "104166", cat.CoursesOfBank("mandatory")[1], "the caller's catalog is untouched")
}

func TestComputeMalagAndChains(t *testing.T) {
	cat := catalog.Catalog{
		Name:        "physics",
		TotalCredit: 10,
		CourseBanks: []catalog.CourseBank{
			{Name: "malag", Rule: catalog.Rule{Kind: catalog.RuleMalag}, Credit: core.Float64Ptr(2)},
			{Name: "chain", Rule: catalog.Rule{Kind: catalog.RuleChains, Chains: [][]string{{"1", "2"}, {"3"}}}, Credit: core.Float64Ptr(3)},
		},
		CourseToBank: map[string]string{},
	}
	courses := course.ToMap([]course.Course{
		{ID: "1", Name: "one", Credit: 1},
		{ID: "2", Name: "two", Credit: 2},
		{ID: "3", Name: "three", Credit: 3},
		{ID: "324057", Name: "malag", Credit: 2},
	})
	st := &Status{CourseStatuses: []course.Status{
		{Course: courses["1"], State: course.StateComplete, Semester: "winter_1"},
		{Course: courses["2"], State: course.StateComplete, Semester: "winter_1"},
		{Course: courses["324057"], State: course.StateComplete, Semester: "winter_1"},
	}}

	require.NoError(t, Compute(cat, courses, []string{"324057"}, st))

	malag := reqByName(t, st, "malag")
	assert.Equal(t, 2.0, malag.CreditCompleted)
	assert.True(t, malag.Completed)

	chain := reqByName(t, st, "chain")
	assert.Equal(t, 3.0, chain.CreditCompleted)
	assert.True(t, chain.Completed)
	assert.Equal(t, completedChainMsg([]string{"one", "two"}), chain.Message)
}

func TestComputeSpecializationGroups(t *testing.T) {
	cat := catalog.Catalog{
		Name:        "ee",
		TotalCredit: 10,
		CourseBanks: []catalog.CourseBank{
			{Name: "groups", Rule: catalog.Rule{Kind: catalog.RuleSpecializationGroups, SpecializationGroups: &catalog.SpecializationGroups{
				GroupsNumber: 2,
				GroupsList: []catalog.SpecializationGroup{
					{Name: "signals", CoursesSum: 2, CourseList: []string{"1", "2", "3"}},
					{Name: "circuits", CoursesSum: 1, CourseList: []string{"4"}, Mandatory: [][]string{{"4", "5"}}},
					{Name: "optics", CoursesSum: 1, CourseList: []string{"6"}},
				},
			}}},
		},
		CourseToBank: map[string]string{},
	}
	courses := course.ToMap([]course.Course{
		{ID: "1", Credit: 3}, {ID: "2", Credit: 3}, {ID: "4", Credit: 2}, {ID: "6", Credit: 2},
	})
	st := &Status{CourseStatuses: []course.Status{
		{Course: courses["1"], State: course.StateComplete, Semester: "winter_1"},
		{Course: courses["2"], State: course.StateComplete, Semester: "winter_1"},
		{Course: courses["4"], State: course.StateComplete, Semester: "winter_1"},
		{Course: courses["6"], State: course.StateInProgress, Semester: "winter_1"},
	}}

	require.NoError(t, Compute(cat, courses, nil, st))

	groups := reqByName(t, st, "groups")
	assert.Equal(t, 2, groups.CourseCompleted)
	assert.Equal(t, core.IntPtr(2), groups.CourseRequirement)
	assert.True(t, groups.Completed)
	assert.Equal(t, completedSpecializationGroupsMsg([]string{"signals", "circuits"}, 2), groups.Message)
	assert.Equal(t, "signals", st.CourseStatuses[0].SpecializationGroupName)
	assert.Equal(t, "circuits", st.CourseStatuses[2].SpecializationGroupName)
	assert.Equal(t, "", st.CourseStatuses[3].SpecializationGroupName)
}

func TestComputeCyclicOverflow(t *testing.T) {
	cat := testCatalog()
	cat.CreditOverflows = append(cat.CreditOverflows, catalog.CreditOverflow{From: "free", To: "mandatory"})

	err := Compute(cat, testCourses, nil, testStatus())
	require.Error(t, err)
	cycle, ok := errors.Cause(err).(*ErrCyclicOverflow)
	require.True(t, ok)
	assert.Equal(t, "mandatory", cycle.Bank)
}

func TestComputeCoursesOverflowIntoEarlierBank(t *testing.T) {
	cat := catalog.Catalog{
		ID:          "cs",
		Name:        "Computer Science",
		TotalCredit: 10,
		// the target bank is listed before the bank overflowing into it
		CourseBanks: []catalog.CourseBank{
			{Name: "seminars", Rule: catalog.Rule{Kind: catalog.RuleAccumulateCourses, NumCourses: 2}},
			{Name: "projects", Rule: catalog.Rule{Kind: catalog.RuleAccumulateCourses, NumCourses: 1}},
		},
		CoursesOverflows: []catalog.CoursesOverflow{{From: "projects", To: "seminars"}},
		CourseToBank: map[string]string{
			"236303": "projects",
			"236512": "projects",
			"111111": "seminars",
		},
	}
	st := &Status{CourseStatuses: []course.Status{
		taken("236303", "spring_2", course.NumericGrade(90)),
		taken("236512", "spring_4", course.NumericGrade(95)),
		taken("111111", "summer_2", course.NumericGrade(100)),
	}}
	require.NoError(t, Compute(cat, testCourses, nil, st))

	names := make([]string, 0, len(st.CourseBankRequirements))
	for _, r := range st.CourseBankRequirements {
		names = append(names, r.CourseBankName)
	}
	assert.Equal(t, []string{"projects", "seminars"}, names)

	projects := reqByName(t, st, "projects")
	assert.Equal(t, 1, projects.CourseCompleted)
	assert.True(t, projects.Completed)

	seminars := reqByName(t, st, "seminars")
	assert.Equal(t, 2, seminars.CourseCompleted)
	assert.True(t, seminars.Completed)
	assert.Contains(t, st.OverflowMsgs, coursesOverflowMsg(1, "projects", "seminars"))
}

func TestComputeCyclicCoursesOverflow(t *testing.T) {
	cat := testCatalog()
	cat.CoursesOverflows = []catalog.CoursesOverflow{{From: "free", To: "project"}}

	err := Compute(cat, testCourses, nil, testStatus())
	var cycle *ErrCyclicOverflow
	require.True(t, errors.As(err, &cycle), "error = %v", err)
}
