package degree

import (
	"sort"

	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
)

// bankResult is what a rule handler computed for one bank, before overflows move.
type bankResult struct {
	credit            float64
	courses           int
	creditRequirement *float64
	courseRequirement *int
	done              func(courses int) bool // conditions besides the credit requirement, nil if none
	message           string
}

// ruleHandler evaluates one bank over the student's course statuses.
type ruleHandler struct {
	status  *Status
	bank    catalog.CourseBank
	list    map[string]bool
	courses map[string]course.Course
}

func newRuleHandler(st *Status, bank catalog.CourseBank, ids []string, courses map[string]course.Course) *ruleHandler {
	list := make(map[string]bool, len(ids))
	for _, id := range ids {
		list[id] = true
	}
	return &ruleHandler{status: st, bank: bank, list: list, courses: courses}
}

// assignable reports whether the course may be counted in this bank.
// Modified courses belong to the bank the student chose, irrelevant courses to none.
func (h *ruleHandler) assignable(cs *course.Status) bool {
	if cs.Irrelevant() {
		return false
	}
	if cs.Modified && cs.Type != "" {
		return cs.Type == h.bank.Name
	}
	return cs.Type == "" || cs.Type == h.bank.Name
}

// iterate tags every listed course with the bank and sums the completed ones.
// A course ID is credited once even when it appears more than once.
func (h *ruleHandler) iterate(include func(cs *course.Status) bool, visit func(cs *course.Status)) (credit float64, count int) {
	credited := make(map[string]bool)
	for i := range h.status.CourseStatuses {
		cs := &h.status.CourseStatuses[i]
		if !include(cs) || !h.assignable(cs) {
			continue
		}
		cs.Type = h.bank.Name
		if !cs.Completed() || credited[cs.Course.ID] {
			continue
		}
		credited[cs.Course.ID] = true
		credit += cs.Credit()
		count++
		if visit != nil {
			visit(cs)
		}
	}
	return credit, count
}

func (h *ruleHandler) inList(cs *course.Status) bool {
	return h.list[cs.Course.ID]
}

func (h *ruleHandler) creditRequirement() *float64 {
	if h.bank.Credit == nil {
		return nil
	}
	c := *h.bank.Credit
	return &c
}

// all requires every listed course. Listed courses the student never took are added as not complete.
// The requirement is the credit of the listed courses, and missing is how far it falls short of the
// bank's catalog credit.
func (h *ruleHandler) all() (res bankResult, missing float64) {
	credit, _ := h.iterate(h.inList, nil)

	taken := make(map[string]course.Status)
	for _, cs := range h.status.CourseStatuses {
		if cs.Type != h.bank.Name {
			continue
		}
		if prev, ok := taken[cs.Course.ID]; !ok || (!prev.Completed() && cs.Completed()) {
			taken[cs.Course.ID] = cs
		}
	}

	var required float64
	allDone := true
	for _, id := range sortedIDs(h.list) {
		cs, ok := taken[id]
		if !ok {
			c, known := h.courses[id]
			if !known {
				continue
			}
			cs = course.Status{Course: c, State: course.StateNotComplete, Type: h.bank.Name}
			h.status.CourseStatuses = append(h.status.CourseStatuses, cs)
		}
		required += cs.Credit()
		if !cs.Completed() {
			allDone = false
		}
	}

	if h.bank.Credit != nil && *h.bank.Credit > required {
		missing = *h.bank.Credit - required
	}
	res = bankResult{
		credit:            credit,
		creditRequirement: &required,
		done:              func(int) bool { return allDone },
	}
	return res, missing
}

func (h *ruleHandler) accumulateCredit() bankResult {
	credit, count := h.iterate(h.inList, nil)
	return bankResult{credit: credit, courses: count, creditRequirement: h.creditRequirement()}
}

func (h *ruleHandler) accumulateCourses(n int) bankResult {
	credit, count := h.iterate(h.inList, nil)
	return bankResult{
		credit:            credit,
		courses:           count,
		creditRequirement: h.creditRequirement(),
		courseRequirement: &n,
		done:              func(courses int) bool { return courses >= n },
	}
}

func (h *ruleHandler) malag(malags map[string]bool) bankResult {
	credit, count := h.iterate(func(cs *course.Status) bool {
		return malags[cs.Course.ID] || h.inList(cs)
	}, nil)
	return bankResult{credit: credit, courses: count, creditRequirement: h.creditRequirement()}
}

func (h *ruleHandler) sport() bankResult {
	credit, count := h.iterate(func(cs *course.Status) bool {
		return cs.Course.IsSport() || h.inList(cs)
	}, nil)
	return bankResult{credit: credit, courses: count, creditRequirement: h.creditRequirement()}
}

// freeChoice takes every relevant course that no other bank took.
func (h *ruleHandler) freeChoice() bankResult {
	credit, count := h.iterate(func(cs *course.Status) bool {
		return cs.State == course.StateComplete || cs.State == course.StateInProgress
	}, nil)
	return bankResult{credit: credit, courses: count, creditRequirement: h.creditRequirement()}
}

func (h *ruleHandler) chains(chains [][]string) bankResult {
	inChains := make(map[string]bool)
	for _, chain := range chains {
		for _, id := range chain {
			inChains[id] = true
		}
	}
	done := make(map[string]string) // course id -> name
	credit, count := h.iterate(func(cs *course.Status) bool {
		return inChains[cs.Course.ID] || h.inList(cs)
	}, func(cs *course.Status) {
		done[cs.Course.ID] = cs.Course.Name
	})

	var msg string
	var chainDone bool
	for _, chain := range chains {
		names := make([]string, 0, len(chain))
		for _, id := range chain {
			name, ok := done[id]
			if !ok {
				names = nil
				break
			}
			names = append(names, name)
		}
		if names != nil {
			chainDone = true
			msg = completedChainMsg(names)
			break
		}
	}
	return bankResult{
		credit:            credit,
		courses:           count,
		creditRequirement: h.creditRequirement(),
		message:           msg,
		done:              func(int) bool { return chainDone },
	}
}

func (h *ruleHandler) specializationGroups(sg *catalog.SpecializationGroups) bankResult {
	inGroups := make(map[string]bool)
	for _, g := range sg.GroupsList {
		for _, id := range g.CourseList {
			inGroups[id] = true
		}
	}
	done := make(map[string]*course.Status)
	credit, _ := h.iterate(func(cs *course.Status) bool {
		return inGroups[cs.Course.ID] || h.inList(cs)
	}, func(cs *course.Status) {
		done[cs.Course.ID] = cs
	})

	var completedGroups []string
	used := make(map[string]bool)
	for _, g := range sg.GroupsList {
		if !groupMandatoryDone(g, done) {
			continue
		}
		var members []string
		for _, id := range g.CourseList {
			if done[id] != nil && !used[id] {
				members = append(members, id)
			}
		}
		if len(members) < g.CoursesSum {
			continue
		}
		completedGroups = append(completedGroups, g.Name)
		for _, id := range members {
			used[id] = true
			if !done[id].Modified || done[id].SpecializationGroupName == "" {
				done[id].SpecializationGroupName = g.Name
			}
		}
	}

	n := sg.GroupsNumber
	return bankResult{
		credit:            credit,
		courses:           len(completedGroups),
		creditRequirement: h.creditRequirement(),
		courseRequirement: &n,
		message:           completedSpecializationGroupsMsg(completedGroups, n),
		done:              func(groups int) bool { return groups >= n },
	}
}

// groupMandatoryDone reports whether at least one course of every mandatory option list was completed.
func groupMandatoryDone(g catalog.SpecializationGroup, done map[string]*course.Status) bool {
	for _, options := range g.Mandatory {
		found := false
		for _, id := range options {
			if done[id] != nil {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sortedIDs(m map[string]bool) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
