package degree

import (
	"sort"

	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
)

// preprocess prepares a previous evaluation for a new run against cat.
func (s *Status) preprocess(cat *catalog.Catalog, courses map[string]course.Course) {
	s.reset()
	s.removeCoursesAddedByAlgorithm()
	s.removeIrrelevantCoursesAddedByUser()
	s.clearUnmodifiedTypes()
	for _, cs := range s.CourseStatuses {
		if cs.Irrelevant() {
			delete(cat.CourseToBank, cs.Course.ID)
		}
	}

	sort.SliceStable(s.CourseStatuses, func(i, j int) bool {
		return s.CourseStatuses[i].ExtractSemester() < s.CourseStatuses[j].ExtractSemester()
	})

	s.applyReplacements(cat, courses)
}

// Courses that are unmodified, not completed and have no semester were added by an earlier run
// and may be irrelevant to the new catalog.
func (s *Status) removeCoursesAddedByAlgorithm() {
	kept := s.CourseStatuses[:0]
	for _, cs := range s.CourseStatuses {
		if cs.Modified || cs.Completed() || cs.Semester != "" {
			kept = append(kept, cs)
		}
	}
	s.CourseStatuses = kept
}

// Courses marked irrelevant by an earlier run are dropped when the user added the same course manually.
func (s *Status) removeIrrelevantCoursesAddedByUser() {
	readded := make(map[string]bool)
	for _, cs := range s.CourseStatuses {
		if cs.Modified && !cs.Irrelevant() {
			readded[cs.Course.ID] = true
		}
	}
	kept := s.CourseStatuses[:0]
	for _, cs := range s.CourseStatuses {
		if !cs.Irrelevant() || !readded[cs.Course.ID] {
			kept = append(kept, cs)
		}
	}
	s.CourseStatuses = kept
}

func (s *Status) clearUnmodifiedTypes() {
	for i := range s.CourseStatuses {
		cs := &s.CourseStatuses[i]
		if !cs.Modified || cs.Irrelevant() {
			cs.Type = ""
		}
		if !cs.Modified {
			cs.SpecializationGroupName = ""
			cs.AdditionalMsg = ""
		}
	}
}

// applyReplacements maps courses the student took in place of catalog courses onto the catalog course's bank.
// Catalog replacements take precedence over common ones.
func (s *Status) applyReplacements(cat *catalog.Catalog, courses map[string]course.Course) {
	completed := make(map[string]bool)
	for _, cs := range s.CourseStatuses {
		if cs.Completed() {
			completed[cs.Course.ID] = true
		}
	}

	replaced := make(map[string]string) // catalog course -> student course
	find := func(cs *course.Status, replacements map[string][]string, msg func(course.Course) string) {
		for _, original := range sortedKeys(replacements) {
			if _, done := replaced[original]; done || completed[original] {
				continue
			}
			if _, inCatalog := cat.CourseToBank[original]; !inCatalog {
				continue
			}
			for _, id := range replacements[original] {
				if id != cs.Course.ID {
					continue
				}
				replaced[original] = cs.Course.ID
				c, ok := courses[original]
				if !ok {
					c = course.Course{ID: original}
				}
				cs.AdditionalMsg = msg(c)
				return
			}
		}
	}

	for i := range s.CourseStatuses {
		cs := &s.CourseStatuses[i]
		if cs.Irrelevant() {
			continue
		}
		if _, inCatalog := cat.CourseToBank[cs.Course.ID]; inCatalog {
			continue
		}
		if isReplacement(replaced, cs.Course.ID) {
			continue
		}
		find(cs, cat.CatalogReplacements, catalogReplacementMsg)
		if !isReplacement(replaced, cs.Course.ID) {
			find(cs, cat.CommonReplacements, commonReplacementMsg)
		}
	}

	for original, replacement := range replaced {
		cat.ReplaceCourses(original, replacement)
	}
}

func isReplacement(replaced map[string]string, id string) bool {
	for _, r := range replaced {
		if r == id {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
