package degree

import (
	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
)

type evaluation struct {
	status  *Status
	catalog catalog.Catalog
	courses map[string]course.Course
	malags  map[string]bool

	creditOverflow  map[string]float64 // bank -> credit moved into it
	missingCredit   map[string]float64 // bank -> credit added to its requirement
	coursesOverflow map[string]int     // bank -> courses moved into it
	leftovers       float64
}

// Compute evaluates the student's course statuses against the catalog and stores the result in st.
// The catalog is not modified.
func Compute(cat catalog.Catalog, courses map[string]course.Course, malags []string, st *Status) error {
	ev := &evaluation{
		status:          st,
		catalog:         cat.Clone(),
		courses:         courses,
		malags:          make(map[string]bool, len(malags)),
		creditOverflow:  make(map[string]float64),
		missingCredit:   make(map[string]float64),
		coursesOverflow: make(map[string]int),
	}
	for _, id := range malags {
		ev.malags[id] = true
	}

	st.preprocess(&ev.catalog, courses)

	banks, err := TraversalOrder(ev.catalog.CourseBanks, ev.catalog.CreditOverflows, ev.catalog.CoursesOverflows)
	if err != nil {
		return errors.Wrap(err, "ordering course banks")
	}
	for _, bank := range banks {
		ev.evaluateBank(bank)
	}

	st.OverflowMsgs = append(st.OverflowMsgs, creditLeftoversMsg(ev.leftovers))
	for _, req := range st.CourseBankRequirements {
		st.TotalCredit += req.CreditCompleted
	}
	return nil
}

// bankCourses lists the catalog courses of the bank and the courses the student moved into it.
func (ev *evaluation) bankCourses(bank string) []string {
	ids := ev.catalog.CoursesOfBank(bank)
	for _, cs := range ev.status.CourseStatuses {
		if cs.Modified && cs.Type == bank && !cs.Irrelevant() {
			ids = append(ids, cs.Course.ID)
		}
	}
	return ids
}

func (ev *evaluation) evaluateBank(bank catalog.CourseBank) {
	h := newRuleHandler(ev.status, bank, ev.bankCourses(bank.Name), ev.courses)

	var res bankResult
	switch bank.Rule.Kind {
	case catalog.RuleAll:
		var missing float64
		res, missing = h.all()
		if missing > 0 {
			if to, ok := ev.catalog.CreditOverflowFrom(bank.Name); ok {
				ev.missingCredit[to] += missing
				ev.addMsg(missingCreditMsg(missing, bank.Name, to))
			}
		}
	case catalog.RuleAccumulateCredit:
		res = h.accumulateCredit()
	case catalog.RuleAccumulateCourses:
		res = h.accumulateCourses(bank.Rule.NumCourses)
	case catalog.RuleMalag:
		res = h.malag(ev.malags)
	case catalog.RuleSport:
		res = h.sport()
	case catalog.RuleFreeChoice:
		res = h.freeChoice()
	case catalog.RuleChains:
		res = h.chains(bank.Rule.Chains)
	case catalog.RuleSpecializationGroups:
		res = h.specializationGroups(bank.Rule.SpecializationGroups)
	default:
		res = h.accumulateCredit()
	}

	if missing := ev.missingCredit[bank.Name]; missing > 0 && bank.Rule.Kind != catalog.RuleAll {
		base := 0.0
		if res.creditRequirement != nil {
			base = *res.creditRequirement
		}
		total := base + missing
		res.creditRequirement = &total
	}

	credit := res.credit + ev.creditOverflow[bank.Name]
	courses := res.courses + ev.coursesOverflow[bank.Name]

	credit = ev.moveCredit(bank.Name, credit, res.creditRequirement)
	if res.courseRequirement != nil && bank.Rule.Kind == catalog.RuleAccumulateCourses {
		courses = ev.moveCourses(bank.Name, courses, *res.courseRequirement)
	}

	ev.status.CourseBankRequirements = append(ev.status.CourseBankRequirements, Requirement{
		CourseBankName:    bank.Name,
		BankRuleName:      bank.Rule.String(),
		CreditRequirement: res.creditRequirement,
		CourseRequirement: res.courseRequirement,
		CreditCompleted:   credit,
		CourseCompleted:   courses,
		Completed:         res.isCompleted(credit, courses),
		Message:           res.message,
	})
}

// moveCredit caps the bank's credit at its requirement and moves the excess along the credit overflow rule.
// A bank without a credit requirement moves all of its credit. Excess with nowhere to go is leftover.
func (ev *evaluation) moveCredit(bank string, credit float64, req *float64) float64 {
	to, hasRule := ev.catalog.CreditOverflowFrom(bank)
	if req == nil {
		if hasRule {
			ev.creditOverflow[to] += credit
			ev.addMsg(creditOverflowDetailedMsg(bank, to))
			return 0
		}
		return credit
	}
	if credit <= *req {
		return credit
	}
	excess := credit - *req
	if hasRule {
		ev.creditOverflow[to] += excess
		ev.addMsg(creditOverflowMsg(excess, bank, to))
	} else {
		ev.leftovers += excess
	}
	return *req
}

func (ev *evaluation) moveCourses(bank string, courses, req int) int {
	if courses <= req {
		return courses
	}
	to, ok := ev.catalog.CoursesOverflowFrom(bank)
	if !ok {
		return courses
	}
	excess := courses - req
	ev.coursesOverflow[to] += excess
	ev.addMsg(coursesOverflowMsg(excess, bank, to))
	return req
}

func (res bankResult) isCompleted(credit float64, courses int) bool {
	if res.creditRequirement != nil && credit < *res.creditRequirement {
		return false
	}
	return res.done == nil || res.done(courses)
}

func (ev *evaluation) addMsg(msg string) {
	ev.status.OverflowMsgs = append(ev.status.OverflowMsgs, msg)
}
