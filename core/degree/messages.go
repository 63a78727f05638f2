package degree

import (
	"fmt"
	"strings"

	"github.com/sogrim/sogrim/core/course"
)

func pluralCredit(credit float64) string {
	switch credit {
	case 1:
		return "one credit"
	case 0.5:
		return "half a credit"
	default:
		return formatCredit(credit) + " credits"
	}
}

func commonReplacementMsg(replaced course.Course) string {
	return fmt.Sprintf("We assumed this course replaces %s (%s) as a common replacement. "+
		"Note that this replacement requires the approval of the faculty coordinators", replaced.Name, replaced.ID)
}

func catalogReplacementMsg(replaced course.Course) string {
	return fmt.Sprintf("This course replaces %s (%s)", replaced.Name, replaced.ID)
}

func creditOverflowMsg(overflow float64, from, to string) string {
	if overflow == 1 {
		return fmt.Sprintf("One credit moved from %s to %s", from, to)
	}
	return fmt.Sprintf("%s moved from %s to %s", capitalize(pluralCredit(overflow)), from, to)
}

func creditOverflowDetailedMsg(from, to string) string {
	return fmt.Sprintf("The credit completed in %s counts toward %s", from, to)
}

func coursesOverflowMsg(overflow int, from, to string) string {
	if overflow == 1 {
		return fmt.Sprintf("You completed more courses than required in %s, the extra course counts toward %s", from, to)
	}
	return fmt.Sprintf("You completed more courses than required in %s, the %d extra courses count toward %s", from, overflow, to)
}

func missingCreditMsg(missing float64, from, to string) string {
	return fmt.Sprintf("The credit of the courses you took in %s is lower than the original requirement, "+
		"so %s added to the requirement of %s", from, pluralCreditVerb(missing), to)
}

func pluralCreditVerb(credit float64) string {
	if credit == 1 || credit == 0.5 {
		return pluralCredit(credit) + " was"
	}
	return pluralCredit(credit) + " were"
}

func completedChainMsg(chain []string) string {
	return "You completed the chain: " + strings.Join(chain, ", ")
}

func completedSpecializationGroupsMsg(groups []string, needed int) string {
	switch len(groups) {
	case 0:
		return "You have not completed any specialization group"
	case 1:
		return fmt.Sprintf("You completed one specialization group (out of %d): %s", needed, groups[0])
	default:
		return fmt.Sprintf("You completed %d specialization groups (out of %d): %s", len(groups), needed, strings.Join(groups, ", "))
	}
}

func creditLeftoversMsg(credit float64) string {
	switch credit {
	case 0:
		return "You have no leftover credit"
	case 1:
		return "You have one leftover credit"
	case 0.5:
		return "You have half a leftover credit"
	default:
		return fmt.Sprintf("You have %s leftover credits", formatCredit(credit))
	}
}

func cyclicOverflowMsg(bank string) string {
	return fmt.Sprintf("the overflow rules are cyclic, the cycle starts and ends at %s", bank)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
