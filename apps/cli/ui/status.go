package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/sogrim/sogrim/core/degree"
	"github.com/sogrim/sogrim/core/user"
)

const barWidth = 24

// RenderStatus renders one row per course bank with its progress bar and subtitle, then the overflow messages.
func RenderStatus(usr user.User, styles Styles) string {
	var b strings.Builder

	title := "No catalog selected"
	if usr.HasCatalog() {
		title = usr.Details.Catalog.Name
	}
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")

	st := usr.Details.DegreeStatus
	if len(st.CourseBankRequirements) == 0 {
		b.WriteString(styles.Muted.Render("Degree status not computed yet."))
		b.WriteString("\n")
		return b.String()
	}

	nameWidth := 0
	for _, req := range st.CourseBankRequirements {
		if w := lipgloss.Width(req.CourseBankName); w > nameWidth {
			nameWidth = w
		}
	}

	bar := progress.New(progress.WithSolidFill(string(styles.Theme.Primary)), progress.WithWidth(barWidth), progress.WithoutPercentage())
	for _, req := range st.CourseBankRequirements {
		b.WriteString(renderRequirement(req, bar, nameWidth, styles))
		b.WriteString("\n")
	}

	if usr.HasCatalog() {
		total := fmt.Sprintf("Total credit: %s of %s", formatCredit(st.TotalCredit), formatCredit(usr.Details.Catalog.TotalCredit))
		b.WriteString("\n")
		b.WriteString(styles.Bold.Render(total))
		b.WriteString("\n")
	}
	for _, msg := range st.OverflowMsgs {
		b.WriteString(styles.Muted.Render("• " + msg))
		b.WriteString("\n")
	}
	if usr.Details.Modified {
		b.WriteString(styles.Warning.Render("Courses changed since the last computation: finalize again to update."))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRequirement(req degree.Requirement, bar progress.Model, nameWidth int, styles Styles) string {
	pct := req.Progress()
	mark := styles.Muted.Render("○")
	if req.Completed {
		mark = styles.Success.Render("✓")
	}
	name := styles.Body.Render(req.CourseBankName + strings.Repeat(" ", nameWidth-lipgloss.Width(req.CourseBankName)))
	line := fmt.Sprintf("%s %s  %s %3d%%  %s", mark, name, bar.ViewAs(pct/100), int(pct), styles.Subtitle.Render(req.Subtitle()))
	if req.Message != "" {
		line += "\n    " + styles.Muted.Render(req.Message)
	}
	return line
}

func formatCredit(credit float64) string {
	return strconv.FormatFloat(credit, 'f', -1, 64)
}
