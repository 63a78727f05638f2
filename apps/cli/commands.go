package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sogrim/sogrim/apps/cli/ui"
	"github.com/sogrim/sogrim/client"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/registration"
	"github.com/sogrim/sogrim/core/user"
)

var errSessionExpired = errors.New("session expired: sign in again and pass the new token")

// loginError replaces an unauthorized error with a hint to sign in again.
func loginError(err error) error {
	if client.IsUnauthorized(err) {
		return errSessionExpired
	}
	return err
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your degree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			usr, err := c.GetUserState(cmd.Context())
			if err != nil {
				return loginError(err)
			}
			printUser(cmd, usr)
			return nil
		},
	}
}

func printUser(cmd *cobra.Command, usr user.User) {
	styles := ui.NewStyles(ui.ThemeFor(usr.Settings.DarkMode))
	cmd.Println(ui.RenderStatus(usr, styles))
	cmd.Println(styles.Muted.Render("Next step: " + registration.Derive(usr).String()))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers(headers...)
}

func newCatalogsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalogs",
		Short: "List the catalogs you can select",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			cats, err := c.GetCatalogs(cmd.Context())
			if err != nil {
				return loginError(err)
			}
			if len(cats) == 0 {
				cmd.Println("No catalogs available.")
				return nil
			}
			t := newTable("ID", "NAME", "CREDITS", "FACULTY")
			for _, cat := range cats {
				t.Row(cat.ID, cat.Name, fmt.Sprint(cat.TotalCredit), cat.Faculty)
			}
			cmd.Println(t.Render())
			return nil
		},
	}
}

func newSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <catalog-id>",
		Short: "Select your catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			usr, err := c.UpdateCatalog(cmd.Context(), args[0])
			if err != nil {
				return loginError(err)
			}
			cmd.Printf("Selected %s.\n", usr.Details.Catalog.Name)
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import your courses from a YAML file or a copied grade sheet",
		Long: `Import replaces your course statuses with the ones in the file, eg.

  - course: {id: "104031", name: Calculus 1M, credit: 5.5}
    semester: winter_1
    grade: 87

A grade sheet copied from the student portal, from "גיליון ציונים" down to
"סוף גיליון ציונים", is accepted as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := ui.LoadCourses(file)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			usr, err := c.AddCourses(cmd.Context(), statuses)
			if err != nil {
				return loginError(err)
			}
			cmd.Printf("Imported %d course statuses. Next step: %s\n", len(usr.Details.DegreeStatus.CourseStatuses), registration.Derive(usr))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path of the courses file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newFinalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "finalize",
		Short: "Compute your degree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			usr, err := finalize(cmd.Context(), c)
			if err != nil {
				return loginError(err)
			}
			printUser(cmd, usr)
			return nil
		},
	}
}

// finalize runs a single computation through a Finalizer, the same path the stepper takes.
func finalize(ctx context.Context, c client.DegreeStatusComputer) (user.User, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		result user.User
		resErr error
		done   bool
	)
	finalizer := registration.NewFinalizer()
	finalizer.Trigger()
	err := client.RunFinalize(runCtx, c, finalizer, func(usr user.User, err error) {
		result, resErr, done = usr, err, true
		cancel()
	})
	switch {
	case err != nil:
		return user.User{}, err
	case !done:
		return user.User{}, errors.Wrap(ctx.Err(), "computing degree status")
	case resErr != nil:
		return user.User{}, resErr
	}
	return result, nil
}

func newSearchCmd(a *app) *cobra.Command {
	var filter course.QueryFilter
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search courses by name or number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if filter.IsEmpty() {
				return errors.New("pass --name or --number")
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			courses, err := c.SearchCourses(cmd.Context(), filter)
			if err != nil {
				return loginError(err)
			}
			a.logger.Debug("search", zap.String("name", filter.Name), zap.String("number", filter.Number), zap.Int("results", len(courses)))
			if len(courses) == 0 {
				cmd.Println("No courses found.")
				return nil
			}
			t := newTable("NUMBER", "NAME", "CREDIT")
			for _, crs := range courses {
				t.Row(crs.ID, crs.Name, fmt.Sprint(crs.Credit))
			}
			cmd.Println(t.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Name, "name", "", "part of the course name")
	cmd.Flags().StringVar(&filter.Number, "number", "", "course number prefix")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of results")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who the token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token := a.v.GetString("token")
			if token == "" {
				return errNoToken
			}
			profile, err := client.DecodeToken(token)
			if err != nil {
				return err
			}
			cmd.Printf("%s <%s>\nsubject: %s\n", profile.Name, profile.Email, profile.Subject)
			return nil
		},
	}
}

func newStepperCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stepper",
		Short: "Walk through registration interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !stdoutIsTerminal(a) {
				return errors.New("the stepper needs an interactive terminal")
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			return a.runStepper(a, c, cmd)
		},
	}
}
