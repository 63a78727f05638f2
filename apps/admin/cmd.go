package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/sogrim/sogrim/core"
	"github.com/sogrim/sogrim/core/catalog"
	"github.com/sogrim/sogrim/core/course"
	"github.com/sogrim/sogrim/core/user"
	"github.com/sogrim/sogrim/storage/database"
)

var (
	gooseRunFunc   = database.Run   // mockable
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	db         *sqlx.DB
	out        io.Writer
	usrSvc     *user.Service
	catalogSvc *catalog.Service
	courseSvc  *course.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, version, ...)")
	fmt.Fprintln(cli.out, "  importcatalog -file FILE - create or update a catalog from YAML")
	fmt.Fprintln(cli.out, "  importcourses -file FILE - create or update courses (and malags) from YAML")
	fmt.Fprintln(cli.out, "  addowner -sub SUBJECT - grant owner permissions")
	fmt.Fprintln(cli.out, "  addadmin -sub SUBJECT - grant admin permissions")
	fmt.Fprintln(cli.out, "  token -sub SUBJECT [-name NAME] [-email EMAIL] [-ttl DURATION] - mint a development bearer token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importCatalogCmd := flag.NewFlagSet("importcatalog", flag.ContinueOnError)
	importCatalogFile := importCatalogCmd.String("file", "", "The catalog YAML file.")

	importCoursesCmd := flag.NewFlagSet("importcourses", flag.ContinueOnError)
	importCoursesFile := importCoursesCmd.String("file", "", "The courses YAML file.")

	addOwnerCmd := flag.NewFlagSet("addowner", flag.ContinueOnError)
	addOwnerSub := addOwnerCmd.String("sub", "", "The user's token subject.")

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ContinueOnError)
	addAdminSub := addAdminCmd.String("sub", "", "The user's token subject.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenSub := tokenCmd.String("sub", "", "The token subject.")
	tokenName := tokenCmd.String("name", "", "The display name.")
	tokenEmail := tokenCmd.String("email", "", "The display email.")
	tokenTTL := tokenCmd.Duration("ttl", 0, "The token lifetime (defaults to the server JWT expiration).")

	for _, fs := range []*flag.FlagSet{importCatalogCmd, importCoursesCmd, addOwnerCmd, addAdminCmd, tokenCmd} {
		fs.SetOutput(cli.out)
	}

	ctx := context.Background()
	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "importcatalog":
		if err := importCatalogCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importCatalogFile == "" {
			importCatalogCmd.Usage()
			return errHelp
		}
		return cli.importCatalog(ctx, *importCatalogFile)
	case "importcourses":
		if err := importCoursesCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importCoursesFile == "" {
			importCoursesCmd.Usage()
			return errHelp
		}
		return cli.importCourses(ctx, *importCoursesFile)
	case "addowner":
		if err := addOwnerCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addOwnerSub == "" {
			addOwnerCmd.Usage()
			return errHelp
		}
		return cli.usrSvc.SetPermissions(ctx, *addOwnerSub, user.PermOwner)
	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAdminSub == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		return cli.usrSvc.SetPermissions(ctx, *addAdminSub, user.PermAdmin)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenSub == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenSub, *tokenName, *tokenEmail, *tokenTTL)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}

// stdoutIsTerminal is false in tests and pipes.
func stdoutIsTerminal() bool {
	return isTerminalFunc(int(os.Stdout.Fd()))
}

func (cli *commandLine) token(sub, name, email string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cli.conf.Server.JWTExpirationDelta
	}
	token, err := signToken(cli.conf, sub, name, email, ttl)
	if err != nil {
		return err
	}
	if stdoutIsTerminal() {
		fmt.Fprintf(cli.out, "token for %q (expires in %s):\n", sub, ttl)
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
