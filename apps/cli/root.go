package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/sogrim/sogrim/client"
)

const (
	defaultAPI = "http://localhost:8080"
	envPrefix  = "SOGRIM"
)

var errNoToken = errors.New("no token: pass --token or set SOGRIM_TOKEN")

type app struct {
	v      *viper.Viper
	out    io.Writer
	logger *zap.Logger

	// mockable
	isTerminal func(fd int) bool
	runStepper func(a *app, c *client.Client, cmd *cobra.Command) error
}

func newApp(out io.Writer) *app {
	return &app{
		v:          viper.New(),
		out:        out,
		logger:     zap.NewNop(),
		isTerminal: term.IsTerminal,
		runStepper: runStepper,
	}
}

func (a *app) client() (*client.Client, error) {
	token := a.v.GetString("token")
	if token == "" {
		return nil, errNoToken
	}
	return client.New(a.v.GetString("api"), token)
}

func (a *app) pollInterval() time.Duration {
	return a.v.GetDuration("poll")
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sogrim",
		Short: "Track your degree progress from the terminal",
		Long: `sogrim talks to the Sogrim API on behalf of a signed-in student.

Run "sogrim stepper" for the interactive registration flow: select a catalog,
import your courses and compute your degree status.

Every flag can also be set through the environment, eg. SOGRIM_TOKEN.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !a.v.GetBool("verbose") {
				return nil
			}
			conf := zap.NewDevelopmentConfig()
			conf.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			conf.OutputPaths = []string{"stderr"}
			logger, err := conf.Build()
			if err != nil {
				return errors.Wrap(err, "initializing logger")
			}
			a.logger = logger.Named(cmd.Name())
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.String("api", defaultAPI, "base URL of the Sogrim API")
	flags.String("token", "", "identity token (JWT)")
	flags.Duration("poll", client.DefaultPollInterval, "how often the stepper refetches your state")
	flags.BoolP("verbose", "v", false, "log requests to stderr")

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(flags)

	root.AddCommand(
		newStatusCmd(a),
		newCatalogsCmd(a),
		newSelectCmd(a),
		newImportCmd(a),
		newFinalizeCmd(a),
		newSearchCmd(a),
		newWhoamiCmd(a),
		newStepperCmd(a),
	)
	return root
}

func stdoutIsTerminal(a *app) bool {
	return a.isTerminal(int(os.Stdout.Fd()))
}
