package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sogrim/sogrim/apps/cli/ui"
	"github.com/sogrim/sogrim/client"
	"github.com/sogrim/sogrim/core/registration"
	"github.com/sogrim/sogrim/core/user"
)

// runStepper runs the bubbletea program. Polling and finalizing run in their own goroutines and
// post their results to the program as messages.
func runStepper(a *app, c *client.Client, cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	stepper := registration.NewStepper()
	finalizer := registration.NewFinalizer()

	var p *tea.Program
	refresher := client.NewRefresher(c, stepper, a.pollInterval(), func(upd client.Update) {
		if upd.Err != nil {
			a.logger.Debug("refresh failed", zap.Error(upd.Err))
		}
		p.Send(ui.UserMsg(upd))
	})
	p = tea.NewProgram(ui.NewModel(ctx, c, stepper, finalizer, refresher.Refetch), tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return refresher.Run(gctx)
	})
	g.Go(func() error {
		return client.RunFinalize(gctx, c, finalizer, func(usr user.User, err error) {
			p.Send(ui.FinalizedMsg{User: usr, Err: err})
		})
	})

	final, err := p.Run()
	cancel()
	werr := g.Wait()
	if m, ok := final.(ui.Model); ok && m.Expired() {
		return errSessionExpired
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "running stepper")
	}
	return loginError(werr)
}
