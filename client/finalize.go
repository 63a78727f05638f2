package client

import (
	"context"

	"github.com/sogrim/sogrim/core/registration"
	"github.com/sogrim/sogrim/core/user"
)

type DegreeStatusComputer interface {
	ComputeDegreeStatus(ctx context.Context) (user.User, error)
}

// RunFinalize runs one degree status computation per accepted finalizer trigger and resolves it.
// onDone receives each outcome. It returns ErrUnauthorized when the token is rejected, nil when ctx is cancelled.
func RunFinalize(ctx context.Context, computer DegreeStatusComputer, finalizer *registration.Finalizer, onDone func(user.User, error)) error {
	if onDone == nil {
		onDone = func(user.User, error) {}
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-finalizer.Triggers():
		}

		usr, err := computer.ComputeDegreeStatus(ctx)
		if ctx.Err() != nil {
			finalizer.Resolve(ctx.Err())
			return nil
		}
		finalizer.Resolve(err)
		onDone(usr, err)
		if IsUnauthorized(err) {
			return err
		}
	}
}
