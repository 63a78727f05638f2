package client

import (
	"context"
	"sync"
	"time"

	"github.com/sogrim/sogrim/core/registration"
	"github.com/sogrim/sogrim/core/user"
)

// DefaultPollInterval is how often the user state is refetched when nothing asks for it sooner.
const DefaultPollInterval = 30 * time.Second

type (
	UserStateFetcher interface {
		GetUserState(ctx context.Context) (user.User, error)
	}

	// Update is the outcome of one fetch.
	Update struct {
		User user.User
		Step registration.Step
		// Applied is false when the stepper kept its step because a dialog is open.
		Applied bool
		Err     error
	}

	// Refresher polls the user state and pushes every result to the stepper.
	// Fetches never overlap: a refetch requested while one is in flight runs after it settles.
	Refresher struct {
		fetcher  UserStateFetcher
		stepper  *registration.Stepper
		interval time.Duration
		onUpdate func(Update)
		refetch  chan struct{}

		mutex   sync.Mutex
		loading bool
		last    *user.User
		lastErr error
	}
)

func NewRefresher(fetcher UserStateFetcher, stepper *registration.Stepper, interval time.Duration, onUpdate func(Update)) *Refresher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}
	return &Refresher{
		fetcher:  fetcher,
		stepper:  stepper,
		interval: interval,
		onUpdate: onUpdate,
		refetch:  make(chan struct{}, 1),
	}
}

// Refetch asks for a fetch as soon as the current one, if any, settles. It never blocks.
func (r *Refresher) Refetch() {
	select {
	case r.refetch <- struct{}{}:
	default:
	}
}

func (r *Refresher) Loading() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.loading
}

// Last returns the last fetched user, if any.
func (r *Refresher) Last() (user.User, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.last == nil {
		return user.User{}, false
	}
	return *r.last, true
}

func (r *Refresher) Err() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.lastErr
}

// Run fetches immediately and then on every tick or Refetch until ctx is done.
// It returns ErrUnauthorized when the token is rejected, nil when ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if err := r.fetch(ctx); IsUnauthorized(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-r.refetch:
		}
	}
}

func (r *Refresher) fetch(ctx context.Context) error {
	r.mutex.Lock()
	r.loading = true
	r.mutex.Unlock()

	usr, err := r.fetcher.GetUserState(ctx)

	r.mutex.Lock()
	r.loading = false
	r.lastErr = err
	if err == nil {
		r.last = &usr
	}
	r.mutex.Unlock()

	if ctx.Err() != nil {
		return nil
	}
	upd := Update{User: usr, Err: err}
	if err == nil {
		upd.Step, upd.Applied = r.stepper.Refresh(usr)
	} else {
		upd.Step = r.stepper.Step()
	}
	r.onUpdate(upd)
	return err
}
