package registration

import "sync"

// Finalizer is the "compute my degree status" trigger. At most one computation is pending at a time.
type Finalizer struct {
	mutex    sync.Mutex
	pending  bool
	lastErr  error
	triggers chan struct{}
}

func NewFinalizer() *Finalizer {
	return &Finalizer{triggers: make(chan struct{}, 1)}
}

// Trigger requests a computation. It returns false and does nothing while one is pending.
func (f *Finalizer) Trigger() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.pending {
		return false
	}
	f.pending = true
	f.lastErr = nil
	select {
	case f.triggers <- struct{}{}:
	default: // a trigger is already queued
	}
	return true
}

// Triggers delivers one value per accepted Trigger.
func (f *Finalizer) Triggers() <-chan struct{} {
	return f.triggers
}

func (f *Finalizer) Pending() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.pending
}

// Err is the error of the last computation, nil if it succeeded or none ran.
func (f *Finalizer) Err() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.lastErr
}

// Resolve reports the outcome of the pending computation. The flag is cleared either way;
// a failed computation is not retried until triggered again.
func (f *Finalizer) Resolve(err error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.pending = false
	f.lastErr = err
}
