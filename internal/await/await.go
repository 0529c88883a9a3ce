// Package await provides a level-triggered signal for waiting on a boolean
// condition. Unlike sync.Cond.Broadcast(), a waiter that arrives after the
// condition was raised still unblocks immediately.
package await

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Flag.Wait() after Flag.Close() has been called.
var ErrClosed = errors.New("await: flag closed")

// A Flag blocks Wait()ers while lowered and releases them while raised. The
// zero value is a lowered Flag. A Flag contains a sync.Mutex and must not be
// copied.
//
// A raised Flag holds a token in a single-slot buffered channel; lowering
// drains it. Wait() receives the token and puts it straight back, so any
// number of waiters unblock while the Flag stays raised, and the receive can
// be raced against context cancellation.
type Flag struct {
	mu     sync.Mutex
	raised bool
	tokens chan struct{} // lazily created; always access via tokenChan
}

func (f *Flag) tokenChan() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenChanLocked()
}

func (f *Flag) tokenChanLocked() chan struct{} {
	if f.tokens == nil {
		f.tokens = make(chan struct{}, 1)
	}
	return f.tokens
}

// Set raises or lowers the Flag. Calls are idempotent. Set must not be
// called after Close.
func (f *Flag) Set(raised bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if raised == f.raised {
		return
	}
	f.raised = raised

	ch := f.tokenChanLocked()
	if raised {
		ch <- struct{}{}
	} else {
		<-ch
	}
}

// Raised returns the value last passed to Set(), or false before any call.
func (f *Flag) Raised() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raised
}

// Wait blocks until the Flag is raised, the Flag is closed, or the context
// is cancelled, in which cases it returns nil, ErrClosed, or ctx.Err()
// respectively. If the Flag is already raised it returns immediately.
func (f *Flag) Wait(ctx context.Context) error {
	ch := f.tokenChan()

	select {
	case <-ctx.Done():
		return ctx.Err()

	case tok, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		ch <- tok
		return nil
	}
}

// Close releases every current and future Wait()er with ErrClosed. The Flag
// may be raised when closed. It must not be used after Close other than by
// Wait().
func (f *Flag) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := f.tokenChanLocked()
	if f.raised {
		// The channel must be empty when closed; Wait() re-sends any token
		// it receives.
		<-ch
		f.raised = false
	}
	close(ch)
}
