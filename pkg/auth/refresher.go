package auth

import (
	"context"
	"sync"
	"time"
)

// RefreshMargin is how long before expiry a new token is requested.
const RefreshMargin = 1 * time.Second

// refreshFailureDelay is the wait before retrying a failed refresh.
const refreshFailureDelay = 5 * time.Second

// Refresher keeps a bearer token fresh for the lifetime of a session.
// It re-authorizes shortly before each token expires, indefinitely,
// until Stop is called.
type Refresher struct {
	mu sync.Mutex

	authorizer *Authorizer

	// Callbacks
	onToken func(*Token)
	onError func(error)

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewRefresher creates a refresher around the given authorizer.
func NewRefresher(a *Authorizer) *Refresher {
	return &Refresher{authorizer: a}
}

// OnToken sets the callback invoked with every freshly issued token.
func (r *Refresher) OnToken(fn func(*Token)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onToken = fn
}

// OnError sets the callback invoked when a refresh attempt fails.
// Failed refreshes are retried; the session keeps the previous token
// until the platform rejects it.
func (r *Refresher) OnError(fn func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = fn
}

// Start begins the refresh loop, scheduling the first refresh relative
// to the supplied token's expiry. Calling Start twice is a no-op.
func (r *Refresher) Start(initial *Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go r.loop(ctx, initial.TTL())
}

// Stop cancels the refresh loop and waits for it to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.started = false
	r.mu.Unlock()

	cancel()
	r.wg.Wait()
}

// loop waits out each token lifetime and re-authorizes.
func (r *Refresher) loop(ctx context.Context, ttl time.Duration) {
	defer r.wg.Done()

	for {
		delay := ttl - RefreshMargin
		if delay < 0 {
			delay = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		token, err := r.authorizer.Authorize(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.mu.Lock()
			onError := r.onError
			r.mu.Unlock()
			if onError != nil {
				onError(err)
			}
			ttl = refreshFailureDelay + RefreshMargin
			continue
		}

		r.mu.Lock()
		onToken := r.onToken
		r.mu.Unlock()
		if onToken != nil {
			onToken(token)
		}
		ttl = token.TTL()
	}
}
