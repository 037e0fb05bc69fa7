package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"invite-quiz-service/internal/domain"
)

// CueAmbienceStart tells the client to start the background audio.
const CueAmbienceStart = "ambience:start"

var errNoListener = errors.New("no client connected to play ambience")

// Update is published to subscribers after every processed event.
type Update struct {
	Snapshot domain.ViewSnapshot
	Cue      string
}

// Visitor is one page session. It runs the orchestrator on its own event
// loop: commands, timer expirations and fetch results are processed one at a time.
type Visitor struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	events chan func()
	done   chan struct{}
	orch   *Orchestrator

	// loop-owned
	cue string

	mu          sync.Mutex
	subscribers map[chan Update]struct{}
	closeOnce   sync.Once
}

func NewVisitor(id string, deps Dependencies, opts Options) *Visitor {
	ctx, cancel := context.WithCancel(context.Background())
	v := &Visitor{
		id:          id,
		ctx:         ctx,
		cancel:      cancel,
		events:      make(chan func(), 32),
		done:        make(chan struct{}),
		subscribers: make(map[chan Update]struct{}),
	}
	v.orch = NewOrchestrator(v, deps, opts, v)
	go v.run()
	return v
}

func (v *Visitor) ID() string {
	return v.id
}

// Do runs fn on the loop and returns the resulting snapshot.
func (v *Visitor) Do(ctx context.Context, fn func(o *Orchestrator) error) (domain.ViewSnapshot, error) {
	type result struct {
		snap domain.ViewSnapshot
		err  error
	}
	reply := make(chan result, 1)
	ok := v.post(func() {
		err := fn(v.orch)
		reply <- result{snap: v.snapshot(), err: err}
	})
	if !ok {
		return domain.ViewSnapshot{}, domain.ErrVisitorClosed
	}
	select {
	case r := <-reply:
		return r.snap, r.err
	case <-ctx.Done():
		return domain.ViewSnapshot{}, ctx.Err()
	case <-v.done:
		return domain.ViewSnapshot{}, domain.ErrVisitorClosed
	}
}

// Snapshot returns the current view state.
func (v *Visitor) Snapshot(ctx context.Context) (domain.ViewSnapshot, error) {
	return v.Do(ctx, func(*Orchestrator) error { return nil })
}

// Subscribe returns a channel receiving an update after every event, starting
// with the current state. The caller must invoke cancel to avoid leaks.
func (v *Visitor) Subscribe(ctx context.Context) (<-chan Update, func(), error) {
	ch := make(chan Update, 8)
	_, err := v.Do(ctx, func(*Orchestrator) error {
		v.mu.Lock()
		v.subscribers[ch] = struct{}{}
		v.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	cancel := func() {
		v.mu.Lock()
		if _, ok := v.subscribers[ch]; ok {
			delete(v.subscribers, ch)
			close(ch)
		}
		v.mu.Unlock()
	}
	return ch, cancel, nil
}

// IsIdle reports whether no client is subscribed.
func (v *Visitor) IsIdle() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subscribers) == 0
}

// Close stops the loop, cancels outstanding timers and closes subscriptions.
// It must not be called from the loop itself.
func (v *Visitor) Close() {
	v.closeOnce.Do(func() {
		v.cancel()
		<-v.done

		v.mu.Lock()
		for ch := range v.subscribers {
			delete(v.subscribers, ch)
			close(ch)
		}
		v.mu.Unlock()
	})
}

// Start implements Ambience by cueing the connected clients.
func (v *Visitor) Start() error {
	v.mu.Lock()
	n := len(v.subscribers)
	v.mu.Unlock()
	if n == 0 {
		return errNoListener
	}
	v.cue = CueAmbienceStart
	return nil
}

// AfterFunc implements Loop.
func (v *Visitor) AfterFunc(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		v.post(func() {
			// Stop may have lost the race against the expiry
			if !lt.stopped {
				fn()
			}
		})
	})
	return lt
}

// Go implements Loop.
func (v *Visitor) Go(work func(ctx context.Context) func()) {
	go func() {
		if fn := work(v.ctx); fn != nil {
			v.post(fn)
		}
	}()
}

func (v *Visitor) run() {
	defer close(v.done)
	for {
		select {
		case fn := <-v.events:
			fn()
			v.publish()
		case <-v.ctx.Done():
			v.orch.Close()
			return
		}
	}
}

func (v *Visitor) post(fn func()) bool {
	if v.ctx.Err() != nil {
		return false
	}
	select {
	case v.events <- fn:
		return true
	case <-v.ctx.Done():
		return false
	}
}

func (v *Visitor) snapshot() domain.ViewSnapshot {
	snap := v.orch.Snapshot()
	snap.VisitorID = v.id
	return snap
}

func (v *Visitor) publish() {
	update := Update{Snapshot: v.snapshot(), Cue: v.cue}
	v.cue = ""

	v.mu.Lock()
	defer v.mu.Unlock()
	for ch := range v.subscribers {
		select {
		case ch <- update:
		default:
			// drop the oldest pending update so a slow client never blocks the loop
			select {
			case <-ch:
			default:
			}
			ch <- update
		}
	}
}

type loopTimer struct {
	t       *time.Timer
	stopped bool
}

func (lt *loopTimer) Stop() bool {
	lt.stopped = true
	return lt.t.Stop()
}
