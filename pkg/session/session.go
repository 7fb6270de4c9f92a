// Package session runs a placement controller on a single goroutine.
//
// A [Loop] exclusively owns one [controller.Controller]. Once per frame it
// casts the latest pointer sample against the build and recomputes the
// candidate; between frames it executes commands submitted through
// [Loop.Do] one at a time. Concurrent surfaces such as HTTP handlers and
// WebSocket connections therefore never touch build state directly: they
// send commands and receive [Frame] values.
//
// # Usage
//
//	loop := session.New(ctrl, raycast.NewPerspective(16.0/9), session.Options{
//	    FrameRate: 30,
//	    Logger:    logger,
//	})
//	go loop.Run(ctx)
//
//	frames, cancel := loop.Subscribe()
//	defer cancel()
//
//	err := loop.Do(ctx, func(c *controller.Controller) error {
//	    c.Rotate()
//	    return nil
//	})
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/brickyard/pkg/controller"
	"github.com/matzehuels/brickyard/pkg/raycast"
	"github.com/matzehuels/brickyard/pkg/snap"
)

// ErrStopped is returned by Do after the loop has exited.
var ErrStopped = errors.New("session loop stopped")

// DefaultFrameRate is used when Options.FrameRate is zero.
const DefaultFrameRate = 30

// Frame is a published snapshot of the build.
type Frame struct {
	Seq uint64 `json:"seq"`
	controller.View
}

// Options configures a Loop.
type Options struct {
	FrameRate int
	Logger    *log.Logger
}

type command struct {
	fn    func(*controller.Controller) error
	reply chan error
}

// Loop serialises all access to a controller.
type Loop struct {
	ctrl     *controller.Controller
	caster   raycast.Caster
	interval time.Duration
	logger   *log.Logger

	cmds chan command
	done chan struct{}

	// Owned by the loop goroutine.
	pointer *raycast.NDC
	last    controller.View
	seq     uint64

	mu     sync.Mutex
	frame  Frame
	subs   map[int]chan Frame
	nextID int
}

// New creates a loop for ctrl. The loop does nothing until Run is called.
func New(ctrl *controller.Controller, caster raycast.Caster, opts Options) *Loop {
	rate := opts.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	l := &Loop{
		ctrl:     ctrl,
		caster:   caster,
		interval: time.Second / time.Duration(rate),
		logger:   logger,
		cmds:     make(chan command),
		done:     make(chan struct{}),
		subs:     make(map[int]chan Frame),
	}
	l.last = ctrl.Snapshot()
	l.frame = Frame{View: l.last}
	ctrl.AddListener(controller.ListenerFunc(func(cm controller.Commit) {
		logger.Debug("piece placed",
			"id", cm.Piece.ID,
			"type", cm.Piece.Type,
			"contact", cm.Contact,
			"y", cm.Piece.Y())
	}))
	return l
}

// Run ticks the controller and executes commands until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Debug("session loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.closeSubscribers()
			l.logger.Debug("session loop stopped")
			return ctx.Err()
		case <-ticker.C:
			l.tick()
			l.publish()
		case cmd := <-l.cmds:
			err := cmd.fn(l.ctrl)
			l.publish()
			cmd.reply <- err
		}
	}
}

func (l *Loop) tick() {
	if l.pointer == nil {
		return
	}
	l.ctrl.Tick(l.caster.Cast(*l.pointer, l.ctrl.Live()))
}

// Do runs fn on the loop goroutine and waits for it to return. fn must not
// retain the controller.
func (l *Loop) Do(ctx context.Context, fn func(*controller.Controller) error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case l.cmds <- cmd:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-l.done:
		return ErrStopped
	}
}

// Point records a new pointer sample and recomputes the candidate for it.
func (l *Loop) Point(ctx context.Context, ndc raycast.NDC) error {
	return l.Do(ctx, func(c *controller.Controller) error {
		l.pointer = &ndc
		l.tick()
		return nil
	})
}

// Leave forgets the pointer, e.g. when it exits the viewport.
func (l *Loop) Leave(ctx context.Context) error {
	return l.Do(ctx, func(c *controller.Controller) error {
		l.pointer = nil
		c.Tick(snap.NoHit())
		return nil
	})
}

// Frame returns the most recently published frame.
func (l *Loop) Frame() Frame {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame
}

// Subscribe returns a channel receiving every newly published frame. Slow
// subscribers only see the latest frame. Call cancel to unsubscribe.
func (l *Loop) Subscribe() (frames <-chan Frame, cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	ch := make(chan Frame, 1)
	ch <- l.frame
	l.subs[id] = ch
	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if c, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(c)
		}
	}
}

func (l *Loop) publish() {
	v := l.ctrl.Snapshot()
	if v.Equal(l.last) {
		return
	}
	l.last = v
	l.seq++
	f := Frame{Seq: l.seq, View: v}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.frame = f
	for _, ch := range l.subs {
		select {
		case <-ch:
		default:
		}
		ch <- f
	}
}

func (l *Loop) closeSubscribers() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, ch := range l.subs {
		close(ch)
		delete(l.subs, id)
	}
}
