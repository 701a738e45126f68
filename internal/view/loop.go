package view

import (
	"context"
	"sync"
)

// Loop serializes every change to screen state onto one goroutine, the UI thread.
// Network callbacks post tasks here instead of touching the screen.
type Loop struct {
	tasks    chan func()
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewLoop() *Loop {
	return &Loop{
		tasks:   make(chan func(), 64),
		stopped: make(chan struct{}),
	}
}

// Run executes posted tasks in order until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	defer l.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopped:
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post queues fn for the UI goroutine. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case <-l.stopped:
		return false
	case l.tasks <- fn:
		return true
	}
}

// Call runs fn on the UI goroutine and waits for it to finish.
func (l *Loop) Call(fn func()) bool {
	done := make(chan struct{})
	if !l.Post(func() {
		fn()
		close(done)
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-l.stopped:
		return false
	}
}

func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopped) })
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}
