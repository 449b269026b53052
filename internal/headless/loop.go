package headless

import (
	"context"
)

// loop is the single task queue every bridge reaction runs on.
//
// Background work is started with spawn; its completion is posted back to the
// queue, so the bridge only ever sees one goroutine. pending is only touched
// from the loop goroutine.
type loop struct {
	queue   chan func()
	pending int
}

func newLoop() *loop {
	return &loop{queue: make(chan func(), 16)}
}

// spawn runs work in the background and queues the function it returns.
// Must be called from the loop goroutine.
func (l *loop) spawn(work func() func()) {
	l.pending++
	go func() {
		done := work()
		l.queue <- func() {
			l.pending--
			if done != nil {
				done()
			}
		}
	}()
}

// post queues fn from spawned work that is still running, such as a host
// function called by the program.
func (l *loop) post(fn func()) {
	l.queue <- fn
}

// run drains the queue until no background work is outstanding.
func (l *loop) run(ctx context.Context) error {
	for l.pending > 0 || len(l.queue) > 0 {
		select {
		case fn := <-l.queue:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
