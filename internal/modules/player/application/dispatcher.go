package application

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// taskBuffer is the per-guild task queue depth. Submissions beyond it
// block the submitter, preserving order.
const taskBuffer = 64

// Task is a unit of work executed on a guild's serialized loop.
type Task func(ctx context.Context)

// Dispatcher linearizes all work for a guild onto a single goroutine.
// Tasks for the same guild run strictly in submission order, one at a
// time, to completion; tasks for different guilds run concurrently.
// This is the only mutual-exclusion mechanism guarding session state:
// the audio transport's completion callback and every command handler
// go through here rather than touching sessions directly.
type Dispatcher struct {
	mu     sync.Mutex
	loops  map[snowflake.ID]chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// NewDispatcher creates a Dispatcher. Guild loops are created lazily on
// first submission.
func NewDispatcher() *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		loops:  make(map[snowflake.ID]chan Task),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Submit enqueues a task on the guild's loop and returns without
// waiting for it to run. Safe to call from any goroutine, including
// transport completion callbacks.
func (d *Dispatcher) Submit(guildID snowflake.ID, task Task) {
	loop := d.loop(guildID)
	if loop == nil {
		return
	}
	select {
	case loop <- task:
	case <-d.ctx.Done():
	}
}

// Run enqueues a task and blocks until it has finished executing. Used
// by command handlers that need the operation's result before
// acknowledging. Returns ErrShuttingDown when the dispatcher is closed
// before the task completes; the task's results must then be discarded.
func (d *Dispatcher) Run(guildID snowflake.ID, task Task) error {
	loop := d.loop(guildID)
	if loop == nil {
		return ErrShuttingDown
	}

	done := make(chan struct{})
	wrapped := func(ctx context.Context) {
		defer close(done)
		task(ctx)
	}

	select {
	case loop <- wrapped:
	case <-d.ctx.Done():
		return ErrShuttingDown
	}

	select {
	case <-done:
		return nil
	case <-d.ctx.Done():
		// The loop may still be finishing the task; only report
		// completion if it actually got there.
		select {
		case <-done:
			return nil
		default:
			return ErrShuttingDown
		}
	}
}

// Close stops all guild loops. Pending tasks are discarded.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) loop(guildID snowflake.ID) chan Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	if loop, ok := d.loops[guildID]; ok {
		return loop
	}

	loop := make(chan Task, taskBuffer)
	d.loops[guildID] = loop

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-d.ctx.Done():
				return
			case task := <-loop:
				task(d.ctx)
			}
		}
	}()

	return loop
}
