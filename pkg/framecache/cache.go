// Package framecache schedules frame decodes for one player and publishes
// the most recently requested frame.
//
// A single worker goroutine owns one in-flight decode. Requests made while
// a decode is running replace the target instead of queueing, and every
// completion carries the generation token it was dispatched with: a result
// whose token is no longer current is discarded, so a slow decode can never
// overwrite a newer selection. Decoded frames are written into a spare
// buffer and published with an atomic pointer swap.
package framecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/user/happlay/pkg/hap"
	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/texture"
)

// ErrClosed is returned by Wait after Close.
var ErrClosed = errors.New("framecache: closed")

// State is the scheduler state for the latest requested frame.
type State int32

const (
	// Idle: nothing has been requested yet.
	Idle State = iota
	// DecodePending: the latest target is being decoded or waits for the worker.
	DecodePending
	// Ready: the latest target is published.
	Ready
	// Failed: decoding the latest target failed; the last good frame stays published.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DecodePending:
		return "decode_pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// DecodedFrame is a published frame.
type DecodedFrame struct {
	Index   int
	Texture *texture.Texture
}

// Stats are cumulative scheduler counters.
type Stats struct {
	Requests  int64 // Request calls
	CacheHits int64 // requests satisfied by the published frame
	Decodes   int64 // successful decodes that were published
	Failures  int64 // failed decodes of the current target
	Discarded int64 // completions dropped because a newer request superseded them
}

type job struct {
	index int
	token uint64
	frame *DecodedFrame
}

type result struct {
	index int
	token uint64
	frame *DecodedFrame
	err   error
}

// Cache is the frame scheduler. Request, Poll and Wait are meant to be
// called from one goroutine (the player's update loop); Current, State, Err
// and Stats may be called from any goroutine.
type Cache struct {
	dec    ports.FrameDecoder
	logger ports.Logger

	ctx    context.Context
	cancel context.CancelFunc
	jobs   chan job
	done   chan result
	wg     sync.WaitGroup
	once   sync.Once

	mu            sync.Mutex
	state         State
	err           error
	target        int
	token         uint64
	inflight      bool
	inflightIndex int
	inflightToken uint64
	buffers       [2]*DecodedFrame
	closed        bool

	current atomic.Pointer[DecodedFrame]

	requests  atomic.Int64
	hits      atomic.Int64
	decodes   atomic.Int64
	failures  atomic.Int64
	discarded atomic.Int64
}

// New starts a cache whose worker decodes with dec.
func New(dec ports.FrameDecoder, logger ports.Logger) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		dec:    dec,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(chan job, 1),
		done:   make(chan result, 1),
		target: -1,
		buffers: [2]*DecodedFrame{
			{Index: -1, Texture: &texture.Texture{}},
			{Index: -1, Texture: &texture.Texture{}},
		},
	}
	c.wg.Add(1)
	go c.worker()
	return c
}

func (c *Cache) worker() {
	defer c.wg.Done()
	for j := range c.jobs {
		err := c.dec.DecodeFrame(c.ctx, j.index, j.frame.Texture)
		if err == nil {
			j.frame.Index = j.index
		}
		// Only one job is in flight, so the buffered send never blocks.
		c.done <- result{index: j.index, token: j.token, frame: j.frame, err: err}
	}
}

// Request selects index as the frame to show. It never blocks.
func (c *Cache) Request(index int) {
	c.requests.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if index == c.target && c.state != Idle {
		// Same target: a pending decode keeps its token, a failed one is
		// not retried until a different frame has been requested.
		if c.state == Ready {
			c.hits.Add(1)
		}
		return
	}

	c.target = index
	if cur := c.current.Load(); cur != nil && cur.Index == index {
		c.token++
		c.state = Ready
		c.err = nil
		c.hits.Add(1)
		return
	}

	if c.inflight && c.inflightIndex == index {
		c.token = c.inflightToken
	} else {
		c.token++
	}
	c.state = DecodePending
	c.err = nil
	c.dispatchLocked()
}

// Poll publishes a finished decode, if any, and dispatches the latest
// target when the worker is free. It never blocks.
func (c *Cache) Poll() State {
	select {
	case r := <-c.done:
		c.mu.Lock()
		c.completeLocked(r)
		c.dispatchLocked()
		c.mu.Unlock()
	default:
	}
	return c.State()
}

// Wait blocks until the latest target is Ready or Failed, or ctx ends.
// It returns the decode error when the target failed.
func (c *Cache) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		state, err, closed := c.state, c.err, c.closed
		c.mu.Unlock()

		if closed {
			return ErrClosed
		}
		if state != DecodePending {
			return err
		}

		select {
		case r := <-c.done:
			c.mu.Lock()
			c.completeLocked(r)
			c.dispatchLocked()
			c.mu.Unlock()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Cache) completeLocked(r result) {
	c.inflight = false

	if r.token != c.token {
		c.discarded.Add(1)
		c.logger.Debug("Discarded decode of frame %d", r.index)
		return
	}

	if r.err != nil {
		var de *hap.DecodeError
		if !errors.As(r.err, &de) {
			r.err = &hap.DecodeError{Index: r.index, Err: r.err}
		}
		c.state = Failed
		c.err = r.err
		c.failures.Add(1)
		c.logger.Warn("Failed to decode frame %d: %v", r.index, r.err)
		return
	}

	c.current.Store(r.frame)
	c.state = Ready
	c.err = nil
	c.decodes.Add(1)
}

// dispatchLocked hands the latest target to the worker if it is idle.
func (c *Cache) dispatchLocked() {
	if c.inflight || c.closed || c.state != DecodePending {
		return
	}

	// Decode into the buffer that is not published.
	spare := c.buffers[0]
	if spare == c.current.Load() {
		spare = c.buffers[1]
	}

	c.inflight = true
	c.inflightIndex = c.target
	c.inflightToken = c.token
	c.jobs <- job{index: c.target, token: c.token, frame: spare}
}

// Current returns the published frame, or nil before the first successful
// decode. The frame stays valid until a later Poll or Wait publishes
// another one.
func (c *Cache) Current() *DecodedFrame {
	return c.current.Load()
}

// State returns the scheduler state for the latest target.
func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the decode error of the latest target when State is Failed.
func (c *Cache) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Target returns the latest requested index, or -1.
func (c *Cache) Target() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Requests:  c.requests.Load(),
		CacheHits: c.hits.Load(),
		Decodes:   c.decodes.Load(),
		Failures:  c.failures.Load(),
		Discarded: c.discarded.Load(),
	}
}

// Close cancels any running decode and stops the worker. It is safe to call
// more than once.
func (c *Cache) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		c.cancel()
		close(c.jobs)
		c.wg.Wait()
	})
}
