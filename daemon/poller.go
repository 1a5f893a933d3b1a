package daemon

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"meshbrowse/logger"
)

// StatusSource is anything that can report daemon status. *Client
// implements it.
type StatusSource interface {
	Status(ctx context.Context) Status
}

// Poller refreshes daemon status in the background and owns the current
// Status. Readers get immutable snapshots.
type Poller struct {
	source   StatusSource
	interval time.Duration
	log      logger.Logger

	current atomic.Pointer[Status]
	writeMu sync.Mutex // orders publishes, never held across a request

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	refreshCh chan struct{}
}

// NewPoller creates a poller that checks source every interval.
func NewPoller(source StatusSource, interval time.Duration, log logger.Logger) *Poller {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		source:    source,
		interval:  interval,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		refreshCh: make(chan struct{}, 1),
	}
	p.current.Store(&Status{})
	return p
}

// Start begins the background polling loop.
func (p *Poller) Start() {
	p.wg.Add(1)
	go p.loop()
}

// Stop shuts down the poller and waits for the loop to exit.
func (p *Poller) Stop() {
	p.cancel()
	p.wg.Wait()
}

// RefreshNow triggers an immediate poll.
func (p *Poller) RefreshNow() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
		// a refresh is already pending
	}
}

// Snapshot returns the most recent status.
func (p *Poller) Snapshot() Status {
	return *p.current.Load()
}

// Check issues a fresh status request, publishes it and returns it. It
// does not wait for, or share, a background poll already in flight. A
// result from a cancelled ctx is returned but not published.
func (p *Poller) Check(ctx context.Context) Status {
	st := p.source.Status(ctx)
	if ctx.Err() != nil {
		return st
	}
	return p.publish(st)
}

// Status makes a Poller usable wherever a StatusSource is expected. It
// issues a fresh request on the caller's ctx and leaves the shared
// snapshot alone.
func (p *Poller) Status(ctx context.Context) Status {
	return p.source.Status(ctx)
}

func (p *Poller) loop() {
	defer p.wg.Done()

	p.poll()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		case <-p.refreshCh:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	p.Check(p.ctx)
}

// publish installs next unless a newer check already landed. A failed
// check keeps the last-known counters.
func (p *Poller) publish(next Status) Status {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	prev := p.current.Load()
	if next.LastCheck.Before(prev.LastCheck) {
		return next
	}
	if !next.Connected {
		next.NodeCount = prev.NodeCount
		next.CacheSize = prev.CacheSize
	}
	if prev.Connected != next.Connected {
		p.log.Info("Daemon connectivity changed", logger.Bool("connected", next.Connected))
	}
	p.current.Store(&next)
	return next
}
