// Package navigation drives ctt:// navigations: validate, check the
// daemon, retrieve, store, then hand over to the viewer.
//
// One Controller serves one browsing surface. Its steps run strictly in
// sequence; every failure becomes an Outcome in the Error state carrying a
// human-readable message, and nothing is retried automatically.
package navigation

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"meshbrowse/contentid"
	"meshbrowse/daemon"
	"meshbrowse/logger"
	"meshbrowse/store"
)

// State is a step of the navigation state machine.
type State int

const (
	Idle State = iota
	Validating
	CheckingDaemon
	Retrieving
	Displaying
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case CheckingDaemon:
		return "checking-daemon"
	case Retrieving:
		return "retrieving"
	case Displaying:
		return "displaying"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DaemonNotRunning is the fixed message for an offline daemon.
const DaemonNotRunning = "Mesh daemon not running"

// Retriever fetches content for an identifier. *daemon.Client implements it.
type Retriever interface {
	Retrieve(ctx context.Context, id contentid.ID) daemon.Result
}

// ContentWriter receives successful retrievals. *store.Session implements it.
type ContentWriter interface {
	Put(ctx context.Context, id contentid.ID, p store.Payload) error
}

// Event is an observed navigation on a host surface.
type Event struct {
	URL      string
	TopLevel bool // false for sub-frame navigations
}

// Outcome is the result of one controller operation.
type Outcome struct {
	State   State
	ID      contentid.ID
	Source  daemon.Source
	Message string // set in the Error state
	// Moved is false when Back/Forward/Refresh had nothing to act on.
	Moved bool
}

// Redirect returns where the host surface should go next: the viewer on
// success, the error page on failure, home otherwise.
func (o Outcome) Redirect() string {
	switch o.State {
	case Displaying:
		return ViewerPath(o.ID)
	case Error:
		return ErrorPath(o.Message)
	default:
		return "/"
	}
}

// ViewerPath addresses the viewer surface for id.
func ViewerPath(id contentid.ID) string {
	return "/view?hash=" + url.QueryEscape(id.String())
}

// ErrorPath addresses the error surface with a message.
func ErrorPath(msg string) string {
	return "/error?message=" + url.QueryEscape(msg)
}

// Options wires a Controller.
type Options struct {
	Status    daemon.StatusSource
	Retriever Retriever
	Store     ContentWriter
	Log       logger.Logger
	// OnTransition, if set, observes every state change.
	OnTransition func(from, to State)
}

// Controller is the navigation state machine for one surface.
type Controller struct {
	mu sync.Mutex

	status       daemon.StatusSource
	retriever    Retriever
	store        ContentWriter
	log          logger.Logger
	onTransition func(from, to State)
	now          func() time.Time

	state     State
	current   contentid.ID
	lastError string
	history   *History
}

// NewController creates an idle controller with empty history.
func NewController(o Options) *Controller {
	if o.Log == nil {
		o.Log = logger.NewNop()
	}
	return &Controller{
		status:       o.Status,
		retriever:    o.Retriever,
		store:        o.Store,
		log:          o.Log,
		onTransition: o.OnTransition,
		now:          time.Now,
		state:        Idle,
		history:      NewHistory(),
	}
}

// Intercept handles a host navigation event. Only top-level navigations to
// URLs starting exactly with ctt:// are handled.
func (c *Controller) Intercept(ctx context.Context, ev Event) (Outcome, bool) {
	if !ev.TopLevel || !contentid.IsSchemeURL(ev.URL) {
		return Outcome{}, false
	}
	c.log.Debug("Intercepting CTT URL", logger.String("url", ev.URL))
	return c.Navigate(ctx, ev.URL), true
}

// Navigate runs validate, daemon check and retrieve for raw, a ctt:// URL
// or bare hash. On success the identifier is pushed onto the history.
func (c *Controller) Navigate(ctx context.Context, raw string) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transition(Validating)
	id, err := contentid.Parse(raw)
	if err != nil {
		return c.fail("", err.Error())
	}

	c.transition(CheckingDaemon)
	if st := c.status.Status(ctx); !st.Connected {
		return c.fail(id, DaemonNotRunning)
	}

	out := c.retrieve(ctx, id)
	if out.State == Displaying {
		c.history.Push(id)
	}
	return out
}

// Back moves one history entry back and fetches it again from the daemon.
func (c *Controller) Back(ctx context.Context) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.history.Back()
	if !ok {
		return c.unmoved()
	}
	return c.retrieve(ctx, id)
}

// Forward moves one history entry forward and fetches it again.
func (c *Controller) Forward(ctx context.Context) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.history.Forward()
	if !ok {
		return c.unmoved()
	}
	return c.retrieve(ctx, id)
}

// Refresh retrieves the current identifier again without touching history.
func (c *Controller) Refresh(ctx context.Context) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == "" {
		return c.unmoved()
	}
	return c.retrieve(ctx, c.current)
}

// Home returns to Idle and clears the current identifier. History is kept.
func (c *Controller) Home() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transition(Idle)
	c.current = ""
	c.lastError = ""
	return Outcome{State: Idle, Moved: true}
}

// CanGoBack reports whether Back would move.
func (c *Controller) CanGoBack() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.CanBack()
}

// CanGoForward reports whether Forward would move.
func (c *Controller) CanGoForward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.CanForward()
}

// View is a read-only snapshot of a controller.
type View struct {
	State      State
	Current    contentid.ID
	LastError  string
	History    []contentid.ID
	Index      int
	CanBack    bool
	CanForward bool
}

// View returns the controller's current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	return View{
		State:      c.state,
		Current:    c.current,
		LastError:  c.lastError,
		History:    c.history.Entries(),
		Index:      c.history.Index(),
		CanBack:    c.history.CanBack(),
		CanForward: c.history.CanForward(),
	}
}

// retrieve is the Retrieving step shared by navigate, back, forward and
// refresh. Every call is a live fetch; the store only ever holds the most
// recent payload.
func (c *Controller) retrieve(ctx context.Context, id contentid.ID) Outcome {
	c.transition(Retrieving)
	// current follows the attempt so Refresh retries a failed fetch
	c.current = id

	res := c.retriever.Retrieve(ctx, id)
	if !res.Success {
		return c.fail(id, res.Error)
	}

	if err := c.store.Put(ctx, id, store.FromResult(res, c.now())); err != nil {
		c.log.Error("Failed to store content", logger.String("hash", id.String()), logger.Error(err))
		return c.fail(id, fmt.Sprintf("store content: %v", err))
	}

	c.lastError = ""
	c.transition(Displaying)
	c.log.Info("Content retrieved",
		logger.String("hash", id.String()),
		logger.String("source", string(res.Source)),
		logger.String("mime_type", res.MimeType),
	)
	return Outcome{State: Displaying, ID: id, Source: res.Source, Moved: true}
}

// fail records the error. current follows the attempted id, and is cleared
// when the input never parsed, so Refresh on an error page retries the
// failed attempt or does nothing.
func (c *Controller) fail(id contentid.ID, msg string) Outcome {
	c.transition(Error)
	c.current = id
	c.lastError = msg
	c.log.Warn("Navigation failed", logger.String("hash", id.String()), logger.ErrorText(msg))
	return Outcome{State: Error, ID: id, Message: msg, Moved: true}
}

func (c *Controller) unmoved() Outcome {
	return Outcome{State: c.state, ID: c.current, Message: c.lastError}
}

func (c *Controller) transition(to State) {
	from := c.state
	c.state = to
	if c.onTransition != nil {
		c.onTransition(from, to)
	}
}
