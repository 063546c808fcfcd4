// Package search holds the user-search state machine: the query text, the
// lookup lifecycle and the view state rendered from it.
//
// A Controller is owned by a single goroutine. Submit, Resolve, Reset and
// the accessors must be called from that goroutine; only Run may execute
// elsewhere, so that the lookup itself can proceed without blocking the
// owner.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"usersearch/internal/domain"
	"usersearch/internal/eventbus"
)

// EmptyQueryNotice is shown when a blank username is submitted
const EmptyQueryNotice = "Please enter a username"

// UserLookupClient resolves a username against the user directory. A nil
// record with a nil error, or domain.ErrUserNotFound, means no such user.
type UserLookupClient interface {
	Lookup(ctx context.Context, username string) (*domain.UserRecord, error)
}

// Request is a submitted lookup
type Request struct {
	Seq      uint64
	Username string
}

// Result is the settled outcome of a Request
type Result struct {
	Seq      uint64
	Username string
	Record   *domain.UserRecord
	Err      error
}

// Controller drives the search form
type Controller struct {
	client       UserLookupClient
	bus          eventbus.EventBus
	log          logr.Logger
	timeout      time.Duration
	clearOnFound bool

	query    string
	state    domain.ViewState
	seq      uint64
	inFlight uint64 // seq of the pending request, 0 when none
	notice   string
	lastErr  error
}

// Option configures a Controller
type Option func(*Controller)

// WithTimeout bounds every lookup; zero disables the bound
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithClearQueryOnFound controls whether a successful lookup empties the query
func WithClearQueryOnFound(clear bool) Option {
	return func(c *Controller) { c.clearOnFound = clear }
}

// WithEventBus publishes lookup lifecycle events to bus
func WithEventBus(bus eventbus.EventBus) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithLogger sets the diagnostic logger
func WithLogger(log logr.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// New creates a controller in the Idle state
func New(client UserLookupClient, opts ...Option) *Controller {
	c := &Controller{
		client:       client,
		log:          logr.Discard(),
		clearOnFound: true,
		state:        domain.Idle(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithName("search")
	return c
}

// Query returns the current query text
func (c *Controller) Query() string { return c.query }

// State returns the current view state
func (c *Controller) State() domain.ViewState { return c.state }

// Notice returns the pending user-visible notice, if any
func (c *Controller) Notice() string { return c.notice }

// ClearNotice dismisses the current notice
func (c *Controller) ClearNotice() { c.notice = "" }

// LastError returns the transport failure swallowed by the most recent
// lookup, or nil
func (c *Controller) LastError() error { return c.lastErr }

// SetQuery replaces the query text. The view state is not touched.
func (c *Controller) SetQuery(text string) {
	c.query = text
}

// Submit validates the query and moves to Pending. The returned Request
// must be passed to Run and its Result to Resolve.
func (c *Controller) Submit() (Request, error) {
	username := strings.TrimSpace(c.query)
	if username == "" {
		c.notice = EmptyQueryNotice
		c.publish(domain.QueryRejectedEvent{Query: c.query, Reason: domain.ErrEmptyQuery})
		return Request{}, domain.ErrEmptyQuery
	}
	if c.state.IsPending() {
		return Request{}, domain.ErrLookupInFlight
	}

	c.seq++
	c.inFlight = c.seq
	c.notice = ""
	c.state = domain.Pending()
	c.log.V(1).Info("lookup started", "seq", c.seq, "username", username)
	c.publish(domain.LookupStartedEvent{Seq: c.seq, Username: username})

	return Request{Seq: c.seq, Username: username}, nil
}

// Run performs the lookup for req. It reads only the controller's fixed
// configuration and may be called from any goroutine.
func (c *Controller) Run(ctx context.Context, req Request) Result {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	rec, err := c.client.Lookup(ctx, req.Username)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrTimeout) {
		err = fmt.Errorf("%w: %w", domain.ErrTimeout, err)
	}
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) && !domain.IsTransport(err) {
		err = &domain.TransportError{Username: req.Username, Err: err}
	}

	return Result{Seq: req.Seq, Username: req.Username, Record: rec, Err: err}
}

// Resolve applies a settled lookup. It returns false when the result is
// stale, that is when it does not belong to the request currently pending.
func (c *Controller) Resolve(res Result) bool {
	if res.Seq == 0 || res.Seq != c.inFlight {
		c.log.V(1).Info("discarding stale result", "seq", res.Seq, "inFlight", c.inFlight, "username", res.Username)
		c.publish(domain.LookupDiscardedEvent{Seq: res.Seq, Current: c.inFlight, Username: res.Username})
		return false
	}
	c.inFlight = 0

	switch {
	case res.Err == nil && res.Record != nil:
		c.lastErr = nil
		c.state = domain.Found(*res.Record)
		if c.clearOnFound {
			c.query = ""
		}
		c.log.V(1).Info("user found", "seq", res.Seq, "login", res.Record.Login)
		c.publish(domain.LookupSucceededEvent{Seq: res.Seq, Record: *res.Record})

	case res.Err == nil || errors.Is(res.Err, domain.ErrUserNotFound):
		c.lastErr = nil
		c.state = domain.NotFound()
		c.log.V(1).Info("user not found", "seq", res.Seq, "username", res.Username)
		c.publish(domain.LookupNotFoundEvent{Seq: res.Seq, Username: res.Username})

	default:
		c.lastErr = res.Err
		c.state = domain.NotFound()
		c.log.Error(res.Err, "lookup failed", "seq", res.Seq, "username", res.Username)
		c.publish(domain.LookupFailedEvent{Seq: res.Seq, Username: res.Username, Err: res.Err})
	}
	return true
}

// Lookup runs a whole submit cycle synchronously. Only validation errors
// are returned; lookup failures end in NotFound and LastError.
func (c *Controller) Lookup(ctx context.Context) error {
	req, err := c.Submit()
	if err != nil {
		return err
	}
	c.Resolve(c.Run(ctx, req))
	return nil
}

// Reset returns to Idle. A lookup still in flight becomes stale.
func (c *Controller) Reset() {
	c.inFlight = 0
	c.notice = ""
	c.lastErr = nil
	c.state = domain.Idle()
	c.publish(domain.SearchResetEvent{})
}

func (c *Controller) publish(e domain.DomainEvent) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}
