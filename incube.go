// Package incube provides a high-level façade over the InCube REST client and
// the boomerang run controller, enabling quick construction of clients for the
// multi-agent analysis backend. Most applications interact with this package
// by:
//  1. Creating a Client via New() or NewFromEnv()
//  2. Browsing journeys and perspectives through the embedded REST surface
//  3. Starting a boomerang run with StartRun and polling RunView for display
//
// The façade delegates stream interpretation to boomerang.Controller while
// keeping setup ergonomics concise. All defaults are safe for local
// development; deployments typically supply a session token and a structured
// logger.
package incube

import (
	"context"
	"time"

	"github.com/incube-ai/incube-go/api"
	"github.com/incube-ai/incube-go/boomerang"
	"github.com/incube-ai/incube-go/config"
	"github.com/incube-ai/incube-go/history"
	"github.com/incube-ai/incube-go/logging"
)

// Options configures the Client instance.
type Options struct {
	// SessionToken, when set, is sent as a bearer Authorization header on
	// every request.
	SessionToken string

	// RequestTimeout bounds each non-streaming REST request. Defaults to 30s.
	RequestTimeout time.Duration

	// StallTimeout is how long the run watchdog waits for the next frame
	// before flagging the run as stalled. Defaults to
	// boomerang.DefaultStallTimeout.
	StallTimeout time.Duration

	// Archive receives a record for every finished run. Defaults to an
	// in-memory archive.
	Archive boomerang.Archive

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Client is the high-level façade aggregating the REST client and the run
// controller.
type Client struct {
	api        *api.Client
	controller *boomerang.Controller
	archive    boomerang.Archive
}

// New creates a new Client for the given backend base URL with optional
// overrides.
func New(baseURL string, optFns ...func(o *Options)) *Client {
	opts := Options{
		RequestTimeout: 30 * time.Second,
		StallTimeout:   boomerang.DefaultStallTimeout,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Archive == nil {
		opts.Archive = history.NewInMemoryArchive()
	}

	rest := api.NewClient(baseURL, func(o *api.Options) {
		o.Token = opts.SessionToken
		o.Timeout = opts.RequestTimeout
		o.Logger = opts.Logger
	})

	controller := boomerang.NewController(rest, func(o *boomerang.Options) {
		o.StallTimeout = opts.StallTimeout
		o.Archive = opts.Archive
		o.Logger = opts.Logger
	})

	return &Client{api: rest, controller: controller, archive: opts.Archive}
}

// NewFromEnv creates a Client from environment configuration (and .env file,
// if present).
func NewFromEnv(optFns ...func(o *Options)) (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	base := append([]func(o *Options){func(o *Options) {
		o.SessionToken = cfg.SessionToken
		o.RequestTimeout = cfg.RequestTimeout
		o.StallTimeout = cfg.StallTimeout
	}}, optFns...)
	return New(cfg.BaseURL, base...), nil
}

// API exposes the underlying REST client.
func (c *Client) API() *api.Client { return c.api }

// Controller exposes the underlying run controller for advanced callers.
func (c *Client) Controller() *boomerang.Controller { return c.controller }

// Journeys lists the caller's journeys.
func (c *Client) Journeys(ctx context.Context) ([]api.Journey, error) {
	return c.api.ListJourneys(ctx)
}

// Perspectives lists the perspectives of a journey.
func (c *Client) Perspectives(ctx context.Context, journeyID string) ([]api.Perspective, error) {
	return c.api.ListPerspectives(ctx, journeyID)
}

// StartRun begins a boomerang run against a perspective. Any previous run is
// superseded.
func (c *Client) StartRun(ctx context.Context, perspectiveID, journeyID, prompt string) error {
	return c.controller.Start(ctx, perspectiveID, journeyID, prompt)
}

// CancelRun aborts the current run, keeping received data inspectable.
func (c *Client) CancelRun() { c.controller.Cancel() }

// RunView returns the current display snapshot of the run.
func (c *Client) RunView() boomerang.View { return c.controller.View() }

// History returns the archive of finished runs.
func (c *Client) History() boomerang.Archive { return c.archive }
