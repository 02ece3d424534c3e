package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fcaqualink/aqualink-monitor/internal/clock"
	"github.com/fcaqualink/aqualink-monitor/internal/config"
)

// Status reflects the connector's view of the live feed.
type Status string

const (
	StatusConnecting Status = "connecting"
	StatusOpen       Status = "open"
	StatusClosed     Status = "closed"
	StatusError      Status = "error"
)

// maxBackoffExponent caps how far the reconnect delay doubles before
// it plateaus.
const maxBackoffExponent = 6

// ResolveCandidates derives the ordered, de-duplicated candidate
// endpoint list from the configuration: the explicit override first,
// then the URL built from host/port/path. Empty entries are dropped.
func ResolveCandidates(cfg config.TelemetryConfig) []string {
	var out []string
	seen := make(map[string]bool)

	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
	}

	add(cfg.OverrideURL)

	if cfg.Host != "" {
		scheme := "ws"
		if cfg.UseTLS {
			scheme = "wss"
		}
		port := cfg.Port
		if port == "" {
			port = "1880"
		}
		path := cfg.Path
		if path == "" {
			path = "/ws/sensores"
		}
		add(fmt.Sprintf("%s://%s:%s%s", scheme, cfg.Host, port, path))
	}

	return out
}

// Connector keeps at most one live connection to the telemetry feed.
// All candidate endpoints are raced in parallel; the first to open is
// adopted and every other socket is released. When the adopted
// connection drops, a full reconnection cycle is scheduled with
// exponential backoff.
type Connector struct {
	cfg    config.TelemetryConfig
	dialer Dialer
	clock  clock.Clock
	logger *zap.Logger

	messages chan []byte
	statuses chan Status
	done     chan struct{}

	mu        sync.Mutex
	chosen    Conn
	chosenURL string
	retry     int
	stopped   bool
	cancel    context.CancelFunc
}

// NewConnector creates a connector. Start must be called to begin
// connecting.
func NewConnector(cfg config.TelemetryConfig, dialer Dialer, clk clock.Clock, logger *zap.Logger) *Connector {
	return &Connector{
		cfg:      cfg,
		dialer:   dialer,
		clock:    clk,
		logger:   logger,
		messages: make(chan []byte, 64),
		statuses: make(chan Status, 8),
		done:     make(chan struct{}),
	}
}

// Messages delivers each inbound frame from the adopted connection, in
// arrival order.
func (c *Connector) Messages() <-chan []byte { return c.messages }

// Statuses delivers connection status transitions.
func (c *Connector) Statuses() <-chan Status { return c.statuses }

// Done is closed once the connector's run loop has fully exited.
func (c *Connector) Done() <-chan struct{} { return c.done }

// Start launches the connect/reconnect loop.
func (c *Connector) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(runCtx)
}

// Stop marks the connector as user-stopped: the reconnection schedule
// is suppressed, any live or pending socket is closed, and no further
// status or message events fire.
func (c *Connector) Stop() {
	c.mu.Lock()
	c.stopped = true
	cancel := c.cancel
	conn := c.chosen
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
}

func (c *Connector) run(ctx context.Context) {
	defer close(c.done)

	for {
		c.emit(ctx, StatusConnecting)

		conn, url, err := c.race(ctx, ResolveCandidates(c.cfg))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("telemetry connection failed", zap.Error(err))
			c.emit(ctx, StatusError)
			if !c.waitBackoff(ctx) {
				return
			}
			continue
		}

		c.setChosen(conn, url)
		c.resetBackoff()
		c.emit(ctx, StatusOpen)
		c.logger.Info("telemetry connection established", zap.String("url", url))

		c.readLoop(ctx, conn)
		c.clearChosen()

		if ctx.Err() != nil || c.isStopped() {
			return
		}

		c.emit(ctx, StatusClosed)
		c.logger.Warn("telemetry connection lost", zap.String("url", url))
		if !c.waitBackoff(ctx) {
			return
		}
	}
}

// race opens a connection attempt to every candidate in parallel and
// commits the first one to open into a single-assignment slot. Losers
// are closed as soon as they resolve; pending handshakes are cancelled
// once a winner is adopted.
func (c *Connector) race(ctx context.Context, candidates []string) (Conn, string, error) {
	if len(candidates) == 0 {
		return nil, "", errors.New("no candidate endpoints")
	}

	raceCtx, cancelRace := context.WithCancel(ctx)
	defer cancelRace()

	type winner struct {
		conn Conn
		url  string
	}
	slot := make(chan winner, 1)

	var wg sync.WaitGroup
	for _, u := range candidates {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			conn, err := c.dialer.DialContext(raceCtx, u)
			if err != nil {
				// Malformed or unreachable candidates are simply skipped.
				c.logger.Debug("candidate dial failed", zap.String("url", u), zap.Error(err))
				return
			}
			select {
			case slot <- winner{conn: conn, url: u}:
			default:
				// Lost the race: release the socket immediately.
				conn.Close()
			}
		}(u)
	}

	allDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(allDone)
	}()

	select {
	case w := <-slot:
		return w.conn, w.url, nil
	case <-allDone:
		// A winner may have landed between the last dial and wg.Wait.
		select {
		case w := <-slot:
			return w.conn, w.url, nil
		default:
			return nil, "", errors.New("all candidate endpoints failed")
		}
	case <-ctx.Done():
		go func() {
			wg.Wait()
			select {
			case w := <-slot:
				w.conn.Close()
			default:
			}
		}()
		return nil, "", ctx.Err()
	}
}

// readLoop pumps frames from the adopted connection until it dies.
func (c *Connector) readLoop(ctx context.Context, conn Conn) {
	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	if c.cfg.PingInterval > 0 {
		go c.pingLoop(pingCtx, conn)
	}

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return
		}
		select {
		case c.messages <- data:
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}

func (c *Connector) pingLoop(ctx context.Context, conn Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.clock.After(c.cfg.PingInterval):
			if err := conn.Ping(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
		}
	}
}

// waitBackoff sleeps for the next reconnect delay. It returns false
// when the connector was cancelled while waiting.
func (c *Connector) waitBackoff(ctx context.Context) bool {
	delay := c.nextBackoff()
	c.logger.Info("scheduling reconnect", zap.Duration("delay", delay))
	select {
	case <-ctx.Done():
		return false
	case <-c.clock.After(delay):
		return true
	}
}

// nextBackoff doubles the reconnect delay per consecutive failure,
// plateauing at the configured ceiling.
func (c *Connector) nextBackoff() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retry < maxBackoffExponent {
		c.retry++
	}
	delay := c.cfg.BackoffBase << uint(c.retry)
	if c.cfg.BackoffMax > 0 && delay > c.cfg.BackoffMax {
		delay = c.cfg.BackoffMax
	}
	return delay
}

func (c *Connector) resetBackoff() {
	c.mu.Lock()
	c.retry = 0
	c.mu.Unlock()
}

func (c *Connector) setChosen(conn Conn, url string) {
	c.mu.Lock()
	c.chosen = conn
	c.chosenURL = url
	c.mu.Unlock()
}

func (c *Connector) clearChosen() {
	c.mu.Lock()
	c.chosen = nil
	c.chosenURL = ""
	c.mu.Unlock()
}

func (c *Connector) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// emit publishes a status transition unless the connector has been
// cancelled.
func (c *Connector) emit(ctx context.Context, st Status) {
	select {
	case c.statuses <- st:
	case <-ctx.Done():
	}
}
