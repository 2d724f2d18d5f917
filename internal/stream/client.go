package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/opsdeck/opsdeck/internal/event"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Ingestor receives events parsed off the transport.
type Ingestor interface {
	Ingest(e event.Event)
	SetConnected(up bool)
}

// Client consumes the upstream text/event-stream endpoint and feeds the
// buffer. It reconnects with capped exponential backoff; reconnection is a
// transport concern and never touches the buffered history.
type Client struct {
	url    string
	http   *http.Client
	sink   Ingestor
	logger *slog.Logger
}

// NewClient creates an SSE client for the given stream URL.
func NewClient(url string, sink Ingestor, logger *slog.Logger) *Client {
	return &Client{
		url:    url,
		http:   &http.Client{}, // no timeout: the stream is long-lived
		sink:   sink,
		logger: logger,
	}
}

// Run connects and consumes the stream until ctx is cancelled. Individual
// malformed frames are dropped silently; a broken connection flips the
// connectivity flag and triggers a reconnect.
func (c *Client) Run(ctx context.Context) error {
	backoff := initialBackoff
	for {
		err := c.consume(ctx)
		c.sink.SetConnected(false)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			c.logger.Warn("stream: disconnected", slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (c *Client) consume(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.sink.SetConnected(true)
	c.logger.Info("stream: connected", slog.String("url", c.url))

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var kind, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			c.dispatch(kind, data)
			kind, data = "", ""
		case strings.HasPrefix(line, "event:"):
			kind = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			// Multi-line data frames concatenate per the SSE spec.
			data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case strings.HasPrefix(line, ":"):
			// Comment / keepalive.
		}
	}
	return scanner.Err()
}

// dispatch parses one complete frame into an Event and ingests it. Bad
// frames are logged at debug and dropped; ingestion never halts the stream.
func (c *Client) dispatch(kind, data string) {
	if kind == "" || data == "" {
		return
	}
	if !json.Valid([]byte(data)) {
		c.logger.Debug("stream: dropping malformed frame", slog.String("event", kind))
		return
	}
	c.sink.Ingest(event.New(event.Kind(kind), json.RawMessage(data)))
}
