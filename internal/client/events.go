package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/loft-iot/loft-client/pkg/loft"
)

// tokenRefreshInterval is how often a fresh token is pushed onto an open
// stream, keeping long-lived connections authenticated.
const tokenRefreshInterval = 5 * time.Minute

// EventsClient implements loft.EventsClient over the websocket integration.
type EventsClient struct {
	url    string
	token  func() (string, error)
	logger loft.Logger
}

// Stream opens an event stream for an application.
func (c *EventsClient) Stream(ctx context.Context, application string, opts *loft.StreamOptions) (loft.EventStream, error) {
	if c.url == "" {
		return nil, loft.ErrNoWebsocketEndpoint
	}

	streamURL, err := c.streamURL(application, opts)
	if err != nil {
		return nil, err
	}

	header := http.Header{}

	if c.token != nil {
		token, err := c.token()
		if err != nil {
			return nil, fmt.Errorf("fetching stream token: %w", err)
		}

		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, streamURL, header)
	if err != nil {
		if resp != nil {
			return nil, &loft.APIError{Status: resp.StatusCode}
		}

		return nil, fmt.Errorf("dialing event stream: %w", err)
	}

	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	stream := &eventStream{
		conn:   conn,
		events: make(chan *loft.Event),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
		logger: c.logger,
	}

	go stream.readLoop()

	if c.token != nil {
		go stream.refreshLoop(ctx, c.token)
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = stream.Close()
		case <-stream.done:
		}
	}()

	return stream, nil
}

func (c *EventsClient) streamURL(application string, opts *loft.StreamOptions) (string, error) {
	base, err := url.Parse(c.url)
	if err != nil {
		return "", fmt.Errorf("parsing websocket endpoint: %w", err)
	}

	switch base.Scheme {
	case "http":
		base.Scheme = "ws"
	case "https":
		base.Scheme = "wss"
	}

	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + url.PathEscape(application)

	if opts != nil && opts.Consumer != "" {
		query := base.Query()
		query.Set("group_id", opts.Consumer)
		base.RawQuery = query.Encode()
	}

	return base.String(), nil
}

type eventStream struct {
	conn   *websocket.Conn
	events chan *loft.Event
	errs   chan error
	logger loft.Logger

	closeOnce sync.Once
	done      chan struct{}

	writeMu sync.Mutex
}

// refreshMessage pushes a fresh access token onto the stream before the
// server-side token expires.
type refreshMessage struct {
	RefreshAccessToken string `json:"RefreshAccessToken"`
}

func (s *eventStream) readLoop() {
	defer s.closeOnce.Do(func() { close(s.done) })

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case s.errs <- err:
			default:
			}

			return
		}

		var event loft.Event
		if err := json.Unmarshal(data, &event); err != nil {
			if s.logger != nil {
				s.logger.Warn("dropping undecodable event", map[string]interface{}{
					"error": err.Error(),
				})
			}

			continue
		}

		select {
		case s.events <- &event:
		case <-s.done:
			return
		}
	}
}

func (s *eventStream) refreshLoop(ctx context.Context, token func() (string, error)) {
	ticker := time.NewTicker(tokenRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fresh, err := token()
			if err != nil {
				if s.logger != nil {
					s.logger.Warn("token refresh failed", map[string]interface{}{
						"error": err.Error(),
					})
				}

				continue
			}

			s.writeMu.Lock()
			err = s.conn.WriteJSON(refreshMessage{RefreshAccessToken: fresh})
			s.writeMu.Unlock()

			if err != nil {
				return
			}
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Next blocks until the next event arrives or the stream ends.
func (s *eventStream) Next(ctx context.Context) (*loft.Event, error) {
	select {
	case event := <-s.events:
		return event, nil
	case err := <-s.errs:
		return nil, fmt.Errorf("%w: %v", loft.ErrStreamClosed, err)
	case <-s.done:
		return nil, loft.ErrStreamClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close terminates the stream.
func (s *eventStream) Close() error {
	s.closeOnce.Do(func() { close(s.done) })

	return s.conn.Close()
}
