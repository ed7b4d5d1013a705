// Package remoteclient drives a hatremote server the way a remote surface
// does: connect, wait for the layout, press buttons by their text.
package remoteclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/hatremote/internal/buttonid"
	"github.com/specialistvlad/hatremote/internal/ctxlog"
	"github.com/specialistvlad/hatremote/internal/engine"
	"github.com/specialistvlad/hatremote/internal/remote"
)

var ErrNoSuchButton = errors.New("no enabled button with that text")

type Options struct {
	InsecureSkipVerify bool
	// Settle is how long a click waits for a new layout before the current
	// one is assumed to stay.
	Settle time.Duration
}

// Client is one connection, and therefore one engine session on the server.
type Client struct {
	io     *socket.Socket
	settle time.Duration

	mu      sync.Mutex
	current engine.View
	notes   map[string]string

	layouts chan engine.View
	failed  chan error
}

// Dial connects and returns once the first real layout (not the loading
// splash) has arrived, or ctx is done.
func Dial(ctx context.Context, rawURL string, opts Options) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	baseURL := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)

	sockOpts := socket.DefaultOptions()
	if parsed.Path != "" && parsed.Path != "/" {
		sockOpts.SetPath(parsed.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	c := &Client{
		settle:  opts.Settle,
		notes:   make(map[string]string),
		layouts: make(chan engine.View, 16),
		failed:  make(chan error, 1),
	}
	if c.settle <= 0 {
		c.settle = 500 * time.Millisecond
	}

	manager := socket.NewManager(baseURL, sockOpts)
	c.io = manager.Socket("/", sockOpts)

	c.io.On(types.EventName("connect"), func(...any) {
		logger.Debug("Connected to server.", "sid", c.io.Id())
	})
	c.io.On(types.EventName("connect_error"), func(errs ...any) {
		c.fail(fmt.Errorf("connection failed: %v", first(errs)))
	})
	c.io.On(types.EventName(remote.EventConfigError), func(args ...any) {
		c.fail(fmt.Errorf("server could not load its configs: %v", first(args)))
	})
	c.io.On(types.EventName(remote.EventLayout), func(args ...any) {
		var v engine.View
		if err := decode(first(args), &v); err != nil {
			logger.Warn("Ignoring undecodable layout.", "error", err)
			return
		}
		c.mu.Lock()
		c.current = v
		c.mu.Unlock()
		if !isSplash(v) {
			select {
			case c.layouts <- v:
			default:
			}
		}
	})
	c.io.On(types.EventName(remote.EventNote), func(args ...any) {
		var n remote.Note
		if err := decode(first(args), &n); err != nil {
			return
		}
		c.mu.Lock()
		c.notes[n.ID] = n.Note
		c.mu.Unlock()
	})

	c.io.Connect()

	select {
	case <-ctx.Done():
		c.Close()
		return nil, fmt.Errorf("timed out while waiting for the initial layout: %w", ctx.Err())
	case err := <-c.failed:
		c.Close()
		return nil, err
	case <-c.layouts:
		return c, nil
	}
}

// Layout returns the last layout with the note updates received since.
func (c *Client) Layout() engine.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return applyNotes(c.current, c.notes)
}

// Press clicks the enabled button showing text and waits for the layout to
// settle.
func (c *Client) Press(ctx context.Context, text string) (engine.View, error) {
	id, ok := FindButton(c.Layout(), text)
	if !ok {
		return engine.View{}, fmt.Errorf("%w: %q", ErrNoSuchButton, text)
	}
	return c.Click(ctx, id)
}

// Click sends a raw button id.
func (c *Client) Click(ctx context.Context, buttonID string) (engine.View, error) {
	for len(c.layouts) > 0 {
		<-c.layouts
	}
	c.io.Emit(remote.EventClick, buttonID)

	timer := time.NewTimer(c.settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return engine.View{}, ctx.Err()
	case err := <-c.failed:
		return engine.View{}, err
	case <-c.layouts:
	case <-timer.C:
	}
	return c.Layout(), nil
}

func (c *Client) Close() {
	c.io.Disconnect()
}

func (c *Client) fail(err error) {
	select {
	case c.failed <- err:
	default:
	}
}

// FindButton returns the id of the first enabled button whose note is text.
func FindButton(v engine.View, text string) (string, bool) {
	for _, p := range v.Pages {
		for _, row := range p.Rows {
			for _, e := range row {
				if e.Kind == engine.KindButton && e.Enabled && e.Note == text && !opensSelector(e) {
					return e.ID, true
				}
			}
		}
		for _, e := range p.Nav {
			if e.Kind == engine.KindButton && e.Enabled && e.Note == text && e.TargetPage == "" {
				return e.ID, true
			}
		}
	}
	return "", false
}

// opensSelector reports whether pressing e only shows a selector page. Such
// buttons carry throwaway ids the server ignores.
func opensSelector(e engine.ViewElement) bool {
	if e.TargetPage == "" {
		return false
	}
	kind, _, err := buttonid.Decode(e.ID)
	return err == nil && kind == buttonid.KindThrowaway
}

func isSplash(v engine.View) bool {
	return len(v.Pages) == 1 && v.Pages[0].Caption == engine.LoadingCaption
}

func applyNotes(v engine.View, notes map[string]string) engine.View {
	if len(notes) == 0 {
		return v
	}
	out := v
	out.Pages = make([]engine.ViewPage, len(v.Pages))
	for i, p := range v.Pages {
		rows := make([][]engine.ViewElement, len(p.Rows))
		for j, row := range p.Rows {
			rows[j] = make([]engine.ViewElement, len(row))
			for k, e := range row {
				if n, ok := notes[e.ID]; ok {
					e.Note = n
				}
				rows[j][k] = e
			}
		}
		p.Rows = rows
		out.Pages[i] = p
	}
	return out
}

// decode converts a generic socket.io payload into out.
func decode(payload any, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func first(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}
