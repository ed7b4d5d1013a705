// Package remote serves the remote control surface over socket.io. Every
// connected client gets its own engine session, built from freshly loaded
// configs.
//
// Events from the client: "click" (button id), "page" (page id) and
// "reload". Events to the client: "layout" (engine.View), "note" (Note) and
// "config_error" (message).
package remote

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"

	"github.com/specialistvlad/hatremote/internal/ctxlog"
	"github.com/specialistvlad/hatremote/internal/engine"
)

// Event names.
const (
	EventClick       = "click"
	EventPage        = "page"
	EventReload      = "reload"
	EventLayout      = "layout"
	EventNote        = "note"
	EventConfigError = "config_error"
)

// Note updates the text of one element of the current layout.
type Note struct {
	ID   string `json:"id"`
	Note string `json:"note"`
}

// Loader reads all configs and returns the options of a new session. Lines
// passed to progress are shown to the user while loading.
type Loader func(ctx context.Context, progress func(line string)) (engine.Options, error)

// conn is the part of a socket the server talks to.
type conn interface {
	ID() string
	Emit(event string, args ...any) error
	Disconnect()
}

type Server struct {
	ctx      context.Context
	io       *socket.Server
	loader   Loader
	sessions *Sessions
}

// NewServer wires the socket.io event handlers. ctx carries the logger and
// bounds every command run on behalf of the clients.
func NewServer(ctx context.Context, loader Loader) *Server {
	opts := socket.DefaultServerOptions()
	opts.SetServeClient(false)
	opts.SetPingInterval(10 * time.Second)
	opts.SetPingTimeout(5 * time.Second)
	opts.SetCors(&types.Cors{Origin: "*"})

	s := &Server{
		ctx:      ctx,
		io:       socket.NewServer(nil, opts),
		loader:   loader,
		sessions: &Sessions{},
	}
	s.io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		s.attach(client)
	})
	return s
}

// Handler serves the socket.io endpoint; mount it at "/socket.io/".
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

func (s *Server) Sessions() *Sessions { return s.sessions }

func (s *Server) Close() {
	s.io.Close(nil)
}

func (s *Server) attach(client *socket.Socket) {
	c := socketConn{client}
	_ = client.On(EventClick, func(args ...any) {
		if id, ok := firstString(args); ok {
			s.click(c, id)
		}
	})
	_ = client.On(EventPage, func(args ...any) {
		if id, ok := firstString(args); ok {
			s.pageSwitched(c, id)
		}
	})
	_ = client.On(EventReload, func(...any) {
		s.reload(c)
	})
	_ = client.On("disconnect", func(args ...any) {
		s.disconnect(c, args...)
	})
	s.connect(c)
}

func (s *Server) logger(c conn) *slog.Logger {
	return ctxlog.FromContext(s.ctx).With("client_id", c.ID())
}

// load shows the loading splash while the configs are read and returns a
// session bound to c.
func (s *Server) load(c conn) (*engine.Session, error) {
	splash := engine.NewSplash()
	_ = c.Emit(EventLayout, splash.View)
	progress := func(line string) {
		_ = c.Emit(EventNote, Note{ID: splash.LogID, Note: splash.Append(line)})
	}

	opts, err := s.loader(s.ctx, progress)
	if err != nil {
		return nil, err
	}
	opts.OnNote = func(id, note string) {
		_ = c.Emit(EventNote, Note{ID: id, Note: note})
	}
	return engine.NewSession(s.ctx, opts), nil
}

func (s *Server) connect(c conn) {
	logger := s.logger(c)
	logger.Info("🔌 Client connected.")

	sess, err := s.load(c)
	if err != nil {
		logger.Error("Initial configuration loading failed, closing the connection.", "error", err)
		_ = c.Emit(EventConfigError, err.Error())
		c.Disconnect()
		return
	}
	s.sessions.Set(c.ID(), sess)
	_ = c.Emit(EventLayout, sess.View())
}

func (s *Server) click(c conn, buttonID string) {
	sess, ok := s.sessions.Get(c.ID())
	if !ok {
		s.logger(c).Warn("Click from a client without a session.", "button_id", buttonID)
		return
	}
	switch sess.Click(s.ctx, buttonID) {
	case engine.UpdateLayout:
		_ = c.Emit(EventLayout, sess.View())
	case engine.ReloadConfigs:
		s.reload(c)
	}
}

func (s *Server) pageSwitched(c conn, pageID string) {
	if sess, ok := s.sessions.Get(c.ID()); ok {
		sess.PageSwitched(pageID)
	}
}

// reload replaces the client's session. On failure the previous session and
// its layout stay in place.
func (s *Server) reload(c conn) {
	logger := s.logger(c)
	sess, err := s.load(c)
	if err != nil {
		logger.Error("Configuration reload failed, keeping the previous configuration.", "error", err)
		_ = c.Emit(EventConfigError, err.Error())
		if old, ok := s.sessions.Get(c.ID()); ok {
			_ = c.Emit(EventLayout, old.View())
		}
		return
	}
	s.sessions.Set(c.ID(), sess)
	logger.Info("🔄 Configuration reloaded.", "session_id", sess.ID())
	_ = c.Emit(EventLayout, sess.View())
}

func (s *Server) disconnect(c conn, reason ...any) {
	s.sessions.Delete(c.ID())
	s.logger(c).Info("Client disconnected.", "reason", reason)
}

func firstString(args []any) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	v, ok := args[0].(string)
	return v, ok
}

type socketConn struct {
	s *socket.Socket
}

func (c socketConn) ID() string { return string(c.s.Id()) }

func (c socketConn) Emit(event string, args ...any) error { return c.s.Emit(event, args...) }

func (c socketConn) Disconnect() { c.s.Disconnect(true) }
