// Package server serves Kanji Monster over SSH. Every connection with a PTY
// gets its own game session and bubbletea program.
package server

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gliderlabs/ssh"
	gossh "golang.org/x/crypto/ssh"

	"github.com/f3rmion/kanjimon/internal/clipboard"
	"github.com/f3rmion/kanjimon/internal/game"
	"github.com/f3rmion/kanjimon/internal/kanji"
	"github.com/f3rmion/kanjimon/internal/tui"
)

// Config configures the SSH listener.
type Config struct {
	Addr        string        `mapstructure:"addr" yaml:"addr"`
	HostKey     string        `mapstructure:"host_key" yaml:"host_key"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	MaxSessions int           `mapstructure:"max_sessions" yaml:"max_sessions"`
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("serve.addr is required")
	}
	if c.HostKey == "" {
		return errors.New("serve.host_key is required")
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("serve.max_sessions must not be negative, got %d", c.MaxSessions)
	}
	return nil
}

// GameFactory builds the session for one connection.
type GameFactory func() (*game.Session, error)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithShowcase sets the monsters paraded on the title screen.
func WithShowcase(m []kanji.Monster) Option {
	return func(s *Server) {
		s.showcase = m
	}
}

// Server is the SSH front end.
type Server struct {
	cfg      Config
	newGame  GameFactory
	logger   *slog.Logger
	showcase []kanji.Monster

	srv    *ssh.Server
	active atomic.Int32
	wg     sync.WaitGroup
}

// New creates a server. The host key is generated if it does not exist.
func New(cfg *Config, newGame GameFactory, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if newGame == nil {
		return nil, errors.New("game factory is required")
	}

	s := &Server{cfg: *cfg, newGame: newGame, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	if err := EnsureHostKey(cfg.HostKey); err != nil {
		return nil, err
	}

	s.srv = &ssh.Server{
		Addr:        cfg.Addr,
		Handler:     s.handleSession,
		IdleTimeout: cfg.IdleTimeout,
	}
	if err := s.srv.SetOption(ssh.HostKeyFile(cfg.HostKey)); err != nil {
		return nil, fmt.Errorf("set host key: %w", err)
	}
	return s, nil
}

// ListenAndServe listens on the configured address until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is cancelled, then waits for
// open sessions to close.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.logger.Info("ssh server listening", "addr", l.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()

	select {
	case err := <-errCh:
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.srv.Shutdown(shutdownCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		err = s.srv.Close()
	}
	s.wg.Wait()
	if errors.Is(err, ssh.ErrServerClosed) {
		return nil
	}
	return err
}

// Active returns the number of connected players.
func (s *Server) Active() int {
	return int(s.active.Load())
}

func (s *Server) handleSession(sess ssh.Session) {
	s.wg.Add(1)
	defer s.wg.Done()

	logger := s.logger.With("user", sess.User(), "remote", sess.RemoteAddr().String())

	ptyReq, winCh, ok := sess.Pty()
	if !ok {
		fmt.Fprintln(sess, "Error: PTY required. Use: ssh -t ...")
		_ = sess.Exit(1)
		return
	}

	if n := s.active.Add(1); s.cfg.MaxSessions > 0 && int(n) > s.cfg.MaxSessions {
		s.active.Add(-1)
		fmt.Fprintln(sess, "Server is full, try again later.")
		_ = sess.Exit(1)
		return
	}
	defer s.active.Add(-1)

	g, err := s.newGame()
	if err != nil {
		logger.Error("creating game", "error", err)
		fmt.Fprintln(sess, "Error: could not start a game.")
		_ = sess.Exit(1)
		return
	}

	ctx, cancel := context.WithCancel(sess.Context())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := g.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("game loop stopped", "error", err)
		}
	}()

	app := tui.NewApp(g, tui.Options{
		Showcase:  s.showcase,
		Clipboard: clipboard.Terminal{Out: sess},
	})
	p := tea.NewProgram(app,
		tea.WithInput(sess),
		tea.WithOutput(sess),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	go func() {
		p.Send(tea.WindowSizeMsg{Width: ptyReq.Window.Width, Height: ptyReq.Window.Height})
		for win := range winCh {
			p.Send(tea.WindowSizeMsg{Width: win.Width, Height: win.Height})
		}
	}()

	logger.Info("player connected", "term", ptyReq.Term)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Warn("program exited", "error", err)
	}
	cancel()
	<-done
	logger.Info("player disconnected")
	_ = sess.Exit(0)
}

// EnsureHostKey writes a new ed25519 host key to path unless one exists.
func EnsureHostKey(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking host key: %w", err)
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generating host key: %w", err)
	}
	block, err := gossh.MarshalPrivateKey(priv, "kanjimon host key")
	if err != nil {
		return fmt.Errorf("encoding host key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating host key dir: %w", err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return fmt.Errorf("writing host key: %w", err)
	}
	return nil
}
