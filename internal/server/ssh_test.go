package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gossh "golang.org/x/crypto/ssh"

	"github.com/f3rmion/kanjimon/internal/catalog"
	"github.com/f3rmion/kanjimon/internal/game"
	"github.com/f3rmion/kanjimon/internal/store"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newGame(t *testing.T) GameFactory {
	t.Helper()
	cat, err := catalog.Default(catalog.WithSeed(1))
	require.NoError(t, err)
	return func() (*game.Session, error) {
		return game.NewSession(&game.Config{Catalog: cat, Store: store.NewMemory(10)})
	}
}

func startServer(t *testing.T, cfg Config) (*Server, string) {
	t.Helper()
	if cfg.HostKey == "" {
		cfg.HostKey = filepath.Join(t.TempDir(), "host_key")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:0"
	}

	s, err := New(&cfg, newGame(t))
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, l) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("server did not stop")
		}
	})
	return s, l.Addr().String()
}

func dial(t *testing.T, addr string) *gossh.Client {
	t.Helper()
	client, err := gossh.Dial("tcp", addr, &gossh.ClientConfig{
		User:            "player",
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestConfigValidate(t *testing.T) {
	valid := Config{Addr: ":2323", HostKey: "key", MaxSessions: 1}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"addr", func(c *Config) { c.Addr = "" }},
		{"host key", func(c *Config) { c.HostKey = "" }},
		{"max sessions", func(c *Config) { c.MaxSessions = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestNewRequiresFactory(t *testing.T) {
	_, err := New(nil, nil)
	assert.EqualError(t, err, "config is required")

	_, err = New(&Config{Addr: ":0", HostKey: filepath.Join(t.TempDir(), "k")}, nil)
	assert.EqualError(t, err, "game factory is required")
}

func TestEnsureHostKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "host_ed25519")

	require.NoError(t, EnsureHostKey(path))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	signer, err := gossh.ParsePrivateKey(first)
	require.NoError(t, err)
	assert.Equal(t, gossh.KeyAlgoED25519, signer.PublicKey().Type())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, EnsureHostKey(path))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second, "existing key is kept")
}

func TestSessionWithoutPTY(t *testing.T) {
	_, addr := startServer(t, Config{})
	client := dial(t, addr)

	sess, err := client.NewSession()
	require.NoError(t, err)
	defer sess.Close()

	out, err := sess.CombinedOutput("")
	var exitErr *gossh.ExitError
	require.True(t, errors.As(err, &exitErr), "unexpected error: %v", err)
	assert.Equal(t, 1, exitErr.ExitStatus())
	assert.Contains(t, string(out), "PTY required")
}

func TestSessionPlaysTitleAndQuits(t *testing.T) {
	s, addr := startServer(t, Config{})
	client := dial(t, addr)

	sess, err := client.NewSession()
	require.NoError(t, err)
	defer sess.Close()

	out := &syncBuffer{}
	sess.Stdout = out
	stdin, err := sess.StdinPipe()
	require.NoError(t, err)

	require.NoError(t, sess.RequestPty("xterm", 40, 100, gossh.TerminalModes{}))
	require.NoError(t, sess.Shell())

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("KanjiMonster"))
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, s.Active())

	_, err = stdin.Write([]byte("q"))
	require.NoError(t, err)

	waited := make(chan error, 1)
	go func() { waited <- sess.Wait() }()
	select {
	case err := <-waited:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end after quitting")
	}
	assert.Eventually(t, func() bool { return s.Active() == 0 }, time.Second, 10*time.Millisecond)
}

func TestServerFull(t *testing.T) {
	_, addr := startServer(t, Config{MaxSessions: 1})
	client := dial(t, addr)

	first, err := client.NewSession()
	require.NoError(t, err)
	defer first.Close()
	firstOut := &syncBuffer{}
	first.Stdout = firstOut
	require.NoError(t, first.RequestPty("xterm", 40, 100, gossh.TerminalModes{}))
	require.NoError(t, first.Shell())
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(firstOut.String()), []byte("KanjiMonster"))
	}, 5*time.Second, 20*time.Millisecond)

	second, err := client.NewSession()
	require.NoError(t, err)
	defer second.Close()
	secondOut := &syncBuffer{}
	second.Stdout = secondOut
	require.NoError(t, second.RequestPty("xterm", 40, 100, gossh.TerminalModes{}))
	require.NoError(t, second.Shell())

	err = second.Wait()
	var exitErr *gossh.ExitError
	require.True(t, errors.As(err, &exitErr), "unexpected error: %v", err)
	assert.Contains(t, secondOut.String(), "Server is full")
}
