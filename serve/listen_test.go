package serve

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghostwrite "github.com/Paranoid-AF/ghostwrite"
)

func TestResolveListenAddr(t *testing.T) {
	cfg := ghostwrite.DefaultConfig()
	cfg.Server.Listen = "0.0.0.0:4000"

	t.Setenv("GHOSTWRITE_LISTEN", "127.0.0.1:5000")
	assert.Equal(t, "unix:/tmp/x.sock", ResolveListenAddr("unix:/tmp/x.sock", cfg), "flag wins")
	assert.Equal(t, "127.0.0.1:5000", ResolveListenAddr("", cfg), "env beats config")

	t.Setenv("GHOSTWRITE_LISTEN", "")
	assert.Equal(t, "0.0.0.0:4000", ResolveListenAddr("", cfg))

	cfg.Server.Listen = ""
	assert.Equal(t, DefaultListen, ResolveListenAddr("", cfg))
	assert.Equal(t, DefaultListen, ResolveListenAddr("", nil))
}

func TestDefaultSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/ghostwrite.sock", DefaultSocketPath())

	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Equal(t, fmt.Sprintf("/tmp/ghostwrite-%d.sock", os.Getuid()), DefaultSocketPath())
}

func TestListenUnixReplacesStaleSocket(t *testing.T) {
	// Short path to stay under the Unix socket path limit.
	dir, err := os.MkdirTemp("/tmp", "gw")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "s.sock")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	ln, err := Listen("unix:" + path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(&stubCompleter{}, stubCatalog{}, nil).Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(ctx, "unix", path)
		},
	}}
	resp, err := client.Get("http://ghostwrite/api/personas")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	assert.NoError(t, <-done)
}
