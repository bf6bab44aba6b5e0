package serve

import (
	"fmt"
	"net"
	"os"
	"strings"

	ghostwrite "github.com/Paranoid-AF/ghostwrite"
)

// DefaultListen is used when no listen address is configured.
const DefaultListen = "127.0.0.1:3000"

// ResolveListenAddr picks the listen address.
// Resolution order: flag > $GHOSTWRITE_LISTEN > server.listen > DefaultListen
func ResolveListenAddr(flag string, cfg *ghostwrite.Config) string {
	if flag != "" {
		return flag
	}
	if addr := os.Getenv("GHOSTWRITE_LISTEN"); addr != "" {
		return addr
	}
	if cfg != nil && cfg.Server.Listen != "" {
		return cfg.Server.Listen
	}
	return DefaultListen
}

// DefaultSocketPath is the socket used for a bare "unix:" address.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir + "/ghostwrite.sock"
	}
	return fmt.Sprintf("/tmp/ghostwrite-%d.sock", os.Getuid())
}

// Listen opens a listener for addr: "unix:/path/to.sock" for a Unix domain
// socket, otherwise a TCP host:port.
func Listen(addr string) (net.Listener, error) {
	path, ok := strings.CutPrefix(addr, "unix:")
	if !ok {
		return net.Listen("tcp", addr)
	}
	if path == "" {
		path = DefaultSocketPath()
	}
	if err := removeStaleSocket(path); err != nil {
		return nil, err
	}
	return net.Listen("unix", path)
}
