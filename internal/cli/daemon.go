package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/hirrd/hirrd/internal/api"
	"github.com/hirrd/hirrd/internal/client"
)

const daemonBinary = "hirrdd"

// Probe reports whether a daemon answers GetStatus on the socket.
func Probe(socketPath string) bool {
	c, err := client.New(socketPath, 0, nil)
	if err != nil {
		return false
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = c.Daemon.GetStatus(ctx, &api.GetStatusRequest{})
	return err == nil
}

// EnsureDaemon starts hirrdd for the instance unless one already answers,
// then waits up to timeout for it to become ready.
func EnsureDaemon(e *Env, timeout time.Duration) error {
	socketPath := e.SocketPath()
	if Probe(socketPath) {
		return nil
	}
	fmt.Fprintf(os.Stderr, "daemon not running for instance %q, starting...\n", e.Instance)
	if err := startDaemon(e.Instance); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	if !waitForDaemon(socketPath, timeout) {
		return fmt.Errorf("daemon for instance %q did not become ready", e.Instance)
	}
	return nil
}

// daemonPath prefers a hirrdd next to the running executable, then $PATH.
func daemonPath() string {
	executable, err := os.Executable()
	if err != nil {
		return daemonBinary
	}
	p := filepath.Join(filepath.Dir(executable), daemonBinary)
	if _, err := os.Stat(p); err != nil {
		return daemonBinary
	}
	return p
}

func startDaemon(instanceName string) error {
	cmd := exec.Command(daemonPath(), "--instance", instanceName)
	// Inherit stderr so daemon startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

func waitForDaemon(socketPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if Probe(socketPath) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
