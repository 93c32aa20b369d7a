package cmd

import (
	"errors"
	"fmt"
	"os"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/tabwarden/internal/adapters/socket"
)

// isDBLockError reports whether err is a bbolt file lock timeout.
func isDBLockError(err error) bool {
	return errors.Is(err, bolt.ErrTimeout)
}

// diagnoseDBLock explains who holds the database lock: the running daemon,
// a crashed daemon that left its socket behind, or something else.
func diagnoseDBLock(home string) string {
	sockPath := socket.SocketPath(home)

	if socket.NewClient(sockPath).Ping() {
		return "database is locked by the running daemon\n" +
			"  → stop it first:  tabwarden daemon stop\n" +
			"  → then retry your command"
	}

	if _, err := os.Stat(sockPath); err == nil {
		return fmt.Sprintf("database is locked, daemon socket exists but is not responding\n"+
			"  → a previous daemon may have crashed\n"+
			"  → find the process:  ps aux | grep 'tabwarden daemon'\n"+
			"  → kill it:           kill <PID>\n"+
			"  → clean up socket:   rm %s", sockPath)
	}

	return "database is locked by another process\n" +
		"  → find the process:  ps aux | grep tabwarden\n" +
		"  → kill it:           kill <PID>\n" +
		"  → then retry your command"
}
