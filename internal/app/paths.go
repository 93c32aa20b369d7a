package app

import (
	"os"
	"path/filepath"

	"github.com/corey/tabwarden/internal/config"
	"github.com/corey/tabwarden/internal/domain/status"
)

// Paths holds all resolved filesystem paths under the tabwarden home.
type Paths struct {
	Root   string // ~/.tabwarden/
	DB     string // ~/.tabwarden/tabwarden.db
	Config string // ~/.tabwarden/config.yaml
	Status string // ~/.tabwarden/status.json

	LogDir    string // ~/.tabwarden/log/
	DaemonLog string // ~/.tabwarden/log/daemon.log

	RunDir   string // ~/.tabwarden/run/
	PIDFile  string // ~/.tabwarden/run/daemon.pid
	PortFile string // ~/.tabwarden/run/http.port

	FeedDir  string // ~/.tabwarden/feed/
	FeedFile string // ~/.tabwarden/feed/events.jsonl
}

// NewPaths constructs all resolved paths from a home directory.
func NewPaths(root string) *Paths {
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "tabwarden.db"),
		Config: filepath.Join(root, config.FileName),
		Status: filepath.Join(root, status.StatusFile),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		RunDir:   filepath.Join(root, "run"),
		PIDFile:  filepath.Join(root, "run", "daemon.pid"),
		PortFile: filepath.Join(root, "run", "http.port"),

		FeedDir:  filepath.Join(root, "feed"),
		FeedFile: filepath.Join(root, "feed", "events.jsonl"),
	}
}

// HomeDir returns $TABWARDEN_HOME, or ~/.tabwarden when unset.
func HomeDir() (string, error) {
	if h := os.Getenv("TABWARDEN_HOME"); h != "" {
		return filepath.Abs(h)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tabwarden"), nil
}

// EnsureDirs creates all subdirectories under the home. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir, p.RunDir, p.FeedDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes ephemeral runtime files (PID file and port file).
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.PortFile)
}
