package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/corey/tabwarden/internal/adapters/socket"
	"github.com/corey/tabwarden/internal/app"
)

var (
	homeFlag    string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "tabwarden",
	Short:         "tabwarden: distraction accounting and focus nudges",
	Long:          "Tracks time on distracting sites, keeps a points ledger, and nudges you back to the work you left.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// homeDir returns the tabwarden home: --home, $TABWARDEN_HOME, or ~/.tabwarden.
func homeDir() string {
	if homeFlag != "" {
		return homeFlag
	}
	dir, err := app.HomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// daemonClient returns a client for the daemon of the current home.
func daemonClient() *socket.Client {
	return socket.NewClient(socket.SocketPath(homeDir()))
}

// requireDaemon returns a connected client or a "not running" error.
func requireDaemon() (*socket.Client, error) {
	client := daemonClient()
	if !client.Ping() {
		return nil, fmt.Errorf("daemon not running. Start with: tabwarden daemon start")
	}
	return client, nil
}

// newLogger builds the daemon logger. Output goes to stderr and, when
// logFile is set, to that file too.
func newLogger(logFile string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	if logFile != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
	}
	if verboseFlag {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "tabwarden home directory (default $TABWARDEN_HOME or ~/.tabwarden)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(sprintCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(resetCmd)
}
