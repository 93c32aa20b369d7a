package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corey/tabwarden/internal/adapters/socket"
	"github.com/corey/tabwarden/internal/app"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the tabwarden daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the daemon in the foreground",
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	home := homeDir()
	sockPath := socket.SocketPath(home)

	if socket.NewClient(sockPath).Ping() {
		fmt.Println(styleMuted.Render("daemon already running"))
		return nil
	}

	paths := app.NewPaths(home)
	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create home: %w", err)
	}
	log, err := newLogger(paths.DaemonLog)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()
	a, err := app.New(ctx, app.Config{Home: home, Logger: log})
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("cannot start: %s", diagnoseDBLock(home))
		}
		return fmt.Errorf("init: %w", err)
	}
	if err := a.Start(ctx); err != nil {
		a.Stop()
		return err
	}
	if err := os.WriteFile(paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		log.Warn("write pid file", zap.Error(err))
	}
	defer paths.CleanEphemeral()

	fmt.Printf("%s %s\n", styleTitle.Render("tabwarden daemon started"), styleMuted.Render(sockPath))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("signal received", zap.String("signal", sig.String()))
	case <-a.ShutdownCh():
		log.Info("shutdown requested by client")
	}

	fmt.Println(styleMuted.Render("shutting down..."))
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	client := daemonClient()
	if !client.Ping() {
		fmt.Println(styleMuted.Render("daemon is not running"))
		return nil
	}
	if err := client.Shutdown(); err != nil {
		return err
	}
	fmt.Println("daemon stopped")
	return nil
}
