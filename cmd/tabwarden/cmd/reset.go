package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/tabwarden/internal/adapters/bbolt"
	"github.com/corey/tabwarden/internal/app"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe stats, points and history",
	Long:  "Clears every persisted key and starts over from day zero. The config file is kept.",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	home := homeDir()

	if !resetForce {
		fmt.Print("This will clear all stats, points and history. Continue? [y/N] ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("cancelled")
			return nil
		}
	}

	// A running daemon holds the database lock: reset through it.
	client := daemonClient()
	if client.Ping() {
		if err := client.Reset(); err != nil {
			return fmt.Errorf("reset via daemon failed: %w", err)
		}
		fmt.Println("state reset (daemon)")
		return nil
	}

	dbPath := app.NewPaths(home).DB
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("no data to reset")
		return nil
	}
	store, err := bbolt.NewStore(dbPath)
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("cannot reset: %s", diagnoseDBLock(home))
		}
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	// The next daemon start writes the day-zero defaults.
	if err := store.Reset(context.Background()); err != nil {
		return err
	}
	fmt.Println("state reset")
	return nil
}
