package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/corey/tabwarden/internal/adapters/socket"
	"github.com/corey/tabwarden/internal/app"
	"github.com/corey/tabwarden/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the home, DB, socket and feed paths, daemon status, and the effective configuration. No daemon required.",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config.yaml if none exists",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	home := homeDir()
	paths := app.NewPaths(home)
	sockPath := socket.SocketPath(home)

	running := socket.NewClient(sockPath).Ping()
	daemonStatus := styleWarn.Render("✗ not running")
	if running {
		daemonStatus = styleGood.Render("✓ running")
	}

	fmt.Println(styleTitle.Render("tabwarden config"))
	fmt.Print(row("Home:", home))
	fmt.Print(row("Config:", paths.Config))
	fmt.Print(row("DB:", paths.DB))
	fmt.Print(row("Socket:", sockPath))
	fmt.Print(row("Feed:", paths.FeedFile))
	fmt.Print(row("Daemon:", daemonStatus))
	if running {
		if port, err := os.ReadFile(paths.PortFile); err == nil {
			fmt.Print(row("API:", "http://localhost:"+strings.TrimSpace(string(port))))
		}
	}

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return err
	}
	if cfg.Generator.APIKey != "" {
		cfg.Generator.APIKey = "********"
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(string(out))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := app.NewPaths(homeDir()).Config
	if _, err := os.Stat(path); err == nil {
		fmt.Println(styleMuted.Render("config already exists: " + path))
		return nil
	}
	if err := config.Default().Save(path); err != nil {
		return err
	}
	fmt.Println("wrote " + path)
	return nil
}
