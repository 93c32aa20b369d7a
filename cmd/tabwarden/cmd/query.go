package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/tabwarden/internal/app"
	"github.com/corey/tabwarden/internal/domain/status"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := daemonClient()
		if !client.Ping() {
			fmt.Println(styleMuted.Render("tabwarden daemon is not running"))
			return nil
		}
		h, err := client.Health()
		if err != nil {
			return err
		}
		fmt.Print(formatHealth(h))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show balance, streak and today's distraction",
	Long:  "Asks the daemon for a live snapshot. When the daemon is down, shows the last status file it wrote.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := daemonClient()
		if client.Ping() {
			st, err := client.Status()
			if err != nil {
				return err
			}
			fmt.Print(formatStatus(st))
			return nil
		}
		st, err := status.ReadJSON(app.NewPaths(homeDir()).Status)
		if err != nil {
			return fmt.Errorf("daemon not running and no status file: %w", err)
		}
		fmt.Print(formatStatus(st))
		fmt.Println(styleMuted.Render("  (daemon not running, as of " + st.UpdatedAt.Local().Format("Jan 2 15:04") + ")"))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "List today's distracting domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireDaemon()
		if err != nil {
			return err
		}
		r, err := client.Stats()
		if err != nil {
			return err
		}
		fmt.Print(formatStats(r))
		return nil
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show the daily distraction history",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireDaemon()
		if err != nil {
			return err
		}
		r, err := client.Trend()
		if err != nil {
			return err
		}
		fmt.Print(formatTrend(r))
		return nil
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show the last nudge and generator usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireDaemon()
		if err != nil {
			return err
		}
		ins, err := client.Insights()
		if err != nil {
			return err
		}
		fmt.Print(formatInsights(ins))
		return nil
	},
}
