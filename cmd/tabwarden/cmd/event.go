package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corey/tabwarden/internal/ports"
)

// Event flags shared by the event subcommands.
var (
	eventTab    int
	eventWindow int
	eventURL    string
	eventTitle  string
	eventStatus string
	eventActive bool
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Send a browser event to the daemon",
	Long: "Feeds one tab or focus event to the daemon, the same way the browser bridge does.\n" +
		"Bridges that cannot use the socket append JSON lines to feed/events.jsonl instead.",
}

var eventActivateCmd = &cobra.Command{
	Use:   "activate",
	Short: "A tab became the active tab of its window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendEvent(ports.Event{Kind: ports.EventTabActivated, TabID: eventTab, WindowID: eventWindow, URL: eventURL, Title: eventTitle})
	},
}

var eventUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "A tab changed URL or finished loading",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendEvent(ports.Event{
			Kind: ports.EventTabUpdated, TabID: eventTab, WindowID: eventWindow,
			URL: eventURL, Title: eventTitle, Status: eventStatus, Active: eventActive,
		})
	},
}

var eventRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "A tab was closed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendEvent(ports.Event{Kind: ports.EventTabRemoved, TabID: eventTab})
	},
}

var eventFocusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Window focus changed (--window -1: the browser lost focus)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendEvent(ports.Event{Kind: ports.EventFocusChanged, WindowID: eventWindow})
	},
}

func init() {
	for _, c := range []*cobra.Command{eventActivateCmd, eventUpdateCmd, eventRemoveCmd} {
		c.Flags().IntVar(&eventTab, "tab", 0, "tab ID")
		_ = c.MarkFlagRequired("tab")
	}
	for _, c := range []*cobra.Command{eventActivateCmd, eventUpdateCmd, eventFocusCmd} {
		c.Flags().IntVar(&eventWindow, "window", 0, "window ID")
	}
	for _, c := range []*cobra.Command{eventActivateCmd, eventUpdateCmd} {
		c.Flags().StringVar(&eventURL, "url", "", "tab URL")
		c.Flags().StringVar(&eventTitle, "title", "", "tab title")
	}
	eventUpdateCmd.Flags().StringVar(&eventStatus, "status", ports.TabStatusComplete, "load status (loading, complete)")
	eventUpdateCmd.Flags().BoolVar(&eventActive, "active", false, "tab is the active tab of its window")

	eventCmd.AddCommand(eventActivateCmd)
	eventCmd.AddCommand(eventUpdateCmd)
	eventCmd.AddCommand(eventRemoveCmd)
	eventCmd.AddCommand(eventFocusCmd)
}

func sendEvent(ev ports.Event) error {
	client, err := requireDaemon()
	if err != nil {
		return err
	}
	res, err := client.Event(ev)
	if err != nil {
		return err
	}
	fmt.Println(styleMuted.Render("queued " + res.ID))
	return nil
}
