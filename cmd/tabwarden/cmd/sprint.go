package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sprintCmd = &cobra.Command{
	Use:   "sprint",
	Short: "Start or stop a focus sprint",
	Long:  "A sprint suspends distraction penalties and pays a bonus when it runs to completion.",
}

var sprintStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a focus sprint",
	RunE:  func(cmd *cobra.Command, args []string) error { return runSprint(true) },
}

var sprintStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Abandon the running sprint (no bonus)",
	RunE:  func(cmd *cobra.Command, args []string) error { return runSprint(false) },
}

func init() {
	sprintCmd.AddCommand(sprintStartCmd)
	sprintCmd.AddCommand(sprintStopCmd)
}

func runSprint(active bool) error {
	client, err := requireDaemon()
	if err != nil {
		return err
	}
	res, err := client.Sprint(active)
	if err != nil {
		return err
	}
	if !res.Active {
		fmt.Println("sprint stopped")
		return nil
	}
	ends := time.UnixMilli(res.EndsAt).Local()
	fmt.Printf("%s until %s\n", styleGood.Render("sprint running"), ends.Format("15:04"))
	return nil
}
