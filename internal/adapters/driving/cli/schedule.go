package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect background tasks",
	Long: `Inspect and run the background tasks that keep the session fresh and
poll documents that are still processing. Tasks run while the TUI is open.`,
	RunE: runScheduleList,
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE:  runScheduleList,
}

var scheduleRunCmd = &cobra.Command{
	Use:   "run [task-id]",
	Short: "Run a task now",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleRun,
}

var scheduleHistoryCmd = &cobra.Command{
	Use:   "history [task-id]",
	Short: "Show recent runs of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleHistory,
}

var historyLimit int

func init() {
	scheduleHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum entries")
	addJSONFlag(scheduleListCmd, scheduleHistoryCmd)

	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleRunCmd)
	scheduleCmd.AddCommand(scheduleHistoryCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleList(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errNotConfigured("scheduler")
	}

	tasks, err := scheduler.Tasks(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, tasks)
	}
	if len(tasks) == 0 {
		cmd.Println("No tasks; the scheduler creates them on first start")
		return nil
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			t.ID, t.Name, strconv.FormatBool(t.Enabled), t.Interval.String(), humanTime(t.LastRun), truncate(t.LastError, 40),
		})
	}
	return printTable(cmd, []string{"ID", "NAME", "ENABLED", "EVERY", "LAST RUN", "LAST ERROR"}, rows)
}

func runScheduleRun(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errNotConfigured("scheduler")
	}

	result, err := scheduler.RunNow(cmd.Context(), args[0])
	if err != nil {
		return describeError(err)
	}
	if !result.Success {
		return fmt.Errorf("%s failed: %s", result.TaskID, result.Error)
	}
	cmd.Printf("%s finished in %s, %d items\n",
		result.TaskID, result.EndedAt.Sub(result.StartedAt).Round(time.Millisecond), result.ItemsProcessed)
	return nil
}

func runScheduleHistory(cmd *cobra.Command, args []string) error {
	if scheduler == nil {
		return errNotConfigured("scheduler")
	}

	results, err := scheduler.History(cmd.Context(), args[0], historyLimit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, results)
	}
	if len(results) == 0 {
		cmd.Println("No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.StartedAt.Format("2006-01-02 15:04:05"), strconv.FormatBool(r.Success), strconv.Itoa(r.ItemsProcessed), r.Error,
		})
	}
	return printTable(cmd, []string{"STARTED", "OK", "ITEMS", "ERROR"}, rows)
}
