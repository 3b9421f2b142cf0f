package cli

import (
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var analyticsCmd = &cobra.Command{
	Use:     "analytics",
	Aliases: []string{"stats"},
	Short:   "Show usage analytics",
	RunE:    runAnalyticsDashboard,
}

var analyticsDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show headline numbers",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsDashboard,
}

var analyticsStatsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"usage"},
	Short:   "Show detailed usage statistics",
	Args:    cobra.NoArgs,
	RunE:    runAnalyticsStats,
}

var analyticsActivityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent activity",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsActivity,
}

var analyticsQueriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Show the most asked questions",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsQueries,
}

var analyticsLimit int

func init() {
	for _, c := range []*cobra.Command{analyticsActivityCmd, analyticsQueriesCmd} {
		c.Flags().IntVarP(&analyticsLimit, "limit", "n", 0, "Maximum entries (0 = server default)")
	}
	addJSONFlag(analyticsDashboardCmd, analyticsStatsCmd, analyticsActivityCmd, analyticsQueriesCmd)

	analyticsCmd.AddCommand(analyticsDashboardCmd)
	analyticsCmd.AddCommand(analyticsStatsCmd)
	analyticsCmd.AddCommand(analyticsActivityCmd)
	analyticsCmd.AddCommand(analyticsQueriesCmd)
	rootCmd.AddCommand(analyticsCmd)
}

func runAnalyticsDashboard(cmd *cobra.Command, _ []string) error {
	if analyticsService == nil {
		return errNotConfigured("analytics")
	}

	d, err := analyticsService.Dashboard(cmd.Context())
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd, d)
	}

	cmd.Printf("Documents:           %s (%s this week)\n", humanize.Comma(int64(d.TotalDocuments)),
		humanize.Comma(int64(d.DocumentsThisWeek)))
	cmd.Printf("Stores:              %s\n", humanize.Comma(int64(d.TotalStores)))
	cmd.Printf("Chat sessions:       %s\n", humanize.Comma(int64(d.TotalSessions)))
	cmd.Printf("Queries:             %s\n", humanize.Comma(int64(d.TotalQueries)))
	cmd.Printf("Active users:        %s\n", humanize.Comma(int64(d.ActiveUsers)))
	cmd.Printf("Processing failures: %s\n", humanize.Comma(int64(d.ProcessingFailures)))
	return nil
}

func runAnalyticsStats(cmd *cobra.Command, _ []string) error {
	if analyticsService == nil {
		return errNotConfigured("analytics")
	}

	stats, err := analyticsService.Stats(cmd.Context())
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd, stats)
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("%s: %v\n", k, stats[k])
	}
	return nil
}

func runAnalyticsActivity(cmd *cobra.Command, _ []string) error {
	if analyticsService == nil {
		return errNotConfigured("analytics")
	}

	entries, err := analyticsService.Activity(cmd.Context(), analyticsLimit)
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd, entries)
	}
	if len(entries) == 0 {
		cmd.Println("No activity")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{humanTime(e.CreatedAt), e.Type, e.UserEmail, truncate(e.Description, 60)})
	}
	return printTable(cmd, []string{"WHEN", "TYPE", "USER", "DESCRIPTION"}, rows)
}

func runAnalyticsQueries(cmd *cobra.Command, _ []string) error {
	if analyticsService == nil {
		return errNotConfigured("analytics")
	}

	queries, err := analyticsService.TopQueries(cmd.Context(), analyticsLimit)
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd, queries)
	}
	if len(queries) == 0 {
		cmd.Println("No queries yet")
		return nil
	}

	rows := make([][]string, 0, len(queries))
	for _, q := range queries {
		rows = append(rows, []string{strconv.Itoa(q.Count), humanTime(q.LastAsked), truncate(q.Query, 70)})
	}
	return printTable(cmd, []string{"COUNT", "LAST ASKED", "QUERY"}, rows)
}
