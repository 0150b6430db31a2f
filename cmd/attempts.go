package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var attemptsCmd = &cobra.Command{
	Use:          "attempts",
	Short:        "Inspect the compilation attempt ledger",
	SilenceUsage: true,
}

var attemptsGetCmd = &cobra.Command{
	Use:          "get <attempt-id>",
	Short:        "Show a single attempt by id",
	RunE:         runAttemptsGet,
	SilenceUsage: true,
	Args:         cobra.ExactArgs(1),
}

var attemptsQueryCmd = &cobra.Command{
	Use:          "query",
	Short:        "List attempts, newest first, with optional filters",
	RunE:         runAttemptsQuery,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

var attemptsPurgeCmd = &cobra.Command{
	Use:          "purge",
	Short:        "Delete attempt partitions older than a cutoff",
	RunE:         runAttemptsPurge,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

var attemptsStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show attempt counts and success rate",
	RunE:         runAttemptsStats,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

func init() {
	attemptsQueryCmd.Flags().StringSliceP("filter", "f", []string{}, "Equality filter on a dotted path (e.g. output.returncode=0)")
	attemptsQueryCmd.Flags().IntP("limit", "n", 50, "Maximum attempts to return (0 for all)")
	attemptsPurgeCmd.Flags().Int("days", 30, "Delete partitions older than this many days")

	attemptsCmd.AddCommand(attemptsGetCmd)
	attemptsCmd.AddCommand(attemptsQueryCmd)
	attemptsCmd.AddCommand(attemptsPurgeCmd)
	attemptsCmd.AddCommand(attemptsStatsCmd)
}

func runAttemptsGet(cmd *cobra.Command, args []string) error {
	comps, err := loadComponents(cmd)
	if err != nil {
		return err
	}
	defer comps.close()

	attempt, err := comps.ledger.Get(args[0])
	if err != nil {
		return err
	}

	return printJSON(attempt)
}

func runAttemptsQuery(cmd *cobra.Command, args []string) error {
	rawFilters, _ := cmd.Flags().GetStringSlice("filter")

	filters, err := parseFilters(rawFilters)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")

	comps, err := loadComponents(cmd)
	if err != nil {
		return err
	}
	defer comps.close()

	attempts, err := comps.ledger.Query(filters, limit)
	if err != nil {
		return err
	}

	return printJSON(attempts)
}

func runAttemptsPurge(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")

	comps, err := loadComponents(cmd)
	if err != nil {
		return err
	}
	defer comps.close()

	removed, err := comps.ledger.PurgeOlderThan(days)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d attempts older than %d days\n", removed, days)

	return nil
}

func runAttemptsStats(cmd *cobra.Command, args []string) error {
	comps, err := loadComponents(cmd)
	if err != nil {
		return err
	}
	defer comps.close()

	stats, err := comps.ledger.ComputeStats()
	if err != nil {
		return err
	}

	return printJSON(stats)
}

// parseFilters turns path=value pairs into a filter map. Values are
// decoded as JSON where possible so numbers and booleans compare by
// value, not by string.
func parseFilters(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	filters := make(map[string]any, len(raw))

	for _, pair := range raw {
		path, value, found := strings.Cut(pair, "=")
		if !found || path == "" {
			return nil, fmt.Errorf("invalid filter %q, expected path=value", pair)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			decoded = value
		}

		filters[path] = decoded
	}

	return filters, nil
}
