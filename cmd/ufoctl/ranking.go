package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/ufotracker/internal/domain/week"
	searchuc "github.com/kailas-cloud/ufotracker/internal/usecase/search"
)

type rankingRow struct {
	State       string `json:"state"`
	Reliability *int   `json:"reliability"`
}

type rankingOutput struct {
	WeekStart string       `json:"week_start"`
	WeekEnd   string       `json:"week_end"`
	Entries   []rankingRow `json:"entries"`
}

func toRankingOutput(r searchuc.WeeklyRanking) rankingOutput {
	out := rankingOutput{
		WeekStart: r.Window.Start.Format(week.DateLayout),
		WeekEnd:   r.Window.LastDay().Format(week.DateLayout),
		Entries:   make([]rankingRow, len(r.Entries)),
	}
	for i, e := range r.Entries {
		out.Entries[i] = rankingRow{State: e.State, Reliability: e.Reliability}
	}
	return out
}

// printRanking writes the ranking as an aligned table, or as JSON when asJSON is set.
func printRanking(w io.Writer, r searchuc.WeeklyRanking, asJSON bool) error {
	out := toRankingOutput(r)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "week %s .. %s\n", out.WeekStart, out.WeekEnd)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tRELIABILITY")
	for _, e := range out.Entries {
		rel := "-"
		if e.Reliability != nil {
			rel = strconv.Itoa(*e.Reliability)
		}
		fmt.Fprintf(tw, "%s\t%s\n", e.State, rel)
	}
	return tw.Flush()
}

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Print the weekly per-state reliability ranking",
	Long: `ranking resolves the calendar week before the week containing --date
and prints, per state, the reliability of its most reliable sighting.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		date, _ := cmd.Flags().GetString("date")
		asJSON, _ := cmd.Flags().GetBool("json")
		if date == "" {
			date = time.Now().UTC().Format(week.DateLayout)
		}
		if _, err := week.ParseReference(date); err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app) error {
			r, err := a.search.WeeklyRanking(ctx, date)
			if err != nil {
				return fmt.Errorf("weekly ranking: %w", err)
			}
			return printRanking(cmd.OutOrStdout(), r, asJSON)
		})
	},
}

func init() {
	rankingCmd.Flags().String("date", "", "reference date YYYY-MM-DD (default today, UTC)")
	rankingCmd.Flags().Bool("json", false, "print JSON instead of a table")
	rootCmd.AddCommand(rankingCmd)
}
