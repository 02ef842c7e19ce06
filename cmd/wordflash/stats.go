package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/models"
)

func newStatsCommand() *cobra.Command {
	var learnerID string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a learner's collection summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.service(cfg).GetStats(context.Background(), learnerID)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), learnerID, stats)
			return nil
		},
	}
	cmd.Flags().StringVar(&learnerID, "learner", "", "learner ID")
	_ = cmd.MarkFlagRequired("learner")
	return cmd
}

func printStats(w io.Writer, learnerID string, s models.StatsSummary) {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.Faint)

	title.Fprintf(w, "Cards for %s\n", learnerID)
	row := func(name string, value any, c *color.Color) {
		label.Fprintf(w, "  %-20s", name)
		c.Fprintf(w, "%v\n", value)
	}

	plain := color.New(color.Reset)
	row("total", s.Total, plain)
	row("new", s.New, color.New(color.FgBlue))
	row("learning", s.Learning, color.New(color.FgYellow))
	row("mature", s.Mature, color.New(color.FgGreen))

	due := color.New(color.FgGreen)
	if s.DueToday > 0 {
		due = color.New(color.FgRed, color.Bold)
	}
	row("due now", s.DueToday, due)
	row("reviews", s.TotalReviews, plain)
	row("retention", fmt.Sprintf("%.2f%%", s.AverageRetention), retentionColor(s.AverageRetention))
	row("average ease", fmt.Sprintf("%.2f", s.AverageEaseFactor), plain)
	row("longest streak", s.LongestStreak, plain)
}

func retentionColor(pct float64) *color.Color {
	switch {
	case pct >= 85:
		return color.New(color.FgGreen)
	case pct >= 70:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
