package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cognicore/clichart/pkg/clichart"
	"github.com/cognicore/clichart/pkg/clichart/config"
	"github.com/cognicore/clichart/pkg/clichart/internalerr"
	"github.com/cognicore/clichart/pkg/clichart/maintenance"
	"github.com/cognicore/clichart/pkg/clichart/stats"
	"github.com/cognicore/clichart/pkg/clichart/store"
	"github.com/cognicore/clichart/pkg/clichart/store/sqlite"
)

func newChartsCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts <db> [id]",
		Short: "List or dump charts saved in a SQLite chart store",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := sqlite.OpenSQLite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer st.Close()

			if len(args) == 1 {
				summaries, err := st.ListCharts(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCREATED\tSERIES\tPOINTS\tTITLE")
				for _, s := range summaries {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
						s.ID, s.CreatedAt.Local().Format(time.DateTime), s.SeriesCount, s.PointCount, s.Title)
				}
				return tw.Flush()
			}

			c, ok, err := st.GetChart(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("chart %s: %w", args[1], internalerr.ErrNotFound)
			}
			if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
				return writeStats(stdout, &c)
			}
			format := clichart.FormatJSON
			if yamlOut, _ := cmd.Flags().GetBool("yaml"); yamlOut {
				format = clichart.FormatYAML
			}
			return clichart.WriteChart(stdout, &c, format)
		},
	}
	cmd.Flags().Bool("yaml", false, "Dump the chart as YAML instead of JSON")
	cmd.Flags().Bool("stats", false, "Print per-series statistics instead of the chart")
	return cmd
}

func writeStats(w io.Writer, c *store.Chart) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AXIS\tSERIES\tCOUNT\tNULLS\tMIN\tMAX\tAVERAGE\tTOTAL")
	for _, s := range stats.ForChart(c) {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%g\t%g\t%g\t%g\n",
			s.Axis, s.Title, s.Count, s.Nulls, s.Min, s.Max, s.Mean, s.Total)
	}
	return tw.Flush()
}

func newPruneCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune <db>",
		Short: "Delete old charts from a SQLite chart store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keep, _ := cmd.Flags().GetInt("keep")
			maxAge, _ := cmd.Flags().GetDuration("older-than")
			if keep <= 0 && maxAge <= 0 {
				return &config.OptionsError{Msg: "prune requires --keep or --older-than"}
			}

			st, err := sqlite.OpenSQLite(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer st.Close()

			p := &maintenance.Pruner{Store: st, Keep: keep, MaxAge: maxAge}
			res, err := p.Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "examined %d, deleted %d, errors %d\n", res.Examined, res.Deleted, res.Errors)
			return nil
		},
	}
	cmd.Flags().Int("keep", 0, "Number of newest charts to retain")
	cmd.Flags().Duration("older-than", 0, "Delete charts created longer ago than this, e.g. 720h")
	return cmd
}
