package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hotelstats/internal/cache"
	"hotelstats/internal/export"
)

func newStatsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print daily statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, _ := cmd.Flags().GetString("day")

			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Reports.DailyStats(cmd.Context(), day)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().String("day", "", "Day to report (YYYY-MM-DD, default today)")
	return cmd
}

func newReportCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the monthly calendar when --month is given, otherwise daily statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, _ := cmd.Flags().GetString("day")
			month, _ := cmd.Flags().GetString("month")

			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Reports.Report(cmd.Context(), day, month, cmd.Flags().Changed("month"))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().String("day", "", "Day to report (YYYY-MM-DD)")
	cmd.Flags().String("month", "", "Month to report (YYYY-MM)")
	return cmd
}

func newExportCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the report as an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, _ := cmd.Flags().GetString("day")
			month, _ := cmd.Flags().GetString("month")
			path, _ := cmd.Flags().GetString("out")

			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()

			if cmd.Flags().Changed("month") {
				cal, err := a.Reports.Calendar(cmd.Context(), month)
				if err != nil {
					return err
				}
				err = export.WriteCalendar(f, cal)
				if err != nil {
					return err
				}
			} else {
				stats, err := a.Reports.DailyStats(cmd.Context(), day)
				if err != nil {
					return err
				}
				err = export.WriteDaily(f, stats)
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().String("day", "", "Day to export (YYYY-MM-DD)")
	cmd.Flags().String("month", "", "Month to export (YYYY-MM)")
	cmd.Flags().StringP("out", "o", "report.xlsx", "Output file")
	return cmd
}

func newCacheCmd(g *globals) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the response cache",
	}

	show := &cobra.Command{
		Use:   "show [key]",
		Short: "Show the cached record for key (default: latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := "latest"
			if len(args) == 1 {
				key = args[0]
			}
			withData, _ := cmd.Flags().GetBool("data")

			a, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, ok := a.Cache.Read(cmd.Context(), key)
			if !ok {
				return fmt.Errorf("no cached record for %q", key)
			}

			now := time.Now()
			info := cacheInfo{
				Key:       key,
				WrittenAt: time.UnixMilli(rec.Timestamp).Format(time.RFC3339),
				Age:       rec.Age(now).Round(time.Second).String(),
				Fresh:     cache.IsFresh(rec, a.Fetcher.Timeout(), now),
				Bytes:     len(rec.Data),
			}
			if withData {
				info.Data = rec.Data
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
	show.Flags().Bool("data", false, "Include the cached payload")

	cacheCmd.AddCommand(show)
	return cacheCmd
}

type cacheInfo struct {
	Key       string          `json:"key"`
	WrittenAt string          `json:"writtenAt"`
	Age       string          `json:"age"`
	Fresh     bool            `json:"fresh"`
	Bytes     int             `json:"bytes"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
