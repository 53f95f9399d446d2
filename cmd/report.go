package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/not-wrapped/internal/analysis"
	"github.com/ademuri/not-wrapped/internal/history"
)

var reportCmd = &cobra.Command{
	Use:   "report [from (optional)] [to (optional)]",
	Short: "Generates the full listening report",
	Long: `Analyzes your listening history to generate totals, behavioral highlights,
the per-year split and the top artists and tracks. Output is YAML by default.`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport(os.Stdout, viper.GetString("format"), args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	var format string
	reportCmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml, json or table")
	viper.BindPFlag("format", reportCmd.Flags().Lookup("format"))
}

func runReport(out io.Writer, format string, args []string) error {
	sel, err := loadEvents(args)
	if err != nil {
		return err
	}

	report := analysis.GenerateReport(sel.Events, viper.GetInt64("min_ms"))
	if err := writeReport(out, format, report, sel.Start, sel.End); err != nil {
		return err
	}
	return report.Err()
}

func writeReport(out io.Writer, format string, report analysis.Report, start, end time.Time) error {
	switch strings.ToLower(format) {
	case "yaml", "":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		return encoder.Close()

	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err

	case "table":
		fmt.Fprint(out, reportAnalysis(report, start, end))
		return nil

	default:
		return fmt.Errorf("unknown format %q, want yaml, json or table", format)
	}
}

type ReportAnalyzer struct {
	Config AnalyserConfig
}

func (r *ReportAnalyzer) Configure(params map[string]string) error {
	return configureMinMs(params, &r.Config.MinMs)
}

func (r ReportAnalyzer) GetName() string {
	return "Listening report"
}

func (r ReportAnalyzer) GetResults(events []history.PlayEvent, start time.Time, end time.Time) (Analysis, error) {
	return reportAnalysis(analysis.GenerateReport(events, r.Config.MinMs), start, end), nil
}

// reportAnalysis flattens a report into a two-column table.
func reportAnalysis(report analysis.Report, start, end time.Time) (a Analysis) {
	a.results = [][]string{{"Stat", "Value"}}
	if !report.OK {
		a.summary = report.Error
		return
	}

	t, h := report.Totals, report.Highlights
	add := func(stat, format string, v ...any) {
		a.results = append(a.results, []string{stat, fmt.Sprintf(format, v...)})
	}
	add("Hours", "%.1f", t.Hours)
	add("Days active", "%d", t.DaysActive)
	add("Unique artists", "%d", t.UniqueArtists)
	add("Unique tracks", "%d", t.UniqueTracks)
	add("Night share (00-05h)", "%s", formatPercent(t.NightShare))
	add("Peak hour", "%02d:00 (%s min)", h.PeakHour.Hour, formatMinutes(h.PeakHour.Minutes))
	add("Most diverse day", "%s (%d artists)", h.MostDiverseDay.Date, h.MostDiverseDay.UniqueArtists)
	add("Biggest binge", "%s on %s (%s min)", h.BiggestArtistBinge.Artist, h.BiggestArtistBinge.Date,
		formatMinutes(h.BiggestArtistBinge.Minutes))
	add("Max loop", "%s x%d on %s", h.MaxLoop.TrackKey, h.MaxLoop.Plays, h.MaxLoop.Date)
	add("Micro-skip rate", "%s", formatPercent(h.MicroSkipRate))
	if h.MostMicroSkipped != nil {
		add("Most micro-skipped", "%s (%d)", h.MostMicroSkipped.Name, h.MostMicroSkipped.Count)
	}
	for _, y := range report.YearSplit {
		add(fmt.Sprintf("Hours in %d", y.Year), "%.1f", y.Hours)
	}
	for i, artist := range report.TopArtists {
		add(fmt.Sprintf("Artist #%d", i+1), "%s (%s min)", artist.Name, formatMinutes(artist.Minutes))
	}
	for i, track := range report.TopTracks {
		add(fmt.Sprintf("Track #%d", i+1), "%s (%s min)", track.Name, formatMinutes(track.Minutes))
	}

	a.summary = fmt.Sprintf("Plays of at least %d ms from %s", report.Meta.MinMs, periodString(start, end))
	return
}
