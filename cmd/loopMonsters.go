package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ademuri/not-wrapped/internal/analysis"
	"github.com/ademuri/not-wrapped/internal/history"
)

var loopMonstersCmd = &cobra.Command{
	Use:   "loop-monsters [from (optional)] [to (optional)]",
	Short: "Lists the tracks you replayed most in a single day",
	Args:  cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		err := printAnalysis(os.Stdout, LoopMonstersAnalyzer{Config: defaultConfig(0)}, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

var clockCmd = &cobra.Command{
	Use:   "clock [from (optional)] [to (optional)]",
	Short: "Shows listening minutes by hour of day and by month",
	Args:  cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		config := defaultConfig(0)
		for _, analyser := range []Analyser{ClockAnalyzer{Config: config}, MonthsAnalyzer{Config: config}} {
			if err := printAnalysis(os.Stdout, analyser, args); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(loopMonstersCmd)
	rootCmd.AddCommand(clockCmd)
}

type LoopMonstersAnalyzer struct {
	Config AnalyserConfig
}

func (l *LoopMonstersAnalyzer) Configure(params map[string]string) error {
	return configureMinMs(params, &l.Config.MinMs)
}

func (l LoopMonstersAnalyzer) GetName() string {
	return "Loop monsters"
}

func (l LoopMonstersAnalyzer) GetResults(events []history.PlayEvent, start time.Time, end time.Time) (a Analysis, err error) {
	patterns := analysis.ComputePatterns(events, l.Config.MinMs)

	a.results = [][]string{{"#", "Track", "Plays in one day"}}
	for i, m := range patterns.LoopMonsters {
		a.results = append(a.results, []string{fmt.Sprint(i + 1), m.TrackKey, fmt.Sprint(m.Repeats)})
	}
	a.summary = fmt.Sprintf("%s minutes from %s", formatMinutes(patterns.TotalMinutes), periodString(start, end))
	return
}

// Widest bar drawn by the clock and months tables.
const barWidth = 30

type ClockAnalyzer struct {
	Config AnalyserConfig
}

func (c *ClockAnalyzer) Configure(params map[string]string) error {
	return configureMinMs(params, &c.Config.MinMs)
}

func (c ClockAnalyzer) GetName() string {
	return "Listening clock"
}

func (c ClockAnalyzer) GetResults(events []history.PlayEvent, start time.Time, end time.Time) (a Analysis, err error) {
	patterns := analysis.ComputePatterns(events, c.Config.MinMs)

	var peak float64
	for _, h := range patterns.HourlyMinutes {
		peak = max(peak, h.Minutes)
	}
	a.results = [][]string{{"Hour", "Minutes", ""}}
	for _, h := range patterns.HourlyMinutes {
		a.results = append(a.results, []string{fmt.Sprintf("%02d", h.Hour), formatMinutes(h.Minutes), bar(h.Minutes, peak)})
	}
	a.summary = fmt.Sprintf("%s minutes from %s", formatMinutes(patterns.TotalMinutes), periodString(start, end))
	return
}

type MonthsAnalyzer struct {
	Config AnalyserConfig
}

func (m *MonthsAnalyzer) Configure(params map[string]string) error {
	return configureMinMs(params, &m.Config.MinMs)
}

func (m MonthsAnalyzer) GetName() string {
	return "Monthly minutes"
}

func (m MonthsAnalyzer) GetResults(events []history.PlayEvent, start time.Time, end time.Time) (a Analysis, err error) {
	patterns := analysis.ComputePatterns(events, m.Config.MinMs)

	var peak float64
	for _, mm := range patterns.MonthlyMinutes {
		peak = max(peak, mm.Minutes)
	}
	a.results = [][]string{{"Month", "Minutes", ""}}
	for _, mm := range patterns.MonthlyMinutes {
		a.results = append(a.results, []string{mm.Month, formatMinutes(mm.Minutes), bar(mm.Minutes, peak)})
	}
	a.summary = fmt.Sprintf("%d months from %s", len(patterns.MonthlyMinutes), periodString(start, end))
	return
}

func bar(v, peak float64) string {
	if peak <= 0 {
		return ""
	}
	return strings.Repeat("#", int(v/peak*barWidth+0.5))
}
