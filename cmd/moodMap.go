package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/not-wrapped/internal/analysis"
	"github.com/ademuri/not-wrapped/internal/history"
)

var moodMapCmd = &cobra.Command{
	Use:   "mood-map [from (optional)] [to (optional)]",
	Short: "Places your most played tracks on a calm/chaos map",
	Long: `Scores each of the most played tracks for calm (long, sustained listening)
and chaos (same-day repeats, short plays), scaled to 0-100 across the tracks shown.`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		analyser := MoodMapAnalyzer{Config: defaultConfig(viper.GetInt("points"))}
		err := printAnalysis(os.Stdout, analyser, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(moodMapCmd)

	var points int
	moodMapCmd.Flags().IntVar(&points, "points", analysis.DefaultMoodPoints, "number of tracks to place")
	viper.BindPFlag("points", moodMapCmd.Flags().Lookup("points"))
}

type MoodMapAnalyzer struct {
	Config AnalyserConfig
}

func (m *MoodMapAnalyzer) Configure(params map[string]string) error {
	if err := configureInt(params, "points", &m.Config.NumToReturn); err != nil {
		return err
	}
	return configureMinMs(params, &m.Config.MinMs)
}

func (m MoodMapAnalyzer) GetName() string {
	return "Mood map"
}

func (m MoodMapAnalyzer) GetResults(events []history.PlayEvent, start time.Time, end time.Time) (a Analysis, err error) {
	points := analysis.ComputeMoodMap(events, m.Config.MinMs, m.Config.NumToReturn)

	quadrants := make(map[string]int)
	a.results = [][]string{{"Track", "Calm", "Chaos", "Quadrant", "Minutes", "Max repeats"}}
	for _, p := range points {
		q := p.Quadrant()
		quadrants[q]++
		a.results = append(a.results, []string{
			p.TrackKey,
			fmt.Sprintf("%.0f", p.CalmN),
			fmt.Sprintf("%.0f", p.ChaosN),
			q,
			formatMinutes(p.Minutes),
			fmt.Sprint(p.MaxRepeats),
		})
	}

	a.summary = fmt.Sprintf("%d tracks from %s: %s %d, %s %d, %s %d, %s %d",
		len(points), periodString(start, end),
		analysis.QuadrantZenZone, quadrants[analysis.QuadrantZenZone],
		analysis.QuadrantFocusedLoop, quadrants[analysis.QuadrantFocusedLoop],
		analysis.QuadrantBackgroundDrift, quadrants[analysis.QuadrantBackgroundDrift],
		analysis.QuadrantChaosGoblin, quadrants[analysis.QuadrantChaosGoblin])
	return
}
