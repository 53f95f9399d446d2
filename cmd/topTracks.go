package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ademuri/not-wrapped/internal/analysis"
	"github.com/ademuri/not-wrapped/internal/history"
)

var topTracksNumber int
var topTracksCmd = &cobra.Command{
	Use:   "top-tracks [from (optional)] [to (optional)]",
	Short: "Lists the most listened-to tracks",
	Long:  `Uses the whole history, or the specified date or date range. Date strings look like 'yyyy', 'yyyy-mm', 'yyyy-mm-dd' or '30d'.`,
	Args:  cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		analyser := TopTracksAnalyzer{}.SetConfig(defaultConfig(topTracksNumber))
		err := printAnalysis(os.Stdout, analyser, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topTracksCmd)

	topTracksCmd.Flags().IntVarP(&topTracksNumber, "number", "n", analysis.DefaultTopN, "number of results to return")
}

type TopTracksAnalyzer struct {
	Config AnalyserConfig
}

func (t TopTracksAnalyzer) SetConfig(config AnalyserConfig) TopTracksAnalyzer {
	t.Config = config
	return t
}

func (t *TopTracksAnalyzer) Configure(params map[string]string) error {
	if err := configureInt(params, "n", &t.Config.NumToReturn); err != nil {
		return err
	}
	return configureMinMs(params, &t.Config.MinMs)
}

func (t TopTracksAnalyzer) GetName() string {
	return "Top tracks"
}

func (t TopTracksAnalyzer) GetResults(events []history.PlayEvent, start time.Time, end time.Time) (Analysis, error) {
	return rankingAnalysis("Track", "tracks", analysis.TopTracks(events, t.Config.MinMs, 0), t.Config.NumToReturn, start, end), nil
}
