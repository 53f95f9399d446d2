/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ademuri/not-wrapped/internal/analysis"
	"github.com/ademuri/not-wrapped/internal/history"
)

var topArtistsNumber int
var topArtistsCmd = &cobra.Command{
	Use:   "top-artists [from (optional)] [to (optional)]",
	Short: "Lists the most listened-to artists",
	Long:  `Uses the whole history, or the specified date or date range. Date strings look like 'yyyy', 'yyyy-mm', 'yyyy-mm-dd' or '30d'.`,
	Args:  cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		analyser := TopArtistsAnalyzer{}.SetConfig(defaultConfig(topArtistsNumber))
		err := printAnalysis(os.Stdout, analyser, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(topArtistsCmd)

	topArtistsCmd.Flags().IntVarP(&topArtistsNumber, "number", "n", analysis.DefaultTopN, "number of results to return")
}

type TopArtistsAnalyzer struct {
	Config AnalyserConfig
}

func (t TopArtistsAnalyzer) SetConfig(config AnalyserConfig) TopArtistsAnalyzer {
	t.Config = config
	return t
}

func (t *TopArtistsAnalyzer) Configure(params map[string]string) error {
	if err := configureInt(params, "n", &t.Config.NumToReturn); err != nil {
		return err
	}
	return configureMinMs(params, &t.Config.MinMs)
}

func (t TopArtistsAnalyzer) GetName() string {
	return "Top artists"
}

func (t TopArtistsAnalyzer) GetResults(events []history.PlayEvent, start time.Time, end time.Time) (Analysis, error) {
	return rankingAnalysis("Artist", "artists", analysis.TopArtists(events, t.Config.MinMs, 0), t.Config.NumToReturn, start, end), nil
}

// rankingAnalysis tabulates the first numToReturn entries of a full
// ranking; the summary counts all of them.
func rankingAnalysis(header, noun string, ranked []analysis.NamedMinutes, numToReturn int, start, end time.Time) (a Analysis) {
	a.results = [][]string{{"#", header, "Minutes"}}
	var minutes float64
	for i, r := range ranked {
		minutes += r.Minutes
		if numToReturn == 0 || i < numToReturn {
			a.results = append(a.results, []string{fmt.Sprint(i + 1), r.Name, formatMinutes(r.Minutes)})
		}
	}

	a.summary = fmt.Sprintf("Found %d %s and %s minutes from %s",
		len(ranked), noun, formatMinutes(minutes), periodString(start, end))
	return
}
