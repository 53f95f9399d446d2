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
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"

	"github.com/ademuri/not-wrapped/internal/history"
)

const dateFormat = "2006-01-02"

type Analysis struct {
	results      [][]string
	summary      string
	BodyOverride string
}

type AnalyserConfig struct {
	// Number of results to return, default is all results.
	NumToReturn int

	// Only count plays at least this long.
	MinMs int64
}

type Analyser interface {
	GetResults(events []history.PlayEvent, start time.Time, end time.Time) (Analysis, error)

	GetName() string
}

type Configurable interface {
	Configure(params map[string]string) error
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if len(a.results) > 1 {
		table := tablewriter.NewWriter(out)
		table.Header(a.results[0])
		for _, row := range a.results[1:] {
			if err := table.Append(row); err != nil {
				return fmt.Sprintf("Error rendering table: %v", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	} else if a.BodyOverride == "" {
		fmt.Fprintln(out, "No plays found.")
	}
	if a.summary != "" {
		fmt.Fprintf(out, "%s\n", a.summary)
	}
	return out.String()
}

// defaultConfig is the command-line configuration shared by the table
// commands.
func defaultConfig(numToReturn int) AnalyserConfig {
	return AnalyserConfig{NumToReturn: numToReturn, MinMs: viper.GetInt64("min_ms")}
}

// printAnalysis loads the history selected by dateArgs and prints one
// analysis of it.
func printAnalysis(out io.Writer, analyser Analyser, dateArgs []string) error {
	sel, err := loadEvents(dateArgs)
	if err != nil {
		return err
	}
	analysis, err := analyser.GetResults(sel.Events, sel.Start, sel.End)
	if err != nil {
		return fmt.Errorf("%s: %w", analyser.GetName(), err)
	}
	fmt.Fprint(out, analysis)
	return nil
}

// configureInt reads an integer parameter into dst when it is present.
func configureInt(params map[string]string, key string, dst *int) error {
	val, ok := params[key]
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func configureMinMs(params map[string]string, dst *int64) error {
	val, ok := params["min_ms"]
	if !ok {
		return nil
	}
	v, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid min_ms: %w", err)
	}
	*dst = v
	return nil
}

func formatMinutes(m float64) string {
	return strconv.FormatFloat(m, 'f', 1, 64)
}

func formatPercent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 1, 64) + "%"
}

func periodString(start, end time.Time) string {
	return fmt.Sprintf("%s to %s", start.Format(dateFormat), end.Format(dateFormat))
}
