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
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/not-wrapped/internal/history"
	"github.com/ademuri/not-wrapped/internal/lastfm"
)

type FetchConfig struct {
	Output   string
	User     string
	APIKey   string
	Secret   string
	DateArgs []string
	Location *time.Location
}

// fetchLastfmCmd represents the fetch-lastfm command
var fetchLastfmCmd = &cobra.Command{
	Use:   "fetch-lastfm <output.json> [from (optional)] [to (optional)]",
	Short: "Downloads last.fm scrobbles as a streaming history file",
	Long: `Writes the user's last.fm scrobbles in the streaming-history export format,
so they can be passed to --history. Scrobbles carry no play length, so every
play is counted as 150 seconds. Use '-' to write to stdout.`,
	Args: cobra.RangeArgs(1, 3),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		for _, flag := range []string{"api_key", "secret", "user"} {
			if viper.GetString(flag) == "" {
				return fmt.Errorf("required flag(s) %q not set", flag)
			}
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		loc, err := loadLocation(viper.GetString("location"))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		config := FetchConfig{
			Output:   args[0],
			User:     viper.GetString("user"),
			APIKey:   viper.GetString("api_key"),
			Secret:   viper.GetString("secret"),
			DateArgs: args[1:],
			Location: loc,
		}
		client := lastfm.NewClient(config.APIKey, config.Secret)
		err = fetchLastfm(ctx, client, config)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			stop()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(fetchLastfmCmd)

	var apiKey string
	fetchLastfmCmd.Flags().StringVar(&apiKey, "api_key", "", "last.fm API key")
	viper.BindPFlag("api_key", fetchLastfmCmd.Flags().Lookup("api_key"))

	var secret string
	fetchLastfmCmd.Flags().StringVar(&secret, "secret", "", "last.fm secret")
	viper.BindPFlag("secret", fetchLastfmCmd.Flags().Lookup("secret"))
}

func fetchLastfm(ctx context.Context, client lastfm.RecentTracksGetter, config FetchConfig) error {
	var from, to time.Time
	if len(config.DateArgs) > 0 {
		var err error
		from, to, err = parseDateRangeFromArgs(config.DateArgs, config.Location)
		if err != nil {
			return err
		}
	}

	log.Info().Str("user", config.User).Msg("fetching scrobbles from last.fm")
	importer := lastfm.NewImporter(client, lastfm.Config{Location: config.Location})
	records, err := importer.Fetch(ctx, config.User, from, to)
	if err != nil {
		return err
	}

	if config.Output == "-" {
		if err := history.WriteRecords(os.Stdout, records); err != nil {
			return err
		}
	} else if err := writeRecordsFile(config.Output, records); err != nil {
		return err
	}
	log.Info().Int("records", len(records)).Str("output", config.Output).Msg("wrote history")
	return nil
}

func writeRecordsFile(path string, records []history.RawRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := history.WriteRecords(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
