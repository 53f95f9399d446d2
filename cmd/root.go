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

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/not-wrapped/internal/analysis"
	"github.com/ademuri/not-wrapped/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "not-wrapped",
	Short: "Builds a listening report from streaming-history exports",
	Long: `Reads one or more StreamingHistory*.json export files and reports on
listening totals, habits, loops, binges and how taste drifted over time.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := logging.Setup(viper.GetString("log_level"), nil)
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.not-wrapped.yaml)")

	var historyFiles []string
	rootCmd.PersistentFlags().StringSliceVarP(
		&historyFiles, "history", "f", nil, "streaming history export file(s), e.g. StreamingHistory0.json")
	viper.BindPFlag("history", rootCmd.PersistentFlags().Lookup("history"))

	var minMs int64
	rootCmd.PersistentFlags().Int64Var(
		&minMs, "min_ms", analysis.DefaultMinMs, "ignore plays shorter than this many milliseconds")
	viper.BindPFlag("min_ms", rootCmd.PersistentFlags().Lookup("min_ms"))

	var location string
	rootCmd.PersistentFlags().StringVar(
		&location, "location", "", "IANA time zone of the export's timestamps (default is the local zone)")
	viper.BindPFlag("location", rootCmd.PersistentFlags().Lookup("location"))

	var logLevel string
	rootCmd.PersistentFlags().StringVar(&logLevel, "log_level", "info", "log level: debug, info, warn or error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))

	var user string
	rootCmd.PersistentFlags().StringVarP(&user, "user", "u", "", "whose listening this is; also the last.fm username for fetch-lastfm")
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".not-wrapped" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".not-wrapped")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}
