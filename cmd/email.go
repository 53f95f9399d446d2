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
	"html"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/not-wrapped/internal/history"
)

type SendEmailConfig struct {
	User           string
	From           string
	To             string
	ReportName     string
	Types          []string
	Params         []map[string]string
	DryRun         bool
	SendgridAPIKey string
	Events         []history.PlayEvent
	Start          time.Time
	End            time.Time
	// Context cancels slow analyses such as commentary.
	Context context.Context
}

var emailCmd = &cobra.Command{
	Use:   "email <address> <analysis_name...> [date] [date]",
	Short: "Sends an email report",
	Long: `Emails analyses of the listening history to the specified address.
  <analysis_name> is one or more of: ` + strings.Join(analysisNames(), ", ") + `.
  Optional date arguments can be provided at the end (e.g. '2023-01' or '2023-01 2023-06').
  If no dates are provided, the whole history is used.`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		to := args[0]
		analysisTypes, dateArgs := splitDateArgs(args[1:])
		if len(analysisTypes) == 0 {
			fmt.Fprintln(os.Stderr, "Error: No analysis types specified")
			os.Exit(1)
		}

		params, _ := cmd.Flags().GetStringArray("params")
		if len(params) > 0 && len(params) != len(analysisTypes) {
			fmt.Fprintf(os.Stderr, "Error: Number of --params flags (%d) must match number of reports (%d), or be 0.\n", len(params), len(analysisTypes))
			os.Exit(1)
		}

		sel, err := loadEvents(dateArgs)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		config := SendEmailConfig{
			User:           viper.GetString("user"),
			From:           viper.GetString("from"),
			To:             to,
			ReportName:     viper.GetString("name"),
			Types:          analysisTypes,
			Params:         parseParams(params, len(analysisTypes)),
			DryRun:         viper.GetBool("dryRun"),
			SendgridAPIKey: viper.GetString("sendgrid_api_key"),
			Events:         sel.Events,
			Start:          sel.Start,
			End:            sel.End,
			Context:        ctx,
		}
		err = sendEmail(config)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			stop()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	var name string
	emailCmd.Flags().StringVar(&name, "name", "", "Report name, appended to the subject")
	viper.BindPFlag("name", emailCmd.Flags().Lookup("name"))

	var from string
	emailCmd.Flags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", emailCmd.Flags().Lookup("from"))

	var apiKey string
	emailCmd.Flags().StringVar(&apiKey, "sendgrid_api_key", "", "SendGrid API key")
	viper.BindPFlag("sendgrid_api_key", emailCmd.Flags().Lookup("sendgrid_api_key"))

	emailCmd.Flags().StringArray("params", nil, "Parameters for reports, matched by index (e.g. --params 'n=20')")
}

// splitDateArgs peels up to two trailing datestrings off args.
func splitDateArgs(args []string) (rest []string, dateArgs []string) {
	rest = args
	for len(rest) > 0 && len(dateArgs) < 2 {
		last := rest[len(rest)-1]
		if _, err := parseSingleDatestring(last, time.UTC); err != nil {
			break
		}
		dateArgs = append([]string{last}, dateArgs...)
		rest = rest[:len(rest)-1]
	}
	return
}

// parseParams turns "k=v,k2=v2" strings into maps, one per analysis.
func parseParams(params []string, n int) []map[string]string {
	structured := make([]map[string]string, n)
	for i, v := range params {
		pMap := make(map[string]string)
		if v != "" {
			for _, pair := range strings.Split(v, ",") {
				kv := strings.SplitN(pair, "=", 2)
				if len(kv) == 2 {
					pMap[kv[0]] = kv[1]
				}
			}
		}
		structured[i] = pMap
	}
	return structured
}

func sendEmail(config SendEmailConfig) error {
	actions := make([]Analyser, 0)
	for i, actionName := range config.Types {
		action, err := getActionFromName(actionName)
		if err != nil {
			return err
		}

		if config.Params != nil && i < len(config.Params) {
			params := config.Params[i]
			if len(params) > 0 {
				if configurable, ok := action.(Configurable); ok {
					err := configurable.Configure(params)
					if err != nil {
						return fmt.Errorf("configuring %s (index %d): %w", actionName, i, err)
					}
				}
			}
		}

		if c, ok := action.(*CommentaryAnalyzer); ok && config.Context != nil {
			c.Ctx = config.Context
		}

		actions = append(actions, action)
	}
	subject, out, err := generateEmailContent(config, actions)
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, out)
		return nil
	}

	if config.SendgridAPIKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}
	message := mail.NewSingleEmail(
		mail.NewEmail("not-wrapped", config.From),
		subject,
		mail.NewEmail("", config.To),
		subject,
		out)
	response, err := sendgrid.NewSendClient(config.SendgridAPIKey).Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendEmail: SendGrid returned %d: %s", response.StatusCode, response.Body)
	}
	log.Info().Str("to", config.To).Int("status", response.StatusCode).Msg("sent email")
	return nil
}

func generateEmailContent(config SendEmailConfig, actions []Analyser) (subject string, body string, err error) {
	period := periodString(config.Start, config.End)
	out := `
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`
	for _, action := range actions {
		out += `
		<div>
`
		out += fmt.Sprintf("<h2>%s for %s %s:</h2>\n", action.GetName(), html.EscapeString(displayUser(config.User)), period)
		analysis, err := action.GetResults(config.Events, config.Start, config.End)
		if err != nil {
			return "", "", fmt.Errorf("getting results for %s: %w", action.GetName(), err)
		}

		if analysis.BodyOverride != "" {
			out += analysis.BodyOverride
		} else if len(analysis.results) <= 1 {
			out += "<div>No plays found.</div>\n"
		} else {
			out += `
			<table>
				<thead>
					<tr>
`
			for _, header := range analysis.results[0] {
				out += fmt.Sprintf("<th>%s</th>", html.EscapeString(header))
			}
			out += `				</tr>
			</thead>
			<tbody>
`
			for _, row := range analysis.results[1:] {
				out += "<tr>\n"
				for _, column := range row {
					out += fmt.Sprintf("<td>%s</td>\n", html.EscapeString(column))
				}
				out += "</tr>\n"
			}
			out += `
				</tbody>
			</table>
`
		}
		if analysis.BodyOverride == "" {
			out += fmt.Sprintf("<div>%s</div>\n", html.EscapeString(analysis.summary))
		}
		out += "		</div>\n"
	}
	out += `  </body>
</html>
`

	subjectSuffix := ""
	if len(config.ReportName) > 0 {
		subjectSuffix = ": " + config.ReportName
	}
	// Subject line format: Listening report for <User> <Start> to <End> <Suffix>
	subject = fmt.Sprintf("Listening report for %s %s%s", displayUser(config.User), period, subjectSuffix)

	return subject, out, nil
}

func displayUser(user string) string {
	if user == "" {
		return "me"
	}
	return user
}

// Pointers are required for Configure.
func analysisActions() map[string]Analyser {
	return map[string]Analyser{
		"report":        &ReportAnalyzer{Config: defaultConfig(0)},
		"top-artists":   &TopArtistsAnalyzer{Config: defaultConfig(20)},
		"top-tracks":    &TopTracksAnalyzer{Config: defaultConfig(20)},
		"then-now":      &ThenNowAnalyzer{Config: defaultConfig(0)},
		"mood-map":      &MoodMapAnalyzer{Config: defaultConfig(0)},
		"loop-monsters": &LoopMonstersAnalyzer{Config: defaultConfig(0)},
		"clock":         &ClockAnalyzer{Config: defaultConfig(0)},
		"months":        &MonthsAnalyzer{Config: defaultConfig(0)},
		"commentary":    &CommentaryAnalyzer{Config: defaultConfig(0)},
	}
}

func analysisNames() []string {
	var names []string
	for name := range analysisActions() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func getActionFromName(actionName string) (Analyser, error) {
	action, ok := analysisActions()[actionName]
	if !ok {
		return nil, fmt.Errorf("Invalid analysis_name: %s", actionName)
	}
	return action, nil
}
