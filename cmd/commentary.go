package cmd

import (
	"context"
	"fmt"
	"html"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/not-wrapped/internal/analysis"
	"github.com/ademuri/not-wrapped/internal/commentary"
	"github.com/ademuri/not-wrapped/internal/history"
)

var commentaryCmd = &cobra.Command{
	Use:   "commentary [from (optional)] [to (optional)]",
	Short: "Asks a local language model to roast your listening report",
	Long: `Generates the listening report and sends it to an Ollama server, which
answers with a tagline, a short personality paragraph and three superlatives.`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		err := printCommentary(ctx, args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating commentary: %v\n", err)
			stop()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(commentaryCmd)

	var model string
	commentaryCmd.Flags().StringVar(&model, "model", commentary.DefaultModel, "Ollama model name")
	viper.BindPFlag("model", commentaryCmd.Flags().Lookup("model"))

	var ollamaURL string
	commentaryCmd.Flags().StringVar(&ollamaURL, "ollama_url", commentary.DefaultURL, "Ollama server URL")
	viper.BindPFlag("ollama_url", commentaryCmd.Flags().Lookup("ollama_url"))
}

func newCommentaryClient() *commentary.Client {
	return commentary.NewClient(commentary.Config{
		URL:   viper.GetString("ollama_url"),
		Model: viper.GetString("model"),
	})
}

func printCommentary(ctx context.Context, args []string) error {
	sel, err := loadEvents(args)
	if err != nil {
		return err
	}
	report := analysis.GenerateReport(sel.Events, viper.GetInt64("min_ms"))
	if err := report.Err(); err != nil {
		return err
	}

	text, err := newCommentaryClient().Generate(ctx, report)
	if err != nil {
		return err
	}
	fmt.Println(strings.TrimSpace(text))
	return nil
}

type CommentaryAnalyzer struct {
	Config AnalyserConfig
	Client *commentary.Client
	// Ctx bounds the model call; nil means context.Background().
	Ctx context.Context
}

func (c *CommentaryAnalyzer) Configure(params map[string]string) error {
	return configureMinMs(params, &c.Config.MinMs)
}

func (c CommentaryAnalyzer) GetName() string {
	return "Commentary"
}

// GetResults returns the model's text as a BodyOverride of escaped
// paragraphs.
func (c CommentaryAnalyzer) GetResults(events []history.PlayEvent, start time.Time, end time.Time) (a Analysis, err error) {
	report := analysis.GenerateReport(events, c.Config.MinMs)
	if !report.OK {
		a.summary = report.Error
		return
	}

	client := c.Client
	if client == nil {
		client = newCommentaryClient()
	}
	log.Info().Msg("asking the model for commentary")
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	text, err := client.Generate(ctx, report)
	if err != nil {
		return
	}

	var body strings.Builder
	for _, para := range strings.Split(strings.TrimSpace(text), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		fmt.Fprintf(&body, "<p>%s</p>\n", strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
	}
	a.BodyOverride = body.String()
	a.summary = strings.TrimSpace(text)
	return
}
