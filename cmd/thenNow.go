package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/not-wrapped/internal/analysis"
	"github.com/ademuri/not-wrapped/internal/history"
)

var thenNowCmd = &cobra.Command{
	Use:   "then-now [from (optional)] [to (optional)]",
	Short: "Compares your earliest and latest listening",
	Long: `Orders the plays by time and compares the top artists of the first and
last --pct of them, showing who climbed, fell, appeared or vanished.`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		analyser := ThenNowAnalyzer{
			Config: defaultConfig(viper.GetInt("number")),
			Pct:    viper.GetFloat64("pct"),
		}
		err := printAnalysis(os.Stdout, analyser, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(thenNowCmd)

	var pct float64
	thenNowCmd.Flags().Float64Var(&pct, "pct", analysis.DefaultWindowPct, "fraction of plays in each window, clamped to 0.1-0.5")
	viper.BindPFlag("pct", thenNowCmd.Flags().Lookup("pct"))

	var number int
	thenNowCmd.Flags().IntVarP(&number, "number", "n", analysis.DefaultTopN, "number of top artists per window")
	viper.BindPFlag("number", thenNowCmd.Flags().Lookup("number"))
}

type ThenNowAnalyzer struct {
	Config AnalyserConfig
	Pct    float64
}

func (t *ThenNowAnalyzer) Configure(params map[string]string) error {
	if val, ok := params["pct"]; ok {
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid pct: %w", err)
		}
		t.Pct = v
	}
	if err := configureInt(params, "n", &t.Config.NumToReturn); err != nil {
		return err
	}
	return configureMinMs(params, &t.Config.MinMs)
}

func (t ThenNowAnalyzer) GetName() string {
	return "Then vs now"
}

func (t ThenNowAnalyzer) GetResults(events []history.PlayEvent, start time.Time, end time.Time) (a Analysis, err error) {
	pct := t.Pct
	if pct == 0 {
		pct = analysis.DefaultWindowPct
	}
	cmp := analysis.CompareWindows(events, t.Config.MinMs, pct, t.Config.NumToReturn)

	a.results = [][]string{{"Artist", cmp.Early.Label, cmp.Late.Label, "Move"}}
	for _, m := range cmp.Moves {
		a.results = append(a.results, []string{
			m.Name,
			rankCell(m.EarlyRank, m.EarlyMinutes),
			rankCell(m.LateRank, m.LateMinutes),
			moveCell(m),
		})
	}

	a.summary = fmt.Sprintf("%s: %d plays, %s: %d plays, from %s",
		cmp.Early.Label, cmp.Early.Count, cmp.Late.Label, cmp.Late.Count, periodString(start, end))
	return
}

func rankCell(rank int, minutes float64) string {
	if rank == 0 {
		return "-"
	}
	return fmt.Sprintf("#%d (%s min)", rank, formatMinutes(minutes))
}

func moveCell(m analysis.RankMove) string {
	d, ok := m.Delta()
	switch {
	case !ok:
		return m.Direction()
	case d > 0:
		return fmt.Sprintf("up %d", d)
	case d < 0:
		return fmt.Sprintf("down %d", -d)
	default:
		return "same"
	}
}
